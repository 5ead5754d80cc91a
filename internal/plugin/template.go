package plugin

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	PlaceholderTarget    = "{target}"
	PlaceholderWordlist  = "{wordlist}"
	PlaceholderUsers     = "{users}"
	PlaceholderPasswords = "{passwords}"
)

var placeholderRe = regexp.MustCompile(`\{[a-z_]+\}`)

// Fill substitutes placeholders token by token. A value is inserted into the
// token that holds its placeholder and never splits or joins tokens, so
// whitespace or separators inside a target stay inert.
func Fill(template []string, values map[string]string) ([]string, error) {
	pairs := make([]string, 0, 2*len(values))
	for ph, v := range values {
		pairs = append(pairs, ph, v)
	}
	rep := strings.NewReplacer(pairs...)

	out := make([]string, len(template))
	for i, tok := range template {
		for _, ph := range placeholderRe.FindAllString(tok, -1) {
			if _, ok := values[ph]; !ok {
				return nil, fmt.Errorf("no value for placeholder %s", ph)
			}
		}
		out[i] = rep.Replace(tok)
	}
	return out, nil
}
