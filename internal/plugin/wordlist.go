package plugin

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoWordlist is returned when none of a wordlist's candidate paths exist.
var ErrNoWordlist = errors.New("no wordlist found")

// FileExists reports whether path names a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// firstExisting returns the first candidate present on disk.
func firstExisting(candidates []string, exists func(string) bool) (string, bool) {
	for _, c := range candidates {
		if c != "" && exists(c) {
			return c, true
		}
	}
	return "", false
}

func pickWordlist(purpose string, candidates []string, exists func(string) bool) (string, error) {
	if p, ok := firstExisting(candidates, exists); ok {
		return p, nil
	}
	return "", fmt.Errorf("%w for %s (tried: %s)", ErrNoWordlist, purpose, strings.Join(candidates, ", "))
}
