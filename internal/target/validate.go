package target

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	ipShape      = regexp.MustCompile(`^(?:\d{1,3}\.){3}\d{1,3}$`)
	domainShape  = regexp.MustCompile(`(?i)^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)
	hostileChars = regexp.MustCompile(`[^a-zA-Z0-9.\-:]`)
)

// shellMeta are sequences a POSIX shell would reinterpret.
var shellMeta = []string{";", "&&", "||", "|", "`", "$(", "${", ">", "<", "\n", "\r"}

// ValidateIP accepts a dotted-quad IPv4 address with every octet in 0-255.
func ValidateIP(s string) bool {
	if !ipShape.MatchString(s) {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// ValidateCIDR accepts an IPv4 network in a.b.c.d/nn form with nn in 0-32.
func ValidateCIDR(s string) bool {
	ip, prefix, ok := strings.Cut(s, "/")
	if !ok || !ValidateIP(ip) {
		return false
	}
	if prefix == "" || len(prefix) > 2 || strings.Trim(prefix, "0123456789") != "" {
		return false
	}
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return false
	}
	return n >= 0 && n <= 32
}

// ValidateDomain accepts a DNS name with at least one label and an alphabetic TLD.
func ValidateDomain(s string) bool {
	return len(s) <= 253 && domainShape.MatchString(s)
}

// ValidateURL accepts absolute http and https URLs that carry a host.
func ValidateURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// HasQuery reports whether s looks like a parameterised endpoint.
func HasQuery(s string) bool {
	return strings.ContainsAny(s, "?=")
}

// ValidatePort accepts TCP/UDP port numbers.
func ValidatePort(port int) bool {
	return port >= 1 && port <= 65535
}

// ContainsShellMeta reports whether s holds any sequence a shell would reinterpret.
func ContainsShellMeta(s string) bool {
	for _, m := range shellMeta {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// ValidateCommandTemplate checks a built argument vector: it must be non-empty,
// the program token must be a plain word, and no token may carry command
// substitution.
func ValidateCommandTemplate(argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	if argv[0] == "" || ContainsShellMeta(argv[0]) || strings.ContainsAny(argv[0], " \t") {
		return fmt.Errorf("invalid program token %q", argv[0])
	}
	for i, tok := range argv {
		if strings.Contains(tok, "`") || strings.Contains(tok, "$(") {
			return fmt.Errorf("token %d contains command substitution: %q", i, tok)
		}
		if strings.ContainsAny(tok, "\x00\n\r") {
			return fmt.Errorf("token %d contains control characters", i)
		}
	}
	return nil
}

// SanitizeTarget strips characters a shell would interpret. URLs keep their
// punctuation apart from command separators; everything else is reduced to
// host characters.
func SanitizeTarget(s string) string {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return strings.Map(func(r rune) rune {
			switch r {
			case ';', '&', '|', '`', '$', '\n', '\r':
				return -1
			}
			return r
		}, s)
	}
	return hostileChars.ReplaceAllString(s, "")
}
