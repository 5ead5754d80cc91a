// Package target extracts and validates the host, network, or URL an
// instruction is directed at.
package target

import (
	"regexp"
	"strings"

	"lume/internal/domain"
)

// Resolution order is fixed: URL, then IPv4 (optional CIDR suffix), then domain.
var (
	urlPattern    = regexp.MustCompile(`(?i)https?://[^\s]+`)
	ipv4Pattern   = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?:/\d{1,2})?\b`)
	domainPattern = regexp.MustCompile(`(?i)\b(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}\b`)
)

// Extract returns the first target found in text. A zero Target (Found() == false)
// is a normal outcome, not an error.
func Extract(text string) domain.Target {
	if m := urlPattern.FindString(text); m != "" {
		return domain.Target{Value: m, Type: domain.TargetURL}
	}
	if m := ipv4Pattern.FindString(text); m != "" {
		if strings.Contains(m, "/") {
			return domain.Target{Value: m, Type: domain.TargetCIDR}
		}
		return domain.Target{Value: m, Type: domain.TargetIP}
	}
	if m := domainPattern.FindString(text); m != "" {
		return domain.Target{Value: strings.ToLower(m), Type: domain.TargetDomain}
	}
	return domain.Target{}
}

// Classify reports the type of a bare target string, or TargetNone when it is
// not a well-formed URL, IP, CIDR block, or domain.
func Classify(s string) domain.TargetType {
	switch {
	case ValidateURL(s):
		return domain.TargetURL
	case ValidateIP(s):
		return domain.TargetIP
	case ValidateCIDR(s):
		return domain.TargetCIDR
	case ValidateDomain(s):
		return domain.TargetDomain
	}
	return domain.TargetNone
}
