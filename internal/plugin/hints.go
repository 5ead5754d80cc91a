package plugin

import (
	"regexp"
	"strings"

	"lume/internal/domain"
)

var osWord = regexp.MustCompile(`\bos\b`)

// ExtractHints derives tool options from keywords in the instruction.
func ExtractHints(tool, instruction string) domain.Hints {
	lower := strings.ToLower(instruction)
	var h domain.Hints

	switch tool {
	case "nmap":
		switch {
		case containsAny(lower, "fast", "quick"):
			h.Scan = ScanFast
		case containsAny(lower, "aggressive", "intense", "thorough"):
			h.Scan = ScanAggressive
		case osWord.MatchString(lower) || strings.Contains(lower, "operating system"):
			h.Scan = ScanOS
		case strings.Contains(lower, "vuln"):
			h.Scan = ScanVuln
		case containsAny(lower, "network", "live host"):
			h.Scan = ScanNetwork
		}
	case "gobuster":
		if containsAny(lower, "subdomain", "dns") {
			h.Mode = ModeDNS
		} else {
			h.Mode = ModeDir
		}
		if strings.Contains(lower, "common") {
			h.Wordlist = WordlistCommon
		}
	case "hydra":
		switch {
		case strings.Contains(lower, "ssh"):
			h.Service = "ssh"
		case strings.Contains(lower, "ftp"):
			h.Service = "ftp"
		case containsAny(lower, "http", "web"):
			h.Service = ServiceHTTPForm
		}
	}
	return h
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
