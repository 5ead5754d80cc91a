package plugin

import (
	"fmt"
	"net/url"

	"lume/internal/config"
	"lume/internal/domain"
	"lume/internal/target"
)

// ServiceHTTPForm is hydra's web login form module.
const ServiceHTTPForm = "http-post-form"

// defaultFormSpec is the http-post-form module argument used when the target
// URL gives no login path.
const defaultFormSpec = "/login:username=^USER^&password=^PASS^:F=incorrect"

var hydraServices = map[string]bool{
	"ssh": true, "ftp": true, "telnet": true, "rdp": true, "smb": true,
	"mysql": true, "postgres": true, ServiceHTTPForm: true,
}

// Hydra brute-forces network service logins.
type Hydra struct {
	wordlists config.WordlistsConfig
	exists    func(string) bool
}

func (h *Hydra) Name() string { return "hydra" }

func (h *Hydra) Template() []string {
	return []string{"hydra", "-L", PlaceholderUsers, "-P", PlaceholderPasswords, PlaceholderTarget, "ssh"}
}

func (h *Hydra) ValidateTarget(t string) bool {
	return target.ValidateIP(t) || target.ValidateDomain(t) || target.ValidateURL(t)
}

func (h *Hydra) BuildCommand(t string, hints domain.Hints) ([]string, error) {
	service := hints.Service
	if service == "" {
		service = "ssh"
	}
	if !hydraServices[service] {
		return nil, fmt.Errorf("hydra: unsupported service %q", service)
	}

	argv := []string{"hydra"}
	if users, ok := firstExisting(h.wordlists.Users, h.exists); ok {
		argv = append(argv, "-L", users)
	} else {
		argv = append(argv, "-l", "root")
	}
	if passwords, ok := firstExisting(h.wordlists.Passwords, h.exists); ok {
		argv = append(argv, "-P", passwords)
	} else {
		argv = append(argv, "-p", "password")
	}

	host := t
	formSpec := defaultFormSpec
	if target.ValidateURL(t) {
		u, _ := url.Parse(t)
		host = u.Hostname()
		if service == ServiceHTTPForm && u.Path != "" && u.Path != "/" {
			formSpec = u.Path + ":username=^USER^&password=^PASS^:F=incorrect"
		}
	}

	argv = append(argv, host, service)
	if service == ServiceHTTPForm {
		argv = append(argv, formSpec)
	}
	return argv, nil
}

func (h *Hydra) Explain(string) domain.Explanation {
	return domain.Explanation{
		Summary: "Attempted a password brute force against the target service",
		Impact:  "Weak credentials found here grant direct access to the service",
		Warning: "Brute forcing can lock out accounts and is treated as an attack. Only run with authorization.",
	}
}

func (h *Hydra) Info() domain.PluginInfo {
	return domain.PluginInfo{
		Binary:      "hydra",
		Description: "Network login brute forcer",
		Targets:     []domain.TargetType{domain.TargetIP, domain.TargetDomain, domain.TargetURL},
		Options:     []string{"ssh (default)", "ftp", "http-post-form (http, web)"},
		Examples:    []string{"brute force ssh on 10.0.0.5", "crack ftp password on 10.0.0.7"},
	}
}
