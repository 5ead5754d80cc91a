package target

import (
	"testing"

	"lume/internal/domain"
)

// --- Extract ---

func TestExtract_IP(t *testing.T) {
	got := Extract("scan ports on 192.168.1.1")
	if got.Type != domain.TargetIP || got.Value != "192.168.1.1" {
		t.Fatalf("expected ip 192.168.1.1, got %+v", got)
	}
}

func TestExtract_CIDR(t *testing.T) {
	got := Extract("find live hosts on 10.0.0.0/24")
	if got.Type != domain.TargetCIDR || got.Value != "10.0.0.0/24" {
		t.Fatalf("expected cidr 10.0.0.0/24, got %+v", got)
	}
}

func TestExtract_URLBeatsIP(t *testing.T) {
	got := Extract("compare 10.1.1.1 with http://10.1.1.2/login")
	if got.Type != domain.TargetURL {
		t.Fatalf("expected url to win, got %+v", got)
	}
	if got.Value != "http://10.1.1.2/login" {
		t.Fatalf("unexpected url value %q", got.Value)
	}
}

func TestExtract_URLKeepsQuery(t *testing.T) {
	got := Extract("test sql injection on http://target.com/page?id=1")
	if got.Value != "http://target.com/page?id=1" {
		t.Fatalf("expected full url, got %q", got.Value)
	}
}

func TestExtract_IPBeatsDomain(t *testing.T) {
	got := Extract("scan example.com and 8.8.8.8")
	if got.Type != domain.TargetIP || got.Value != "8.8.8.8" {
		t.Fatalf("expected ip to win over domain, got %+v", got)
	}
}

func TestExtract_Domain(t *testing.T) {
	got := Extract("find admin page on Example.COM")
	if got.Type != domain.TargetDomain || got.Value != "example.com" {
		t.Fatalf("expected domain example.com, got %+v", got)
	}
}

func TestExtract_NoTarget(t *testing.T) {
	got := Extract("just some text")
	if got.Found() {
		t.Fatalf("expected no target, got %+v", got)
	}
}

func TestExtract_IPStopsAtSeparator(t *testing.T) {
	got := Extract("scan 192.168.1.1;rm -rf /")
	if got.Value != "192.168.1.1" {
		t.Fatalf("expected separator to end the ip, got %q", got.Value)
	}
}

// --- Validators ---

func TestValidateIP(t *testing.T) {
	valid := []string{"0.0.0.0", "192.168.1.1", "255.255.255.255"}
	for _, s := range valid {
		if !ValidateIP(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	invalid := []string{"256.1.1.1", "1.2.3", "1.2.3.4.5", "a.b.c.d", "1.2.3.4/24", ""}
	for _, s := range invalid {
		if ValidateIP(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidateCIDR(t *testing.T) {
	if !ValidateCIDR("10.0.0.0/8") {
		t.Error("10.0.0.0/8 should be valid")
	}
	for _, s := range []string{"10.0.0.0/33", "10.0.0.0/", "10.0.0.0", "300.0.0.0/8", "10.0.0.0/+1"} {
		if ValidateCIDR(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidateDomain(t *testing.T) {
	for _, s := range []string{"example.com", "sub.example.co.uk", "a-b.io"} {
		if !ValidateDomain(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"localhost", "-bad.com", "example.c", "exa mple.com", "example.com;ls"} {
		if ValidateDomain(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidateURL(t *testing.T) {
	if !ValidateURL("https://example.com/a?b=c") {
		t.Error("https url should be valid")
	}
	for _, s := range []string{"ftp://example.com", "example.com", "http://", "://x"} {
		if ValidateURL(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidatePort(t *testing.T) {
	if !ValidatePort(1) || !ValidatePort(65535) {
		t.Error("boundary ports should be valid")
	}
	if ValidatePort(0) || ValidatePort(65536) || ValidatePort(-1) {
		t.Error("out of range ports should be invalid")
	}
}

func TestValidateCommandTemplate(t *testing.T) {
	if err := ValidateCommandTemplate([]string{"nmap", "-sV", "10.0.0.1"}); err != nil {
		t.Fatalf("expected valid argv, got %v", err)
	}
	bad := [][]string{
		nil,
		{""},
		{"nmap && id"},
		{"nmap|sh"},
		{"nmap", "$(id)"},
		{"nmap", "`id`"},
		{"nmap", "a\nb"},
	}
	for _, argv := range bad {
		if err := ValidateCommandTemplate(argv); err == nil {
			t.Errorf("expected error for %q", argv)
		}
	}
}

func TestValidateCommandTemplate_SemicolonIsInertInsideToken(t *testing.T) {
	argv := []string{"msfconsole", "-q", "-x", "use x; set RHOSTS 10.0.0.1; check; exit"}
	if err := ValidateCommandTemplate(argv); err != nil {
		t.Fatalf("semicolons inside an argument must be allowed: %v", err)
	}
}

func TestSanitizeTarget(t *testing.T) {
	cases := map[string]string{
		"http://a.com/x;rm -rf /":   "http://a.com/xrm -rf /",
		"https://a.com/$(id)|`w`":  "https://a.com/(id)w",
		"10.0.0.1; cat /etc/passwd": "10.0.0.1catetcpasswd",
		"example.com:8080":          "example.com:8080",
	}
	for in, want := range cases {
		if got := SanitizeTarget(in); got != want {
			t.Errorf("SanitizeTarget(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContainsShellMeta(t *testing.T) {
	for _, s := range []string{"a;b", "a && b", "a|b", "`a`", "$(a)", "a > b"} {
		if !ContainsShellMeta(s) {
			t.Errorf("expected %q to contain shell metacharacters", s)
		}
	}
	if ContainsShellMeta("http://example.com/a?b=c") {
		t.Error("plain url should not be flagged")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]domain.TargetType{
		"http://a.com":  domain.TargetURL,
		"1.2.3.4":       domain.TargetIP,
		"1.2.3.0/24":    domain.TargetCIDR,
		"example.org":   domain.TargetDomain,
		"not a target":  domain.TargetNone,
	}
	for in, want := range cases {
		if got := Classify(in); got != want {
			t.Errorf("Classify(%q) = %q, want %q", in, got, want)
		}
	}
}
