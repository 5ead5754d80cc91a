package security

import (
	"testing"
)

func TestJoinVerify_RoundTrip(t *testing.T) {
	cases := [][]string{
		{"nmap", "-sV", "-T4", "192.168.1.1"},
		{"msfconsole", "-q", "-x", "use exploit/windows/smb/ms17_010_eternalblue; set RHOSTS 10.0.0.1; check; exit"},
		{"nikto", "-h", "http://a.com/x?a=1&b=2"},
		{"sqlmap", "-u", "http://a.com/p?id=1;id", "--batch"},
		{"echo", "$(id)", "`id`", "$HOME", "a|b", "x > y"},
		{"echo", ""},
		{"echo", "it's"},
	}
	for _, argv := range cases {
		line, err := Join(argv)
		if err != nil {
			t.Fatalf("Join(%q): %v", argv, err)
		}
		if err := Verify(argv, line); err != nil {
			t.Errorf("Verify(%q, %q): %v", argv, line, err)
		}
	}
}

func TestSplit_Template(t *testing.T) {
	words, err := Split(`msfconsole -q -x "use exploit/windows/smb/ms17_010_eternalblue; set RHOSTS {target}; check; exit"`)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(words) != 4 {
		t.Fatalf("expected 4 words, got %d: %q", len(words), words)
	}
	if words[3] != "use exploit/windows/smb/ms17_010_eternalblue; set RHOSTS {target}; check; exit" {
		t.Fatalf("unexpected quoted word %q", words[3])
	}
}

func TestSplit_RejectsShellConstructs(t *testing.T) {
	bad := []string{
		"nmap 10.0.0.1; id",
		"nmap 10.0.0.1 && id",
		"nmap 10.0.0.1 | sh",
		"nmap $(id)",
		"nmap `id`",
		"nmap $TARGET",
		"nmap 10.0.0.1 > out.txt",
		"FOO=bar nmap 10.0.0.1",
		"nmap 10.0.0.1 &",
		"(nmap 10.0.0.1)",
		"",
	}
	for _, line := range bad {
		if _, err := Split(line); err == nil {
			t.Errorf("expected Split(%q) to fail", line)
		}
	}
}

func TestVerify_DetectsMismatch(t *testing.T) {
	if err := Verify([]string{"nmap", "10.0.0.1"}, "nmap 10.0.0.2"); err == nil {
		t.Fatal("expected mismatch error")
	}
	if err := Verify([]string{"nmap", "a b"}, "nmap a b"); err == nil {
		t.Fatal("expected word count error")
	}
}
