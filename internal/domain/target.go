package domain

// TargetType classifies an extracted target.
type TargetType string

const (
	TargetNone   TargetType = ""
	TargetURL    TargetType = "url"
	TargetIP     TargetType = "ip"
	TargetCIDR   TargetType = "cidr"
	TargetDomain TargetType = "domain"
)

// Target is the host, network, or URL an instruction is directed at.
// It is re-derived from every instruction and never persisted on its own.
type Target struct {
	Value string
	Type  TargetType
}

// Found reports whether extraction produced a target.
func (t Target) Found() bool { return t.Type != TargetNone && t.Value != "" }

func (t Target) String() string { return t.Value }
