package security

import (
	"fmt"
	"net"
	"strings"

	"lume/internal/domain"
)

// Scope restricts IP and CIDR targets to allowed networks. Domains and URLs
// are not resolved and pass through unchanged.
type Scope struct {
	allow []*net.IPNet
	deny  []*net.IPNet
}

func NewScope(allow, deny []string) (*Scope, error) {
	s := &Scope{}
	var err error
	if s.allow, err = parseNets(allow); err != nil {
		return nil, fmt.Errorf("scope allow: %w", err)
	}
	if s.deny, err = parseNets(deny); err != nil {
		return nil, fmt.Errorf("scope deny: %w", err)
	}
	return s, nil
}

// Permits reports whether t may be targeted, with a reason when it may not.
func (s *Scope) Permits(t domain.Target) (bool, string) {
	var ip net.IP
	var network *net.IPNet
	switch t.Type {
	case domain.TargetIP:
		ip = net.ParseIP(t.Value)
	case domain.TargetCIDR:
		var err error
		ip, network, err = net.ParseCIDR(t.Value)
		if err != nil {
			return false, "unparseable network " + t.Value
		}
	default:
		return true, ""
	}
	if ip == nil {
		return false, "unparseable address " + t.Value
	}

	for _, d := range s.deny {
		if d.Contains(ip) || (network != nil && network.Contains(d.IP)) {
			return false, "target overlaps denied network " + d.String()
		}
	}
	if len(s.allow) == 0 {
		return true, ""
	}
	for _, a := range s.allow {
		if a.Contains(ip) && (network == nil || covers(a, network)) {
			return true, ""
		}
	}
	return false, "target outside allowed scope"
}

// covers reports whether outer contains every address of inner.
func covers(outer, inner *net.IPNet) bool {
	outerOnes, _ := outer.Mask.Size()
	innerOnes, _ := inner.Mask.Size()
	return innerOnes >= outerOnes && outer.Contains(inner.IP)
}

func parseNets(cidrs []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", c, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}
