// Package policy implements the strategy ban-list filter consulted by the
// strategy design and sizing paths.
package policy

import (
	"fmt"
	"sort"
	"strings"
)

// creditStrategies are the structures treated as credit trades when the
// ban list requests a blanket credit ban.
var creditStrategies = map[string]struct{}{
	"credit_put_spread":  {},
	"credit_call_spread": {},
	"credit_spread":      {},
	"iron_condor":        {},
	"short_put_spread":   {},
	"short_call_spread":  {},
}

// Policy is an immutable strategy filter built from a caller-supplied ban
// list. Construct one per evaluation context.
type Policy struct {
	banned       map[string]struct{}
	banAllCredit bool
}

// New normalizes the ban list and derives the blanket credit ban. The
// literal tokens "credit_spreads" and "credit" switch on the category ban.
func New(banList []string) *Policy {
	p := &Policy{banned: make(map[string]struct{}, len(banList))}
	for _, raw := range banList {
		key := Normalize(raw)
		if key == "" {
			continue
		}
		p.banned[key] = struct{}{}
		if key == "credit_spreads" || key == "credit" {
			p.banAllCredit = true
		}
	}
	return p
}

// Normalize converts a human-readable strategy name to its internal key.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(name)), " ", "_")
}

// IsAllowed reports whether the strategy passes the filter. An empty name
// is always allowed; there is nothing to ban.
func (p *Policy) IsAllowed(name string) bool {
	key := Normalize(name)
	if key == "" {
		return true
	}
	if _, ok := p.banned[key]; ok {
		return false
	}
	if p.banAllCredit && isCreditStrategy(key) {
		return false
	}
	return true
}

// RejectionReason returns a human-readable explanation for a disallowed
// strategy, or empty string when the strategy is allowed.
func (p *Policy) RejectionReason(name string) string {
	key := Normalize(name)
	if key == "" {
		return ""
	}
	if _, ok := p.banned[key]; ok {
		return fmt.Sprintf("strategy %q is explicitly banned", key)
	}
	if p.banAllCredit && isCreditStrategy(key) {
		return fmt.Sprintf("strategy %q is banned by the credit-spread category ban", key)
	}
	return ""
}

// Banned returns the normalized ban set, sorted, for reporting. Category
// bans are represented only by their trigger token.
func (p *Policy) Banned() []string {
	out := make([]string, 0, len(p.banned))
	for key := range p.banned {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// BansAllCredit reports whether the blanket credit ban is active.
func (p *Policy) BansAllCredit() bool { return p.banAllCredit }

func isCreditStrategy(key string) bool {
	if _, ok := creditStrategies[key]; ok {
		return true
	}
	if strings.Contains(key, "credit") {
		return true
	}
	if strings.Contains(key, "short") && strings.Contains(key, "spread") {
		return true
	}
	return strings.Contains(key, "condor")
}
