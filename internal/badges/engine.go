// Package badges decides which achievements a user has earned and persists
// newly unlocked ones.
package badges

import (
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
)

// Result is the outcome of one evaluation pass.
type Result struct {
	// Badges is the full badge set after evaluation, previously held keys first.
	Badges []badges.BadgeKey
	// Unlocked holds only the keys added by this pass, in rule table order.
	Unlocked []badges.BadgeKey
}

// Evaluate runs the static rule table against counters.
func Evaluate(counters badges.Counters) Result {
	return EvaluateWith(badges.Rules, counters)
}

// EvaluateWith runs rules in order against counters. Keys already present in
// counters.Badges are never removed or reported again.
func EvaluateWith(rules []badges.Rule, counters badges.Counters) Result {
	held := make(map[badges.BadgeKey]struct{}, len(counters.Badges)+len(rules))
	res := Result{Badges: make([]badges.BadgeKey, 0, len(counters.Badges))}

	for _, key := range counters.Badges {
		if _, dup := held[key]; dup {
			continue
		}
		held[key] = struct{}{}
		res.Badges = append(res.Badges, key)
	}

	for _, rule := range rules {
		if _, ok := held[rule.Key]; ok {
			continue
		}
		if !counters.Value(rule.Field).Meets(rule.Threshold) {
			continue
		}
		held[rule.Key] = struct{}{}
		res.Badges = append(res.Badges, rule.Key)
		res.Unlocked = append(res.Unlocked, rule.Key)
	}

	return res
}
