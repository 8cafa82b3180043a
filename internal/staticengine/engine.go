// Package staticengine implements C4: evaluating a kind=static model's
// ordered rule list against an inbound request's match text and picking one
// reply from the winning rule.
package staticengine

import (
	"fmt"
	"math/rand"

	"github.com/mockllm/mockllm/internal/configstore"
)

// Evaluate walks body.Rules in declaration order, returning the first
// matching rule's picked reply. A rule matches if its When group evaluates
// true against text; the single default rule (guaranteed by I2 at build
// time) is skipped during the walk wherever it sits, and is used only when
// no non-default rule matched.
func Evaluate(body *configstore.StaticBody, text string) (*configstore.Reply, error) {
	if body == nil {
		return nil, fmt.Errorf("static: model has no static body")
	}
	var defaultRule *configstore.Rule
	for _, rule := range body.Rules {
		if rule.Default {
			defaultRule = rule
			continue
		}
		if evalGroup(rule.When, text) {
			return pick(rule, body.Pick)
		}
	}
	if defaultRule == nil {
		return nil, fmt.Errorf("static: no rule matched and no default rule is configured")
	}
	return pick(defaultRule, body.Pick)
}

// pick chooses one Reply from rule.Replies using the rule's own strategy
// override if set, falling back to the model-level strategy.
func pick(rule *configstore.Rule, modelPick configstore.PickStrategy) (*configstore.Reply, error) {
	if len(rule.Replies) == 0 {
		return nil, fmt.Errorf("static: matched rule has no replies")
	}
	strategy := modelPick
	if rule.Pick != "" {
		strategy = rule.Pick
	}
	var idx int
	switch strategy {
	case configstore.PickRandom:
		idx = rand.Intn(len(rule.Replies))
	case configstore.PickWeighted:
		idx = pickWeighted(rule.Replies)
	default: // round_robin
		idx = int(rule.NextRoundRobin() % uint64(len(rule.Replies)))
	}
	reply := rule.Replies[idx]
	return &reply, nil
}

// pickWeighted draws a discrete index proportional to each reply's Weight.
// Weights are coerced to >= 1 at build time, so the total is always > 0.
func pickWeighted(replies []configstore.Reply) int {
	total := 0
	for _, r := range replies {
		total += r.Weight
	}
	roll := rand.Intn(total)
	acc := 0
	for i, r := range replies {
		acc += r.Weight
		if roll < acc {
			return i
		}
	}
	return len(replies) - 1
}
