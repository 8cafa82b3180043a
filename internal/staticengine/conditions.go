package staticengine

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/mockllm/mockllm/internal/configstore"
)

// fold is the single Unicode case-folding operation used for
// case-insensitive predicate comparisons, shared by text and condition value.
var fold = cases.Fold()

func foldString(s string) string {
	return fold.String(s)
}

// evalGroup evaluates a when-clause's any/all/none triple against text. An
// empty group (the default rule's zero-value When) matches unconditionally.
func evalGroup(g configstore.ConditionGroup, text string) bool {
	if len(g.Any) > 0 {
		matched := false
		for _, c := range g.Any {
			if evalCondition(c, text) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, c := range g.All {
		if !evalCondition(c, text) {
			return false
		}
	}
	for _, c := range g.None {
		if evalCondition(c, text) {
			return false
		}
	}
	return true
}

// evalCondition evaluates a single predicate against text.
func evalCondition(c configstore.Condition, text string) bool {
	if c.Kind == configstore.CondRegex {
		if c.Regex == nil {
			return false
		}
		return c.Regex.MatchString(text)
	}

	haystack, needle := text, c.Value
	if c.CaseInsensitive {
		haystack = foldString(haystack)
		needle = foldString(needle)
	}

	switch c.Kind {
	case configstore.CondContains:
		return strings.Contains(haystack, needle)
	case configstore.CondEquals:
		return haystack == needle
	case configstore.CondStartsWith:
		return strings.HasPrefix(haystack, needle)
	case configstore.CondEndsWith:
		return strings.HasSuffix(haystack, needle)
	default:
		return false
	}
}
