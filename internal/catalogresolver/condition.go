package catalogresolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mockllm/mockllm/internal/configstore"
)

// compileCondition turns one raw predicate into its frozen runtime form.
// Exactly one of contains/equals/starts_with/ends_with/regex must be set;
// that is checked here via countSet.
func compileCondition(c configstore.RawCondition) (configstore.Condition, error) {
	if n := countSet(c); n != 1 {
		return configstore.Condition{}, fmt.Errorf("condition must have exactly one predicate, found %d", n)
	}

	caseInsensitive := c.Case != nil && strings.EqualFold(*c.Case, "insensitive")

	switch {
	case c.Contains != nil:
		return configstore.Condition{Kind: configstore.CondContains, Value: *c.Contains, CaseInsensitive: caseInsensitive}, nil
	case c.Equals != nil:
		return configstore.Condition{Kind: configstore.CondEquals, Value: *c.Equals, CaseInsensitive: caseInsensitive}, nil
	case c.StartsWith != nil:
		return configstore.Condition{Kind: configstore.CondStartsWith, Value: *c.StartsWith, CaseInsensitive: caseInsensitive}, nil
	case c.EndsWith != nil:
		return configstore.Condition{Kind: configstore.CondEndsWith, Value: *c.EndsWith, CaseInsensitive: caseInsensitive}, nil
	case c.Regex != nil:
		pattern, flags, err := parseRegexLiteral(*c.Regex)
		if err != nil {
			return configstore.Condition{}, err
		}
		for _, f := range flags {
			if f != 'i' {
				return configstore.Condition{}, fmt.Errorf("regex flag %q is not supported (only \"i\")", string(f))
			}
		}
		goPattern := pattern
		if strings.Contains(flags, "i") {
			goPattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(goPattern)
		if err != nil {
			return configstore.Condition{}, fmt.Errorf("invalid regex %q: %w", *c.Regex, err)
		}
		return configstore.Condition{Kind: configstore.CondRegex, Value: *c.Regex, Regex: re}, nil
	default:
		return configstore.Condition{}, fmt.Errorf("condition has no predicate")
	}
}

// countSet reports how many of the mutually exclusive predicate fields are
// set on a raw condition.
func countSet(c configstore.RawCondition) int {
	n := 0
	if c.Contains != nil {
		n++
	}
	if c.Equals != nil {
		n++
	}
	if c.StartsWith != nil {
		n++
	}
	if c.EndsWith != nil {
		n++
	}
	if c.Regex != nil {
		n++
	}
	return n
}

// parseRegexLiteral accepts either a bare pattern or a JS-style
// "/pattern/flags" literal, returning the pattern and flag characters
// separately.
func parseRegexLiteral(lit string) (pattern, flags string, err error) {
	if len(lit) >= 2 && lit[0] == '/' {
		if idx := strings.LastIndex(lit, "/"); idx > 0 {
			return lit[1:idx], lit[idx+1:], nil
		}
		return "", "", fmt.Errorf("malformed regex literal %q: missing closing slash", lit)
	}
	return lit, "", nil
}

func compileConditionGroup(w *configstore.RawWhen) (configstore.ConditionGroup, error) {
	var group configstore.ConditionGroup
	if w == nil {
		return group, nil
	}
	for _, c := range w.Any {
		cc, err := compileCondition(c)
		if err != nil {
			return group, err
		}
		group.Any = append(group.Any, cc)
	}
	for _, c := range w.All {
		cc, err := compileCondition(c)
		if err != nil {
			return group, err
		}
		group.All = append(group.All, cc)
	}
	for _, c := range w.None {
		cc, err := compileCondition(c)
		if err != nil {
			return group, err
		}
		group.None = append(group.None, cc)
	}
	return group, nil
}
