package consolelog

import (
	"regexp"
	"strings"

	"github.com/roadrunner-server/errors"
)

type RuleKind uint8

const (
	Substring RuleKind = iota
	Pattern
)

// Rule is an exclude rule, either a substring or a compiled pattern.
type Rule struct {
	kind RuleKind
	text string
	re   *regexp.Regexp
}

func SubstringRule(s string) Rule {
	return Rule{kind: Substring, text: s}
}

func PatternRule(re *regexp.Regexp) Rule {
	return Rule{kind: Pattern, text: re.String(), re: re}
}

func (r Rule) Kind() RuleKind {
	return r.kind
}

func (r Rule) String() string {
	return r.text
}

// Match reports whether the message is excluded by the rule.
func (r Rule) Match(message string) bool {
	switch r.kind {
	case Pattern:
		return r.re.MatchString(message)
	default:
		return strings.Contains(message, r.text)
	}
}

// ParseRule turns a config string into a Rule. /expr/ and /expr/flags are patterns,
// flags may contain i, m and s. Anything else is a substring.
func ParseRule(s string) (Rule, error) {
	const op = errors.Op("console_parse_rule")

	if len(s) < 3 || s[0] != '/' {
		return SubstringRule(s), nil
	}

	end := strings.LastIndexByte(s, '/')
	if end == 0 {
		return SubstringRule(s), nil
	}

	expr, flags := s[1:end], s[end+1:]
	if strings.Trim(flags, "ims") != "" {
		// not a pattern literal, e.g. a path like /static/app.js
		return SubstringRule(s), nil
	}

	if flags != "" {
		expr = "(?" + dedupFlags(flags) + ")" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, errors.E(op, errors.Errorf("invalid exclude pattern %q: %v", s, err))
	}

	return PatternRule(re), nil
}

// ParseRules parses every exclude string, keeping the order.
func ParseRules(exclude []string) ([]Rule, error) {
	if len(exclude) == 0 {
		return nil, nil
	}

	rules := make([]Rule, 0, len(exclude))
	for i := range exclude {
		r, err := ParseRule(exclude[i])
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	return rules, nil
}

func dedupFlags(flags string) string {
	var sb strings.Builder
	for _, f := range "ims" {
		if strings.ContainsRune(flags, f) {
			sb.WriteRune(f)
		}
	}
	return sb.String()
}
