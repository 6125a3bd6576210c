package decoder

import (
	"fmt"

	"github.com/roach88/animevent/internal/ir"
)

// Rule is an identification predicate over a raw record: either the name
// alone, or the name and the string parameter.
type Rule struct {
	Name        string
	StringParam string
	MatchString bool
}

// NameEquals matches records with the given name.
func NameEquals(name string) Rule {
	return Rule{Name: name}
}

// NameAndStringParamEquals matches records with the given name and string
// parameter.
func NameAndStringParamEquals(name, stringParam string) Rule {
	return Rule{Name: name, StringParam: stringParam, MatchString: true}
}

// Match reports whether rec satisfies the rule.
func (r Rule) Match(rec ir.Record) bool {
	if rec.Name != r.Name {
		return false
	}
	return !r.MatchString || rec.StringParam == r.StringParam
}

func (r Rule) String() string {
	if r.MatchString {
		return fmt.Sprintf("name=%q string=%q", r.Name, r.StringParam)
	}
	return fmt.Sprintf("name=%q", r.Name)
}
