package decoder

import (
	"github.com/roach88/animevent/internal/ir"
)

// Decoder recognizes and decodes one typed-event kind.
//
// Decode must accept any record for which IsMatch is true and must be a
// pure function of the record's fields.
type Decoder interface {
	Kind() Kind
	Rules() []Rule
	Decode(rec ir.Record) (Payload, error)
}

// Defaulter is implemented by decoders that supply their own default
// record. Decoders without it get the record derived from their first rule.
type Defaulter interface {
	Default() (ir.Record, bool)
}

// IsMatch reports whether any of d's rules match rec.
func IsMatch(d Decoder, rec ir.Record) bool {
	for _, r := range d.Rules() {
		if r.Match(rec) {
			return true
		}
	}
	return false
}

// MakeDefault returns the raw record for a new instance of d's kind.
// It returns false when d declares no rules and no Defaulter.
func MakeDefault(d Decoder) (ir.Record, bool) {
	if df, ok := d.(Defaulter); ok {
		return df.Default()
	}
	return defaultFromRules(d.Rules())
}

func defaultFromRules(rules []Rule) (ir.Record, bool) {
	if len(rules) == 0 {
		return ir.Record{}, false
	}
	rec := ir.Record{Name: rules[0].Name}
	if rules[0].MatchString {
		rec.StringParam = rules[0].StringParam
	}
	return rec, true
}
