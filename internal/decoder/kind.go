package decoder

import "strings"

// Kind names a typed-event kind.
type Kind string

const (
	KindFootstepLeft  Kind = "footstep_left"
	KindFootstepRight Kind = "footstep_right"
	KindSound         Kind = "sound"
	KindVoice         Kind = "voice"
	KindEffect        Kind = "effect"
	KindCameraShake   Kind = "camera_shake"
	KindHitBegin      Kind = "hit_begin"
	KindHitEnd        Kind = "hit_end"
	KindExpression    Kind = "expression"
	KindUnrecognized  Kind = "unrecognized"
)

// Category groups kinds for display. It has no effect on classification.
type Category int

const (
	CategoryOther Category = iota
	CategoryFootstep
	CategoryAudio
	CategoryEffect
	CategoryCamera
	CategoryCombat
	CategoryFacial
)

func (c Category) String() string {
	switch c {
	case CategoryFootstep:
		return "footstep"
	case CategoryAudio:
		return "audio"
	case CategoryEffect:
		return "effect"
	case CategoryCamera:
		return "camera"
	case CategoryCombat:
		return "combat"
	case CategoryFacial:
		return "facial"
	default:
		return "other"
	}
}

// FieldSet is a set of raw record fields a kind treats as meaningful.
type FieldSet uint8

const (
	FieldName FieldSet = 1 << iota
	FieldFloat
	FieldInt
	FieldString
	FieldObject
)

// AllFields is every raw parameter field plus the name.
const AllFields = FieldName | FieldFloat | FieldInt | FieldString | FieldObject

// Has reports whether every field in x is in f.
func (f FieldSet) Has(x FieldSet) bool {
	return f&x == x
}

var fieldNames = []struct {
	field FieldSet
	name  string
}{
	{FieldName, "name"},
	{FieldFloat, "float"},
	{FieldInt, "int"},
	{FieldString, "string"},
	{FieldObject, "object"},
}

// Names returns the field names in a fixed order.
func (f FieldSet) Names() []string {
	names := []string{}
	for _, fn := range fieldNames {
		if f.Has(fn.field) {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f FieldSet) String() string {
	return strings.Join(f.Names(), ",")
}

type kindInfo struct {
	display  string
	category Category
	exposed  FieldSet
}

var kindTable = map[Kind]kindInfo{
	KindFootstepLeft:  {"Left Footstep", CategoryFootstep, FieldFloat},
	KindFootstepRight: {"Right Footstep", CategoryFootstep, FieldFloat},
	KindSound:         {"Sound", CategoryAudio, FieldObject | FieldFloat},
	KindVoice:         {"Voice", CategoryAudio, FieldString | FieldFloat},
	KindEffect:        {"Effect", CategoryEffect, FieldObject | FieldFloat | FieldInt},
	KindCameraShake:   {"Camera Shake", CategoryCamera, FieldFloat | FieldInt},
	KindHitBegin:      {"Hit Begin", CategoryCombat, FieldFloat | FieldInt},
	KindHitEnd:        {"Hit End", CategoryCombat, FieldInt},
	KindExpression:    {"Expression", CategoryFacial, FieldString | FieldFloat},
	KindUnrecognized:  {"Unrecognized", CategoryOther, AllFields},
}

// DisplayName returns the human-readable kind name.
func (k Kind) DisplayName() string {
	if info, ok := kindTable[k]; ok {
		return info.display
	}
	return string(k)
}

// Category returns the kind's display category.
func (k Kind) Category() Category {
	return kindTable[k].category
}

// Exposed returns the raw fields the kind treats as meaningful.
// Unknown kinds expose everything.
func (k Kind) Exposed() FieldSet {
	if info, ok := kindTable[k]; ok {
		return info.exposed
	}
	return AllFields
}
