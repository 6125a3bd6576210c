package decoder

import (
	"fmt"

	"github.com/roach88/animevent/internal/ir"
	"github.com/roach88/animevent/internal/quant"
)

// Event is a decoded, kind-tagged wrapper around exactly one raw record.
//
// ID is the stable identifier. It is generated at decode time and may be
// replaced by the watcher's reconciliation; it is never derived from the
// record's content.
type Event struct {
	ID      string
	Kind    Kind
	Record  ir.Record
	Payload Payload
}

// Time returns the backing record's time.
func (e Event) Time() float32 { return e.Record.Time }

// DisplayName returns the kind's display name.
func (e Event) DisplayName() string { return e.Kind.DisplayName() }

// Category returns the kind's category.
func (e Event) Category() Category { return e.Kind.Category() }

// Exposed returns the raw fields the kind treats as meaningful.
func (e Event) Exposed() FieldSet { return e.Kind.Exposed() }

// Summary returns a human-readable description derived from the record.
func (e Event) Summary() string {
	if e.Payload == nil {
		return Unrecognized{Record: e.Record}.Summary()
	}
	return e.Payload.Summary()
}

// WithID returns a copy of e carrying id.
func (e Event) WithID(id string) Event {
	e.ID = id
	return e
}

// Payload is the kind-specific decoded data of an Event.
// The set of implementations is closed.
type Payload interface {
	Summary() string
	isPayload()
}

// Side is the foot of a footstep.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "R"
	}
	return "L"
}

// HitPhase distinguishes the opening and closing records of a hit window.
type HitPhase int

const (
	HitBegin HitPhase = iota
	HitEnd
)

// Footstep is a foot touching the ground.
type Footstep struct {
	Side   Side
	Volume float32
}

// Sound plays an audio clip.
type Sound struct {
	Clip   ir.ObjectRef
	Volume float32
}

// Voice plays a voice cue by name.
type Voice struct {
	Cue    string
	Volume float32
}

// Effect spawns a prefab at a local offset packed with quant.Vec3ToFI.
type Effect struct {
	Prefab ir.ObjectRef
	Offset quant.Vec3
}

// CameraShake shakes the camera along a direction packed with
// quant.EncodeTriplet.
type CameraShake struct {
	Strength  float32
	Direction quant.Vec3
}

// Hit opens or closes a hit window for a hitbox.
type Hit struct {
	Phase HitPhase
	Box   int32
	Scale float32
}

// Expression blends the face into a named expression.
type Expression struct {
	Name         string
	BlendSeconds float32
}

// Unrecognized keeps a record no decoder claimed.
type Unrecognized struct {
	Record ir.Record
}

func (Footstep) isPayload()     {}
func (Sound) isPayload()        {}
func (Voice) isPayload()        {}
func (Effect) isPayload()       {}
func (CameraShake) isPayload()  {}
func (Hit) isPayload()          {}
func (Expression) isPayload()   {}
func (Unrecognized) isPayload() {}

func (p Footstep) Summary() string {
	return fmt.Sprintf("%s vol=%.2f", p.Side, p.Volume)
}

func (p Sound) Summary() string {
	return fmt.Sprintf("%s vol=%.2f", p.Clip, p.Volume)
}

func (p Voice) Summary() string {
	return fmt.Sprintf("%q vol=%.2f", p.Cue, p.Volume)
}

func (p Effect) Summary() string {
	return fmt.Sprintf("%s at %s", p.Prefab, p.Offset)
}

func (p CameraShake) Summary() string {
	return fmt.Sprintf("strength=%.2f dir=%s", p.Strength, p.Direction)
}

func (p Hit) Summary() string {
	if p.Phase == HitEnd {
		return fmt.Sprintf("box=%d", p.Box)
	}
	return fmt.Sprintf("box=%d x%.2f", p.Box, p.Scale)
}

func (p Expression) Summary() string {
	return fmt.Sprintf("%q over %.2fs", p.Name, p.BlendSeconds)
}

func (p Unrecognized) Summary() string {
	r := p.Record
	return fmt.Sprintf("%q f=%g i=%d s=%q obj=%s", r.Name, r.FloatParam, r.IntParam, r.StringParam, r.Object)
}
