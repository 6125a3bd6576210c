package decoder

import (
	"github.com/roach88/animevent/internal/ir"
	"github.com/roach88/animevent/internal/quant"
)

// Record names recognized by the built-in decoders.
const (
	NameFootstepLeft    = "左足接地"
	NameFootstepRight   = "右足接地"
	NameFootstepLeftEN  = "FootstepL"
	NameFootstepRightEN = "FootstepR"
	NameSound           = "PlaySound"
	NameVoice           = "PlayVoice"
	NameEffect          = "SpawnEffect"
	NameCameraShake     = "CameraShake"
	NameHit             = "Hit"
	NameExpression      = "SetExpression"

	HitBeginParam = "Begin"
	HitEndParam   = "End"
)

// ruleDecoder is a Decoder assembled from a rule list and two functions.
type ruleDecoder struct {
	kind     Kind
	rules    []Rule
	decode   func(ir.Record) Payload
	defaults func(*ir.Record)
}

func (d *ruleDecoder) Kind() Kind { return d.kind }

func (d *ruleDecoder) Rules() []Rule {
	rules := make([]Rule, len(d.rules))
	copy(rules, d.rules)
	return rules
}

func (d *ruleDecoder) Decode(rec ir.Record) (Payload, error) {
	return d.decode(rec), nil
}

// Default builds the rule-derived record, then applies kind defaults.
func (d *ruleDecoder) Default() (ir.Record, bool) {
	rec, ok := defaultFromRules(d.rules)
	if !ok {
		return rec, false
	}
	if d.defaults != nil {
		d.defaults(&rec)
	}
	return rec, true
}

func fullVolume(rec *ir.Record) { rec.FloatParam = 1 }

// Builtins returns the built-in decoders in registration order.
// The unrecognized decoder is not included; every Registry adds it as the
// fallback.
func Builtins() []Decoder {
	return []Decoder{
		&ruleDecoder{
			kind:  KindFootstepLeft,
			rules: []Rule{NameEquals(NameFootstepLeft), NameEquals(NameFootstepLeftEN)},
			decode: func(r ir.Record) Payload {
				return Footstep{Side: Left, Volume: r.FloatParam}
			},
			defaults: fullVolume,
		},
		&ruleDecoder{
			kind:  KindFootstepRight,
			rules: []Rule{NameEquals(NameFootstepRight), NameEquals(NameFootstepRightEN)},
			decode: func(r ir.Record) Payload {
				return Footstep{Side: Right, Volume: r.FloatParam}
			},
			defaults: fullVolume,
		},
		&ruleDecoder{
			kind:  KindSound,
			rules: []Rule{NameEquals(NameSound)},
			decode: func(r ir.Record) Payload {
				return Sound{Clip: r.Object, Volume: r.FloatParam}
			},
			defaults: fullVolume,
		},
		&ruleDecoder{
			kind:  KindVoice,
			rules: []Rule{NameEquals(NameVoice)},
			decode: func(r ir.Record) Payload {
				return Voice{Cue: r.StringParam, Volume: r.FloatParam}
			},
			defaults: fullVolume,
		},
		&ruleDecoder{
			kind:  KindEffect,
			rules: []Rule{NameEquals(NameEffect)},
			decode: func(r ir.Record) Payload {
				return Effect{Prefab: r.Object, Offset: quant.FIToVec3(r.FloatParam, r.IntParam)}
			},
		},
		&ruleDecoder{
			kind:  KindCameraShake,
			rules: []Rule{NameEquals(NameCameraShake)},
			decode: func(r ir.Record) Payload {
				return CameraShake{Strength: r.FloatParam, Direction: quant.DecodeTriplet(r.IntParam)}
			},
			defaults: func(r *ir.Record) {
				r.FloatParam = 0.5
				r.IntParam = quant.EncodeTriplet(quant.Vec3{Y: 1})
			},
		},
		&ruleDecoder{
			kind:  KindHitBegin,
			rules: []Rule{NameAndStringParamEquals(NameHit, HitBeginParam)},
			decode: func(r ir.Record) Payload {
				return Hit{Phase: HitBegin, Box: r.IntParam, Scale: r.FloatParam}
			},
			defaults: func(r *ir.Record) { r.FloatParam = 1 },
		},
		&ruleDecoder{
			kind:  KindHitEnd,
			rules: []Rule{NameAndStringParamEquals(NameHit, HitEndParam)},
			decode: func(r ir.Record) Payload {
				return Hit{Phase: HitEnd, Box: r.IntParam}
			},
		},
		&ruleDecoder{
			kind:  KindExpression,
			rules: []Rule{NameEquals(NameExpression)},
			decode: func(r ir.Record) Payload {
				return Expression{Name: r.StringParam, BlendSeconds: r.FloatParam}
			},
			defaults: func(r *ir.Record) { r.FloatParam = 0.1 },
		},
	}
}

// unrecognizedDecoder is the catch-all. It has no rules, so it has no
// default record.
func unrecognizedDecoder() Decoder {
	return &ruleDecoder{
		kind: KindUnrecognized,
		decode: func(r ir.Record) Payload {
			return Unrecognized{Record: r}
		},
	}
}

// EffectRecord builds a SpawnEffect record with offset packed into the
// float and int parameters.
func EffectRecord(time float32, prefab ir.ObjectRef, offset quant.Vec3) ir.Record {
	mag, packed := quant.Vec3ToFI(offset)
	return ir.Record{Time: time, Name: NameEffect, FloatParam: mag, IntParam: packed, Object: prefab}
}

// CameraShakeRecord builds a CameraShake record with direction packed into
// the int parameter.
func CameraShakeRecord(time, strength float32, direction quant.Vec3) ir.Record {
	return ir.Record{Time: time, Name: NameCameraShake, FloatParam: strength, IntParam: quant.EncodeTriplet(direction)}
}
