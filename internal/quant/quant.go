// Package quant packs 3D vectors into the integer and float parameters of
// an animation event record.
//
// Two lossy schemes are provided:
//
//   - The signed-triplet codec stores a direction as three signed 7-bit
//     fields (shifts 0, 7, 14) scaled to the range ±63.
//   - The axis-dominant codec stores a vector as a (magnitude, packed) pair.
//     The packed int holds a 2-bit axis selector in bits 0-1 and two signed
//     15-bit components (range ±16383) for the remaining axes: the second
//     component in bits 2-16 and the first in bits 17-31, which is the same
//     as ((first << 15) | (second & 0x7FFF)) << 2 | axis.
//
// Both layouts are read from previously authored tracks, so the shift, mask
// and scale constants below must never change.
package quant

import (
	"math"

	"github.com/roach88/animevent/internal/bits"
)

// Signed-triplet layout.
const (
	tripletBits  = 7
	tripletLimit = 63
	tripletScale = float32(1.0 / tripletLimit)
)

var tripletShifts = [3]int{0, 7, 14}

// Axis-dominant layout.
const (
	axisBits       = 2
	axisShift      = 0
	componentBits  = 15
	componentLimit = 16383
	firstShift     = 17
	secondShift    = 2
)

// quantize rounds c to the nearest integer in [-limit, limit].
// NaN becomes 0 and infinities collapse onto the limit with their sign kept,
// so degenerate input always produces a finite encoding.
func quantize(c float32, limit int32) int32 {
	f := float64(c)
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return limit
	case math.IsInf(f, -1):
		return -limit
	}
	r := math.Round(f)
	if r > float64(limit) {
		return limit
	}
	if r < -float64(limit) {
		return -limit
	}
	return int32(r)
}

// EncodeTriplet normalizes v and packs it into three signed 7-bit fields.
func EncodeTriplet(v Vec3) int32 {
	n := v.Normalized()
	var packed int32
	for i, shift := range tripletShifts {
		c := quantize(n.Axis(i)/tripletScale, tripletLimit)
		packed = bits.Combine(packed, c, tripletBits, shift)
	}
	return packed
}

// DecodeTriplet unpacks a direction written by EncodeTriplet. The result is
// only approximately unit length.
func DecodeTriplet(packed int32) Vec3 {
	var c [3]float32
	for i, shift := range tripletShifts {
		c[i] = float32(bits.GetSigned(packed, tripletBits, shift)) * tripletScale
	}
	return Vec3{c[0], c[1], c[2]}
}

// dominantAxis returns the index of the component with the largest absolute
// value. Ties resolve to the lower index.
func dominantAxis(v Vec3) int {
	axis := 0
	best := math.Abs(float64(v.X))
	if ay := math.Abs(float64(v.Y)); ay > best {
		axis, best = 1, ay
	}
	if az := math.Abs(float64(v.Z)); az > best {
		axis = 2
	}
	return axis
}

// Vec3ToFI encodes v as (magnitude, packed). The magnitude is the signed
// value of the dominant axis; the packed components are the other two axes
// divided by it.
func Vec3ToFI(v Vec3) (float32, int32) {
	axis := dominantAxis(v)
	dom := v.Axis(axis)

	var first, second float32
	switch axis {
	case 0:
		first, second = v.Y, v.Z
	case 1:
		first, second = v.X, v.Z
	default:
		first, second = v.X, v.Y
	}

	a := quantize(first/dom*componentLimit, componentLimit)
	b := quantize(second/dom*componentLimit, componentLimit)

	packed := bits.Combine(0, int32(axis), axisBits, axisShift)
	packed = bits.Combine(packed, b, componentBits, secondShift)
	packed = bits.Combine(packed, a, componentBits, firstShift)
	return dom, packed
}

// FIToVec3 decodes a (magnitude, packed) pair written by Vec3ToFI. An axis
// selector of 3 never comes out of the encoder and is read as Z.
func FIToVec3(magnitude float32, packed int32) Vec3 {
	a := float32(bits.GetSigned(packed, componentBits, firstShift)) / componentLimit
	b := float32(bits.GetSigned(packed, componentBits, secondShift)) / componentLimit

	var v Vec3
	switch bits.Get(packed, axisBits, axisShift) {
	case 0:
		v = Vec3{1, a, b}
	case 1:
		v = Vec3{a, 1, b}
	default:
		v = Vec3{a, b, 1}
	}
	return v.Scale(magnitude)
}
