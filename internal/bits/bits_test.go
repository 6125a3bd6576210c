package bits

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestGet_ExtractsUnsignedField(t *testing.T) {
	value := int32(0x0000_3A50) // 0011 1010 0101 0000

	assert.Equal(t, int32(0x5), Get(value, 4, 4))
	assert.Equal(t, int32(0xA), Get(value, 4, 8))
	assert.Equal(t, int32(0x3), Get(value, 4, 12))
	assert.Equal(t, int32(0), Get(value, 4, 0))
}

func TestGet_TopBitOfNegativeValue(t *testing.T) {
	assert.Equal(t, int32(1), Get(-1, 1, 31))
	assert.Equal(t, int32(0x7F), Get(-1, 7, 25))
}

func TestGetSigned_SignExtends(t *testing.T) {
	testCases := []struct {
		name  string
		value int32
		bits  int
		shift int
		want  int32
	}{
		{"positive 7-bit", 0x3F, 7, 0, 63},
		{"negative 7-bit", 0x41, 7, 0, -63},
		{"minus one 7-bit", 0x7F, 7, 0, -1},
		{"shifted negative", 0x7F << 7, 7, 7, -1},
		{"15-bit max", 0x3FFF << 2, 15, 2, 16383},
		{"15-bit min", math.MinInt32, 15, 17, -16384},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetSigned(tc.value, tc.bits, tc.shift))
		})
	}
}

func TestGetSigned_ZeroWidth(t *testing.T) {
	assert.Equal(t, int32(0), GetSigned(-1, 0, 0))
	assert.Equal(t, int32(0), GetSigned(-1, 32, 0))
}

func TestCombine_ReplacesOnlyTheSlot(t *testing.T) {
	value := int32(-1)

	got := Combine(value, 0, 4, 8)

	assert.Equal(t, int32(0), Get(got, 4, 8))
	assert.Equal(t, int32(0xFF), Get(got, 8, 0))
	assert.Equal(t, int32(0xFFFFF), Get(got, 20, 12))
}

func TestCombine_TruncatesOverflowingField(t *testing.T) {
	got := Combine(0, 0x1FF, 4, 0)
	assert.Equal(t, int32(0xF), got)
}

func TestCombine_ShiftWrapsModulo32(t *testing.T) {
	assert.Equal(t, Combine(0, 5, 3, 4), Combine(0, 5, 3, 36))
	assert.Equal(t, Get(0x50, 4, 4), Get(0x50, 4, 36))
}

func TestCombine_NegativeFieldRoundTripsSigned(t *testing.T) {
	got := Combine(0, -42, 7, 14)
	assert.Equal(t, int32(-42), GetSigned(got, 7, 14))
}

func TestCombine_RoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("get(combine(v, f)) == f mod 2^bits", prop.ForAll(
		func(value, field int32, width, shift int) bool {
			// a slot running past bit 31 is truncated by contract
			if width+shift > 32 {
				return true
			}
			got := Get(Combine(value, field, width, shift), width, shift)
			return uint32(got) == uint32(field)&mask(width)
		},
		gen.Int32(),
		gen.Int32(),
		gen.IntRange(1, 31),
		gen.IntRange(0, 31),
	))

	properties.Property("bits outside the slot are preserved", prop.ForAll(
		func(value, field int32, width, shift int) bool {
			slot := mask(width) << uint(shift)
			got := Combine(value, field, width, shift)
			return uint32(got)&^slot == uint32(value)&^slot
		},
		gen.Int32(),
		gen.Int32(),
		gen.IntRange(1, 31),
		gen.IntRange(0, 31),
	))

	properties.Property("signed fields round trip within range", prop.ForAll(
		func(value, raw int32, width, shift int) bool {
			if width+shift > 32 {
				return true
			}
			limit := int32(1) << uint(width-1)
			field := raw % limit // in (-limit, limit)
			got := GetSigned(Combine(value, field, width, shift), width, shift)
			return got == field
		},
		gen.Int32(),
		gen.Int32(),
		gen.IntRange(1, 31),
		gen.IntRange(0, 31),
	))

	properties.TestingRun(t)
}
