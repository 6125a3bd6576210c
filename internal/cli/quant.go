package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/animevent/internal/quant"
)

// VectorView is a decoded vector.
type VectorView struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// PackedView is an encoded vector. Magnitude is only set by the
// axis-dominant codec.
type PackedView struct {
	Magnitude *float32 `json:"magnitude,omitempty"`
	Packed    int32    `json:"packed"`
}

// NewQuantCommand creates the quant command group.
func NewQuantCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quant",
		Short: "Encode and decode packed vectors",
		Long: `Encode and decode the vector packings stored in event parameters.

  vec3     axis-dominant codec: a (magnitude, packed int) pair
  triplet  signed-triplet codec: a unit direction in one packed int`,
	}

	vec3 := &cobra.Command{Use: "vec3", Short: "Axis-dominant (magnitude, packed) codec"}
	vec3.AddCommand(newVec3EncodeCommand(rootOpts), newVec3DecodeCommand(rootOpts))

	triplet := &cobra.Command{Use: "triplet", Short: "Signed-triplet direction codec"}
	triplet.AddCommand(newTripletEncodeCommand(rootOpts), newTripletDecodeCommand(rootOpts))

	cmd.AddCommand(vec3, triplet)
	return cmd
}

func vectorFlags(cmd *cobra.Command, v *quant.Vec3) {
	cmd.Flags().Float32Var(&v.X, "x", 0, "x component")
	cmd.Flags().Float32Var(&v.Y, "y", 0, "y component")
	cmd.Flags().Float32Var(&v.Z, "z", 0, "z component")
}

func emitVector(rootOpts *RootOptions, cmd *cobra.Command, v quant.Vec3) error {
	view := VectorView{X: v.X, Y: v.Y, Z: v.Z}
	return rootOpts.formatter(cmd).Emit(view, func(w io.Writer) {
		fmt.Fprintf(w, "x=%g y=%g z=%g\n", view.X, view.Y, view.Z)
	})
}

func newVec3EncodeCommand(rootOpts *RootOptions) *cobra.Command {
	var v quant.Vec3
	cmd := &cobra.Command{
		Use:           "encode",
		Short:         "Encode a vector as (magnitude, packed)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mag, packed := quant.Vec3ToFI(v)
			view := PackedView{Magnitude: &mag, Packed: packed}
			return rootOpts.formatter(cmd).Emit(view, func(w io.Writer) {
				fmt.Fprintf(w, "magnitude=%g packed=%d (0x%08x)\n", mag, packed, uint32(packed))
			})
		},
	}
	vectorFlags(cmd, &v)
	return cmd
}

func newVec3DecodeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		magnitude float32
		packed    int32
	)
	cmd := &cobra.Command{
		Use:           "decode",
		Short:         "Decode a (magnitude, packed) pair",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emitVector(rootOpts, cmd, quant.FIToVec3(magnitude, packed))
		},
	}
	cmd.Flags().Float32Var(&magnitude, "magnitude", 0, "float parameter")
	cmd.Flags().Int32Var(&packed, "packed", 0, "int parameter")
	return cmd
}

func newTripletEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	var v quant.Vec3
	cmd := &cobra.Command{
		Use:           "encode",
		Short:         "Encode a direction as a packed int",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			packed := quant.EncodeTriplet(v)
			return rootOpts.formatter(cmd).Emit(PackedView{Packed: packed}, func(w io.Writer) {
				fmt.Fprintf(w, "packed=%d (0x%08x)\n", packed, uint32(packed))
			})
		},
	}
	vectorFlags(cmd, &v)
	return cmd
}

func newTripletDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	var packed int32
	cmd := &cobra.Command{
		Use:           "decode",
		Short:         "Decode a packed direction",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emitVector(rootOpts, cmd, quant.DecodeTriplet(packed))
		},
	}
	cmd.Flags().Int32Var(&packed, "packed", 0, "int parameter")
	return cmd
}
