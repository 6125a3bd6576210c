package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/animevent/internal/decoder"
	"github.com/roach88/animevent/internal/trackfile"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	Kind string
	Time float32
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Print the default record for a kind",
		Long: `Print the raw record a new event of the given kind starts from, as a
track document event.

Example:
  animevent new --kind camera_shake --time 0.5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "event kind (see 'animevent kinds')")
	cmd.Flags().Float32Var(&opts.Time, "time", 0, "event time in seconds")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func runNew(opts *NewOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	registry := opts.registry(opts.logger(cmd))

	rec, err := registry.MakeDefault(decoder.Kind(opts.Kind), opts.Time)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, decoder.ErrUnknownKind) {
			code = ErrCodeUnknownKind
		}
		return f.Fail(ExitCommandError, code, fmt.Sprintf("no default record for %q", opts.Kind), err)
	}

	doc := trackfile.EventDocOf(rec)
	return f.Emit(doc, func(w io.Writer) {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		_ = enc.Encode(doc)
		_ = enc.Close()
	})
}
