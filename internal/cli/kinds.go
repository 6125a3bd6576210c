package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/animevent/internal/decoder"
	"github.com/roach88/animevent/internal/trackfile"
)

// KindView describes one registered decoder.
type KindView struct {
	Kind        string              `json:"kind"`
	DisplayName string              `json:"display_name"`
	Category    string              `json:"category"`
	Rules       []string            `json:"rules"`
	Exposed     []string            `json:"exposed"`
	Default     *trackfile.EventDoc `json:"default,omitempty"`
}

// NewKindsCommand creates the kinds command.
func NewKindsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the typed-event kinds",
		Long: `List every registered decoder in registration order, with the rules
that identify its records, the raw fields it treats as meaningful, and the
default record a new event of that kind starts from.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := rootOpts.registry(rootOpts.logger(cmd))
			views := kindViews(registry)
			return rootOpts.formatter(cmd).Emit(views, func(w io.Writer) {
				writeKinds(w, views)
			})
		},
	}
}

func kindViews(registry *decoder.Registry) []KindView {
	var views []KindView
	for _, kind := range registry.Kinds() {
		d, _ := registry.Decoder(kind)
		rules := make([]string, 0, len(d.Rules()))
		for _, r := range d.Rules() {
			rules = append(rules, r.String())
		}
		v := KindView{
			Kind:        string(kind),
			DisplayName: kind.DisplayName(),
			Category:    kind.Category().String(),
			Rules:       rules,
			Exposed:     kind.Exposed().Names(),
		}
		if rec, err := registry.MakeDefault(kind, 0); err == nil {
			doc := trackfile.EventDocOf(rec)
			v.Default = &doc
		}
		views = append(views, v)
	}
	return views
}

func writeKinds(w io.Writer, views []KindView) {
	for _, v := range views {
		fmt.Fprintf(w, "%-16s %-16s %-9s %s\n", v.Kind, v.DisplayName, v.Category, strings.Join(v.Rules, " | "))
	}
}
