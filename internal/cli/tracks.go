package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/animevent/internal/decoder"
	"github.com/roach88/animevent/internal/ir"
	"github.com/roach88/animevent/internal/store"
	"github.com/roach88/animevent/internal/trackfile"
	"github.com/roach88/animevent/internal/watch"
)

// TrackOptions holds flags shared by the store-backed commands.
type TrackOptions struct {
	*RootOptions
	Database string
	Track    string
}

func (o *TrackOptions) registerDB(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite database (default from config)")
}

func (o *TrackOptions) registerTrack(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVar(&o.Track, "track", "", "track ID")
	if required {
		_ = cmd.MarkFlagRequired("track")
	}
}

func (o *TrackOptions) openStore(cmd *cobra.Command, f *OutputFormatter) (*store.Store, error) {
	path := o.Database
	if path == "" {
		path = o.config().Store.Path
	}
	st, err := store.Open(path, store.WithLogger(o.logger(cmd)))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, "failed to open database", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// session is one watched track backed by the store.
type session struct {
	watcher *watch.Watcher
	track   string
}

func (o *TrackOptions) watchTrack(ctx context.Context, cmd *cobra.Command, f *OutputFormatter, st *store.Store) (*session, error) {
	logger := o.logger(cmd)
	w := watch.New(st, o.registry(logger), watch.WithLogger(logger))
	if err := w.Watch(ctx, o.Track); err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, ir.ErrTrackNotFound) {
			code = ErrCodeNotFound
		}
		return nil, f.Fail(ExitCommandError, code, fmt.Sprintf("failed to watch track %s", o.Track), err)
	}
	return &session{watcher: w, track: o.Track}, nil
}

func (s *session) events() []decoder.Event {
	events, _ := s.watcher.Events(s.track)
	return events
}

func (s *session) eventAt(f *OutputFormatter, index int) (decoder.Event, error) {
	events := s.events()
	if index < 0 || index >= len(events) {
		return decoder.Event{}, f.Fail(ExitCommandError, ErrCodeBadIndex,
			fmt.Sprintf("index %d out of range: track %s has %d events", index, s.track, len(events)), nil)
	}
	return events[index], nil
}

// ImportResult is the output of the import command.
type ImportResult struct {
	Tracks []store.TrackInfo `json:"tracks"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TrackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <track-file>...",
		Short: "Store track documents in the database",
		Long: `Validate YAML or CUE track documents and store them in the SQLite
database, replacing any stored track with the same ID.

Example:
  animevent import --db ./tracks.db tracks/walk.yaml tracks/attack.cue`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			st, err := opts.openStore(cmd, f)
			if err != nil {
				return err
			}
			defer closeStore(st)

			ctx := cmd.Context()
			for _, path := range args {
				track, err := loadTrackFile(f, path)
				if err != nil {
					return err
				}
				if err := st.PutTrack(ctx, track); err != nil {
					return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to store %s", path), err)
				}
				f.VerboseLog("imported %s as %s (%d records)", path, track.ID, len(track.Records))
			}

			infos, err := st.ListTracks(ctx)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to list tracks", err)
			}
			result := ImportResult{Tracks: infos}
			return f.Emit(result, func(w io.Writer) {
				fmt.Fprintf(w, "imported %d file(s)\n", len(args))
				writeTrackInfos(w, infos)
			})
		},
	}

	opts.registerDB(cmd)
	return cmd
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	TrackOptions
	Name string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{TrackOptions: TrackOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tracks, or the typed events of one track",
		Long: `Without --track, list every stored track. With --track, watch that
track and print its cached typed events in time order; the printed indexes
are what replace and delete take.

Example:
  animevent list --db ./tracks.db
  animevent list --db ./tracks.db --track walk
  animevent list --db ./tracks.db --name PlaySound`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	opts.registerDB(cmd)
	opts.registerTrack(cmd, false)
	cmd.Flags().StringVar(&opts.Name, "name", "", "count stored records with this name across all tracks")
	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	st, err := opts.openStore(cmd, f)
	if err != nil {
		return err
	}
	defer closeStore(st)
	ctx := cmd.Context()

	switch {
	case opts.Name != "":
		n, err := st.CountByName(ctx, opts.Name)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to count records", err)
		}
		return f.Emit(map[string]any{"name": opts.Name, "records": n}, func(w io.Writer) {
			fmt.Fprintf(w, "%d record(s) named %q\n", n, opts.Name)
		})

	case opts.Track != "":
		s, err := opts.watchTrack(ctx, cmd, f, st)
		if err != nil {
			return err
		}
		views := eventViews(s.events())
		return f.Emit(views, func(w io.Writer) {
			writeEvents(w, views)
		})

	default:
		infos, err := st.ListTracks(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to list tracks", err)
		}
		return f.Emit(infos, func(w io.Writer) {
			writeTrackInfos(w, infos)
		})
	}
}

func writeTrackInfos(w io.Writer, infos []store.TrackInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "(no tracks)")
		return
	}
	for _, t := range infos {
		fmt.Fprintf(w, "%-24s %8.3fs %4d records  rev %-4d %s\n", t.ID, t.Duration, t.Records, t.Revision, t.Fingerprint)
	}
}

// recordFlags describe a raw record on the command line, either from a
// kind's default or from scratch.
type recordFlags struct {
	Kind       string
	Time       float32
	Name       string
	Float      float32
	Int        int32
	String     string
	ObjectID   int64
	ObjectPath string
	Options    string
}

func (r *recordFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&r.Kind, "kind", "", "start from this kind's default record")
	fs.Float32Var(&r.Time, "time", 0, "event time in seconds")
	fs.StringVar(&r.Name, "name", "", "record name")
	fs.Float32Var(&r.Float, "float", 0, "float parameter")
	fs.Int32Var(&r.Int, "int", 0, "int parameter")
	fs.StringVar(&r.String, "string", "", "string parameter")
	fs.Int64Var(&r.ObjectID, "object-id", 0, "object reference ID")
	fs.StringVar(&r.ObjectPath, "object-path", "", "object reference path")
	fs.StringVar(&r.Options, "options", "", "require_receiver | dont_require_receiver")
}

// build returns the described record. base supplies every field whose
// flag was not set when --kind is not given.
func (r *recordFlags) build(cmd *cobra.Command, registry *decoder.Registry, base ir.Record) (ir.Record, error) {
	changed := cmd.Flags().Changed
	rec := base
	if r.Kind != "" {
		at := base.Time
		if changed("time") {
			at = r.Time
		}
		def, err := registry.MakeDefault(decoder.Kind(r.Kind), at)
		if err != nil {
			return ir.Record{}, err
		}
		rec = def
	}

	if changed("time") {
		rec.Time = r.Time
	}
	if changed("name") {
		rec.Name = r.Name
	}
	if changed("float") {
		rec.FloatParam = r.Float
	}
	if changed("int") {
		rec.IntParam = r.Int
	}
	if changed("string") {
		rec.StringParam = r.String
	}
	if changed("object-id") {
		rec.Object.ID = r.ObjectID
	}
	if changed("object-path") {
		rec.Object.Path = r.ObjectPath
	}
	if changed("options") {
		o, err := ir.ParseMessageOptions(r.Options)
		if err != nil {
			return ir.Record{}, err
		}
		rec.Options = o
	}

	if rec.Name == "" {
		return ir.Record{}, errors.New("record needs --kind or --name")
	}
	// Reuse the document schema so flags obey the same limits as files.
	doc := trackfile.Document{Duration: rec.Time, Events: []trackfile.EventDoc{trackfile.EventDocOf(rec)}}
	if err := trackfile.Validate(doc); err != nil {
		return ir.Record{}, err
	}
	return rec, nil
}

// MutationResult is the output of add, replace and delete.
type MutationResult struct {
	Change ChangeView  `json:"change"`
	Events []EventView `json:"events"`
}

func emitMutation(f *OutputFormatter, s *session, change watch.Change) error {
	if change.IsZero() {
		return f.Emit(map[string]any{"change": nil}, func(w io.Writer) {
			fmt.Fprintln(w, "no change")
		})
	}
	result := MutationResult{Change: changeView(change), Events: eventViews(s.events())}
	return f.Emit(result, func(w io.Writer) {
		fmt.Fprintln(w, result.Change)
		writeEvents(w, result.Events)
	})
}

func mutationError(f *OutputFormatter, track string, err error) error {
	code := ErrCodeGeneric
	switch {
	case watch.IsWriteError(err):
		code = ErrCodeWriteFailed
	case watch.IsLoadError(err):
		code = ErrCodeLoadFailed
	}
	return f.Fail(ExitCommandError, code, fmt.Sprintf("failed to update track %s", track), err)
}

// MutateOptions holds flags for add, replace and delete.
type MutateOptions struct {
	TrackOptions
	Index  int
	Record recordFlags
}

func newMutateCommand(rootOpts *RootOptions, use, short, long string, withIndex, withRecord bool,
	run func(opts *MutateOptions, cmd *cobra.Command, f *OutputFormatter, s *session) error) *cobra.Command {
	opts := &MutateOptions{TrackOptions: TrackOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			st, err := opts.openStore(cmd, f)
			if err != nil {
				return err
			}
			defer closeStore(st)

			s, err := opts.watchTrack(cmd.Context(), cmd, f, st)
			if err != nil {
				return err
			}
			return run(opts, cmd, f, s)
		},
	}

	opts.registerDB(cmd)
	opts.registerTrack(cmd, true)
	if withIndex {
		cmd.Flags().IntVar(&opts.Index, "index", 0, "index of the cached event (see 'animevent list --track')")
		_ = cmd.MarkFlagRequired("index")
	}
	if withRecord {
		opts.Record.register(cmd)
	}
	return cmd
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return newMutateCommand(rootOpts,
		"add",
		"Add an event to a stored track",
		`Append a record to a stored track and print the change notification.

Example:
  animevent add --db ./tracks.db --track walk --kind sound --time 0.3
  animevent add --db ./tracks.db --track walk --name Custom --time 0.8 --int 4`,
		false, true,
		func(opts *MutateOptions, cmd *cobra.Command, f *OutputFormatter, s *session) error {
			rec, err := opts.Record.build(cmd, opts.registry(opts.logger(cmd)), ir.Record{})
			if err != nil {
				return recordError(f, err)
			}
			change, err := s.watcher.AddRecord(cmd.Context(), s.track, rec)
			if err != nil {
				return mutationError(f, s.track, err)
			}
			return emitMutation(f, s, change)
		})
}

// NewReplaceCommand creates the replace command.
func NewReplaceCommand(rootOpts *RootOptions) *cobra.Command {
	return newMutateCommand(rootOpts,
		"replace",
		"Replace an event of a stored track",
		`Replace the record behind the cached event at --index. Unset record flags
keep the current values; --kind starts from that kind's default instead.
The replacement keeps the event's identifier.

Example:
  animevent replace --db ./tracks.db --track walk --index 1 --float 0.25
  animevent replace --db ./tracks.db --track walk --index 0 --kind footstep_right`,
		true, true,
		func(opts *MutateOptions, cmd *cobra.Command, f *OutputFormatter, s *session) error {
			target, err := s.eventAt(f, opts.Index)
			if err != nil {
				return err
			}
			rec, err := opts.Record.build(cmd, opts.registry(opts.logger(cmd)), target.Record)
			if err != nil {
				return recordError(f, err)
			}
			change, err := s.watcher.ReplaceRecord(cmd.Context(), s.track, target, rec)
			if err != nil {
				return mutationError(f, s.track, err)
			}
			return emitMutation(f, s, change)
		})
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return newMutateCommand(rootOpts,
		"delete",
		"Delete an event from a stored track",
		`Delete the record behind the cached event at --index.

Example:
  animevent delete --db ./tracks.db --track walk --index 2`,
		true, false,
		func(opts *MutateOptions, cmd *cobra.Command, f *OutputFormatter, s *session) error {
			target, err := s.eventAt(f, opts.Index)
			if err != nil {
				return err
			}
			change, err := s.watcher.DeleteRecord(cmd.Context(), s.track, target)
			if err != nil {
				return mutationError(f, s.track, err)
			}
			return emitMutation(f, s, change)
		})
}

func recordError(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	if errors.Is(err, decoder.ErrUnknownKind) {
		code = ErrCodeUnknownKind
	}
	return f.Fail(ExitCommandError, code, "invalid record", err)
}
