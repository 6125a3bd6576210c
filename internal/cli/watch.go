package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/animevent/internal/trackfile"
	"github.com/roach88/animevent/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Dir      string
	Interval time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory of track documents",
		Long: `Watch every track document in a directory and print a change
notification whenever one is edited or removed. The directory is polled on
an interval and re-checked as soon as a file system event settles. Track
documents created while watching are picked up on the next file event.

Runs until interrupted.

Example:
  animevent watch --dir ./tracks
  animevent watch --dir ./tracks --interval 2s --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "track directory (default from config)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "poll interval (default from config)")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	cfg := opts.config()
	f := opts.formatter(cmd)
	logger := opts.logger(cmd)

	dir := opts.Dir
	if dir == "" {
		dir = cfg.Tracks.Dir
	}
	interval := opts.Interval
	if interval == 0 {
		interval = cfg.Tracks.PollInterval
	}

	tracks := trackfile.NewDir(dir)
	ids, err := tracks.IDs()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("cannot read track directory %s", dir), err)
	}

	w := watch.New(tracks, opts.registry(logger), watch.WithLogger(logger))
	w.Subscribe(func(c watch.Change) {
		view := changeView(c)
		logger.Debug("change notification", "track", c.TrackID, "added", len(c.Added), "external", c.External, "removed", c.Removed)
		_ = f.Emit(view, func(out io.Writer) {
			fmt.Fprintln(out, view)
		})
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchNew(ctx, tracks, w, logger, ids)

	notifier, err := trackfile.NewNotifier(dir,
		trackfile.WithDebounce(cfg.Tracks.Debounce),
		trackfile.WithNotifierLogger(logger),
	)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to watch directory", err)
	}
	defer notifier.Close()

	logger.Info("watching tracks", "dir", dir, "tracks", len(w.Watched()), "interval", interval)
	err = w.Run(ctx, interval, rescanOnKick(ctx, tracks, w, logger, notifier.Kicks()))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchNew starts watching every ID not already watched. Documents that
// fail to load are logged and skipped.
func watchNew(ctx context.Context, tracks *trackfile.Dir, w *watch.Watcher, logger *slog.Logger, ids []string) {
	for _, id := range ids {
		if w.IsWatched(id) {
			continue
		}
		if err := w.Watch(ctx, id); err != nil {
			logger.Warn("cannot watch track", "track", id, "dir", tracks.Root(), "error", err)
			continue
		}
		logger.Debug("watching track", "track", id)
	}
}

// rescanOnKick forwards kicks after watching any track documents that
// appeared since the last scan. The returned channel closes when kicks
// does or ctx is done.
func rescanOnKick(ctx context.Context, tracks *trackfile.Dir, w *watch.Watcher, logger *slog.Logger, kicks <-chan struct{}) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-kicks:
				if !ok {
					return
				}
				ids, err := tracks.IDs()
				if err != nil {
					logger.Warn("rescan failed", "dir", tracks.Root(), "error", err)
				} else {
					watchNew(ctx, tracks, w, logger, ids)
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
