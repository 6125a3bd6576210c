package trackfile

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a directory must be quiet before a kick.
const DefaultDebounce = 100 * time.Millisecond

// Notifier watches a directory and emits a kick once track documents stop
// changing for the debounce interval. Bursts of writes (an editor saving
// through a temp file, say) coalesce into one kick.
type Notifier struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	kicks chan struct{}
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithDebounce sets the quiet interval. Default: DefaultDebounce.
func WithDebounce(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		n.debounce = d
	}
}

// WithNotifierLogger sets the logger. Default: slog.Default().
func WithNotifierLogger(l *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		n.logger = l
	}
}

// NewNotifier starts watching dir.
func NewNotifier(dir string, opts ...NotifierOption) (*Notifier, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	n := &Notifier{
		fs:       fsw,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		kicks:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}

	n.wg.Add(1)
	go n.loop()
	return n, nil
}

// Kicks delivers one value per settled burst of changes. The channel is
// closed by Close.
func (n *Notifier) Kicks() <-chan struct{} {
	return n.kicks
}

// Close stops watching. It is safe to call more than once.
func (n *Notifier) Close() error {
	var err error
	n.once.Do(func() {
		close(n.done)
		n.wg.Wait()
		close(n.kicks)
		err = n.fs.Close()
	})
	return err
}

func (n *Notifier) loop() {
	defer n.wg.Done()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-n.done:
			return

		case ev, ok := <-n.fs.Events:
			if !ok {
				return
			}
			if !IsTrackFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			n.logger.Debug("track file event", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(n.debounce)
			} else {
				timer.Reset(n.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			// buffer of 1 coalesces kicks the consumer has not read yet
			select {
			case n.kicks <- struct{}{}:
			default:
			}

		case err, ok := <-n.fs.Errors:
			if !ok {
				return
			}
			n.logger.Warn("file watch error", "error", err)
		}
	}
}
