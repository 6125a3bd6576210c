package watch

import (
	"errors"
	"fmt"
)

// ErrNotWatched is matched by errors.Is for every operation attempted on a
// track that is not being watched.
var ErrNotWatched = errors.New("track is not watched")

// ErrorCode categorizes watcher errors.
type ErrorCode string

const (
	// ErrCodeNotWatched indicates the track has no cache entry.
	ErrCodeNotWatched ErrorCode = "NOT_WATCHED"

	// ErrCodeLoad indicates the source failed to return the track.
	ErrCodeLoad ErrorCode = "LOAD_FAILED"

	// ErrCodeWrite indicates the source rejected the new record set.
	ErrCodeWrite ErrorCode = "WRITE_FAILED"
)

// TrackError is returned by Watcher operations. It carries the track ID
// and, for source failures, the underlying error.
type TrackError struct {
	Code    ErrorCode
	TrackID string
	Err     error
}

func (e *TrackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: track %s: %v", e.Code, e.TrackID, e.Err)
	}
	return fmt.Sprintf("%s: track %s", e.Code, e.TrackID)
}

func (e *TrackError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNotWatched) true for not-watched errors.
func (e *TrackError) Is(target error) bool {
	return target == ErrNotWatched && e.Code == ErrCodeNotWatched
}

func notWatched(id string) *TrackError {
	return &TrackError{Code: ErrCodeNotWatched, TrackID: id}
}

// IsLoadError reports whether err came from the source failing to load a
// track. Uses errors.As to handle wrapped errors.
func IsLoadError(err error) bool {
	var te *TrackError
	if errors.As(err, &te) {
		return te.Code == ErrCodeLoad
	}
	return false
}

// IsWriteError reports whether err came from the source failing to store
// records.
func IsWriteError(err error) bool {
	var te *TrackError
	if errors.As(err, &te) {
		return te.Code == ErrCodeWrite
	}
	return false
}
