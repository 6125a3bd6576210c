// Package watch keeps a per-track cache of decoded events in sync with a
// track source.
//
// # State
//
// For every watched track the Watcher stores the fingerprint of the records
// it last saw and the events decoded from them, sorted by time. Nothing is
// cached for a track until Watch is called.
//
// # Change detection
//
// Poll recomputes each watched track's fingerprint. A mismatch is an
// external edit: the track is re-decoded, every identifier is regenerated,
// and listeners receive a Change with External set. An unchanged
// fingerprint does no work, so Poll is safe to call every frame.
//
// # Mutation and identity
//
// AddRecord, ReplaceRecord and DeleteRecord write the new record set to the
// source, re-decode the whole track once, and run reconcile against the
// previous cache. Events whose backing record is field-wise equal to a
// cached event keep that event's identifier; duplicates are matched one to
// one in cache order. A replaced event hands its identifier to the first
// unmatched new event. Every other new event keeps the identifier it was
// given at decode time and is reported in Change.Added.
//
// # Concurrency
//
// All methods are safe for concurrent use. Operations are serialized by a
// single mutex and listeners run after it is released, so a listener may
// call back into the Watcher.
package watch
