// Package ir provides the raw animation event record types shared by every
// other package.
//
// This package contains the record model, the track fingerprint, and the
// canonical JSON encoder used for snapshots. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Records are values. A record changes only by whole-record replacement.
//   - Record equality compares floats by bit pattern, so a NaN parameter
//     still equals itself and -0 differs from +0.
//   - An object reference is identified by its ID alone; ID 0 means absent.
//   - The fingerprint is order-sensitive and must stay a pure function of
//     the record sequence.
package ir
