// Package decoder classifies raw animation event records into typed events.
//
// ARCHITECTURE:
//
// Every typed-event kind has one Decoder. A Decoder declares Identification
// Rules (name, or name plus string parameter), decodes a matching record into
// a Payload, and can produce a default record for a new instance of its kind.
//
// The Registry aggregates decoders in registration order and indexes them by
// rule name. Classification of one record:
//  1. Look up candidate decoders by the record's name.
//  2. No candidates: the catch-all "unrecognized" kind, which keeps the
//     record verbatim and exposes every field.
//  3. One candidate: decode with it directly; a name-only index hit is
//     trusted without re-checking its rules.
//  4. Several candidates: the first, in registration order, whose rules
//     match wins; if none match, "unrecognized".
//
// Events are a closed set of kinds. Kind-specific data lives on the Payload,
// a sealed interface implemented only by the payload types in this package.
// Display name, category and exposed fields are looked up from the kind.
//
// Each decoded Event gets a fresh identifier from the registry's
// IDGenerator. Identifiers are opaque and never derived from content; the
// watch package transplants them across decode passes.
package decoder
