// Package harness runs watcher scenarios as executable contract tests.
//
// A scenario seeds one track into an in-memory SQLite store, watches it,
// and then applies a list of steps. Each step does exactly one thing and
// may capture identifiers or check expectations against the cache.
//
// # Scenario Format
//
//	name: add_then_delete
//	description: "Deleting an added event keeps the others' identities"
//	track:
//	  duration: 1
//	  events:
//	    - {time: 0, name: FootstepL, float: 0.5}
//	steps:
//	  - poll: true
//	    capture: {left: 0}
//	  - add: {time: 0.5, name: PlaySound, float: 1}
//	    expect:
//	      count: 2
//	      added: 1
//	      kinds: [footstep_left, sound]
//	      ids: {0: left}
//	      changed: true
//
// # Step Types
//
//   - add: append a record through the watcher
//   - replace: replace the cached event at index with record
//   - delete: delete the cached event at index
//   - external: write records straight to the store, or remove the track
//   - poll: poll for external changes
//
// # Deterministic Testing
//
// Event identifiers come from a counting generator ("evt-1", "evt-2", ...)
// and the store is fresh for every run, so traces are identical across
// runs and can be compared against golden files with RunWithGolden.
package harness
