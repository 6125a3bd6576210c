// Package trackfile reads and writes track documents on disk.
//
// A track document is YAML (.yaml, .yml) or CUE (.cue):
//
//	id: walk
//	duration: 1.2
//	events:
//	  - time: 0
//	    name: 左足接地
//	    float: 0.5
//	  - time: 0.6
//	    name: PlaySound
//	    float: 1
//	    object: {id: 12, path: se/step}
//	    options: dont_require_receiver
//
// Every document is checked against the #Track definition in schema.cue
// before it is converted to an ir.Track. YAML decoding is strict: unknown
// fields are errors.
//
// Dir serves a directory of documents as a watch.Source, and Notifier
// turns file-system events in that directory into poll kicks for
// watch.Watcher.Run. CUE documents are read-only.
package trackfile
