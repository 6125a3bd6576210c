package testutil

import "github.com/roach88/animevent/internal/ir"

// Rec builds a record with only a time and a name.
func Rec(time float32, name string) ir.Record {
	return ir.Record{Time: time, Name: name}
}

// RecF builds a record with a time, a name and a float parameter.
func RecF(time float32, name string, f float32) ir.Record {
	return ir.Record{Time: time, Name: name, FloatParam: f}
}

// NewTrack builds a track with the given records and a duration of one
// second past the last record, or one second when empty.
func NewTrack(id string, records ...ir.Record) ir.Track {
	var duration float32 = 1
	for _, r := range records {
		if r.Time+1 > duration {
			duration = r.Time + 1
		}
	}
	return ir.Track{ID: id, Duration: duration, Records: records}
}
