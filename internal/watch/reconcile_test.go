package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/animevent/internal/decoder"
	"github.com/roach88/animevent/internal/ir"
)

func ev(id string, time float32, name string) decoder.Event {
	return decoder.Event{ID: id, Kind: decoder.KindUnrecognized, Record: ir.Record{Time: time, Name: name}}
}

func TestReconcile_TransplantsMatchingIdentifiers(t *testing.T) {
	old := []decoder.Event{ev("a", 0, "x"), ev("b", 1, "y")}
	fresh := []decoder.Event{ev("n1", 1, "y"), ev("n2", 0, "x"), ev("n3", 2, "z")}

	added := reconcile(discardLogger(), "t", old, fresh, nil)

	assert.Equal(t, []string{"a", "b", "n3"}, ids(fresh))
	assert.Equal(t, NewIDSet("n3"), added)
}

func TestReconcile_ModifiedClaimedOnce(t *testing.T) {
	old := []decoder.Event{ev("a", 0, "x"), ev("b", 1, "y")}
	modified := old[1]
	fresh := []decoder.Event{ev("n1", 0, "x2"), ev("n2", 1, "y2"), ev("n3", 2, "z")}

	added := reconcile(discardLogger(), "t", old, fresh, &modified)

	// x2 matches nothing and takes b's identifier first
	assert.Equal(t, []string{"b", "n2", "n3"}, ids(fresh))
	assert.Equal(t, NewIDSet("n2", "n3"), added)
}

func TestReconcile_ModifiedMissingFromCache(t *testing.T) {
	old := []decoder.Event{ev("a", 0, "x")}
	stale := ev("gone", 5, "w")
	fresh := []decoder.Event{ev("n1", 0, "x"), ev("n2", 1, "y")}

	added := reconcile(discardLogger(), "t", old, fresh, &stale)

	assert.Equal(t, []string{"a", "gone"}, ids(fresh))
	assert.Empty(t, added)
}

func TestReconcile_ModifiedIsNotMatchedByContent(t *testing.T) {
	old := []decoder.Event{ev("a", 0, "x"), ev("b", 0, "x")}
	modified := old[0]
	// the replacement left the record unchanged
	fresh := []decoder.Event{ev("n1", 0, "x"), ev("n2", 0, "x")}

	added := reconcile(discardLogger(), "t", old, fresh, &modified)

	assert.Equal(t, []string{"b", "a"}, ids(fresh))
	assert.Empty(t, added)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	added := reconcile(discardLogger(), "t", nil, nil, nil)
	assert.NotNil(t, added)
	assert.Empty(t, added)
}

func TestReconcile_StableSortForEqualTimes(t *testing.T) {
	fresh := []decoder.Event{ev("n1", 1, "b"), ev("n2", 0, "a"), ev("n3", 1, "c")}

	reconcile(discardLogger(), "t", nil, fresh, nil)

	assert.Equal(t, []string{"n2", "n1", "n3"}, ids(fresh))
}

func TestIDSet_MarshalJSONSorted(t *testing.T) {
	b, err := NewIDSet("b", "a").MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(b))
}

func TestTrackError_Is(t *testing.T) {
	err := notWatched("t")
	assert.ErrorIs(t, err, ErrNotWatched)
	assert.Equal(t, "NOT_WATCHED: track t", err.Error())
	assert.False(t, IsWriteError(err))
}
