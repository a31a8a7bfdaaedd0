package models

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeature_Clone(t *testing.T) {
	original := &Feature{
		ID:       "f1",
		Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		State:    EntityStateDefault,
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	// Изменение копии не должно затрагивать оригинал
	clone.Geometry.(orb.Polygon)[0][1] = orb.Point{5, 5}
	assert.Equal(t, orb.Point{1, 0}, original.Geometry.(orb.Polygon)[0][1])
}

func TestObservation_Clone(t *testing.T) {
	original := &Observation{
		ID: "o1",
		Responses: ResponseMap{
			"species": MultipleChoiceResponse("oak", "pine"),
		},
	}

	clone := original.Clone()
	clone.Responses["species"].OptionIDs[0] = "birch"
	clone.Responses["height"] = NumberResponse(12)

	assert.Equal(t, []string{"oak", "pine"}, original.Responses["species"].OptionIDs)
	assert.NotContains(t, original.Responses, "height")
}

func TestResponseMap_Apply(t *testing.T) {
	text := TextResponse("new")
	base := ResponseMap{
		"a": TextResponse("old"),
		"b": NumberResponse(1),
	}

	result := base.Apply([]ResponseDelta{
		{FieldID: "a", NewResponse: &text},
		{FieldID: "b", NewResponse: nil},
	})

	assert.Equal(t, ResponseMap{"a": TextResponse("new")}, result)
	assert.Len(t, base, 2, "source map must stay untouched")
}

func TestDownloadState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from DownloadState
		to   DownloadState
		want bool
	}{
		{name: "pending to in progress", from: DownloadStatePending, to: DownloadStateInProgress, want: true},
		{name: "in progress to downloaded", from: DownloadStateInProgress, to: DownloadStateDownloaded, want: true},
		{name: "in progress to failed", from: DownloadStateInProgress, to: DownloadStateFailed, want: true},
		{name: "failed to pending (retry)", from: DownloadStateFailed, to: DownloadStatePending, want: true},
		{name: "downloaded to pending", from: DownloadStateDownloaded, to: DownloadStatePending, want: false},
		{name: "downloaded to failed", from: DownloadStateDownloaded, to: DownloadStateFailed, want: false},
		{name: "failed to downloaded", from: DownloadStateFailed, to: DownloadStateDownloaded, want: false},
		{name: "in progress back to pending", from: DownloadStateInProgress, to: DownloadStatePending, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBounds_Intersects(t *testing.T) {
	area := Bounds{South: 0, West: 0, North: 10, East: 10}

	assert.True(t, area.Intersects(Bounds{South: 5, West: 5, North: 15, East: 15}))
	assert.True(t, area.Intersects(Bounds{South: 10, West: 10, North: 20, East: 20}), "touching corners intersect")
	assert.False(t, area.Intersects(Bounds{South: 11, West: 11, North: 20, East: 20}))
	assert.Equal(t, orb.Point{5, 5}, area.Center())
}

func TestSortMutations(t *testing.T) {
	m1 := &FeatureMutation{MutationBase: MutationBase{ID: "m1", ClientTimestamp: 2, Seq: 1}}
	m2 := &ObservationMutation{MutationBase: MutationBase{ID: "m2", ClientTimestamp: 1, Seq: 2}}
	m3 := &FeatureMutation{MutationBase: MutationBase{ID: "m3", ClientTimestamp: 2, Seq: 0}}

	mutations := []Mutation{m1, m2, m3}
	SortMutations(mutations)

	ids := make([]string, 0, len(mutations))
	for _, m := range mutations {
		ids = append(ids, m.Base().ID)
	}
	assert.Equal(t, []string{"m2", "m3", "m1"}, ids)
	assert.Len(t, FeatureMutations(mutations), 2)
	assert.Len(t, ObservationMutations(mutations), 1)
}

func TestParseMutationType(t *testing.T) {
	for _, mt := range []MutationType{MutationTypeCreate, MutationTypeUpdate, MutationTypeDelete} {
		parsed, err := ParseMutationType(mt.String())
		require.NoError(t, err)
		assert.Equal(t, mt, parsed)
	}

	_, err := ParseMutationType("MOVE")
	assert.Error(t, err)
}
