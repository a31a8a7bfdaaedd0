package mutation

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/internal/models"
)

func TestMergeObservation_NoPendingAdoptsRemote(t *testing.T) {
	remote := &models.Observation{
		ID:           "o1",
		State:        models.EntityStateDefault,
		Responses:    models.ResponseMap{"a": models.TextResponse("remote")},
		LastModified: models.NewAuditInfo(bob, 42),
	}

	merged := MergeObservation(remote, nil, alice)

	assert.Equal(t, remote, merged)
	assert.NotSame(t, remote, merged)
}

func TestMergeObservation_ReplaysPendingFieldByField(t *testing.T) {
	remote := &models.Observation{
		ID:    "o1",
		State: models.EntityStateDefault,
		Responses: models.ResponseMap{
			"a": models.TextResponse("remote-a"),
			"b": models.TextResponse("remote-b"),
			"c": models.TextResponse("remote-c"),
		},
		LastModified: models.NewAuditInfo(bob, 100),
	}
	pending := []*models.ObservationMutation{
		observationMutation(models.MutationTypeUpdate, 2, set("a", "local-a")),
		observationMutation(models.MutationTypeUpdate, 3, set("b", "local-b")),
	}

	merged := MergeObservation(remote, pending, alice)

	assert.Equal(t, models.ResponseMap{
		"a": models.TextResponse("local-a"),
		"b": models.TextResponse("local-b"),
		"c": models.TextResponse("remote-c"),
	}, merged.Responses)
	assert.Equal(t, alice, merged.LastModified.User)
	assert.Equal(t, int64(3), merged.LastModified.ClientTimestamp)
	assert.Equal(t, models.TextResponse("remote-a"), remote.Responses["a"], "remote snapshot must stay untouched")
}

func TestMergeObservation_LaterMutationWinsSameField(t *testing.T) {
	remote := &models.Observation{ID: "o1", State: models.EntityStateDefault, Responses: models.ResponseMap{}}
	// передаются в обратном порядке: merge обязан отсортировать по timestamp
	pending := []*models.ObservationMutation{
		observationMutation(models.MutationTypeUpdate, 8, set("a", "second")),
		observationMutation(models.MutationTypeUpdate, 4, set("a", "first")),
	}

	merged := MergeObservation(remote, pending, alice)

	assert.Equal(t, models.TextResponse("second"), merged.Responses["a"])
	assert.Equal(t, int64(8), merged.LastModified.ClientTimestamp)
}

func TestMergeObservation_DisjointFieldsProperty(t *testing.T) {
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d mutations", n), func(t *testing.T) {
			remote := &models.Observation{ID: "o1", State: models.EntityStateDefault, Responses: models.ResponseMap{}}
			expected := models.ResponseMap{}
			for i := 0; i < 8; i++ {
				field := fmt.Sprintf("f%d", i)
				remote.Responses[field] = models.TextResponse("remote")
				expected[field] = models.TextResponse("remote")
			}

			var pending []*models.ObservationMutation
			for i := 0; i < n; i++ {
				field := fmt.Sprintf("f%d", i)
				value := fmt.Sprintf("m%d", i)
				pending = append(pending, observationMutation(models.MutationTypeUpdate, int64(i+1), set(field, value)))
				expected[field] = models.TextResponse(value)
			}

			merged := MergeObservation(remote, pending, alice)

			assert.Equal(t, expected, merged.Responses)
			assert.Equal(t, int64(n), merged.LastModified.ClientTimestamp)
			assert.Equal(t, alice, merged.LastModified.User)
		})
	}
}

func TestMergeObservation_PendingDelete(t *testing.T) {
	remote := &models.Observation{ID: "o1", State: models.EntityStateDefault, Responses: models.ResponseMap{}}

	merged := MergeObservation(remote, []*models.ObservationMutation{observationMutation(models.MutationTypeDelete, 5)}, alice)

	assert.True(t, merged.IsDeleted())
}

func TestMergeFeature(t *testing.T) {
	remote := &models.Feature{
		ID:           "f1",
		Geometry:     orb.Point{0, 0},
		State:        models.EntityStateDefault,
		LastModified: models.NewAuditInfo(bob, 50),
	}

	t.Run("no pending", func(t *testing.T) {
		merged := MergeFeature(remote, nil, alice)
		assert.Equal(t, remote, merged)
	})

	t.Run("last geometry wins", func(t *testing.T) {
		pending := []*models.FeatureMutation{
			featureMutation(models.MutationTypeUpdate, 7, orb.Point{7, 7}),
			featureMutation(models.MutationTypeUpdate, 3, orb.Point{3, 3}),
		}

		merged := MergeFeature(remote, pending, alice)

		require.NotNil(t, merged.Geometry)
		assert.Equal(t, orb.Point{7, 7}, merged.Geometry)
		assert.Equal(t, int64(7), merged.LastModified.ClientTimestamp)
		assert.Equal(t, alice, merged.LastModified.User)
		assert.Equal(t, orb.Point{0, 0}, remote.Geometry)
	})

	t.Run("pending delete", func(t *testing.T) {
		merged := MergeFeature(remote, []*models.FeatureMutation{featureMutation(models.MutationTypeDelete, 9, nil)}, alice)
		assert.True(t, merged.IsDeleted())
		assert.Equal(t, orb.Point{0, 0}, merged.Geometry)
	})
}

func TestLastAuthorID(t *testing.T) {
	first := observationMutation(models.MutationTypeUpdate, 1)
	second := observationMutation(models.MutationTypeUpdate, 2)
	second.UserID = bob.ID

	assert.Equal(t, bob.ID, LastAuthorID([]*models.ObservationMutation{second, first}))
	assert.Equal(t, "", LastAuthorID([]*models.FeatureMutation{}))
}
