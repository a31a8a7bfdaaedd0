package mutation

import (
	"github.com/paulmach/orb"

	"github.com/iudanet/ground/internal/models"
)

// MergeFeature reconciles a remote feature snapshot with the locally pending mutations
// of the same feature. The remote snapshot is the baseline; pending mutations are
// replayed oldest first and the last geometry wins. LastModified is set to lastAuthor
// and the timestamp of the last replayed mutation.
//
// Without pending mutations the remote snapshot is returned unchanged.
func MergeFeature(remote *models.Feature, pending []*models.FeatureMutation, lastAuthor models.User) *models.Feature {
	merged := remote.Clone()
	if len(pending) == 0 {
		return merged
	}

	ordered := sortedFeatureMutations(pending)
	for _, m := range ordered {
		switch m.Type {
		case models.MutationTypeCreate, models.MutationTypeUpdate:
			if m.Geometry != nil {
				merged.Geometry = orb.Clone(m.Geometry)
			}
		case models.MutationTypeDelete:
			merged.State = models.EntityStateDeleted
		}
	}

	last := ordered[len(ordered)-1]
	merged.LastModified = models.NewAuditInfo(lastAuthor, last.ClientTimestamp)
	return merged
}

// MergeObservation reconciles a remote observation snapshot with the locally pending
// mutations of the same observation. Each field ends up with the response of the
// mutation that touched it last; untouched fields keep the remote value.
//
// Without pending mutations the remote snapshot is returned unchanged.
func MergeObservation(remote *models.Observation, pending []*models.ObservationMutation, lastAuthor models.User) *models.Observation {
	merged := remote.Clone()
	if len(pending) == 0 {
		return merged
	}

	ordered := sortedObservationMutations(pending)
	for _, m := range ordered {
		switch m.Type {
		case models.MutationTypeCreate, models.MutationTypeUpdate:
			merged.Responses = merged.Responses.Apply(m.ResponseDeltas)
		case models.MutationTypeDelete:
			merged.State = models.EntityStateDeleted
		}
	}

	last := ordered[len(ordered)-1]
	merged.LastModified = models.NewAuditInfo(lastAuthor, last.ClientTimestamp)
	return merged
}

// LastAuthorID returns the user id of the mutation replayed last, or "" for an empty list.
func LastAuthorID[M models.Mutation](pending []M) string {
	if len(pending) == 0 {
		return ""
	}
	list := make([]models.Mutation, len(pending))
	for i, m := range pending {
		list[i] = m
	}
	models.SortMutations(list)
	return list[len(list)-1].Base().UserID
}

func sortedFeatureMutations(pending []*models.FeatureMutation) []*models.FeatureMutation {
	list := make([]models.Mutation, len(pending))
	for i, m := range pending {
		list[i] = m
	}
	models.SortMutations(list)
	return models.FeatureMutations(list)
}

func sortedObservationMutations(pending []*models.ObservationMutation) []*models.ObservationMutation {
	list := make([]models.Mutation, len(pending))
	for i, m := range pending {
		list[i] = m
	}
	models.SortMutations(list)
	return models.ObservationMutations(list)
}
