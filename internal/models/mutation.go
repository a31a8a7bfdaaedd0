package models

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

// MutationType тип изменения сущности
type MutationType int

const (
	MutationTypeUnknown MutationType = iota
	MutationTypeCreate
	MutationTypeUpdate
	MutationTypeDelete
)

func (t MutationType) String() string {
	switch t {
	case MutationTypeCreate:
		return "CREATE"
	case MutationTypeUpdate:
		return "UPDATE"
	case MutationTypeDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// ParseMutationType parses the String form of a mutation type.
func ParseMutationType(s string) (MutationType, error) {
	switch s {
	case "CREATE":
		return MutationTypeCreate, nil
	case "UPDATE":
		return MutationTypeUpdate, nil
	case "DELETE":
		return MutationTypeDelete, nil
	default:
		return MutationTypeUnknown, fmt.Errorf("unknown mutation type %q", s)
	}
}

// SyncStatus статус доставки изменения на сервер
type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "pending"     // ожидает отправки
	SyncStatusInProgress SyncStatus = "in_progress" // отправляется
	SyncStatusFailed     SyncStatus = "failed"      // сервер отклонил изменение
)

// MutationBase holds the attributes shared by every mutation kind.
type MutationBase struct {
	ID              string       // ID уникальный идентификатор изменения (UUID)
	ProjectID       string       // ProjectID проект, к которому относится сущность
	FeatureID       string       // FeatureID feature (или владелец observation)
	LayerID         string       // LayerID слой feature
	UserID          string       // UserID автор изменения
	LastError       string       // LastError последняя ошибка доставки
	SyncStatus      SyncStatus   // SyncStatus статус доставки
	Type            MutationType // Type CREATE, UPDATE или DELETE
	ClientTimestamp int64        // ClientTimestamp Lamport timestamp клиента
	RetryCount      int64        // RetryCount количество неудачных попыток
	Seq             int64        // Seq порядковый номер в очереди, назначается хранилищем
}

// Mutation is a pending change to exactly one feature or observation.
// The set of implementations is closed: *FeatureMutation and *ObservationMutation.
type Mutation interface {
	// Base returns the shared attributes; modifications are visible to the mutation.
	Base() *MutationBase
	// EntityID returns the id of the feature or observation being changed.
	EntityID() string
	// Clone returns a deep copy.
	Clone() Mutation

	isMutation()
}

// FeatureMutation creates, moves or deletes a feature.
type FeatureMutation struct {
	Geometry orb.Geometry // Geometry новая геометрия (nil для DELETE)
	MutationBase
}

func (m *FeatureMutation) Base() *MutationBase { return &m.MutationBase }
func (m *FeatureMutation) EntityID() string    { return m.FeatureID }
func (m *FeatureMutation) isMutation()         {}

func (m *FeatureMutation) Clone() Mutation {
	clone := *m
	if m.Geometry != nil {
		clone.Geometry = orb.Clone(m.Geometry)
	}
	return &clone
}

func (m *FeatureMutation) String() string {
	return fmt.Sprintf("FeatureMutation{%s %s feature=%s ts=%d}", m.ID, m.Type, m.FeatureID, m.ClientTimestamp)
}

// ObservationMutation creates, edits or deletes an observation.
type ObservationMutation struct {
	ObservationID  string
	FormID         string
	ResponseDeltas []ResponseDelta
	MutationBase
}

func (m *ObservationMutation) Base() *MutationBase { return &m.MutationBase }
func (m *ObservationMutation) EntityID() string    { return m.ObservationID }
func (m *ObservationMutation) isMutation()         {}

func (m *ObservationMutation) Clone() Mutation {
	clone := *m
	clone.ResponseDeltas = make([]ResponseDelta, len(m.ResponseDeltas))
	for i, delta := range m.ResponseDeltas {
		clone.ResponseDeltas[i] = delta.Clone()
	}
	return &clone
}

func (m *ObservationMutation) String() string {
	return fmt.Sprintf("ObservationMutation{%s %s observation=%s ts=%d}", m.ID, m.Type, m.ObservationID, m.ClientTimestamp)
}

// SortMutations orders mutations by client timestamp, then by queue sequence.
func SortMutations(mutations []Mutation) {
	sort.SliceStable(mutations, func(i, j int) bool {
		a, b := mutations[i].Base(), mutations[j].Base()
		if a.ClientTimestamp != b.ClientTimestamp {
			return a.ClientTimestamp < b.ClientTimestamp
		}
		return a.Seq < b.Seq
	})
}

// FeatureMutations returns the feature mutations of the list, keeping order.
func FeatureMutations(mutations []Mutation) []*FeatureMutation {
	var result []*FeatureMutation
	for _, m := range mutations {
		if fm, ok := m.(*FeatureMutation); ok {
			result = append(result, fm)
		}
	}
	return result
}

// ObservationMutations returns the observation mutations of the list, keeping order.
func ObservationMutations(mutations []Mutation) []*ObservationMutation {
	var result []*ObservationMutation
	for _, m := range mutations {
		if om, ok := m.(*ObservationMutation); ok {
			result = append(result, om)
		}
	}
	return result
}

// CloneMutations deep-copies a list of mutations.
func CloneMutations(mutations []Mutation) []Mutation {
	result := make([]Mutation, len(mutations))
	for i, m := range mutations {
		result[i] = m.Clone()
	}
	return result
}
