package models

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// EntityState is the soft-delete state of a feature or observation.
type EntityState int

const (
	EntityStateUnknown EntityState = iota
	EntityStateDefault
	EntityStateDeleted
)

func (s EntityState) String() string {
	switch s {
	case EntityStateDefault:
		return "default"
	case EntityStateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// AuditInfo records who changed an entity and when (Lamport client timestamp).
type AuditInfo struct {
	User            User  `json:"user"`
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp,omitempty"` // 0 пока изменение не подтверждено сервером
}

// NewAuditInfo returns audit info for a change made locally by user at clientTimestamp.
func NewAuditInfo(user User, clientTimestamp int64) AuditInfo {
	return AuditInfo{User: user, ClientTimestamp: clientTimestamp}
}

// Feature is a mapped object (point or polygon) belonging to a layer.
type Feature struct {
	Geometry     orb.Geometry
	Created      AuditInfo
	LastModified AuditInfo
	ID           string
	ProjectID    string
	LayerID      string
	CustomID     string
	Caption      string
	State        EntityState
}

// Clone создает глубокую копию feature (copy-on-read)
func (f *Feature) Clone() *Feature {
	clone := *f
	if f.Geometry != nil {
		clone.Geometry = orb.Clone(f.Geometry)
	}
	return &clone
}

// IsDeleted reports whether the feature is marked for deletion.
func (f *Feature) IsDeleted() bool {
	return f.State == EntityStateDeleted
}

// Observation is a set of form responses collected for a feature.
type Observation struct {
	Responses    ResponseMap
	Created      AuditInfo
	LastModified AuditInfo
	ID           string
	ProjectID    string
	FeatureID    string
	LayerID      string
	FormID       string
	State        EntityState
}

// Clone создает глубокую копию observation (copy-on-read)
func (o *Observation) Clone() *Observation {
	clone := *o
	clone.Responses = o.Responses.Clone()
	return &clone
}

// IsDeleted reports whether the observation is marked for deletion.
func (o *Observation) IsDeleted() bool {
	return o.State == EntityStateDeleted
}

// ResponseType тип ответа на поле формы
type ResponseType string

const (
	ResponseTypeText           ResponseType = "text"
	ResponseTypeNumber         ResponseType = "number"
	ResponseTypeMultipleChoice ResponseType = "multiple_choice"
)

// Response is the value entered for one form field.
type Response struct {
	Type      ResponseType `json:"type"`
	Text      string       `json:"text,omitempty"`
	OptionIDs []string     `json:"option_ids,omitempty"`
	Number    float64      `json:"number,omitempty"`
}

// TextResponse returns a text response.
func TextResponse(text string) Response {
	return Response{Type: ResponseTypeText, Text: text}
}

// NumberResponse returns a numeric response.
func NumberResponse(n float64) Response {
	return Response{Type: ResponseTypeNumber, Number: n}
}

// MultipleChoiceResponse returns a response selecting the given options.
func MultipleChoiceResponse(optionIDs ...string) Response {
	return Response{Type: ResponseTypeMultipleChoice, OptionIDs: append([]string(nil), optionIDs...)}
}

// Clone returns a copy that shares no memory with r.
func (r Response) Clone() Response {
	r.OptionIDs = append([]string(nil), r.OptionIDs...)
	return r
}

func (r Response) String() string {
	switch r.Type {
	case ResponseTypeNumber:
		return fmt.Sprintf("%g", r.Number)
	case ResponseTypeMultipleChoice:
		return strings.Join(r.OptionIDs, ",")
	default:
		return r.Text
	}
}

// ResponseMap maps field id to response.
type ResponseMap map[string]Response

// Clone returns a deep copy of the map. A nil map clones to an empty one.
func (m ResponseMap) Clone() ResponseMap {
	clone := make(ResponseMap, len(m))
	for fieldID, response := range m {
		clone[fieldID] = response.Clone()
	}
	return clone
}

// ResponseDelta is a change of a single field response. A nil NewResponse clears the field.
type ResponseDelta struct {
	NewResponse *Response `json:"new_response,omitempty"`
	FieldID     string    `json:"field_id"`
}

// Clone returns a copy that shares no memory with d.
func (d ResponseDelta) Clone() ResponseDelta {
	if d.NewResponse != nil {
		r := d.NewResponse.Clone()
		d.NewResponse = &r
	}
	return d
}

// Apply returns a copy of m with the deltas applied in order.
func (m ResponseMap) Apply(deltas []ResponseDelta) ResponseMap {
	result := m.Clone()
	for _, delta := range deltas {
		if delta.NewResponse == nil {
			delete(result, delta.FieldID)
			continue
		}
		result[delta.FieldID] = delta.NewResponse.Clone()
	}
	return result
}
