package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/server/storage"
	"github.com/iudanet/ground/internal/validation"
	"github.com/iudanet/ground/pkg/api"
)

// maxPushBody ограничивает размер тела запроса с мутациями
const maxPushBody = 8 << 20

//go:generate moq -out documents_mock.go . DocumentStore

// DocumentStore определяет интерфейс хранилища документов для handlers
type DocumentStore interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetFeature(ctx context.Context, projectID, id string) (*models.Feature, error)
	GetObservation(ctx context.Context, projectID, id string) (*models.Observation, error)
	GetChanges(ctx context.Context, projectID string, since int64) (*storage.Changes, error)
	ApplyMutations(ctx context.Context, projectID string, author models.User, mutations []models.Mutation) (*storage.PushResult, error)
}

// DocumentHandler serves projects, documents, change feeds and mutation pushes.
type DocumentHandler struct {
	logger *slog.Logger
	store  DocumentStore
}

// NewDocumentHandler создает новый handler документов
func NewDocumentHandler(logger *slog.Logger, store DocumentStore) *DocumentHandler {
	return &DocumentHandler{
		logger: logger,
		store:  store,
	}
}

// GetProject обрабатывает GET /api/v1/projects/{project}
func (h *DocumentHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.pathID(w, r, "project")
	if !ok {
		return
	}

	project, err := h.store.GetProject(r.Context(), projectID)
	if err != nil {
		h.sendStorageError(w, r, err)
		return
	}
	SendJSON(w, h.logger, project, http.StatusOK)
}

// GetFeature обрабатывает GET /api/v1/projects/{project}/features/{id}
func (h *DocumentHandler) GetFeature(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.pathID(w, r, "project")
	if !ok {
		return
	}
	featureID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	feature, err := h.store.GetFeature(r.Context(), projectID, featureID)
	if err != nil {
		h.sendStorageError(w, r, err)
		return
	}
	SendJSON(w, h.logger, api.FeatureFromModel(feature), http.StatusOK)
}

// GetObservation обрабатывает GET /api/v1/projects/{project}/observations/{id}
func (h *DocumentHandler) GetObservation(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.pathID(w, r, "project")
	if !ok {
		return
	}
	observationID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	observation, err := h.store.GetObservation(r.Context(), projectID, observationID)
	if err != nil {
		h.sendStorageError(w, r, err)
		return
	}
	SendJSON(w, h.logger, api.ObservationFromModel(observation), http.StatusOK)
}

// GetChanges обрабатывает GET /api/v1/projects/{project}/changes?since=timestamp
// Возвращает документы, измененные после since, включая удаленные
func (h *DocumentHandler) GetChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, ok := h.pathID(w, r, "project")
	if !ok {
		return
	}

	var since int64
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		var err error
		since, err = strconv.ParseInt(sinceStr, 10, 64)
		if err != nil || since < 0 {
			h.logger.WarnContext(ctx, "Invalid since parameter", "since", sinceStr)
			SendError(w, h.logger, "since must be a non-negative integer", http.StatusBadRequest)
			return
		}
	}

	changes, err := h.store.GetChanges(ctx, projectID, since)
	if err != nil {
		h.sendStorageError(w, r, err)
		return
	}

	resp := api.ChangesResponse{
		Features:        make([]api.Feature, 0, len(changes.Features)),
		Observations:    make([]api.Observation, 0, len(changes.Observations)),
		ServerTimestamp: changes.ServerTimestamp,
	}
	for _, f := range changes.Features {
		resp.Features = append(resp.Features, api.FeatureFromModel(f))
	}
	for _, o := range changes.Observations {
		resp.Observations = append(resp.Observations, api.ObservationFromModel(o))
	}

	h.logger.DebugContext(ctx, "Changes served",
		"project_id", projectID,
		"since", since,
		"features", len(resp.Features),
		"observations", len(resp.Observations))
	SendJSON(w, h.logger, resp, http.StatusOK)
}

// PushMutations обрабатывает POST /api/v1/projects/{project}/mutations
// Пакет применяется целиком или не применяется вовсе
func (h *DocumentHandler) PushMutations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, ok := h.pathID(w, r, "project")
	if !ok {
		return
	}

	caller, ok := UserFromContext(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "User not found in context")
		SendError(w, h.logger, "authentication required", http.StatusUnauthorized)
		return
	}

	var req api.PushRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPushBody)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode push request", "error", err)
		SendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateID("user", req.User.ID); err != nil {
		SendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Mutations) == 0 {
		SendError(w, h.logger, "batch has no mutations", http.StatusBadRequest)
		return
	}

	mutations := make([]models.Mutation, 0, len(req.Mutations))
	for _, doc := range req.Mutations {
		m, err := doc.ToModel()
		if err != nil {
			SendError(w, h.logger, "mutation "+doc.ID+": "+err.Error(), http.StatusBadRequest)
			return
		}
		mutations = append(mutations, m)
	}

	if caller.ID != req.User.ID {
		// устройство выгружает очередь всех своих пользователей одним токеном
		h.logger.InfoContext(ctx, "Batch pushed on behalf of another user",
			"caller_id", caller.ID, "author_id", req.User.ID)
	}

	result, err := h.store.ApplyMutations(ctx, projectID, req.User, mutations)
	if err != nil {
		h.sendStorageError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "Mutations applied",
		"project_id", projectID,
		"author_id", req.User.ID,
		"received", len(mutations),
		"duplicates", result.Duplicates,
		"server_timestamp", result.ServerTimestamp)
	SendJSON(w, h.logger, api.PushResponse{Applied: result.Applied, ServerTimestamp: result.ServerTimestamp}, http.StatusOK)
}

func (h *DocumentHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if err := validation.ValidateID(name, id); err != nil {
		SendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return id, true
}

// sendStorageError переводит ошибки хранилища в HTTP статусы.
// 409 и 422 клиент считает отказом, 5xx временной ошибкой
func (h *DocumentHandler) sendStorageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		SendError(w, h.logger, err.Error(), http.StatusNotFound)
	case errors.Is(err, storage.ErrConflict):
		h.logger.WarnContext(r.Context(), "Mutation rejected", "error", err)
		SendError(w, h.logger, err.Error(), http.StatusConflict)
	case errors.Is(err, storage.ErrInvalidMutation):
		h.logger.WarnContext(r.Context(), "Invalid mutation", "error", err)
		SendError(w, h.logger, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.ErrorContext(r.Context(), "Storage failure", "path", r.URL.Path, "error", err)
		SendError(w, h.logger, "internal server error", http.StatusInternalServerError)
	}
}
