package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/pkg/api"
)

var _ ClientAPI = (*Client)(nil)

// Client представляет HTTP клиент для взаимодействия с сервером документов
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент; token передается как Bearer
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) error {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, &resp); err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	return nil
}

// GetProject загружает определение проекта
func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	path := "/api/v1/projects/" + url.PathEscape(projectID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &project); err != nil {
		return nil, fmt.Errorf("get project request failed: %w", err)
	}
	return &project, nil
}

// GetFeature загружает feature по ID
func (c *Client) GetFeature(ctx context.Context, projectID, featureID string) (*models.Feature, error) {
	var doc api.Feature
	path := fmt.Sprintf("/api/v1/projects/%s/features/%s", url.PathEscape(projectID), url.PathEscape(featureID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &doc); err != nil {
		return nil, fmt.Errorf("get feature request failed: %w", err)
	}
	return doc.ToModel(), nil
}

// GetObservation загружает observation по ID
func (c *Client) GetObservation(ctx context.Context, projectID, observationID string) (*models.Observation, error) {
	var doc api.Observation
	path := fmt.Sprintf("/api/v1/projects/%s/observations/%s", url.PathEscape(projectID), url.PathEscape(observationID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &doc); err != nil {
		return nil, fmt.Errorf("get observation request failed: %w", err)
	}
	return doc.ToModel(), nil
}

// GetChanges возвращает документы проекта, измененные после since
func (c *Client) GetChanges(ctx context.Context, projectID string, since int64) (*ChangeSet, error) {
	var resp api.ChangesResponse
	path := fmt.Sprintf("/api/v1/projects/%s/changes?since=%s", url.PathEscape(projectID), strconv.FormatInt(since, 10))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get changes request failed: %w", err)
	}

	changes := &ChangeSet{ServerTimestamp: resp.ServerTimestamp}
	for _, f := range resp.Features {
		changes.Features = append(changes.Features, f.ToModel())
	}
	for _, o := range resp.Observations {
		changes.Observations = append(changes.Observations, o.ToModel())
	}
	return changes, nil
}

// PushMutations применяет мутации на сервере и возвращает server timestamp
func (c *Client) PushMutations(ctx context.Context, projectID string, author models.User, mutations []models.Mutation) (int64, error) {
	req := api.PushRequest{User: author, Mutations: make([]api.Mutation, 0, len(mutations))}
	for _, m := range mutations {
		req.Mutations = append(req.Mutations, api.MutationFromModel(m))
	}

	var resp api.PushResponse
	path := fmt.Sprintf("/api/v1/projects/%s/mutations", url.PathEscape(projectID))
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return 0, fmt.Errorf("push mutations request failed: %w", err)
	}
	return resp.ServerTimestamp, nil
}

// doRequest выполняет HTTP запрос.
// Сетевые ошибки оборачиваются в ErrTransient, неуспешные ответы в *StatusError
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("request failed: %w", err)
		}
		return fmt.Errorf("%w: request failed: %w", ErrTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %w", ErrTransient, err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Code: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			statusErr.Message = errResp.Message
			if statusErr.Message == "" {
				statusErr.Message = errResp.Error
			}
		} else {
			statusErr.Message = string(respBody)
		}
		return statusErr
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", ErrRemoteRejection, err)
		}
	}

	return nil
}
