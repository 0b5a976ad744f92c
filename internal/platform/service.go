package platform

import (
	"bytes"
	"context"
	"dataset-exporter/pkg/models"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	apiPrefix          = "/public/api/v3"
	apiKeyHeader       = "x-api-key"
	defaultPageSize    = 500
	defaultHTTPTimeout = 60 * time.Second
)

// Service is a client for the platform's public REST API.
// Every method is a blocking call; nothing is retried.
type Service struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	pageSize   int
	logger     zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.httpClient.Timeout = timeout
		}
	}
}

// WithPageSize sets the page size used by list methods
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger.With().Str("component", "platform").Logger()
	}
}

// NewService creates a platform client for the given credentials
func NewService(creds models.Credentials, opts ...Option) *Service {
	s := &Service{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    strings.TrimRight(creds.ServerAddress, "/") + apiPrefix,
		apiToken:   creds.APIToken,
		pageSize:   defaultPageSize,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProjectInfo retrieves a project by id
func (s *Service) GetProjectInfo(ctx context.Context, projectID int) (*models.Project, error) {
	var project models.Project
	if err := s.post(ctx, "projects.info", idRequest{ID: projectID}, &project); err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", projectID, err)
	}
	return &project, nil
}

// GetProjectMeta retrieves the project meta document
func (s *Service) GetProjectMeta(ctx context.Context, projectID int) (models.ProjectMeta, error) {
	var meta json.RawMessage
	if err := s.post(ctx, "projects.meta", idRequest{ID: projectID}, &meta); err != nil {
		return nil, fmt.Errorf("failed to get meta of project %d: %w", projectID, err)
	}
	return meta, nil
}

// ListDatasets lists every dataset of a project
func (s *Service) ListDatasets(ctx context.Context, projectID int) ([]*models.Dataset, error) {
	datasets, err := listAllPages[models.Dataset](ctx, s, "datasets.list", func(page int) any {
		return listDatasetsRequest{ProjectID: projectID, Page: page, PerPage: s.pageSize}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets of project %d: %w", projectID, err)
	}
	return datasets, nil
}

// GetDatasetInfo retrieves a dataset by id
func (s *Service) GetDatasetInfo(ctx context.Context, datasetID int) (*models.Dataset, error) {
	var dataset models.Dataset
	if err := s.post(ctx, "datasets.info", idRequest{ID: datasetID}, &dataset); err != nil {
		return nil, fmt.Errorf("failed to get dataset %d: %w", datasetID, err)
	}
	return &dataset, nil
}

// ListImages lists every image of a dataset, ordered by id
func (s *Service) ListImages(ctx context.Context, datasetID int) ([]*models.ImageInfo, error) {
	images, err := listAllPages[models.ImageInfo](ctx, s, "images.list", func(page int) any {
		return listImagesRequest{
			DatasetID: datasetID,
			Page:      page,
			PerPage:   s.pageSize,
			Sort:      "id",
			SortOrder: "asc",
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images of dataset %d: %w", datasetID, err)
	}
	return images, nil
}

// DownloadAnnotationBatch fetches the annotations of several images in one call
func (s *Service) DownloadAnnotationBatch(ctx context.Context, datasetID int, imageIDs []int) ([]*models.AnnotationInfo, error) {
	var anns []*models.AnnotationInfo
	req := annotationBatchRequest{DatasetID: datasetID, ImageIDs: imageIDs}
	if err := s.post(ctx, "annotations.bulk.info", req, &anns); err != nil {
		return nil, fmt.Errorf("failed to download annotations for dataset %d: %w", datasetID, err)
	}
	return anns, nil
}

// GetImageStream opens the original image bytes. The caller closes the stream.
func (s *Service) GetImageStream(ctx context.Context, imageID int) (io.ReadCloser, error) {
	resp, err := s.do(ctx, "images.download", idRequest{ID: imageID})
	if err != nil {
		return nil, fmt.Errorf("failed to download image %d: %w", imageID, err)
	}
	return resp.Body, nil
}

// GetCurrentUser returns the account owning the API token
func (s *Service) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.post(ctx, "users.me", struct{}{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// post calls an API method and decodes the JSON response into out
func (s *Service) post(ctx context.Context, method string, body any, out any) error {
	resp, err := s.do(ctx, method, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

// do sends the request and returns the response when the status is 200
func (s *Service) do(ctx context.Context, method string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, s.apiToken)
	req.Header.Set("Content-Type", "application/json")

	s.logger.Debug().Str("method", method).RawJSON("body", payload).Msg("api request")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, s.handleAPIError(method, resp)
	}

	return resp, nil
}

// handleAPIError turns a non-200 response into an *APIError
func (s *Service) handleAPIError(method string, resp *http.Response) error {
	apiErr := &APIError{Method: method, StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Message = errResp.Error
	if len(errResp.Details) > 0 {
		apiErr.Details = string(errResp.Details)
	}
	return apiErr
}
