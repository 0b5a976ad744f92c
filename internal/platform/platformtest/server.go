// Package platformtest provides an in-memory platform API server for tests.
package platformtest

import (
	"dataset-exporter/pkg/models"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Server fakes the subset of the platform API used by the exporter
type Server struct {
	*httptest.Server

	APIToken string

	mu          sync.Mutex
	projects    map[int]*models.Project
	metas       map[int]json.RawMessage
	datasets    []*models.Dataset
	images      map[int][]*models.ImageInfo
	annotations map[int]json.RawMessage
	imageData   map[int][]byte

	batches    [][]int
	failMethod string
	failStatus int
}

// NewServer starts a fake platform that accepts the given token
func NewServer(apiToken string) *Server {
	s := &Server{
		APIToken:    apiToken,
		projects:    make(map[int]*models.Project),
		metas:       make(map[int]json.RawMessage),
		images:      make(map[int][]*models.ImageInfo),
		annotations: make(map[int]json.RawMessage),
		imageData:   make(map[int][]byte),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Credentials returns credentials pointing at the fake server
func (s *Server) Credentials() models.Credentials {
	return models.Credentials{ServerAddress: s.URL, APIToken: s.APIToken}
}

// AddProject registers a project and its meta document
func (s *Server) AddProject(project *models.Project, meta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = project
	s.metas[project.ID] = json.RawMessage(meta)
}

// AddDataset registers a dataset
func (s *Server) AddDataset(dataset *models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets = append(s.datasets, dataset)
}

// AddImage registers an image with its annotation payload and pixel data
func (s *Server) AddImage(image *models.ImageInfo, annotation string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[image.DatasetID] = append(s.images[image.DatasetID], image)
	s.annotations[image.ID] = json.RawMessage(annotation)
	s.imageData[image.ID] = data
}

// FailMethod makes the named API method answer with the given status
func (s *Server) FailMethod(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMethod = method
	s.failStatus = status
}

// AnnotationBatches returns the image ids of every annotations.bulk.info call
func (s *Server) AnnotationBatches() [][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]int(nil), s.batches...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if r.Header.Get("x-api-key") != s.APIToken {
		writeError(w, http.StatusUnauthorized, "invalid api token")
		return
	}

	method := strings.TrimPrefix(r.URL.Path, "/public/api/v3/")

	var body struct {
		ID        int   `json:"id"`
		ProjectID int   `json:"projectId"`
		DatasetID int   `json:"datasetId"`
		Page      int   `json:"page"`
		PerPage   int   `json:"per_page"`
		ImageIDs  []int `json:"imageIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failMethod == method {
		writeError(w, s.failStatus, "forced failure")
		return
	}

	switch method {
	case "users.me":
		writeJSON(w, models.User{ID: 1, Login: "exporter"})
	case "projects.info":
		project, ok := s.projects[body.ID]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("project %d not found", body.ID))
			return
		}
		writeJSON(w, project)
	case "projects.meta":
		meta, ok := s.metas[body.ID]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("project %d not found", body.ID))
			return
		}
		writeJSON(w, meta)
	case "datasets.list":
		var result []*models.Dataset
		for _, ds := range s.datasets {
			if ds.ProjectID == body.ProjectID {
				result = append(result, ds)
			}
		}
		writePage(w, result, body.Page, body.PerPage)
	case "datasets.info":
		for _, ds := range s.datasets {
			if ds.ID == body.ID {
				writeJSON(w, ds)
				return
			}
		}
		writeError(w, http.StatusNotFound, fmt.Sprintf("dataset %d not found", body.ID))
	case "images.list":
		writePage(w, s.images[body.DatasetID], body.Page, body.PerPage)
	case "annotations.bulk.info":
		s.batches = append(s.batches, body.ImageIDs)
		result := make([]models.AnnotationInfo, 0, len(body.ImageIDs))
		for _, id := range body.ImageIDs {
			ann, ok := s.annotations[id]
			if !ok {
				continue
			}
			result = append(result, models.AnnotationInfo{ImageID: id, Annotation: ann})
		}
		writeJSON(w, result)
	case "images.download":
		data, ok := s.imageData[body.ID]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("image %d not found", body.ID))
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusNotFound, "unknown method "+method)
	}
}

func writePage[T any](w http.ResponseWriter, items []*T, page, perPage int) {
	if perPage <= 0 {
		perPage = 50
	}
	if page <= 0 {
		page = 1
	}
	pages := (len(items) + perPage - 1) / perPage
	start := min((page-1)*perPage, len(items))
	end := min(start+perPage, len(items))

	entities := items[start:end]
	if entities == nil {
		entities = []*T{}
	}
	writeJSON(w, map[string]any{
		"total":      len(items),
		"perPage":    perPage,
		"pagesCount": pages,
		"entities":   entities,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
