package platform

import "encoding/json"

// pagedResponse is the envelope of every *.list method
type pagedResponse struct {
	Total      int             `json:"total"`
	PerPage    int             `json:"perPage"`
	PagesCount int             `json:"pagesCount"`
	Entities   json.RawMessage `json:"entities"`
}

type idRequest struct {
	ID int `json:"id"`
}

type listDatasetsRequest struct {
	ProjectID int `json:"projectId"`
	Page      int `json:"page"`
	PerPage   int `json:"per_page"`
}

type listImagesRequest struct {
	DatasetID int    `json:"datasetId"`
	Page      int    `json:"page"`
	PerPage   int    `json:"per_page"`
	Sort      string `json:"sort"`
	SortOrder string `json:"sort_order"`
}

type annotationBatchRequest struct {
	DatasetID int   `json:"datasetId"`
	ImageIDs  []int `json:"imageIds"`
}

// errorResponse is the platform's error body
type errorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}
