package models

import (
	"encoding/json"
	"fmt"
)

// Project represents a top-level grouping of datasets on the platform
type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	WorkspaceID int    `json:"workspaceId,omitempty"`
	Type        string `json:"type,omitempty"`
	ItemsCount  int    `json:"imagesCount,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// DirName is the name of the per-project export directory: {id}_{name}
func (p *Project) DirName() string {
	return fmt.Sprintf("%d_%s", p.ID, p.Name)
}

// ArchiveName is the name of the final export artifact: {id}_{name}.tar
func (p *Project) ArchiveName() string {
	return p.DirName() + ".tar"
}

// Dataset is a named collection of images inside a project
type Dataset struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ProjectID   int    `json:"projectId"`
	Description string `json:"description,omitempty"`
	ImagesCount int    `json:"imagesCount,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// ImageInfo describes an image as returned by the platform
type ImageInfo struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Link        string          `json:"link,omitempty"`
	Hash        string          `json:"hash,omitempty"`
	MimeType    string          `json:"mime"`
	Size        json.Number     `json:"size,omitempty"`
	Width       int             `json:"width,omitempty"`
	Height      int             `json:"height,omitempty"`
	LabelsCount int             `json:"labelsCount,omitempty"`
	DatasetID   int             `json:"datasetId"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	PathURL     string          `json:"pathOriginal,omitempty"`
	FullURL     string          `json:"fullStorageUrl,omitempty"`
}

// AnnotationInfo holds the annotation payload of a single image.
// Annotation is kept as raw JSON and never interpreted.
type AnnotationInfo struct {
	ImageID    int             `json:"imageId"`
	ImageName  string          `json:"imageName"`
	Annotation json.RawMessage `json:"annotation"`
	CreatedAt  string          `json:"createdAt,omitempty"`
	UpdatedAt  string          `json:"updatedAt,omitempty"`
}

// ProjectMeta is the project's class/tag definition document, passed through as-is
type ProjectMeta = json.RawMessage
