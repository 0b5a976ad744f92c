package models

// ExportMode selects what an export run writes to disk
type ExportMode string

const (
	// ExportModeFull downloads images together with their annotations
	ExportModeFull ExportMode = "all"
	// ExportModeMetadataOnly downloads annotations and project meta, no pixel data
	ExportModeMetadataOnly ExportMode = "json"
)

// ParseExportMode maps the configured download flag to an ExportMode.
// Only "all" selects a full export; every other value means metadata only.
func ParseExportMode(value string) ExportMode {
	if value == string(ExportModeFull) {
		return ExportModeFull
	}
	return ExportModeMetadataOnly
}

func (m ExportMode) String() string {
	switch m {
	case ExportModeFull:
		return "images+annotations"
	default:
		return "annotations only"
	}
}

// ExportRequest identifies what to export. DatasetID is optional;
// when nil every dataset of the project is exported.
type ExportRequest struct {
	ProjectID int  `json:"project_id"`
	DatasetID *int `json:"dataset_id,omitempty"`
}

// ExportResult describes a finished export
type ExportResult struct {
	ArchivePath string `json:"archive_path"`
	Project     string `json:"project"`
	Datasets    int    `json:"datasets"`
	Images      int    `json:"images"`
}
