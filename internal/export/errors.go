package export

import "errors"

var (
	ErrDatasetNotInProject = errors.New("dataset does not belong to project")
	ErrInvalidProjectID    = errors.New("project id must be positive")
)
