package download

import (
	"dataset-exporter/internal/extension"
)

const (
	imageDirName      = "img"
	annotationDirName = "ann"
	metaFileName      = "meta.json"
)

// Options controls a bulk download
type Options struct {
	BatchSize int
	Normalize extension.Normalizer
	// OnBatch, if set, receives the number of images written by each finished batch
	OnBatch func(images int)
}
