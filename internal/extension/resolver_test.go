package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		mimeType string
		expected string
	}{
		{"missing extension gets subtype", "img", "image/png", "img.png"},
		{"jpg kept for jpeg", "img.jpg", "image/jpeg", "img.jpg"},
		{"jpeg kept for jpeg", "img.jpeg", "image/jpeg", "img.jpeg"},
		{"mpo kept for jpeg", "img.mpo", "image/jpeg", "img.mpo"},
		{"uppercase alias kept", "IMG.JPG", "image/jpeg", "IMG.JPG"},
		{"mismatch left alone", "img.png", "image/jpeg", "img.png"},
		{"matching extension kept", "img.png", "image/png", "img.png"},
		{"dotted name without suffix", "scan.2024.", "image/tiff", "scan.2024..tiff"},
		{"leading dot is not an extension", ".hidden", "image/png", ".hidden.png"},
		{"leading dot with extension", ".hidden.jpg", "image/jpeg", ".hidden.jpg"},
		{"mime without slash", "img", "png", "img"},
		{"empty mime", "img", "", "img"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.input, tt.mimeType))
		})
	}
}

func TestNewNormalizer(t *testing.T) {
	fix := NewNormalizer(true)
	keep := NewNormalizer(false)

	assert.Equal(t, "img.png", fix("img", "image/png"))
	assert.Equal(t, "img", keep("img", "image/png"))
}

func TestSubtypeOf(t *testing.T) {
	assert.Equal(t, "jpeg", SubtypeOf("image/jpeg"))
	assert.Equal(t, "svg+xml", SubtypeOf("image/svg+xml"))
	assert.Equal(t, "", SubtypeOf("image"))
}
