package download

import (
	"context"
	"dataset-exporter/internal/extension"
	"dataset-exporter/internal/platform"
	"dataset-exporter/internal/platform/platformtest"
	"dataset-exporter/pkg/models"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlatform(t *testing.T) (*platformtest.Server, *models.Project, []*models.Dataset) {
	t.Helper()
	server := platformtest.NewServer("token")
	t.Cleanup(server.Close)

	project := &models.Project{ID: 3, Name: "birds"}
	server.AddProject(project, `{"classes":[]}`)

	datasets := []*models.Dataset{
		{ID: 30, Name: "ds1", ProjectID: 3},
		{ID: 31, Name: "ds2", ProjectID: 3},
	}
	for _, ds := range datasets {
		server.AddDataset(ds)
	}

	server.AddImage(&models.ImageInfo{ID: 1, Name: "a", MimeType: "image/png", DatasetID: 30}, `{"n":1}`, []byte("A"))
	server.AddImage(&models.ImageInfo{ID: 2, Name: "b.jpg", MimeType: "image/jpeg", DatasetID: 30}, `{"n":2}`, []byte("B"))
	server.AddImage(&models.ImageInfo{ID: 3, Name: "c.png", MimeType: "image/png", DatasetID: 31}, `{"n":3}`, []byte("C"))

	return server, project, datasets
}

func TestService_DownloadProject(t *testing.T) {
	server, project, datasets := newTestPlatform(t)
	service := NewService(platform.NewService(server.Credentials()), zerolog.Nop())
	dir := filepath.Join(t.TempDir(), project.DirName())

	count, err := service.DownloadProject(context.Background(), project, datasets, dir, Options{
		BatchSize: 10,
		Normalize: extension.Resolve,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.FileExists(t, filepath.Join(dir, "meta.json"))

	data, err := os.ReadFile(filepath.Join(dir, "ds1", "img", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))
	assert.FileExists(t, filepath.Join(dir, "ds1", "ann", "a.png.json"))
	assert.FileExists(t, filepath.Join(dir, "ds1", "img", "b.jpg"))
	assert.FileExists(t, filepath.Join(dir, "ds2", "ann", "c.png.json"))
}

func TestService_DownloadProject_IdentityNames(t *testing.T) {
	server, project, datasets := newTestPlatform(t)
	service := NewService(platform.NewService(server.Credentials()), zerolog.Nop())
	dir := t.TempDir()

	_, err := service.DownloadProject(context.Background(), project, datasets[:1], dir, Options{BatchSize: 1})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "ds1", "img", "a"))
	assert.FileExists(t, filepath.Join(dir, "ds1", "ann", "a.json"))
	assert.Equal(t, [][]int{{1}, {2}}, server.AnnotationBatches())
}

func TestService_DownloadProject_ImageFailure(t *testing.T) {
	server, project, datasets := newTestPlatform(t)
	server.FailMethod("images.download", http.StatusInternalServerError)
	service := NewService(platform.NewService(server.Credentials()), zerolog.Nop())

	_, err := service.DownloadProject(context.Background(), project, datasets, t.TempDir(), Options{BatchSize: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("dataset %q", "ds1"))
}

func TestService_DownloadProject_InvalidBatchSize(t *testing.T) {
	server, project, datasets := newTestPlatform(t)
	service := NewService(platform.NewService(server.Credentials()), zerolog.Nop())

	_, err := service.DownloadProject(context.Background(), project, datasets, t.TempDir(), Options{})
	assert.Error(t, err)
}
