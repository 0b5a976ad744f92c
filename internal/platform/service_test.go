package platform_test

import (
	"context"
	"dataset-exporter/internal/platform"
	"dataset-exporter/internal/platform/platformtest"
	"dataset-exporter/pkg/models"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) *platformtest.Server {
	t.Helper()
	server := platformtest.NewServer("secret-token")
	t.Cleanup(server.Close)

	server.AddProject(&models.Project{ID: 7, Name: "cars"}, `{"classes":[{"title":"car"}]}`)
	server.AddDataset(&models.Dataset{ID: 70, Name: "train", ProjectID: 7})
	server.AddDataset(&models.Dataset{ID: 71, Name: "val", ProjectID: 7})
	server.AddDataset(&models.Dataset{ID: 80, Name: "other", ProjectID: 8})
	for i := 1; i <= 5; i++ {
		server.AddImage(&models.ImageInfo{
			ID:        i,
			Name:      fmt.Sprintf("img_%d", i),
			MimeType:  "image/png",
			DatasetID: 70,
		}, fmt.Sprintf(`{"objects":[],"id":%d}`, i), []byte(fmt.Sprintf("pixels-%d", i)))
	}
	return server
}

func TestService_GetProjectInfo(t *testing.T) {
	server := newFixture(t)
	service := platform.NewService(server.Credentials())

	project, err := service.GetProjectInfo(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "cars", project.Name)
	assert.Equal(t, "7_cars", project.DirName())
	assert.Equal(t, "7_cars.tar", project.ArchiveName())
}

func TestService_GetProjectInfo_NotFound(t *testing.T) {
	server := newFixture(t)
	service := platform.NewService(server.Credentials())

	_, err := service.GetProjectInfo(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrNotFound)

	var apiErr *platform.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "projects.info", apiErr.Method)
	assert.Contains(t, apiErr.Message, "not found")
}

func TestService_InvalidToken(t *testing.T) {
	server := newFixture(t)
	service := platform.NewService(models.Credentials{ServerAddress: server.URL, APIToken: "wrong"})

	_, err := service.GetCurrentUser(context.Background())
	assert.ErrorIs(t, err, platform.ErrUnauthorized)
}

func TestService_GetProjectMeta(t *testing.T) {
	server := newFixture(t)
	service := platform.NewService(server.Credentials())

	meta, err := service.GetProjectMeta(context.Background(), 7)
	require.NoError(t, err)
	assert.JSONEq(t, `{"classes":[{"title":"car"}]}`, string(meta))
}

func TestService_ListDatasets_Paginated(t *testing.T) {
	server := newFixture(t)
	service := platform.NewService(server.Credentials(), platform.WithPageSize(1))

	datasets, err := service.ListDatasets(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "train", datasets[0].Name)
	assert.Equal(t, "val", datasets[1].Name)
}

func TestService_ListImages_AllPagesInOrder(t *testing.T) {
	server := newFixture(t)
	service := platform.NewService(server.Credentials(), platform.WithPageSize(2))

	images, err := service.ListImages(context.Background(), 70)
	require.NoError(t, err)
	require.Len(t, images, 5)
	for i, image := range images {
		assert.Equal(t, i+1, image.ID)
		assert.Equal(t, "image/png", image.MimeType)
		assert.Equal(t, fmt.Sprintf("img_%d", i+1), image.Name)
	}
}

func TestService_ListImages_EmptyDataset(t *testing.T) {
	server := newFixture(t)
	service := platform.NewService(server.Credentials())

	images, err := service.ListImages(context.Background(), 71)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestService_DownloadAnnotationBatch(t *testing.T) {
	server := newFixture(t)
	service := platform.NewService(server.Credentials())

	anns, err := service.DownloadAnnotationBatch(context.Background(), 70, []int{2, 4})
	require.NoError(t, err)
	require.Len(t, anns, 2)
	assert.Equal(t, 2, anns[0].ImageID)
	assert.JSONEq(t, `{"objects":[],"id":4}`, string(anns[1].Annotation))
	assert.Equal(t, [][]int{{2, 4}}, server.AnnotationBatches())
}

func TestService_GetImageStream(t *testing.T) {
	server := newFixture(t)
	service := platform.NewService(server.Credentials())

	stream, err := service.GetImageStream(context.Background(), 3)
	require.NoError(t, err)
	defer stream.Close()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "pixels-3", string(data))
}

func TestService_SendsAPIKeyAndJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/public/api/v3/datasets.info", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]int
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 42, body["id"])

		_ = json.NewEncoder(w).Encode(models.Dataset{ID: 42, Name: "ds", ProjectID: 1})
	}))
	defer srv.Close()

	service := platform.NewService(models.Credentials{ServerAddress: srv.URL + "/", APIToken: "tok"})
	dataset, err := service.GetDatasetInfo(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "ds", dataset.Name)
}

func TestService_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	service := platform.NewService(models.Credentials{ServerAddress: srv.URL, APIToken: "tok"})
	_, err := service.GetProjectInfo(context.Background(), 1)

	var apiErr *platform.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.NotErrorIs(t, err, platform.ErrNotFound)
}
