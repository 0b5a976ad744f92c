// Package config reads the exporter's settings from flags, environment
// variables, optional dotenv files and an optional YAML file.
package config

import (
	"dataset-exporter/internal/batch"
	"dataset-exporter/pkg/models"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood by Load
const (
	KeyServerAddress = "server_address"
	KeyAPIToken      = "api_token"
	KeyDownloadMode  = "download_mode"
	KeyFixExtension  = "fix_extension"
	KeyProjectID     = "project_id"
	KeyDatasetID     = "dataset_id"
	KeyStorageDir    = "storage_dir"
	KeyBatchSize     = "batch_size"
	KeyHTTPTimeout   = "http_timeout"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyListenAddr    = "listen_addr"
	KeyDomain        = "domain"
	KeyServerAPIKey  = "server_api_key"
)

var ErrInvalidBool = errors.New("invalid truth value")

// envNames lists the environment variables for each key, checked in order
var envNames = map[string][]string{
	KeyServerAddress: {"SERVER_ADDRESS"},
	KeyAPIToken:      {"API_TOKEN"},
	KeyDownloadMode:  {"MODAL_STATE_DOWNLOAD", "modal.state.download"},
	KeyFixExtension:  {"MODAL_STATE_FIXEXTENSION", "modal.state.fixExtension"},
	KeyProjectID:     {"PROJECT_ID", "CONTEXT_PROJECTID", "modal.state.slyProjectId"},
	KeyDatasetID:     {"DATASET_ID", "CONTEXT_DATASETID", "modal.state.slyDatasetId"},
	KeyStorageDir:    {"SLY_APP_DATA_DIR"},
	KeyBatchSize:     {"BATCH_SIZE"},
	KeyHTTPTimeout:   {"HTTP_TIMEOUT"},
	KeyLogLevel:      {"LOG_LEVEL"},
	KeyLogFormat:     {"LOG_FORMAT"},
	KeyListenAddr:    {"LISTEN_ADDR"},
	KeyDomain:        {"DOMAIN"},
	KeyServerAPIKey:  {"SERVER_API_KEY"},
}

// Config is read once at startup and not changed afterwards
type Config struct {
	Credentials  models.Credentials
	Mode         models.ExportMode
	FixExtension bool
	ProjectID    int
	DatasetID    *int
	StorageDir   string
	BatchSize    int
	HTTPTimeout  time.Duration
	Log          LogConfig
	Server       ServerConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ListenAddr string
	Domain     string
	APIKey     string
}

// NewViper returns a viper instance with defaults and environment bindings
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, names := range envNames {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDownloadMode, "")
	v.SetDefault(KeyFixExtension, "false")
	v.SetDefault(KeyStorageDir, "./data")
	v.SetDefault(KeyBatchSize, batch.DefaultBatchSize)
	v.SetDefault(KeyHTTPTimeout, 60*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "")
	v.SetDefault(KeyListenAddr, ":8080")
}

// ReadFile merges a YAML config file into v
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load builds a Config from v
func Load(v *viper.Viper) (*Config, error) {
	fixExtension, err := ParseBool(v.GetString(KeyFixExtension))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyFixExtension, err)
	}

	projectID, err := optionalInt(v.GetString(KeyProjectID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyProjectID, err)
	}

	datasetID, err := optionalInt(v.GetString(KeyDatasetID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyDatasetID, err)
	}

	batchSize := v.GetInt(KeyBatchSize)
	if batchSize < batch.MinBatchSize || batchSize > batch.MaxBatchSize {
		return nil, fmt.Errorf("%s: %w: got %d", KeyBatchSize, batch.ErrInvalidBatchSize, batchSize)
	}

	cfg := &Config{
		Credentials: models.Credentials{
			ServerAddress: strings.TrimSpace(v.GetString(KeyServerAddress)),
			APIToken:      strings.TrimSpace(v.GetString(KeyAPIToken)),
		},
		Mode:         models.ParseExportMode(v.GetString(KeyDownloadMode)),
		FixExtension: fixExtension,
		DatasetID:    datasetID,
		StorageDir:   v.GetString(KeyStorageDir),
		BatchSize:    batchSize,
		HTTPTimeout:  v.GetDuration(KeyHTTPTimeout),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		Server: ServerConfig{
			ListenAddr: v.GetString(KeyListenAddr),
			Domain:     v.GetString(KeyDomain),
			APIKey:     v.GetString(KeyServerAPIKey),
		},
	}
	if projectID != nil {
		cfg.ProjectID = *projectID
	}

	return cfg, nil
}

// ParseBool accepts y/yes/t/true/on/1 and n/no/f/false/off/0, case-insensitive.
// An empty string is false.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "", "n", "no", "f", "false", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w %q", ErrInvalidBool, value)
	}
}

func optionalInt(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q", value)
	}
	return &n, nil
}
