package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DevelopmentEnvFiles are loaded, when present, if ENV=development
func DevelopmentEnvFiles() []string {
	files := []string{"local.env"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, "supervisely.env"))
	}
	return files
}

// LoadDotEnv loads the given files into the process environment without
// overriding variables that are already set. Missing files are skipped.
// It returns the files that were loaded.
func LoadDotEnv(files ...string) ([]string, error) {
	var loaded []string
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return loaded, err
		}
		loaded = append(loaded, file)
	}
	return loaded, nil
}

// IsDevelopment reports whether ENV=development
func IsDevelopment() bool {
	return os.Getenv("ENV") == "development"
}
