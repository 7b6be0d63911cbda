// ABOUTME: Field-instance parameters and process-level environment config.
// ABOUTME: Loads .env via godotenv and resolves the debug API-key override.

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Params are the free-form parameters attached to the field instance.
// SourceFileAPIKey is required; the rest are optional sibling updates and
// behavior toggles.
type Params struct {
	SourceFileAPIKey  string `json:"sourceFileApiKey"`
	ColumnsMetaAPIKey string `json:"columnsMetaApiKey"`
	RowCountAPIKey    string `json:"rowCountApiKey"`
	SheetName         string `json:"sheetName"`
	StrictLocale      bool   `json:"strictLocale"`
}

// ParseParams reads recognized keys out of the host's parameter map.
func ParseParams(raw map[string]string) Params {
	return Params{
		SourceFileAPIKey:  raw["sourceFileApiKey"],
		ColumnsMetaAPIKey: raw["columnsMetaApiKey"],
		RowCountAPIKey:    raw["rowCountApiKey"],
		SheetName:         raw["sheetName"],
		StrictLocale:      raw["strictLocale"] == "true",
	}
}

// Validate checks the required parameters are present.
func (p Params) Validate() error {
	if p.SourceFileAPIKey == "" {
		return fmt.Errorf("sourceFileApiKey parameter is required")
	}
	return nil
}

// ApplyQueryOverride lets a URL query string override sourceFileApiKey for
// debugging a misconfigured field instance without editing it.
func (p Params) ApplyQueryOverride(rawQuery string) Params {
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return p
	}
	if v := q.Get("sourceFileApiKey"); v != "" {
		p.SourceFileAPIKey = v
	}
	return p
}

// Env is the process configuration for the bridge service.
type Env struct {
	Port       string
	DBPath     string
	APIBaseURL string
	APIToken   string
}

// LoadEnv reads configuration from the environment, trying .env files in
// the working directory, its parents, and the home directory first.
func LoadEnv() Env {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		godotenv.Load(filepath.Join(home, ".env"))
	}

	return Env{
		Port:       getEnv("SHEETBRIDGE_PORT", "9300"),
		DBPath:     getEnv("SHEETBRIDGE_DB_PATH", "./sheetbridge.db"),
		APIBaseURL: getEnv("CMS_API_BASE_URL", "https://site-api.example.com"),
		APIToken:   os.Getenv("CMS_API_TOKEN"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
