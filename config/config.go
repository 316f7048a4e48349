package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"oss-activity/apperr"
)

const (
	DefaultOrg       = "team-mirai-volunteer"
	DefaultOutputDir = "./data"
	DefaultTimezone  = "UTC"
	DefaultUsageFile = "../devin-stat/data/usage_history.json"
	DefaultPRDataDir = "../pr-data/prs"
)

// Config represents the application configuration
type Config struct {
	GitHubToken           string // GITHUB_TOKEN; empty means ask the gh CLI
	GitHubOrg             string // organization whose public repos are collected
	OpenAIAPIKey          string
	GoogleCredentialsFile string // service-account JSON key
	GoogleSpreadsheetID   string
	OutputDir             string
	Timezone              string // "UTC", "JST", an IANA name or "+09:00"
	UsageFile             string // AI-agent usage history feed
	PRDataDir             string // one JSON file per PR
	LogLevel              string // "dev", "prod" or "quiet"
	WebPort               string
}

// LoadConfig loads configuration from the environment, a .env file in the
// working directory, and an optional override file. Values in the override
// file take precedence over the environment.
func LoadConfig(overrideFile string) (Config, error) {
	if overrideFile != "" {
		if err := godotenv.Overload(overrideFile); err != nil {
			return Config{}, fmt.Errorf("error loading config file %s: %w", overrideFile, err)
		}
	} else {
		// .env is optional
		_ = godotenv.Load()
	}

	return Config{
		GitHubToken:           os.Getenv("GITHUB_TOKEN"),
		GitHubOrg:             getEnv("GITHUB_ORG", DefaultOrg),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_FILE"),
		GoogleSpreadsheetID:   os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
		OutputDir:             getEnv("OUTPUT_DIR", DefaultOutputDir),
		Timezone:              getEnv("TIMEZONE", DefaultTimezone),
		UsageFile:             getEnv("DEVIN_USAGE_FILE", DefaultUsageFile),
		PRDataDir:             getEnv("PR_DATA_DIR", DefaultPRDataDir),
		LogLevel:              getEnv("LOG_LEVEL", "dev"),
		WebPort:               getEnv("WEB_PORT", "8080"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Get returns a value by its dotted option name, e.g. "output.default_dir".
func (c Config) Get(key string) (string, bool) {
	switch key {
	case "github.token":
		return c.GitHubToken, true
	case "github.org":
		return c.GitHubOrg, true
	case "openai.api_key":
		return c.OpenAIAPIKey, true
	case "google.credentials_file":
		return c.GoogleCredentialsFile, true
	case "google.spreadsheet_id":
		return c.GoogleSpreadsheetID, true
	case "output.default_dir":
		return c.OutputDir, true
	case "output.timezone":
		return c.Timezone, true
	case "looker.usage_file":
		return c.UsageFile, true
	case "looker.pr_data_dir":
		return c.PRDataDir, true
	case "log.level":
		return c.LogLevel, true
	case "web.port":
		return c.WebPort, true
	}
	return "", false
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return ParseLocation(c.Timezone)
}

var offsetRe = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// ParseLocation accepts "UTC", "JST", a fixed offset like "+09:00", or an
// IANA zone name.
func ParseLocation(name string) (*time.Location, error) {
	switch strings.ToUpper(name) {
	case "", "UTC", "Z":
		return time.UTC, nil
	case "JST":
		return time.FixedZone("JST", 9*60*60), nil
	}

	if m := offsetRe.FindStringSubmatch(name); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(name, offset), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInvalidTimezone, err)
	}
	return loc, nil
}

// CreateSampleConfig writes a sample .env file
func CreateSampleConfig(path string) error {
	sample := map[string]string{
		"GITHUB_TOKEN":                   "",
		"GITHUB_ORG":                     DefaultOrg,
		"OPENAI_API_KEY":                 "your-openai-api-key",
		"GOOGLE_SHEETS_CREDENTIALS_FILE": "./credentials.json",
		"GOOGLE_SHEETS_SPREADSHEET_ID":   "your-spreadsheet-id",
		"OUTPUT_DIR":                     DefaultOutputDir,
		"TIMEZONE":                       DefaultTimezone,
		"DEVIN_USAGE_FILE":               DefaultUsageFile,
		"PR_DATA_DIR":                    DefaultPRDataDir,
		"LOG_LEVEL":                      "dev",
	}
	return godotenv.Write(sample, path)
}
