package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// ChangeLogOff disables the sqlite change log when used as CHANGELOG_DB.
	ChangeLogOff = "off"
)

type Config struct {
	Env  string
	Port string

	MasterPassword string
	UnlockWindow   time.Duration

	AssetsDir string
	DataFile  string

	BackupsMax           int
	BackupsRetentionDays int
	BackupsS3Bucket      string
	BackupsS3Region      string
	BackupsS3Prefix      string

	ChangeLogDB            string
	ChangeLogRetentionDays int

	AppVersion   string
	ReleaseNotes string

	UnlockMaxAttempts   int
	UnlockAttemptWindow time.Duration
}

// Development is true only for an explicit development env. Staging and any
// unknown value get the production rules.
func (c Config) Development() bool {
	return c.Env == EnvDevelopment
}

func (c Config) ChangeLogEnabled() bool {
	return c.ChangeLogDB != "" && !strings.EqualFold(c.ChangeLogDB, ChangeLogOff)
}

// Load reads the configuration from the process environment, which by now
// holds the .env file or the SSM parameters.
func Load() Config {
	env := strings.ToLower(getEnv("GO_ENV", EnvDevelopment))
	assets := getEnv("ASSETS_DIR", filepath.Join(".", "attached_assets"))

	cfg := Config{
		Env:  env,
		Port: getEnv("PORT", "5001"),

		MasterPassword: strings.TrimSpace(os.Getenv("MASTER_PASSWORD")),
		UnlockWindow:   time.Duration(max(1, getInt("MASTER_UNLOCK_MINUTES", 5))) * time.Minute,

		AssetsDir: assets,
		DataFile:  strings.TrimSpace(os.Getenv("DATA_FILE")),

		BackupsMax:           max(1, getInt("SETORES_BACKUPS_MAX", 20)),
		BackupsRetentionDays: max(0, getInt("SETORES_BACKUPS_RETENTION_DAYS", 0)),
		BackupsS3Bucket:      strings.TrimSpace(os.Getenv("SETORES_BACKUPS_S3_BUCKET")),
		BackupsS3Region:      getEnv("SETORES_BACKUPS_S3_REGION", "us-east-1"),
		BackupsS3Prefix:      getEnv("SETORES_BACKUPS_S3_PREFIX", "setores_overrides.backups/"),

		ChangeLogDB:            getEnv("CHANGELOG_DB", filepath.Join(assets, "setores_changelog.db")),
		ChangeLogRetentionDays: max(0, getInt("CHANGELOG_RETENTION_DAYS", 90)),

		AppVersion:   getEnv("APP_VERSION", "0.0.0"),
		ReleaseNotes: os.Getenv("APP_RELEASE_NOTES"),

		UnlockMaxAttempts:   max(1, getInt("UNLOCK_MAX_ATTEMPTS", 5)),
		UnlockAttemptWindow: time.Duration(max(1, getInt("UNLOCK_ATTEMPT_WINDOW_SECONDS", 60))) * time.Second,
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getInt falls back to def when the variable is unset or not a number.
func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
