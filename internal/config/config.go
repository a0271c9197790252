package config

import "time"

// Config holds runtime settings for the fishlog CLI.
//
// Units: OnlineCheckInterval and SyncInterval are time.Durations
// (e.g., 3*time.Second).
type Config struct {
	// DatabasePath is the SQLite file holding the local catch log.
	DatabasePath string
	// TokenPath is the file the identity token is read from.
	TokenPath string

	FirestoreProjectID       string
	FirestoreCollection      string
	FirestoreCredentialsFile string

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	// OnlineCheckURL is probed to decide whether the network is reachable.
	OnlineCheckURL      string
	OnlineCheckInterval time.Duration
	// SyncInterval is how often the background sweep runs while online.
	SyncInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "fishlog.db"
	c.TokenPath = ".fishlog_token"
	c.FirestoreCollection = "catches"
	c.S3Region = "us-east-1"
	c.S3Bucket = "fishlog-photos"
	c.OnlineCheckURL = "https://clients3.google.com/generate_204"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
