package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/fishlog/internal/flagx"
	"github.com/dmitrijs2005/fishlog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabasePath             string         `json:"database_path"`
	TokenPath                string         `json:"token_path"`
	FirestoreProjectID       string         `json:"firestore_project_id"`
	FirestoreCollection      string         `json:"firestore_collection"`
	FirestoreCredentialsFile string         `json:"firestore_credentials_file"`
	S3Region                 string         `json:"s3_region"`
	S3Endpoint               string         `json:"s3_endpoint"`
	S3AccessKey              string         `json:"s3_access_key"`
	S3SecretKey              string         `json:"s3_secret_key"`
	S3Bucket                 string         `json:"s3_bucket"`
	OnlineCheckURL           string         `json:"online_check_url"`
	OnlineCheckInterval      timex.Duration `json:"online_check_interval"`
	SyncInterval             timex.Duration `json:"sync_interval"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; when no
// path is given the function is a no-op. Empty JSON fields keep whatever
// value cfg already carries. Panics on read or unmarshal errors.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.TokenPath, jc.TokenPath)
	overlay(&cfg.FirestoreProjectID, jc.FirestoreProjectID)
	overlay(&cfg.FirestoreCollection, jc.FirestoreCollection)
	overlay(&cfg.FirestoreCredentialsFile, jc.FirestoreCredentialsFile)
	overlay(&cfg.S3Region, jc.S3Region)
	overlay(&cfg.S3Endpoint, jc.S3Endpoint)
	overlay(&cfg.S3AccessKey, jc.S3AccessKey)
	overlay(&cfg.S3SecretKey, jc.S3SecretKey)
	overlay(&cfg.S3Bucket, jc.S3Bucket)
	overlay(&cfg.OnlineCheckURL, jc.OnlineCheckURL)

	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
