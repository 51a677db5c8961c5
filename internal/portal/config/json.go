package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/communityhub/internal/flagx"
	"github.com/dmitrijs2005/communityhub/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the load timeout either as a string
// like "2.5s" or as integer nanoseconds.
type JsonConfig struct {
	DataDir       string         `json:"data_dir"`
	MongoURI      string         `json:"mongo_uri"`
	MongoDatabase string         `json:"mongo_database"`
	SessionSecret string         `json:"session_secret"`
	LoadTimeout   timex.Duration `json:"load_timeout"`
	RelayTopic    string         `json:"relay_topic"`
	S3Bucket      string         `json:"s3_bucket"`
	S3Region      string         `json:"s3_region"`
	S3AccessKey   string         `json:"s3_access_key"`
	S3SecretKey   string         `json:"s3_secret_key"`
}

// parseJson overlays Config with values from the JSON file named by the
// -c/-config flag. No flag means no JSON is loaded. Read or unmarshal
// errors panic; the process is still starting up and has nothing to lose.
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

	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.MongoURI != "" {
		cfg.MongoURI = jc.MongoURI
	}
	if jc.MongoDatabase != "" {
		cfg.MongoDatabase = jc.MongoDatabase
	}
	if jc.SessionSecret != "" {
		cfg.SessionSecret = jc.SessionSecret
	}
	if jc.LoadTimeout.Duration != 0 {
		cfg.LoadTimeout = time.Duration(jc.LoadTimeout.Duration)
	}
	if jc.RelayTopic != "" {
		cfg.RelayTopic = jc.RelayTopic
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
}
