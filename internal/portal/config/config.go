// Package config handles configuration for the portal, layered from
// defaults, a .env file, environment variables, an optional JSON file and
// command-line flags. Later sources take precedence.
package config

import (
	"time"

	"github.com/dmitrijs2005/communityhub/internal/common"
)

// Config holds runtime settings for the portal.
//
// Fields:
//   - DataDir: directory for the embedded local store.
//   - MongoURI / MongoDatabase: remote collection service. An empty URI
//     pins the portal to local-only mode.
//   - SessionSecret: HMAC secret for signing session tokens (HS256).
//     Do not use the development default in prod.
//   - LoadTimeout: how long startup waits for the first remote snapshot of
//     every collection before rendering from the local cache.
//   - RelayTopic: topic name of the local peer message channel.
//   - S3Bucket / S3Region / S3AccessKey / S3SecretKey: gallery blob
//     storage. An empty bucket keeps blobs on the local filesystem.
type Config struct {
	DataDir       string
	MongoURI      string
	MongoDatabase string
	SessionSecret string
	LoadTimeout   time.Duration
	RelayTopic    string
	S3Bucket      string
	S3Region      string
	S3AccessKey   string
	S3SecretKey   string
}

// RemoteConfigured reports whether a remote collection service is set up.
func (c *Config) RemoteConfigured() bool {
	return c.MongoURI != ""
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "./data"
	c.MongoURI = ""
	c.MongoDatabase = "communityhub"
	c.SessionSecret = "secretKey"
	c.LoadTimeout = 2500 * time.Millisecond
	c.RelayTopic = common.ChatRelayTopic
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from .env / environment variables, an optional JSON file and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
