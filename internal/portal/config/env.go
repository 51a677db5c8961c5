package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the environment. A .env file in
// the working directory is folded in first without overriding variables the
// shell already set.
//
// Recognized variables:
//
//	PORTAL_DATA_DIR        local store directory
//	PORTAL_MONGO_URI       remote collection service connection string
//	PORTAL_MONGO_DATABASE  database name
//	PORTAL_SESSION_SECRET  session token signing secret
//	PORTAL_LOAD_TIMEOUT    startup snapshot wait, Go duration syntax
//	PORTAL_RELAY_TOPIC     peer channel topic
//	PORTAL_S3_BUCKET / PORTAL_S3_REGION
//	PORTAL_S3_ACCESS_KEY / PORTAL_S3_SECRET_KEY
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	overlay := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	overlay("PORTAL_DATA_DIR", &cfg.DataDir)
	overlay("PORTAL_MONGO_URI", &cfg.MongoURI)
	overlay("PORTAL_MONGO_DATABASE", &cfg.MongoDatabase)
	overlay("PORTAL_SESSION_SECRET", &cfg.SessionSecret)
	overlay("PORTAL_RELAY_TOPIC", &cfg.RelayTopic)
	overlay("PORTAL_S3_BUCKET", &cfg.S3Bucket)
	overlay("PORTAL_S3_REGION", &cfg.S3Region)
	overlay("PORTAL_S3_ACCESS_KEY", &cfg.S3AccessKey)
	overlay("PORTAL_S3_SECRET_KEY", &cfg.S3SecretKey)

	if v, ok := os.LookupEnv("PORTAL_LOAD_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LoadTimeout = d
		}
	}
}
