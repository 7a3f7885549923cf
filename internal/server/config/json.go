package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/flagx"
	"github.com/dmitrijs2005/todoapi/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Durations accept both strings such as "1h" and integer nanoseconds.
// Only keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	UploadDir                   *string         `json:"upload_dir"`
	StorageBackend              *string         `json:"storage_backend"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	LogLevel                    *string         `json:"log_level"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout"`
}

// parseJson reads the file named by -c/-config, if any, and overlays it onto
// config. A missing or malformed file panics.
func parseJson(config *Config) {
	path := flagx.JsonConfigPath(Args())
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	copyString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	copyString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	copyString(&config.DatabaseDSN, c.DatabaseDSN)
	copyString(&config.SecretKey, c.SecretKey)
	copyDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	copyString(&config.UploadDir, c.UploadDir)
	copyString(&config.StorageBackend, c.StorageBackend)
	copyString(&config.S3RootUser, c.S3RootUser)
	copyString(&config.S3RootPassword, c.S3RootPassword)
	copyString(&config.S3Bucket, c.S3Bucket)
	copyString(&config.S3Region, c.S3Region)
	copyString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	copyString(&config.LogLevel, c.LogLevel)
	copyDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
}

func copyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func copyDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
