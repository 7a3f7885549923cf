package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// envFile is the dotenv file read before the process environment.
// ENV_FILE overrides it.
const envFile = ".env"

// parseEnv reads the dotenv file and the process environment and overlays
// recognised variables onto config. Non-empty process variables win over the
// file.
//
// Recognised variables:
//
//	PORT               REST port, shorthand for HTTP_ADDR=":PORT"
//	HTTP_ADDR          REST bind address
//	GRPC_ADDR          gRPC health bind address
//	DATABASE_DSN       PostgreSQL DSN
//	JWT_SECRET         JWT HMAC secret key
//	ACCESS_TOKEN_TTL   access token validity, Go duration ("1h")
//	UPLOAD_DIR         upload directory
//	STORAGE_BACKEND    local | s3
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//	LOG_LEVEL          debug | info | warn | error
//	SHUTDOWN_TIMEOUT   Go duration
//
// Malformed durations panic, like malformed JSON or flags.
func parseEnv(config *Config) {
	path := envFile
	if p, ok := os.LookupEnv("ENV_FILE"); ok && p != "" {
		path = p
	}
	file, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
	e := env{file: file}

	if v, ok := e.lookup("PORT"); ok {
		config.EndpointAddrHTTP = ":" + v
	}
	e.setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	e.setString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	e.setString(&config.DatabaseDSN, "DATABASE_DSN")
	e.setString(&config.SecretKey, "JWT_SECRET")
	e.setDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	e.setString(&config.UploadDir, "UPLOAD_DIR")
	e.setString(&config.StorageBackend, "STORAGE_BACKEND")
	e.setString(&config.S3RootUser, "S3_ROOT_USER")
	e.setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	e.setString(&config.S3Bucket, "S3_BUCKET")
	e.setString(&config.S3Region, "S3_REGION")
	e.setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	e.setString(&config.LogLevel, "LOG_LEVEL")
	e.setDuration(&config.ShutdownTimeout, "SHUTDOWN_TIMEOUT")
}

type env struct {
	file map[string]string
}

func (e env) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	if v := e.file[key]; v != "" {
		return v, true
	}
	return "", false
}

func (e env) setString(dst *string, key string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e env) setDuration(dst *time.Duration, key string) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
