package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables. Non-empty values in the process
// environment win over those read from dotenv files; a missing
// dotenv file is not an error.
//
// Supported variables:
//
//	PORT              HTTP port (":<port>" bind address)
//	HTTP_ADDRESS      full HTTP bind address
//	GRPC_ADDRESS      gRPC health bind address
//	DATABASE_DRIVER   sqlite | pgx
//	DATABASE_DSN      driver DSN
//	JWT_SECRET        token signing secret
//	SEED_DEMO_DATA    true | false
//	LOG_FORMAT        json | text | zap
//	LOG_LEVEL         debug | info | warn | error
func parseEnv(config *Config, files ...string) {
	fromFiles := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			panic(err)
		}
		for k, v := range vals {
			fromFiles[k] = v
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fromFiles[key]
		return v, ok
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		config.EndpointAddrHTTP = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := lookup("HTTP_ADDRESS"); ok && v != "" {
		config.EndpointAddrHTTP = v
	}
	if v, ok := lookup("GRPC_ADDRESS"); ok && v != "" {
		config.EndpointAddrGRPC = v
	}
	if v, ok := lookup("DATABASE_DRIVER"); ok && v != "" {
		config.DatabaseDriver = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := lookup("SEED_DEMO_DATA"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.SeedDemoData = b
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		config.LogFormat = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		config.LogLevel = v
	}
}
