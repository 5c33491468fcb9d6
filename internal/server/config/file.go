package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophboard/internal/flagx"
	"github.com/dmitrijs2005/gophboard/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations use
// timex.Duration so both "168h" and integer nanoseconds are accepted. Only
// fields present in the file override the current values.
type FileConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDriver        string         `json:"database_driver" yaml:"database_driver"`
	DatabaseDSN           string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey             string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	PasswordHashCost      int            `json:"password_hash_cost" yaml:"password_hash_cost"`
	MessagesDefaultLimit  int            `json:"messages_default_limit" yaml:"messages_default_limit"`
	MessagesMaxLimit      int            `json:"messages_max_limit" yaml:"messages_max_limit"`
	SubscriberBuffer      int            `json:"subscriber_buffer" yaml:"subscriber_buffer"`
	SeedDemoData          *bool          `json:"seed_demo_data" yaml:"seed_demo_data"`
	LogFormat             string         `json:"log_format" yaml:"log_format"`
	LogLevel              string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config, if any, into config. The
// format is picked by extension: .yaml/.yml for YAML, anything else JSON.
// An unreadable or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(fmt.Errorf("config %s: %w", path, err))
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setInt(&config.PasswordHashCost, c.PasswordHashCost)
	setInt(&config.MessagesDefaultLimit, c.MessagesDefaultLimit)
	setInt(&config.MessagesMaxLimit, c.MessagesMaxLimit)
	setInt(&config.SubscriberBuffer, c.SubscriberBuffer)

	if c.SeedDemoData != nil {
		config.SeedDemoData = *c.SeedDemoData
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
