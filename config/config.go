package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/alyssonw2/BD-AJ/auth"
	"github.com/alyssonw2/BD-AJ/collection"
	"github.com/alyssonw2/BD-AJ/httpapi"
	"github.com/caarlos0/env/v8"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ---------------------------

const BDAJ_CONFIG = "BDAJ_CONFIG"
const defaultConfigPath = "config.yaml"

type ConfigMap struct {
	// Global debug flag
	Debug bool `yaml:"debug"`
	// Pretty log output
	PrettyLogOutput bool `yaml:"prettyLogOutput"`
	// Collection and upload storage
	Store collection.StoreConfig `yaml:"store" envPrefix:"STORE_"`
	// HTTP Parameters
	HttpApi httpapi.HttpApiConfig `yaml:"httpApi" envPrefix:"HTTP_API_"`
	// Access tokens
	Auth auth.AuthConfig `yaml:"auth" envPrefix:"AUTH_"`
}

func defaultConfig() ConfigMap {
	return ConfigMap{
		Store: collection.StoreConfig{
			RootDir:     "./db",
			LockStripes: 64,
		},
		HttpApi: httpapi.HttpApiConfig{
			HttpHost:       "",
			HttpPort:       4001,
			AllowedOrigins: []string{"*"},
			MaxUploadSize:  32 << 20,
		},
		Auth: auth.AuthConfig{
			TokenExpiry:     3600,
			BackupFrequency: 86400,
			BackupCount:     3,
		},
	}
}

// LoadConfig starts from defaults, overlays the yaml file named by BDAJ_CONFIG
// (config.yaml when unset) and finally environment variables prefixed with
// BDAJ_, e.g. BDAJ_HTTP_API_HTTP_PORT.
func LoadConfig() (ConfigMap, error) {
	configMap := defaultConfig()
	cFilePath, ok := os.LookupEnv(BDAJ_CONFIG)
	if !ok {
		cFilePath = defaultConfigPath
	}
	// ---------------------------
	cFile, err := os.Open(cFilePath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !ok:
		log.Warn().Str("path", cFilePath).Msg("config file not found, using defaults")
	case err != nil:
		return configMap, fmt.Errorf("failed to open config file %s: %w", cFilePath, err)
	default:
		defer cFile.Close()
		decoder := yaml.NewDecoder(cFile)
		if err := decoder.Decode(&configMap); err != nil && !errors.Is(err, io.EOF) {
			return configMap, fmt.Errorf("failed to parse config file %s: %w", cFilePath, err)
		}
	}
	// ---------------------------
	opts := env.Options{Prefix: "BDAJ_", UseFieldNameByDefault: true}
	if err := env.ParseWithOptions(&configMap, opts); err != nil {
		return configMap, fmt.Errorf("failed to parse environment: %w", err)
	}
	configMap.HttpApi.Debug = configMap.Debug
	return configMap, nil
}

// Redacted returns a copy safe to log, secrets are masked.
func (c ConfigMap) Redacted() ConfigMap {
	if c.Auth.TokenSecret != "" {
		c.Auth.TokenSecret = "***"
	}
	return c
}
