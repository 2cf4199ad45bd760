// Package config loads the static-wado.json5 settings file. The format is
// JSON with comments and trailing commas tolerated; unknown keys are
// ignored so one file can serve multiple tool generations.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// FileName is the settings file looked up in the working directory and the
// user's home directory when no explicit path is given.
const FileName = "static-wado.json5"

// Config is the full settings tree.
type Config struct {
	StaticWado StaticWadoConfig    `json:"staticWadoConfig"`
	Server     ServerConfig        `json:"dicomWebServerConfig"`
	SCP        SCPConfig           `json:"dicomWebScpConfig"`
	AETitles   map[string]AEConfig `json:"aeConfig"`
	Storage    StorageConfig       `json:"storageConfig"`
}

// StaticWadoConfig configures artifact generation.
type StaticWadoConfig struct {
	RootDir string `json:"rootDir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	RootDir string `json:"rootDir"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	ProxyAE string `json:"proxyAe"`
}

// SCPConfig configures the receive path.
type SCPConfig struct {
	RootDir string `json:"rootDir"`
}

// AEConfig describes one remote application entity.
type AEConfig struct {
	Description string `json:"description"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
}

// StorageConfig selects and parameterizes the storage backend.
type StorageConfig struct {
	Driver    string `json:"driver"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	PathStyle bool   `json:"pathStyle"`
}

// Default returns the built-in settings used when no file is found.
func Default() *Config {
	return &Config{
		StaticWado: StaticWadoConfig{RootDir: "./dicomweb"},
		Server:     ServerConfig{Host: "127.0.0.1", Port: 8000},
		AETitles:   map[string]AEConfig{},
		Storage:    StorageConfig{Driver: "fs"},
	}
}

// Load resolves and parses the settings file. An explicit path must exist;
// otherwise the working directory and then the home directory are probed,
// and when neither holds a file the defaults are returned.
func Load(explicit string) (*Config, error) {
	cfg := Default()
	path, err := resolve(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		cfg.normalize()
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func resolve(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config %s: %w", explicit, err)
		}
		return explicit, nil
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// normalize fills derived defaults: sub-configs inherit the generation root
// when they carry none of their own.
func (c *Config) normalize() {
	if c.StaticWado.RootDir == "" {
		c.StaticWado.RootDir = "./dicomweb"
	}
	if c.Server.RootDir == "" {
		c.Server.RootDir = c.StaticWado.RootDir
	}
	if c.SCP.RootDir == "" {
		c.SCP.RootDir = c.StaticWado.RootDir
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "fs"
	}
	if c.AETitles == nil {
		c.AETitles = map[string]AEConfig{}
	}
}
