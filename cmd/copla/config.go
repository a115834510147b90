// Copyright (c) 2026 CoPla. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/copla/copla/internal/client/prefs"
)

// configFileName is the CLI configuration file under the user config dir.
const configFileName = "config.yaml"

// cliConfig is the YAML configuration of the CLI. Flags override it.
type cliConfig struct {
	// APIURL is the scheme and host of the backend.
	APIURL string `yaml:"api_url"`

	// ClientOrigin publishes client-metadata.json. Defaults to APIURL.
	ClientOrigin string `yaml:"client_origin,omitempty"`

	// CallbackPort is the loopback port for the provider redirect; 0 picks one.
	CallbackPort int `yaml:"callback_port,omitempty"`

	Theme     prefs.Mode `yaml:"theme,omitempty"`
	StateFile string     `yaml:"state_file,omitempty"`
	LogFile   string     `yaml:"log_file,omitempty"`
	Debug     bool       `yaml:"debug,omitempty"`
}

func defaultConfig(dir string) *cliConfig {
	return &cliConfig{
		APIURL:    "http://localhost:8080",
		StateFile: filepath.Join(dir, "state.yaml"),
		LogFile:   filepath.Join(dir, "copla.log"),
	}
}

// configDir is $XDG_CONFIG_HOME/copla or its OS equivalent.
func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config_dir_failed: %w", err)
	}
	return filepath.Join(dir, "copla"), nil
}

/*
loadConfig reads path over the defaults. A missing file yields the defaults.

Returns:
  - *cliConfig: The merged configuration
  - error: On unreadable or malformed YAML, or an unknown theme
*/
func loadConfig(path string) (*cliConfig, error) {
	config := defaultConfig(filepath.Dir(path))

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return config, nil
	case err != nil:
		return nil, fmt.Errorf("config_read_failed: %w", err)
	}

	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("config_parse_failed: %s: %w", path, err)
	}

	config.APIURL = strings.TrimRight(config.APIURL, "/")
	config.ClientOrigin = strings.TrimRight(config.ClientOrigin, "/")
	if config.Theme, err = prefs.ParseMode(string(config.Theme)); err != nil {
		return nil, fmt.Errorf("config_parse_failed: %w", err)
	}
	return config, nil
}

// save writes the configuration to path, creating its directory.
func (c *cliConfig) save(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config_encode_failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config_write_failed: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("config_write_failed: %w", err)
	}
	return nil
}

// clientOrigin is where the provider client metadata is fetched from.
func (c *cliConfig) clientOrigin() string {
	if c.ClientOrigin != "" {
		return c.ClientOrigin
	}
	return c.APIURL
}
