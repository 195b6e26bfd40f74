package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/dbconsole"
	projectConfigDir = ".dbconsole"
	configFileName   = "config.yaml"
)

// LoadConfig loads the configuration by layering default, user, and project settings.
func LoadConfig() (ConsoleConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional.
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if config, err = mergeFileIfExists(config, userConfigPath); err != nil {
		return ConsoleConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if config, err = mergeFileIfExists(config, projectConfigPath); err != nil {
		return ConsoleConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	return config, nil
}

// LoadConfigFromPath loads the layered configuration and then applies the
// file at path on top of it. Unlike the implicit layers, path must exist.
func LoadConfigFromPath(path string) (ConsoleConfig, error) {
	config, err := LoadConfig()
	if err != nil {
		return ConsoleConfig{}, err
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return ConsoleConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return mergeConfigs(config, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func mergeFileIfExists(base ConsoleConfig, path string) (ConsoleConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return base, err
	}
	return mergeConfigs(base, overlay), nil
}

// loadConfigFromFile loads a ConsoleConfig from a YAML file.
func loadConfigFromFile(filePath string) (ConsoleConfig, error) {
	var config ConsoleConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return ConsoleConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return ConsoleConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in
// overlay leave base untouched.
func mergeConfigs(base, overlay ConsoleConfig) ConsoleConfig {
	merged := base

	g := overlay.GlobalSettings
	if g.BindHost != "" {
		merged.GlobalSettings.BindHost = g.BindHost
	}
	if g.AllowOthers {
		merged.GlobalSettings.AllowOthers = true
	}
	if g.AllowRemoteControl {
		merged.GlobalSettings.AllowRemoteControl = true
	}
	if g.BaseDir != "" {
		merged.GlobalSettings.BaseDir = g.BaseDir
	}
	if g.LogLevel != "" {
		merged.GlobalSettings.LogLevel = g.LogLevel
	}
	if g.OpenBrowser != nil {
		v := *g.OpenBrowser
		merged.GlobalSettings.OpenBrowser = &v
	}
	if g.StopTimeout != 0 {
		merged.GlobalSettings.StopTimeout = g.StopTimeout
	}

	if overlay.Admin.Port != 0 {
		merged.Admin.Port = overlay.Admin.Port
	}
	if overlay.TCP.Port != 0 {
		merged.TCP.Port = overlay.TCP.Port
	}
	if overlay.PG.Port != 0 {
		merged.PG.Port = overlay.PG.Port
	}

	return merged
}

// Validate checks the configuration for values no service could start with.
func (c ConsoleConfig) Validate() error {
	ports := map[string]int{
		"admin": c.Admin.Port,
		"tcp":   c.TCP.Port,
		"pg":    c.PG.Port,
	}
	seen := make(map[int]string)
	for _, name := range []string{"admin", "tcp", "pg"} {
		port := ports[name]
		if port < 0 || port > 65535 {
			return fmt.Errorf("%s port %d out of range", name, port)
		}
		if port == 0 {
			continue
		}
		if other, dup := seen[port]; dup {
			return fmt.Errorf("%s and %s share port %d", other, name, port)
		}
		seen[port] = name
	}
	if c.GlobalSettings.StopTimeout < 0 {
		return fmt.Errorf("stopTimeout must not be negative")
	}
	return nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
