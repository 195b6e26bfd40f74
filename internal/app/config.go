package app

import (
	"dbconsole/internal/config"
)

// Config holds the application configuration
type Config struct {
	// UI mode
	NoTUI bool

	// Debug settings
	Debug bool

	// NoBrowser keeps the admin URL from being opened after launch.
	NoBrowser bool

	// ConfigPath is an explicit config file applied on top of the layered config.
	ConfigPath string

	// Version is reported by every service.
	Version string

	// Overrides from command line flags. Nil fields leave the file values alone.
	Overrides Overrides

	// Console configuration, set by NewApplication.
	ConsoleConfig *config.ConsoleConfig
}

// Overrides carries the flag values the user actually set.
type Overrides struct {
	Host               *string
	AllowOthers        *bool
	AllowRemoteControl *bool
	AdminPort          *int
	TCPPort            *int
	PGPort             *int
	BaseDir            *string
}

// NewConfig creates a new application configuration
func NewConfig(noTUI, debug bool, version string) *Config {
	return &Config{
		NoTUI:   noTUI,
		Debug:   debug,
		Version: version,
	}
}

// Apply writes the set overrides into cfg.
func (o Overrides) Apply(cfg *config.ConsoleConfig) {
	if o.Host != nil {
		cfg.GlobalSettings.BindHost = *o.Host
	}
	if o.AllowOthers != nil {
		cfg.GlobalSettings.AllowOthers = *o.AllowOthers
	}
	if o.AllowRemoteControl != nil {
		cfg.GlobalSettings.AllowRemoteControl = *o.AllowRemoteControl
	}
	if o.AdminPort != nil {
		cfg.Admin.Port = *o.AdminPort
	}
	if o.TCPPort != nil {
		cfg.TCP.Port = *o.TCPPort
	}
	if o.PGPort != nil {
		cfg.PG.Port = *o.PGPort
	}
	if o.BaseDir != nil {
		cfg.GlobalSettings.BaseDir = *o.BaseDir
	}
}
