package config

import "time"

const (
	DefaultBindHost    = "localhost"
	DefaultAdminPort   = 8082
	DefaultTCPPort     = 9092
	DefaultPGPort      = 5435
	DefaultStopTimeout = 5 * time.Second
	DefaultLogLevel    = "info"
)

// GetDefaultConfig returns the built-in configuration every layer is merged onto.
func GetDefaultConfig() ConsoleConfig {
	return ConsoleConfig{
		GlobalSettings: GlobalSettings{
			BindHost:    DefaultBindHost,
			BaseDir:     ".",
			LogLevel:    DefaultLogLevel,
			StopTimeout: DefaultStopTimeout,
		},
		Admin: ListenerConfig{Port: DefaultAdminPort},
		TCP:   ListenerConfig{Port: DefaultTCPPort},
		PG:    ListenerConfig{Port: DefaultPGPort},
	}
}
