// Package config provides configuration management for dbconsole.
//
// Configuration is loaded and merged in the following order, later layers
// overriding earlier ones:
//
//  1. Default configuration (GetDefaultConfig)
//  2. User configuration (~/.config/dbconsole/config.yaml)
//  3. Project configuration (./.dbconsole/config.yaml)
//  4. An explicit file passed with --config
//
// Command line flags are applied by the cmd package on top of the result.
//
// Example:
//
//	globalSettings:
//	  allowOthers: false
//	  logLevel: debug
//	  stopTimeout: 3s
//	admin:
//	  port: 8082
//	tcp:
//	  port: 9092
//	pg:
//	  port: 5435
//
// The merged ConsoleConfig is flattened into Args, the one argument set
// shared by the admin endpoint, the TCP listener and the PG listener.
package config
