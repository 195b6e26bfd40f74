package config

import (
	"net"
	"strconv"
	"time"
)

// ConsoleConfig is the top-level configuration structure for dbconsole.
type ConsoleConfig struct {
	GlobalSettings GlobalSettings `yaml:"globalSettings"`
	Admin          ListenerConfig `yaml:"admin"`
	TCP            ListenerConfig `yaml:"tcp"`
	PG             ListenerConfig `yaml:"pg"`
}

// GlobalSettings apply to every service started by the launcher.
type GlobalSettings struct {
	BindHost           string        `yaml:"bindHost,omitempty"`           // Host the listeners bind to (default: localhost)
	AllowOthers        bool          `yaml:"allowOthers,omitempty"`        // Bind all interfaces instead of BindHost
	AllowRemoteControl bool          `yaml:"allowRemoteControl,omitempty"` // Accept shutdown and MCP calls from non-loopback clients
	BaseDir            string        `yaml:"baseDir,omitempty"`            // Base directory reported to clients
	LogLevel           string        `yaml:"logLevel,omitempty"`           // debug, info, warn, error
	OpenBrowser        *bool         `yaml:"openBrowser,omitempty"`        // Open the admin URL after launch (default: true)
	StopTimeout        time.Duration `yaml:"stopTimeout,omitempty"`        // Upper bound for stopping one service
}

// ListenerConfig describes one network listener.
type ListenerConfig struct {
	Port int `yaml:"port,omitempty"` // 0 picks a free port
}

// Args is the single argument set handed verbatim to every service factory.
// Each factory reads the fields it needs and ignores the rest.
type Args struct {
	Host               string
	AllowOthers        bool
	AllowRemoteControl bool
	AdminPort          int
	TCPPort            int
	PGPort             int
	BaseDir            string
	StopTimeout        time.Duration
	Version            string
}

// ListenAddr returns the address a listener on port should bind to.
func (a Args) ListenAddr(port int) string {
	if a.AllowOthers {
		return net.JoinHostPort("", strconv.Itoa(port))
	}
	return net.JoinHostPort(a.DisplayHost(), strconv.Itoa(port))
}

// DisplayHost is the host name used in URLs shown to the user. When others
// may connect and the configured host only makes sense on this machine, it
// is the address other machines reach us on.
func (a Args) DisplayHost() string {
	host := a.Host
	if host == "" {
		host = DefaultBindHost
	}
	if a.AllowOthers && isLocalOnly(host) {
		if addr := localAddress(); addr != "" {
			return addr
		}
	}
	return host
}

// localAddress is replaced in tests.
var localAddress = outboundAddress

// outboundAddress returns the local IP used for outgoing traffic, falling
// back to the first non-loopback interface address. Dialing UDP sends no
// packets.
func outboundAddress() string {
	if conn, err := net.Dial("udp", "192.0.2.1:9"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && !addr.IP.IsLoopback() {
			return addr.IP.String()
		}
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		if ipNet, ok := a.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return ""
}

func isLocalOnly(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

// BrowserEnabled reports whether the admin URL should be opened after launch.
func (g GlobalSettings) BrowserEnabled() bool {
	return g.OpenBrowser == nil || *g.OpenBrowser
}

// Args flattens the configuration into the shared argument set.
func (c ConsoleConfig) Args(version string) Args {
	return Args{
		Host:               c.GlobalSettings.BindHost,
		AllowOthers:        c.GlobalSettings.AllowOthers,
		AllowRemoteControl: c.GlobalSettings.AllowRemoteControl,
		AdminPort:          c.Admin.Port,
		TCPPort:            c.TCP.Port,
		PGPort:             c.PG.Port,
		BaseDir:            c.GlobalSettings.BaseDir,
		StopTimeout:        c.GlobalSettings.StopTimeout,
		Version:            version,
	}
}
