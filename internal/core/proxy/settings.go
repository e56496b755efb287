package proxy

import (
	"fmt"
	"net/url"
	"strconv"

	"storefront-tracker/internal/core/config"
)

// Settings contains the upstream proxy used by the carrier browser.
type Settings struct {
	Enabled  bool
	Hostname string
	Port     int
	Username string
	Password string
}

// NewSettings builds proxy settings from the application configuration.
func NewSettings(cfg config.ProxyConfig) Settings {
	return Settings{
		Enabled:  cfg.Enabled,
		Hostname: cfg.Hostname,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
	}
}

// HasProxy returns true if proxy is enabled and configured.
func (p Settings) HasProxy() bool {
	return p.Enabled && p.Hostname != "" && p.Port > 0
}

// NeedsForwarder reports whether the proxy requires credentials Chromium cannot pass on the command line.
func (p Settings) NeedsForwarder() bool {
	return p.HasProxy() && p.Username != ""
}

// HostPort returns the proxy URL without credentials (e.g., "http://proxy.local:3128").
func (p Settings) HostPort() string {
	if !p.HasProxy() {
		return ""
	}
	return fmt.Sprintf("http://%s:%d", p.Hostname, p.Port)
}

// FullURL returns the proxy URL including escaped credentials.
func (p Settings) FullURL() string {
	if !p.HasProxy() {
		return ""
	}
	u := url.URL{Scheme: "http", Host: p.Hostname + ":" + strconv.Itoa(p.Port)}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u.String()
}
