// Package config loads the core-relevant subset of hxm's configuration:
// the knobs the tick engine itself reads at init and on reload.
// Decoration/theme content lives in the config file too but is read by
// the external decoration collaborator, not by this package.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jopamo/hxm/errors"
)

// Config holds every core tunable the tick engine consults.
type Config struct {
	MaxEventsPerTick                   int      `mapstructure:"max_events_per_tick"`
	CookieAbandonAfterMS               int      `mapstructure:"cookie_abandon_after_ms"`
	InteractiveHz                      int      `mapstructure:"interactive_hz"`
	WorkareaMargins                    Margins  `mapstructure:"workarea_margins"`
	FullscreenUsesExactMonitorGeometry bool     `mapstructure:"fullscreen_uses_exact_monitor_geometry"`
	ShouldFocusOnMap                   string   `mapstructure:"should_focus_on_map"`
	LogVerbosity                       int      `mapstructure:"log_verbosity"`
	LogJSON                            bool     `mapstructure:"log_json"`
	AutostartPrefix                    string   `mapstructure:"autostart_prefix"`
	ClientListOrder                    string   `mapstructure:"client_list_order"`
	IgnoredWindowTypes                 []string `mapstructure:"ignored_window_types"`
}

// Margins reserves additional workarea space beyond published struts.
type Margins struct {
	Top, Bottom, Left, Right int `mapstructure:"top,bottom,left,right"`
}

// Default returns the configuration hxm runs with absent any file.
func Default() Config {
	return Config{
		MaxEventsPerTick:                   256,
		CookieAbandonAfterMS:               5000,
		InteractiveHz:                      60,
		FullscreenUsesExactMonitorGeometry: false,
		ShouldFocusOnMap:                   "normal-and-dialog",
		LogVerbosity:                       0,
		LogJSON:                            false,
		AutostartPrefix:                    "hxm",
		ClientListOrder:                    "mapping",
	}
}

var (
	globalConfig *Config
	viperInst    *viper.Viper
)

// Load resolves and parses hxm.toml via the three-level XDG fallback,
// caching the result. A missing file is not an error — defaults apply.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal hxm config")
	}

	globalConfig = &cfg
	return globalConfig, nil
}

// Reset clears cached state, for tests and --reconfigure.
func Reset() {
	globalConfig = nil
	viperInst = nil
}

// ResolvedPaths returns the three candidate config paths in fallback
// order, whether or not any of them exist.
func ResolvedPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "hxm", "hxm.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "hxm", "hxm.toml"))
	}
	paths = append(paths, "/etc/hxm/hxm.toml")
	return paths
}

// ActivePath returns the first candidate path that exists on disk, or
// "" if none do (defaults apply).
func ActivePath() string {
	for _, p := range ResolvedPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// AutostartScript returns the path to the per-prefix autostart
// executable, following the same three-level fallback as the config
// file itself but rooted at prefix instead of hxm/hxm.toml.
func AutostartScript(prefix string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		p := filepath.Join(xdg, prefix, "autostart")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", prefix, "autostart")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join("/etc", prefix, "autostart")
}

func initViper() *viper.Viper {
	if viperInst != nil {
		return viperInst
	}

	v := viper.New()
	v.SetEnvPrefix("HXM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := ActivePath(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		// A present-but-unparseable file is surfaced by Load's Unmarshal
		// error path rather than here, so callers get one error site.
		_ = v.ReadInConfig()
	}

	viperInst = v
	return v
}
