package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"time"
)

// RetryConfig bounds one stage's retry loop.
type RetryConfig struct {
	Attempts int           `json:"attempts" yaml:"attempts"`
	Delay    time.Duration `json:"delay" yaml:"delay"`
}

// Config is a serialisable representation of the engine configuration. The
// zero value is not useful on its own - start from DefaultConfig and adjust.
type Config struct {
	// SettingsLocation is the afs URL (or plain path) of the local
	// settings record.
	SettingsLocation string `json:"settingsLocation" yaml:"settingsLocation"`
	// InstallRoot is the installation root directory; empty selects the
	// per-OS default.
	InstallRoot string `json:"installRoot" yaml:"installRoot"`
	// ContentDir is the content bundle directory; empty selects
	// <InstallRoot>/mods.
	ContentDir string `json:"contentDir" yaml:"contentDir"`

	Engine RetryConfig `json:"engine" yaml:"engine"`
	Fabric RetryConfig `json:"fabric" yaml:"fabric"`
}

// DefaultConfig returns a Config populated with the defaults used by the
// stage executors: three attempts with a five second inter-attempt delay.
func DefaultConfig() *Config {
	return &Config{
		SettingsLocation: "launcher_config.json",
		Engine:           RetryConfig{Attempts: 3, Delay: 5 * time.Second},
		Fabric:           RetryConfig{Attempts: 3, Delay: 5 * time.Second},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Engine.Attempts <= 0 {
		return fmt.Errorf("engine.attempts must be > 0")
	}
	if c.Fabric.Attempts <= 0 {
		return fmt.Errorf("fabric.attempts must be > 0")
	}
	return nil
}

// DefaultInstallRoot determines the conventional installation root for the
// current operating system.
func DefaultInstallRoot() string {
	switch goruntime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), ".minecraft")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", ".minecraft")
		}
		candidate := filepath.Join(home, "Library", "Application Support", "minecraft")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		return filepath.Join(home, ".minecraft")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", ".minecraft")
		}
		return filepath.Join(home, ".minecraft")
	}
}
