package model

import (
	"regexp"
	"strings"
)

// DefaultManifestURL is the built-in well-known manifest location used when
// the local settings record carries none.
const DefaultManifestURL = "https://gist.githubusercontent.com/modsmith/launcher-manifest/raw/manifest.json"

// DefaultMaxRAM is the memory ceiling applied when the user has not chosen
// one.
const DefaultMaxRAM = "4G"

var maxRAMPattern = regexp.MustCompile(`^\d+[GM]$`)

// Settings is the single local record persisted across runs.
type Settings struct {
	Nickname          string `json:"nickname"`
	InstalledRevision int    `json:"installed_launcher_version"`
	ManifestURL       string `json:"gist_url"`
	MaxRAM            string `json:"max_ram"`
}

// DefaultSettings returns a fully-populated record with every recognised key
// at its default.
func DefaultSettings() *Settings {
	return &Settings{
		Nickname:          "",
		InstalledRevision: 0,
		ManifestURL:       DefaultManifestURL,
		MaxRAM:            DefaultMaxRAM,
	}
}

// NormalizedMaxRAM returns the upper-cased, trimmed memory ceiling together
// with its validity against the strict <digits><G|M> pattern.
func (s *Settings) NormalizedMaxRAM() (string, bool) {
	value := strings.ToUpper(strings.TrimSpace(s.MaxRAM))
	return value, maxRAMPattern.MatchString(value)
}

// ApplyDefaults fills any unset field so that callers always observe a
// fully-populated record.
func (s *Settings) ApplyDefaults() {
	defaults := DefaultSettings()
	if s.ManifestURL == "" {
		s.ManifestURL = defaults.ManifestURL
	}
	if s.MaxRAM == "" {
		s.MaxRAM = defaults.MaxRAM
	}
}
