// Package settings persists the user-chosen launcher settings as a single
// JSON record. Loading never fails - a missing or malformed record falls
// back to defaults - and saving merges validated edits into the full record.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/modsmith/launcher/internal/ctxlog"
	"github.com/modsmith/launcher/model"
)

// Service implements the local settings store.
type Service struct {
	fs       afs.Service
	location string
	mux      sync.Mutex
	current  *model.Settings
}

// New returns a store persisting to the supplied location (any afs URL; a
// plain path addresses the local file scheme).
func New(fs afs.Service, location string) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, location: location}
}

// Load reads the persisted record if present and merges it over defaults so
// every recognised key is populated. Missing file, malformed content or a
// wrong top-level shape all degrade to defaults without failing.
func (s *Service) Load(ctx context.Context) *model.Settings {
	logger := ctxlog.FromContext(ctx)
	loaded := model.DefaultSettings()

	exists, err := s.fs.Exists(ctx, s.location)
	if err != nil {
		logger.Warn("settings existence check failed, using defaults", "location", s.location, "error", err)
	}
	if err == nil && exists {
		data, err := s.fs.DownloadWithURL(ctx, s.location)
		if err != nil {
			logger.Error("failed to read settings, using defaults", "location", s.location, "error", err)
		} else if err := json.Unmarshal(data, loaded); err != nil {
			logger.Error("settings record is malformed, using defaults", "location", s.location, "error", err)
			loaded = model.DefaultSettings()
		}
	} else if err == nil {
		logger.Info("no settings record found, using defaults", "location", s.location)
	}

	loaded.ApplyDefaults()
	s.mux.Lock()
	s.current = loaded
	s.mux.Unlock()
	return loaded
}

// Option mutates optional fields of the record during Save.
type Option func(*model.Settings)

// WithManifestURL updates the manifest source locator.
func WithManifestURL(locator string) Option {
	return func(settings *model.Settings) { settings.ManifestURL = locator }
}

// WithMaxRAM updates the resource allocation string.
func WithMaxRAM(maxRAM string) Option {
	return func(settings *model.Settings) { settings.MaxRAM = maxRAM }
}

// Save merges the supplied fields into the current record and writes the
// full record, creating parent directories as needed. An empty nickname
// fails the save without touching disk. I/O and serialisation problems are
// logged and reported as false - they never escape this boundary.
func (s *Service) Save(ctx context.Context, nickname string, options ...Option) bool {
	logger := ctxlog.FromContext(ctx)
	if nickname == "" {
		logger.Warn("refusing to save settings with empty nickname")
		return false
	}

	s.mux.Lock()
	defer s.mux.Unlock()
	if s.current == nil {
		s.current = model.DefaultSettings()
	}
	s.current.Nickname = nickname
	for _, option := range options {
		option(s.current)
	}
	s.current.ApplyDefaults()

	data, err := json.MarshalIndent(s.current, "", "    ")
	if err != nil {
		logger.Error("failed to serialise settings", "error", err)
		return false
	}
	if err := s.fs.Upload(ctx, s.location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		logger.Error("failed to write settings", "location", s.location, "error", err)
		return false
	}
	logger.Info("settings saved", "location", s.location)
	return true
}

// Current returns the record held in memory; callers mutate it through
// defined checkpoints only (the bundle stage bumps InstalledRevision).
func (s *Service) Current() *model.Settings {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.current == nil {
		s.current = model.DefaultSettings()
	}
	return s.current
}
