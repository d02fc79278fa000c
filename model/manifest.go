package model

import (
	"fmt"
	"strings"
)

// LoaderKind identifies the mod loader requested by a remote manifest.
type LoaderKind string

const (
	// LoaderNone selects the vanilla engine with no loader on top.
	LoaderNone LoaderKind = ""
	// LoaderForge selects the installer-jar based loader.
	LoaderForge LoaderKind = "forge"
	// LoaderFabric selects the library-managed loader.
	LoaderFabric LoaderKind = "fabric"
)

// ParseLoaderKind normalises a raw loader_type value. Unrecognised or empty
// values map to LoaderNone - an unknown loader is the vanilla path, not an
// error.
func ParseLoaderKind(raw string) LoaderKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(LoaderForge):
		return LoaderForge
	case string(LoaderFabric):
		return LoaderFabric
	}
	return LoaderNone
}

// RemoteManifest describes the desired installation target. It is fetched
// fresh on every run and never persisted verbatim.
type RemoteManifest struct {
	EngineVersion string   `json:"mc_version" yaml:"mc_version"`
	LoaderType    string   `json:"loader_type,omitempty" yaml:"loader_type,omitempty"`
	LoaderVersion string   `json:"loader_version,omitempty" yaml:"loader_version,omitempty"`
	BundleURL     string   `json:"mods_url,omitempty" yaml:"mods_url,omitempty"`
	Revision      int      `json:"launcher_version,omitempty" yaml:"launcher_version,omitempty"`
	VersionName   string   `json:"version_name,omitempty" yaml:"version_name,omitempty"`
	JVMArgs       []string `json:"jvm_args,omitempty" yaml:"jvm_args,omitempty"`
}

// Loader returns the normalised loader kind. A loader without a version is
// treated as no loader.
func (m *RemoteManifest) Loader() LoaderKind {
	kind := ParseLoaderKind(m.LoaderType)
	if kind != LoaderNone && m.LoaderVersion == "" {
		return LoaderNone
	}
	return kind
}

// Label returns the human-readable name for this target, falling back to
// "<engine> (<loader>)" when the manifest carries no explicit version_name.
func (m *RemoteManifest) Label() string {
	if m.VersionName != "" {
		return m.VersionName
	}
	loader := string(m.Loader())
	if loader == "" {
		loader = "Vanilla"
	}
	return fmt.Sprintf("%s (%s)", m.EngineVersion, loader)
}

// Validate reports fatal configuration problems. A manifest without an
// engine version cannot drive a run.
func (m *RemoteManifest) Validate() error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}
	if strings.TrimSpace(m.EngineVersion) == "" {
		return fmt.Errorf("'mc_version' missing in remote manifest")
	}
	return nil
}
