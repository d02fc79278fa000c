package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLoaderKind(t *testing.T) {
	testCases := []struct {
		description string
		raw         string
		expect      LoaderKind
	}{
		{description: "forge", raw: "forge", expect: LoaderForge},
		{description: "fabric", raw: "fabric", expect: LoaderFabric},
		{description: "mixed case", raw: "Forge", expect: LoaderForge},
		{description: "padded", raw: "  fabric  ", expect: LoaderFabric},
		{description: "empty", raw: "", expect: LoaderNone},
		{description: "unknown maps to none", raw: "quilt", expect: LoaderNone},
	}
	for _, testCase := range testCases {
		actual := ParseLoaderKind(testCase.raw)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestRemoteManifest_Loader(t *testing.T) {
	testCases := []struct {
		description string
		manifest    RemoteManifest
		expect      LoaderKind
	}{
		{
			description: "forge with version",
			manifest:    RemoteManifest{LoaderType: "forge", LoaderVersion: "47.2.0"},
			expect:      LoaderForge,
		},
		{
			description: "loader without version is vanilla",
			manifest:    RemoteManifest{LoaderType: "fabric"},
			expect:      LoaderNone,
		},
		{
			description: "no loader",
			manifest:    RemoteManifest{EngineVersion: "1.20.1"},
			expect:      LoaderNone,
		},
	}
	for _, testCase := range testCases {
		actual := testCase.manifest.Loader()
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestRemoteManifest_Label(t *testing.T) {
	testCases := []struct {
		description string
		manifest    RemoteManifest
		expect      string
	}{
		{
			description: "explicit name wins",
			manifest:    RemoteManifest{EngineVersion: "1.20.1", VersionName: "SkyFactory 5"},
			expect:      "SkyFactory 5",
		},
		{
			description: "fallback with loader",
			manifest:    RemoteManifest{EngineVersion: "1.20.1", LoaderType: "forge", LoaderVersion: "47.2.0"},
			expect:      "1.20.1 (forge)",
		},
		{
			description: "fallback vanilla",
			manifest:    RemoteManifest{EngineVersion: "1.20.1"},
			expect:      "1.20.1 (Vanilla)",
		},
	}
	for _, testCase := range testCases {
		actual := testCase.manifest.Label()
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestRemoteManifest_Validate(t *testing.T) {
	valid := &RemoteManifest{EngineVersion: "1.20.1"}
	assert.Nil(t, valid.Validate())

	missing := &RemoteManifest{LoaderType: "forge"}
	err := missing.Validate()
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "'mc_version' missing")
	}
}
