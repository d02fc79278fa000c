package minecraft

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

func uploadVersion(ctx context.Context, t *testing.T, fs afs.Service, root, id, meta string) {
	t.Helper()
	location := url.Join(root, "versions", id, id+".json")
	err := fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader([]byte(meta)))
	assert.Nil(t, err)
}

func TestInventory_List(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	root := "mem://localhost/inventory/list"

	uploadVersion(ctx, t, fs, root, "1.20.1", `{"id":"1.20.1","type":"release"}`)
	uploadVersion(ctx, t, fs, root, "fabric-loader-0.15.11-1.20.1", `{"id":"fabric-loader-0.15.11-1.20.1","type":"release"}`)
	uploadVersion(ctx, t, fs, root, "23w31a", `{"id":"23w31a","type":"snapshot"}`)

	inventory := NewInventory(fs)
	versions, err := inventory.List(ctx, root)
	assert.Nil(t, err)
	assert.Len(t, versions, 3)

	byID := map[string]string{}
	for _, version := range versions {
		byID[version.ID] = version.Type
	}
	assert.Equal(t, "release", byID["1.20.1"])
	assert.Equal(t, "snapshot", byID["23w31a"])
	assert.Equal(t, "release", byID["fabric-loader-0.15.11-1.20.1"])
}

func TestInventory_ListMissingRoot(t *testing.T) {
	inventory := NewInventory(afs.New())
	versions, err := inventory.List(context.Background(), "mem://localhost/inventory/absent")
	assert.Nil(t, err)
	assert.Empty(t, versions)
}

func TestInventory_ListUnreadableMetaDefaultsToRelease(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	root := "mem://localhost/inventory/badmeta"
	uploadVersion(ctx, t, fs, root, "1.19.4", `not json at all`)

	inventory := NewInventory(fs)
	versions, err := inventory.List(ctx, root)
	assert.Nil(t, err)
	if assert.Len(t, versions, 1) {
		assert.Equal(t, "release", versions[0].Type)
	}
}

func TestInventory_IsInstalled(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	root := "mem://localhost/inventory/installed"
	uploadVersion(ctx, t, fs, root, "1.20.1-forge-47.2.0", `{"id":"1.20.1-forge-47.2.0"}`)

	inventory := NewInventory(fs)
	installed, err := inventory.IsInstalled(ctx, root, "1.20.1-forge-47.2.0")
	assert.Nil(t, err)
	assert.True(t, installed)

	installed, err = inventory.IsInstalled(ctx, root, "1.20.1")
	assert.Nil(t, err)
	assert.False(t, installed)
}
