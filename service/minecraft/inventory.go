package minecraft

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"github.com/modsmith/launcher/internal/ctxlog"
)

// Version is one entry of the installed-version listing.
type Version struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Inventory answers "what is already installed under this root" by probing
// the versions directory on disk. The filesystem is the system of record -
// there is deliberately no separate installation-state file - so this probe
// is the idempotence mechanism for every stage executor.
type Inventory struct {
	fs afs.Service
}

// NewInventory returns an inventory backed by the supplied abstract file
// service; tests pass a mem:// rooted service.
func NewInventory(fs afs.Service) *Inventory {
	if fs == nil {
		fs = afs.New()
	}
	return &Inventory{fs: fs}
}

// List enumerates installed versions under <root>/versions. A version is a
// subdirectory holding <id>.json; the declared type defaults to "release"
// when the metadata cannot be read.
func (i *Inventory) List(ctx context.Context, root string) ([]Version, error) {
	versionsDir := url.Join(root, "versions")
	exists, err := i.fs.Exists(ctx, versionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to check versions directory %s: %w", versionsDir, err)
	}
	if !exists {
		return nil, nil
	}
	objects, err := i.fs.List(ctx, versionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions at %s: %w", versionsDir, err)
	}
	var result []Version
	for _, object := range objects {
		if !object.IsDir() || object.Name() == "" || url.Equals(object.URL(), versionsDir) {
			continue
		}
		id := object.Name()
		version := Version{ID: id, Type: "release"}
		metaURL := url.Join(versionsDir, id, id+".json")
		if data, err := i.fs.DownloadWithURL(ctx, metaURL); err == nil {
			var meta struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data, &meta); err == nil && meta.Type != "" {
				version.Type = meta.Type
			}
		} else {
			ctxlog.FromContext(ctx).Debug("version metadata unreadable", "id", id, "error", err)
		}
		result = append(result, version)
	}
	return result, nil
}

// IsInstalled reports whether the exact version identifier is present.
func (i *Inventory) IsInstalled(ctx context.Context, root, id string) (bool, error) {
	versions, err := i.List(ctx, root)
	if err != nil {
		return false, err
	}
	for _, version := range versions {
		if version.ID == id {
			return true, nil
		}
	}
	return false, nil
}
