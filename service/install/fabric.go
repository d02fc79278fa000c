package install

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modsmith/launcher/internal/ctxlog"
	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/service/minecraft"
)

// Fabric installs the library-managed loader. The collaborator does not
// return the resulting version identifier, so the stage scans the inventory
// for a structural match and falls back to the conventional constructed
// identifier - an install without a verifiable artifact is never trusted.
type Fabric struct {
	installer minecraft.FabricInstaller
	inventory *minecraft.Inventory
	attempts  int
	delay     time.Duration
}

// NewFabric returns the loader-kind-B stage executor.
func NewFabric(installer minecraft.FabricInstaller, inventory *minecraft.Inventory, attempts int, delay time.Duration) *Fabric {
	return &Fabric{installer: installer, inventory: inventory, attempts: attempts, delay: delay}
}

// Install runs the stage and returns the resolved version identifier.
func (f *Fabric) Install(ctx context.Context, engineVersion, loaderVersion, root string, tracker *progress.Tracker, span progress.Span) (string, error) {
	logger := ctxlog.FromContext(ctx)
	base := fmt.Sprintf("Installing Fabric %s", loaderVersion)
	tracker.BeginStage(span, base)
	callback := minecraft.Callback{
		SetStatus:   tracker.SetStatus,
		SetProgress: tracker.SetProgress,
		SetMax:      tracker.SetMax,
	}

	versionID := ""
	err := withRetry(ctx, f.attempts, f.delay,
		func(attempt int) error {
			if attempt > 1 {
				tracker.Report(fmt.Sprintf("Retrying %s (Attempt %d/%d)...", base, attempt, f.attempts), span.Start)
			} else {
				tracker.Report(fmt.Sprintf("%s (Attempt 1/%d)...", base, f.attempts), span.Start)
			}
			if err := f.installer.InstallFabric(ctx, engineVersion, loaderVersion, root, callback); err != nil {
				return err
			}
			id, err := f.resolveVersionID(ctx, engineVersion, loaderVersion, root)
			if err != nil {
				return err
			}
			versionID = id
			return nil
		}, nil)
	if err != nil {
		logger.Error("fabric install failed", "loaderVersion", loaderVersion, "error", err)
		tracker.Error(fmt.Sprintf("Failed to install Fabric %s: %v", loaderVersion, err), span.Start)
		return "", fmt.Errorf("failed to install fabric %s: %w", loaderVersion, err)
	}

	tracker.Report(fmt.Sprintf("Fabric %s installation complete.", loaderVersion), span.End)
	return versionID, nil
}

// resolveVersionID finds the installed identifier: first a structural match
// over the inventory, then the constructed fallback identifier which must
// itself exist to be accepted.
func (f *Fabric) resolveVersionID(ctx context.Context, engineVersion, loaderVersion, root string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	versions, err := f.inventory.List(ctx, root)
	if err != nil {
		return "", fmt.Errorf("failed to list installed versions: %w", err)
	}
	for _, version := range versions {
		if version.Type == "release" &&
			strings.Contains(version.ID, engineVersion) &&
			strings.Contains(version.ID, "fabric-loader") &&
			strings.Contains(version.ID, loaderVersion) {
			logger.Info("detected fabric version id", "id", version.ID)
			return version.ID, nil
		}
	}
	fallback := fmt.Sprintf("fabric-loader-%s-%s", loaderVersion, engineVersion)
	logger.Warn("could not auto-detect fabric version id, trying fallback", "fallback", fallback)
	for _, version := range versions {
		if version.ID == fallback {
			return fallback, nil
		}
	}
	return "", fmt.Errorf("fabric install reported success, but neither a detected nor the fallback id (%s) exists", fallback)
}
