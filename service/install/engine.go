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

// Engine installs the base engine version through the external install
// collaborator, retrying transient failures. When every attempt failed but
// the target version is already present on disk - a prior partial run may
// have completed it, or the error hit a redundant metadata step - the stage
// accepts the existing installation instead of failing.
type Engine struct {
	installer minecraft.Installer
	inventory *minecraft.Inventory
	attempts  int
	delay     time.Duration
}

// NewEngine returns the base engine stage executor.
func NewEngine(installer minecraft.Installer, inventory *minecraft.Inventory, attempts int, delay time.Duration) *Engine {
	return &Engine{installer: installer, inventory: inventory, attempts: attempts, delay: delay}
}

// Install runs the stage over its allocated progress sub-range. It returns
// nil when the target version is installed or already present.
func (e *Engine) Install(ctx context.Context, version, root string, tracker *progress.Tracker, span progress.Span) error {
	logger := ctxlog.FromContext(ctx)
	base := fmt.Sprintf("Installing Minecraft %s", version)
	tracker.BeginStage(span, base)
	callback := minecraft.Callback{
		SetStatus:   tracker.SetStatus,
		SetProgress: tracker.SetProgress,
		SetMax:      tracker.SetMax,
	}

	err := withRetry(ctx, e.attempts, e.delay,
		func(attempt int) error {
			if attempt > 1 {
				tracker.Report(fmt.Sprintf("Retrying %s (Attempt %d/%d)...", base, attempt, e.attempts), span.Start)
			} else {
				tracker.Report(fmt.Sprintf("%s (Attempt 1/%d)...", base, e.attempts), span.Start)
			}
			return e.installer.Install(ctx, version, root, callback)
		},
		func(ctx context.Context) bool {
			installed, probeErr := e.inventory.IsInstalled(ctx, root, version)
			if probeErr != nil {
				logger.Error("could not check for existing version after install errors", "version", version, "error", probeErr)
				return false
			}
			if installed {
				logger.Warn("installation failed but version exists on disk, continuing", "version", version)
				tracker.Report(fmt.Sprintf("Using existing Minecraft %s.", version), span.End)
			}
			return installed
		})
	if err != nil {
		message := classifyEngineError(version, err)
		logger.Error("engine install failed", "version", version, "error", err)
		tracker.Error(message, span.Start)
		return fmt.Errorf("%s: %w", message, err)
	}

	tracker.Report(fmt.Sprintf("Minecraft %s installation complete.", version), span.End)
	return nil
}

// classifyEngineError derives a cause-specific user-facing message from the
// error text: network, checksum/integrity or generic.
func classifyEngineError(version string, err error) string {
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "connection") || strings.Contains(text, "no such host") || strings.Contains(text, "timeout"):
		return fmt.Sprintf("Failed to install Minecraft %s: network error (check connection?)", version)
	case strings.Contains(text, "checksum"):
		return fmt.Sprintf("Failed to install Minecraft %s: file download error (checksum mismatch)", version)
	default:
		return fmt.Sprintf("Failed to install Minecraft %s", version)
	}
}
