package install

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"

	"github.com/modsmith/launcher/internal/ctxlog"
	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/service/minecraft"
)

const (
	forgeMavenBase = "https://maven.minecraftforge.net/net/minecraftforge/forge"
	// probeTimeout bounds the availability HEAD request.
	probeTimeout = 15 * time.Second
	// installerTimeout bounds the wall clock of the installer child process.
	installerTimeout = 300 * time.Second

	downloadAttempts = 3
	downloadDelay    = 5 * time.Second
)

// CommandRunner abstracts the local shell runner so tests can fake the
// installer child process.
type CommandRunner interface {
	Run(ctx context.Context, command string, timeout time.Duration) (output string, status int, err error)
}

// goshRunner executes commands through a lazily created local gosh session.
type goshRunner struct {
	mux     sync.Mutex
	service *gosh.Service
}

func (r *goshRunner) Run(ctx context.Context, command string, timeout time.Duration) (string, int, error) {
	r.mux.Lock()
	if r.service == nil {
		service, err := gosh.New(ctx, local.New())
		if err != nil {
			r.mux.Unlock()
			return "", -1, fmt.Errorf("failed to open local shell session: %w", err)
		}
		r.service = service
	}
	service := r.service
	r.mux.Unlock()

	started := time.Now()
	output, status, err := service.Run(ctx, command, runner.WithTimeout(int(timeout.Milliseconds())))
	if elapsed := time.Since(started); elapsed > timeout && err == nil {
		err = fmt.Errorf("command timed out after %s", elapsed)
	}
	return output, status, err
}

// Forge installs the installer-jar based loader: availability probe,
// download, child-process install run, verification against the inventory.
// The downloaded installer artifact is removed on every exit path.
type Forge struct {
	fs        afs.Service
	client    *http.Client
	inventory *minecraft.Inventory
	runner    CommandRunner
	lookPath  func(name string) (string, error)
	mavenBase string
}

// NewForge returns the loader-kind-A stage executor.
func NewForge(fs afs.Service, client *http.Client, inventory *minecraft.Inventory) *Forge {
	if fs == nil {
		fs = afs.New()
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Forge{fs: fs, client: client, inventory: inventory, runner: &goshRunner{}, lookPath: exec.LookPath, mavenBase: forgeMavenBase}
}

// Install runs the stage and returns the resulting version identifier
// "{engine}-forge-{loader}" on success.
func (f *Forge) Install(ctx context.Context, engineVersion, loaderVersion, root string, tracker *progress.Tracker, span progress.Span) (string, error) {
	logger := ctxlog.FromContext(ctx)
	versionID := fmt.Sprintf("%s-forge-%s", engineVersion, loaderVersion)
	task := fmt.Sprintf("Forge %s", loaderVersion)
	tracker.Report(fmt.Sprintf("Installing %s...", task), span.Start)

	installerName := fmt.Sprintf("forge-%s-%s-installer.jar", engineVersion, loaderVersion)
	installerURL := fmt.Sprintf("%s/%s-%s/%s", f.mavenBase, engineVersion, loaderVersion, installerName)
	installerPath := url.Join(root, installerName)

	// Sub-ranges mirror the relative cost of each step: a cheap probe, the
	// download, the installer run and a quick verification.
	probeSpan := progress.Span{Start: span.Start, End: span.At(0.05)}
	downloadSpan := progress.Span{Start: probeSpan.End, End: probeSpan.End + (span.End-probeSpan.End)*0.6}
	installSpan := progress.Span{Start: downloadSpan.End, End: downloadSpan.End + (span.End-downloadSpan.End)*0.8}
	verifySpan := progress.Span{Start: installSpan.End, End: span.End}

	// A missing java runtime is an environment problem, not a transient one.
	javaPath, err := f.lookPath("java")
	if err != nil {
		logger.Error("forge install precondition failed: java not found")
		tracker.Error("Error: Java not found. Please install Java and ensure it's in your PATH.", span.Start)
		return "", fmt.Errorf("java executable not found in PATH: %w", err)
	}

	if err := f.probe(ctx, installerURL, task, tracker, probeSpan); err != nil {
		return "", err
	}

	defer func() {
		if exists, _ := f.fs.Exists(ctx, installerPath); exists {
			if err := f.fs.Delete(ctx, installerPath); err != nil {
				logger.Warn("could not delete forge installer artifact", "path", installerPath, "error", err)
			}
		}
	}()

	if err := f.download(ctx, installerURL, installerPath, task, tracker, downloadSpan); err != nil {
		return "", err
	}

	tracker.Report(fmt.Sprintf("Running %s installer...", task), installSpan.Start)
	command := fmt.Sprintf("cd %q && %q -jar %q --installClient", root, javaPath, installerPath)
	logger.Info("running forge installer", "command", command)
	output, status, err := f.runner.Run(ctx, command, installerTimeout)
	if output != "" {
		logger.Info("forge installer output", "output", output)
	}
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "timed out") {
			logger.Error("forge installer timed out", "timeout", installerTimeout)
			tracker.Error(fmt.Sprintf("Error: %s installer timed out.", task), installSpan.Start)
			return "", fmt.Errorf("forge installer timed out after %s", installerTimeout)
		}
		logger.Error("forge installer run failed", "error", err)
		tracker.Error(fmt.Sprintf("Error installing %s: %v", task, err), installSpan.Start)
		return "", fmt.Errorf("forge installer run failed: %w", err)
	}
	if status != 0 {
		message := classifyInstallerOutput(task, status, output)
		logger.Error("forge installer failed", "status", status, "output", output)
		tracker.Error(message, installSpan.Start)
		return "", fmt.Errorf("forge installer exited with code %d", status)
	}
	tracker.Report(fmt.Sprintf("%s installer finished.", task), installSpan.End)

	tracker.Report(fmt.Sprintf("Verifying %s installation...", task), verifySpan.Start)
	installed, err := f.inventory.IsInstalled(ctx, root, versionID)
	if err != nil {
		tracker.Error(fmt.Sprintf("Warning: %s install verification failed.", task), verifySpan.Start)
		return "", fmt.Errorf("failed to verify forge installation: %w", err)
	}
	if !installed {
		logger.Error("forge installer ran but version id not found", "versionID", versionID)
		tracker.Error(fmt.Sprintf("Warning: %s install verification failed.", task), verifySpan.Start)
		return "", fmt.Errorf("forge installer ran, but version %s was not found", versionID)
	}

	tracker.Report(fmt.Sprintf("%s installed successfully.", task), verifySpan.End)
	return versionID, nil
}

// probe checks installer availability with a HEAD request before committing
// to the download. A 404 means no installer exists for this engine version.
func (f *Forge) probe(ctx context.Context, installerURL, task string, tracker *progress.Tracker, span progress.Span) error {
	tracker.Report(fmt.Sprintf("Checking %s installer availability...", task), span.Start)
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	request, err := http.NewRequestWithContext(probeCtx, http.MethodHead, installerURL, nil)
	if err != nil {
		return fmt.Errorf("invalid installer location %s: %w", installerURL, err)
	}
	response, err := f.client.Do(request)
	if err != nil {
		if isTimeout(err) {
			tracker.Error(fmt.Sprintf("Error checking %s availability (Timeout)", task), span.Start)
			return fmt.Errorf("timeout checking forge installer availability")
		}
		tracker.Error(fmt.Sprintf("Error checking %s availability: %v", task, err), span.Start)
		return fmt.Errorf("failed to check forge installer availability: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode == http.StatusNotFound {
		tracker.Error(fmt.Sprintf("Error: %s installer not found for this version", task), span.Start)
		return fmt.Errorf("forge installer not found: HTTP 404")
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		tracker.Error(fmt.Sprintf("Error checking %s availability (HTTP %d)", task, response.StatusCode), span.Start)
		return fmt.Errorf("forge installer availability check failed: HTTP %d", response.StatusCode)
	}
	tracker.Report(fmt.Sprintf("Checking %s installer availability... OK", task), span.End)
	return nil
}

// download retries the streamed installer download, removing any partial
// artifact between attempts.
func (f *Forge) download(ctx context.Context, installerURL, installerPath, task string, tracker *progress.Tracker, span progress.Span) error {
	logger := ctxlog.FromContext(ctx)
	err := withRetry(ctx, downloadAttempts, downloadDelay,
		func(attempt int) error {
			if attempt > 1 {
				tracker.Report(fmt.Sprintf("Retrying %s download (Attempt %d)...", task, attempt), span.Start)
			} else {
				tracker.Report(fmt.Sprintf("Downloading %s installer (Attempt 1)...", task), span.Start)
			}
			_, err := DownloadFile(ctx, f.fs, f.client, installerURL, installerPath, fmt.Sprintf("Downloading %s", task), tracker, span)
			if err != nil {
				if exists, _ := f.fs.Exists(ctx, installerPath); exists {
					_ = f.fs.Delete(ctx, installerPath)
				}
				tracker.Error(fmt.Sprintf("Error downloading %s (Attempt %d): %v", task, attempt, err), span.Start)
			}
			return err
		}, nil)
	if err != nil {
		logger.Error("forge installer download failed", "attempts", downloadAttempts, "error", err)
		tracker.Error(fmt.Sprintf("Error downloading %s installer: %v", task, err), span.Start)
		return fmt.Errorf("failed to download forge installer: %w", err)
	}
	return nil
}

// classifyInstallerOutput maps the captured installer output to a
// best-effort cause-specific message.
func classifyInstallerOutput(task string, status int, output string) string {
	message := fmt.Sprintf("%s installer failed (code %d)", task, status)
	switch {
	case strings.Contains(output, "java.net"):
		return message + ": Network error during install."
	case strings.Contains(output, "FileNotFoundException"):
		return message + ": File not found during install."
	case strings.Contains(output, "Could not find main class"):
		return message + ": Corrupted download or Java issue."
	case strings.Contains(output, "Target directory") && strings.Contains(output, "invalid"):
		return message + ": Invalid target directory?"
	default:
		return message + ". Check log."
	}
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}
	return false
}
