package launcher

import (
	"context"
	"fmt"

	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/modsmith/launcher/internal/ctxlog"
	"github.com/modsmith/launcher/model"
	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/service/bundle"
	"github.com/modsmith/launcher/service/install"
	"github.com/modsmith/launcher/service/launch"
	"github.com/modsmith/launcher/service/manifest"
	"github.com/modsmith/launcher/service/settings"
	"github.com/modsmith/launcher/tracing"

	"github.com/viant/afs"
)

// Fixed allocation of the 0-100 scale across the run's stages. Every stage
// owns a disjoint slice so the bar visibly advances stage to stage even when
// sub-task granularity varies wildly.
var (
	fetchSpan  = progress.Span{Start: 0, End: 10}
	dirsSpan   = progress.Span{Start: 10, End: 12}
	engineSpan = progress.Span{Start: 12, End: 35}
	loaderSpan = progress.Span{Start: 35, End: 60}
	bundleSpan = progress.Span{Start: 60, End: 95}
	saveSpan   = progress.Span{Start: 95, End: 96}
	launchSpan = progress.Span{Start: 96, End: 100}
)

// Runtime drives the fixed stage order of a run: settings, manifest, base
// engine, loader, content bundle, settings checkpoint, launch. Stages are
// strictly sequential - each depends on the filesystem state left by the
// previous one. A single run at a time per installation root is assumed;
// concurrent runs from two processes against the same root are unguarded.
type Runtime struct {
	config   *Config
	fs       afs.Service
	tracker  *progress.Tracker
	settings *settings.Service
	manifest *manifest.Service
	engine   *install.Engine
	forge    *install.Forge
	fabric   *install.Fabric
	bundle   *bundle.Service
	launcher *launch.Service
}

// Settings exposes the local settings store for the surrounding surface
// (CLI settings commands edit through it).
func (r *Runtime) Settings() *settings.Service {
	return r.settings
}

// Config returns the runtime configuration.
func (r *Runtime) Config() *Config {
	return r.config
}

// contentDir resolves the content bundle directory.
func (r *Runtime) contentDir() string {
	if r.config.ContentDir != "" {
		return r.config.ContentDir
	}
	return url.Join(r.config.InstallRoot, "mods")
}

// Run executes one full orchestrated run for the supplied display name. It
// returns nil only when the game process was started; every other outcome
// is an error carrying the cause-specific user-facing message. A panic
// anywhere in the sequence is caught here, logged with full context and
// surfaced as a generic failure - the process never crashes on a run.
func (r *Runtime) Run(ctx context.Context, nickname string) (err error) {
	logger := ctxlog.FromContext(ctx)
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("unexpected panic during run", "panic", recovered)
			r.tracker.Message(fmt.Sprintf("An unexpected error occurred: %v", recovered), true)
			err = fmt.Errorf("unexpected error during run: %v", recovered)
		}
	}()
	logger.Info("starting run", "nickname", nickname)

	// Stage 1: validate and persist the player name before anything else.
	local := r.settings.Load(ctx)
	if nickname == "" || !r.settings.Save(ctx, nickname) {
		r.tracker.Message("Error: Nickname cannot be empty or save failed.", true)
		return fmt.Errorf("nickname is empty or could not be saved")
	}

	// Stage 2: fetch the remote manifest.
	ctx2, span := tracing.StartSpan(ctx, "stage.fetchManifest")
	r.tracker.Report("Fetching remote configuration...", fetchSpan.At(0.5))
	remote, fetchErr := r.manifest.Fetch(ctx2, local.ManifestURL)
	tracing.EndSpan(span, fetchErr)
	if fetchErr != nil {
		r.tracker.Error(fetchErr.Error(), fetchSpan.Start)
		return fetchErr
	}
	r.tracker.Report("Remote configuration fetched.", fetchSpan.End)

	// Stage 3: ensure installation directories exist.
	if err := r.ensureDirectories(ctx); err != nil {
		r.tracker.Error(fmt.Sprintf("Error creating directories: %v", err), dirsSpan.Start)
		return fmt.Errorf("failed to create installation directories: %w", err)
	}

	// Stage 4: validate required manifest fields.
	if err := remote.Validate(); err != nil {
		r.tracker.Error(fmt.Sprintf("Error: %v", err), dirsSpan.End)
		return err
	}
	logger.Info("resolved target", "label", remote.Label(), "engine", remote.EngineVersion,
		"loader", remote.Loader(), "loaderVersion", remote.LoaderVersion, "revision", remote.Revision)
	r.tracker.Report(fmt.Sprintf("Preparing: %s", remote.Label()), dirsSpan.End)

	// Stage 5: base engine.
	ctx5, span := tracing.StartSpan(ctx, "stage.engineInstall")
	span.WithAttributes(map[string]string{"engine.version": remote.EngineVersion})
	engineErr := r.engine.Install(ctx5, remote.EngineVersion, r.config.InstallRoot, r.tracker, engineSpan)
	tracing.EndSpan(span, engineErr)
	if engineErr != nil {
		return engineErr
	}

	// Stage 6: loader, selected by manifest kind; no loader is the vanilla
	// path, not an error.
	versionID, loaderErr := r.installLoader(ctx, remote)
	if loaderErr != nil {
		return loaderErr
	}

	// Stage 7: content bundle.
	ctx7, span := tracing.StartSpan(ctx, "stage.bundleSync")
	bundleErr := r.bundle.Sync(ctx7, remote.BundleURL, remote.Revision, local, r.contentDir(), r.tracker, bundleSpan)
	tracing.EndSpan(span, bundleErr)
	if bundleErr != nil {
		return bundleErr
	}

	// Stage 8: settings checkpoint. Mods and engine are already correct on
	// disk, so a failed save is a warning, not an abort.
	r.tracker.Report("Saving configuration...", saveSpan.Start)
	if !r.settings.Save(ctx, nickname) {
		logger.Warn("failed to save settings before launch")
		r.tracker.Error("Warning: Failed to save config.", saveSpan.Start)
	}
	r.tracker.Report("Configuration saved.", saveSpan.End)

	// Stage 9: launch.
	ctx9, span := tracing.StartSpan(ctx, "stage.launch")
	span.WithAttributes(map[string]string{"version.id": versionID})
	launchErr := r.launcher.Launch(ctx9, versionID, r.config.InstallRoot, remote, local, r.tracker, launchSpan)
	tracing.EndSpan(span, launchErr)
	if launchErr != nil {
		return launchErr
	}

	logger.Info("run completed", "versionID", versionID)
	return nil
}

// installLoader dispatches on the manifest's loader kind and returns the
// version identifier to launch.
func (r *Runtime) installLoader(ctx context.Context, remote *model.RemoteManifest) (string, error) {
	logger := ctxlog.FromContext(ctx)
	switch remote.Loader() {
	case model.LoaderForge:
		ctx, span := tracing.StartSpan(ctx, "stage.forgeInstall")
		span.WithAttributes(map[string]string{"loader.version": remote.LoaderVersion})
		versionID, err := r.forge.Install(ctx, remote.EngineVersion, remote.LoaderVersion, r.config.InstallRoot, r.tracker, loaderSpan)
		tracing.EndSpan(span, err)
		return versionID, err
	case model.LoaderFabric:
		ctx, span := tracing.StartSpan(ctx, "stage.fabricInstall")
		span.WithAttributes(map[string]string{"loader.version": remote.LoaderVersion})
		versionID, err := r.fabric.Install(ctx, remote.EngineVersion, remote.LoaderVersion, r.config.InstallRoot, r.tracker, loaderSpan)
		tracing.EndSpan(span, err)
		return versionID, err
	default:
		logger.Info("no loader specified, using vanilla")
		r.tracker.Report("No Mod Loader needed.", loaderSpan.End)
		return remote.EngineVersion, nil
	}
}

// ensureDirectories creates the installation root and the content directory.
func (r *Runtime) ensureDirectories(ctx context.Context) error {
	r.tracker.Report("Checking Minecraft directory...", dirsSpan.Start)
	for _, dir := range []string{r.config.InstallRoot, r.contentDir()} {
		if err := r.fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			if exists, _ := r.fs.Exists(ctx, dir); !exists {
				return err
			}
		}
	}
	return nil
}
