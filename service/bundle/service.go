// Package bundle keeps the content directory in sync with the manifest's
// declared bundle revision: it clears stale content, downloads the archive
// via a direct-HTTP or bulk-provider strategy, extracts it and normalises a
// single-wrapper-directory layout.
package bundle

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"github.com/modsmith/launcher/internal/ctxlog"
	"github.com/modsmith/launcher/internal/idgen"
	"github.com/modsmith/launcher/model"
	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/service/install"
)

// downloadTimeout bounds the direct-HTTP archive download.
const downloadTimeout = 300 * time.Second

// Service is the content bundle stage executor.
type Service struct {
	fs     afs.Service
	client *http.Client
}

// New returns the bundle synchronizer.
func New(fs afs.Service, client *http.Client) *Service {
	if fs == nil {
		fs = afs.New()
	}
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	return &Service{fs: fs, client: client}
}

// Sync applies the revision decision table: no configured bundle clears any
// leftover content; a remote revision at or below the local one is a no-op;
// a newer revision clears, downloads, extracts and normalises. The local
// revision is bumped in memory only after extraction succeeded - persisting
// it is the orchestrator's checkpoint.
func (s *Service) Sync(ctx context.Context, bundleURL string, remoteRevision int, settings *model.Settings, contentDir string, tracker *progress.Tracker, span progress.Span) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("checking content bundle", "remoteRevision", remoteRevision, "localRevision", settings.InstalledRevision, "url", bundleURL)

	clearSpan := progress.Span{Start: span.Start, End: span.At(0.1)}
	downloadSpan := progress.Span{Start: clearSpan.End, End: clearSpan.End + (span.End-clearSpan.End)*0.6}
	extractSpan := progress.Span{Start: downloadSpan.End, End: downloadSpan.End + (span.End-downloadSpan.End)*0.8}
	structureSpan := progress.Span{Start: extractSpan.End, End: span.End}

	if bundleURL == "" {
		empty, err := s.isEmpty(ctx, contentDir)
		if err != nil {
			logger.Error("could not inspect content directory", "dir", contentDir, "error", err)
			tracker.Error(fmt.Sprintf("Error inspecting mods folder: %v", err), clearSpan.Start)
			return fmt.Errorf("failed to inspect content directory %s: %w", contentDir, err)
		}
		if !empty {
			tracker.Report("No modpack configured. Clearing local mods folder...", clearSpan.Start)
			if err := s.clear(ctx, contentDir, tracker, clearSpan); err != nil {
				return err
			}
			tracker.Report("Local mods folder cleared.", span.End)
			return nil
		}
		tracker.Report("No modpack configured.", span.End)
		return nil
	}

	if remoteRevision <= settings.InstalledRevision {
		logger.Info("content bundle is up to date")
		tracker.Report("Modpack is up-to-date.", span.End)
		return nil
	}

	tracker.Report(fmt.Sprintf("New version (%d) found. Updating modpack...", remoteRevision), span.Start)
	if err := s.clear(ctx, contentDir, tracker, clearSpan); err != nil {
		return err
	}

	archivePath := url.Join(os.TempDir(), idgen.Artifact("mods", ".zip"))
	defer func() {
		if exists, _ := s.fs.Exists(ctx, archivePath); exists {
			if err := s.fs.Delete(ctx, archivePath); err != nil {
				logger.Warn("could not delete bundle artifact", "path", archivePath, "error", err)
			}
		}
	}()

	if err := s.download(ctx, bundleURL, archivePath, tracker, downloadSpan); err != nil {
		return err
	}

	tracker.Report("Extracting modpack...", extractSpan.Start)
	if err := s.extract(ctx, archivePath, contentDir); err != nil {
		if errors.Is(err, zip.ErrFormat) {
			logger.Error("bundle archive is malformed", "path", archivePath)
			tracker.Error("Error: Downloaded modpack file is corrupted or not a zip.", extractSpan.Start)
			return fmt.Errorf("bundle archive is not a valid zip: %w", err)
		}
		logger.Error("bundle extraction failed", "error", err)
		tracker.Error(fmt.Sprintf("Error extracting mods: %v", err), extractSpan.Start)
		return fmt.Errorf("failed to extract bundle: %w", err)
	}
	tracker.Report("Modpack extracted.", extractSpan.End)

	tracker.Report("Checking modpack structure...", structureSpan.Start)
	s.normalize(ctx, contentDir)
	tracker.Report("Modpack structure checked.", structureSpan.End)

	settings.InstalledRevision = remoteRevision
	tracker.Report("Modpack update process complete.", span.End)
	return nil
}

// download picks the transport by inspecting the locator: a plain http(s)
// URL ending in a recognised archive extension streams with fine progress;
// anything else goes through the bulk storage provider, whose client exposes
// no granular progress - the bar parks mid-range rather than erroring.
func (s *Service) download(ctx context.Context, bundleURL, archivePath string, tracker *progress.Tracker, span progress.Span) error {
	logger := ctxlog.FromContext(ctx)
	if isDirectArchiveURL(bundleURL) {
		logger.Info("downloading bundle via direct http", "url", bundleURL)
		tracker.Report("Downloading modpack...", span.Start)
		if _, err := install.DownloadFile(ctx, s.fs, s.client, bundleURL, archivePath, "Downloading modpack", tracker, span); err != nil {
			logger.Error("bundle download failed", "url", bundleURL, "error", err)
			tracker.Error(fmt.Sprintf("Error downloading modpack: %v", err), span.Start)
			return fmt.Errorf("failed to download bundle: %w", err)
		}
		return nil
	}
	logger.Info("downloading bundle via storage provider", "url", bundleURL)
	tracker.Report("Downloading modpack (storage provider)...", span.At(0.5))
	if err := s.fs.Copy(ctx, bundleURL, archivePath); err != nil {
		logger.Error("provider bundle download failed", "url", bundleURL, "error", err)
		tracker.Error(fmt.Sprintf("Error downloading modpack (check URL/permissions?): %v", err), span.Start)
		return fmt.Errorf("failed to download bundle from provider: %w", err)
	}
	tracker.Report("Modpack downloaded. Extracting...", span.End)
	return nil
}

// clear removes the immediate children of the content directory. Per-item
// failures are counted and logged without aborting the sweep; any failure at
// the end fails the step, since permission problems will poison the sync.
func (s *Service) clear(ctx context.Context, contentDir string, tracker *progress.Tracker, span progress.Span) error {
	logger := ctxlog.FromContext(ctx)
	exists, err := s.fs.Exists(ctx, contentDir)
	if err != nil {
		logger.Warn("could not check content directory", "dir", contentDir, "error", err)
	}
	if !exists {
		tracker.Report("Mods directory clear (already empty).", span.End)
		return nil
	}

	tracker.Report("Deleting old mods...", span.Start)
	children, err := s.children(ctx, contentDir)
	if err != nil {
		logger.Error("failed to list content directory", "dir", contentDir, "error", err)
		tracker.Error(fmt.Sprintf("Error clearing mods folder: %v", err), span.Start)
		return fmt.Errorf("failed to list content directory: %w", err)
	}

	failed := 0
	for i, child := range children {
		if err := s.fs.Delete(ctx, child); err != nil {
			failed++
			logger.Error("failed to delete content entry", "entry", child, "error", err)
			continue
		}
		if len(children) > 0 && (i%5 == 0 || i == len(children)-1) {
			frac := float64(i+1) / float64(len(children))
			tracker.Report(fmt.Sprintf("Deleting old mods... (%d/%d)", i+1, len(children)), span.At(frac))
		}
	}
	if failed > 0 {
		tracker.Error(fmt.Sprintf("Error: Could not delete all old mods (failed: %d). Check permissions.", failed), span.Start)
		return fmt.Errorf("failed to delete %d entries in content directory", failed)
	}
	tracker.Report("Old mods deleted.", span.End)
	return nil
}

// extract unpacks the archive into the content directory. Entries whose
// cleaned path resolves outside the directory fail the extraction.
func (s *Service) extract(ctx context.Context, archivePath, contentDir string) error {
	localPath := url.Path(archivePath)
	reader, err := zip.OpenReader(localPath)
	if err != nil {
		return err
	}
	defer reader.Close()
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(entry.Name)
		if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return fmt.Errorf("archive entry %s escapes the content directory", entry.Name)
		}
		source, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
		}
		err = s.fs.Upload(ctx, url.Join(contentDir, name), entry.Mode(), source)
		_ = source.Close()
		if err != nil {
			return fmt.Errorf("failed to write archive entry %s: %w", entry.Name, err)
		}
	}
	return nil
}

// normalize hoists the payload of a single top-level wrapper directory up
// one level; archives frequently wrap their content this way. Failure to
// remove the emptied wrapper is tolerated.
func (s *Service) normalize(ctx context.Context, contentDir string) {
	logger := ctxlog.FromContext(ctx)
	children, err := s.children(ctx, contentDir)
	if err != nil {
		logger.Warn("could not inspect content directory structure", "dir", contentDir, "error", err)
		return
	}
	if len(children) != 1 {
		return
	}
	wrapper := children[0]
	object, err := s.fs.Object(ctx, wrapper)
	if err != nil || !object.IsDir() {
		return
	}
	logger.Warn("detected single nested directory, moving contents up", "wrapper", wrapper)
	nested, err := s.children(ctx, wrapper)
	if err != nil {
		logger.Error("failed to list nested directory", "wrapper", wrapper, "error", err)
		return
	}
	moved := 0
	for _, item := range nested {
		target := url.Join(contentDir, path.Base(url.Path(item)))
		if err := s.fs.Move(ctx, item, target); err != nil {
			logger.Error("failed to move nested entry", "entry", item, "error", err)
			continue
		}
		moved++
	}
	logger.Info("hoisted nested directory contents", "moved", moved)
	if err := s.fs.Delete(ctx, wrapper); err != nil {
		logger.Warn("could not remove emptied wrapper directory", "wrapper", wrapper, "error", err)
	}
}

// children lists the immediate entries of dir, excluding dir itself.
func (s *Service) children(ctx context.Context, dir string) ([]string, error) {
	objects, err := s.fs.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	var result []string
	for _, object := range objects {
		if url.Equals(object.URL(), dir) || object.Name() == "" || object.Name() == "." {
			continue
		}
		result = append(result, url.Join(dir, object.Name()))
	}
	return result, nil
}

func (s *Service) isEmpty(ctx context.Context, dir string) (bool, error) {
	exists, err := s.fs.Exists(ctx, dir)
	if err != nil || !exists {
		return true, err
	}
	children, err := s.children(ctx, dir)
	if err != nil {
		return true, err
	}
	return len(children) == 0, nil
}

// isDirectArchiveURL reports whether the locator qualifies for the streamed
// direct-HTTP strategy.
func isDirectArchiveURL(bundleURL string) bool {
	lower := strings.ToLower(bundleURL)
	return (strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")) &&
		strings.HasSuffix(lower, ".zip")
}
