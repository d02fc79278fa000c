// Package manifest fetches the remote manifest describing the desired
// installation target. The document is assumed to be edited independently of
// the launcher, so every fetch bypasses intermediary caches and nothing is
// kept between runs - a failed fetch leaves no stale manifest behind.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/modsmith/launcher/internal/clock"
	"github.com/modsmith/launcher/internal/ctxlog"
	"github.com/modsmith/launcher/model"
)

// DefaultTimeout bounds a single manifest fetch.
const DefaultTimeout = 20 * time.Second

// Service retrieves and decodes remote manifests.
type Service struct {
	client *http.Client
}

// Option customises the fetcher.
type Option func(*Service)

// WithClient overrides the HTTP client (tests inject an httptest client).
func WithClient(client *http.Client) Option {
	return func(s *Service) { s.client = client }
}

// New returns a fetcher with a bounded request timeout.
func New(options ...Option) *Service {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if ret.client == nil {
		ret.client = &http.Client{Timeout: DefaultTimeout}
	}
	return ret
}

// Fetch retrieves the manifest at locator. The locator is normalised to a
// secure scheme when it carries none, and a cache-busting timestamp query
// parameter plus no-cache headers defeat intermediary caching. Distinct
// errors are returned for timeout, network failure, non-2xx status and a
// malformed body.
func (s *Service) Fetch(ctx context.Context, locator string) (*model.RemoteManifest, error) {
	logger := ctxlog.FromContext(ctx)
	if strings.TrimSpace(locator) == "" {
		return nil, fmt.Errorf("manifest locator is not configured")
	}
	if !strings.HasPrefix(locator, "http://") && !strings.HasPrefix(locator, "https://") {
		locator = "https://" + locator
		logger.Warn("manifest locator had no scheme, assuming https", "locator", locator)
	}

	separator := "?"
	if strings.Contains(locator, "?") {
		separator = "&"
	}
	requestURL := fmt.Sprintf("%s%st=%d", locator, separator, clock.Now().Unix())
	logger.Info("fetching remote manifest", "url", requestURL)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest locator %s: %w", locator, err)
	}
	request.Header.Set("Cache-Control", "no-cache")
	request.Header.Set("Pragma", "no-cache")

	response, err := s.client.Do(request)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("timeout fetching remote manifest")
		}
		return nil, fmt.Errorf("failed to fetch remote manifest: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch remote manifest: HTTP %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("timeout fetching remote manifest")
		}
		return nil, fmt.Errorf("failed to read remote manifest: %w", err)
	}

	manifest, err := decode(body)
	if err != nil {
		return nil, err
	}
	logger.Info("fetched remote manifest", "engine", manifest.EngineVersion, "loader", manifest.LoaderType, "revision", manifest.Revision)
	return manifest, nil
}

// decode accepts a JSON body, falling back to YAML for manifests maintained
// as hand-edited documents.
func decode(body []byte) (*model.RemoteManifest, error) {
	manifest := &model.RemoteManifest{}
	if err := json.Unmarshal(body, manifest); err == nil {
		return manifest, nil
	}
	if err := yaml.Unmarshal(body, manifest); err != nil {
		return nil, fmt.Errorf("remote manifest is neither valid JSON nor YAML")
	}
	return manifest, nil
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}
	return false
}
