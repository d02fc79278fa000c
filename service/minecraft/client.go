package minecraft

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/modsmith/launcher/internal/ctxlog"
)

// Well-known metadata endpoints.
const (
	versionManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	fabricMetaURL      = "https://meta.fabricmc.net/v2/versions/loader/%s/%s/profile/json"
	fabricMavenURL     = "https://maven.fabricmc.net/"
)

// Client is the default implementation of the install collaborators, backed
// by the public version-metadata endpoints. Artifacts already present on
// disk are not fetched again, so repeated installs of the same version are
// cheap no-ops.
type Client struct {
	fs       afs.Service
	client   *http.Client
	lookPath func(file string) (string, error)
}

// NewClient returns a collaborator client with a bounded per-request
// timeout.
func NewClient(fs afs.Service, httpClient *http.Client) *Client {
	if fs == nil {
		fs = afs.New()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 300 * time.Second}
	}
	return &Client{fs: fs, client: httpClient, lookPath: exec.LookPath}
}

var _ Installer = (*Client)(nil)
var _ FabricInstaller = (*Client)(nil)
var _ CommandBuilder = (*Client)(nil)

type versionMeta struct {
	ID           string `json:"id"`
	MainClass    string `json:"mainClass"`
	InheritsFrom string `json:"inheritsFrom,omitempty"`
	Assets       string `json:"assets,omitempty"`
	Downloads    struct {
		Client struct {
			URL string `json:"url"`
		} `json:"client"`
	} `json:"downloads"`
	Libraries []struct {
		Name      string `json:"name"`
		URL       string `json:"url,omitempty"`
		Downloads struct {
			Artifact struct {
				Path string `json:"path"`
				URL  string `json:"url"`
			} `json:"artifact"`
		} `json:"downloads"`
	} `json:"libraries"`
}

// Install downloads the version metadata, client jar and declared library
// artifacts for the requested engine version.
func (c *Client) Install(ctx context.Context, version, root string, cb Callback) error {
	cb.Status("Fetching version manifest")
	var manifest struct {
		Versions []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"versions"`
	}
	if err := c.getJSON(ctx, versionManifestURL, &manifest); err != nil {
		return fmt.Errorf("failed to fetch version manifest: %w", err)
	}
	metaURL := ""
	for _, candidate := range manifest.Versions {
		if candidate.ID == version {
			metaURL = candidate.URL
			break
		}
	}
	if metaURL == "" {
		return fmt.Errorf("version %s not present in version manifest", version)
	}

	cb.Status("Fetching version metadata")
	data, err := c.getBytes(ctx, metaURL)
	if err != nil {
		return fmt.Errorf("failed to fetch metadata for %s: %w", version, err)
	}
	var meta versionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("malformed metadata for %s: %w", version, err)
	}
	if err := c.fs.Upload(ctx, url.Join(root, "versions", version, version+".json"), file.DefaultFileOsMode, strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("failed to store metadata for %s: %w", version, err)
	}

	type artifact struct {
		url  string
		dest string
	}
	artifacts := []artifact{{url: meta.Downloads.Client.URL, dest: url.Join(root, "versions", version, version+".jar")}}
	for _, library := range meta.Libraries {
		art := library.Downloads.Artifact
		if art.URL == "" || art.Path == "" {
			continue
		}
		artifacts = append(artifacts, artifact{url: art.URL, dest: url.Join(root, "libraries", art.Path)})
	}

	cb.Max(len(artifacts))
	for i, art := range artifacts {
		cb.Status(fmt.Sprintf("Downloading %s", url.Path(art.url)))
		if err := c.fetchArtifact(ctx, art.url, art.dest); err != nil {
			return fmt.Errorf("failed to download %s: %w", art.url, err)
		}
		cb.Progress(i + 1)
	}
	return nil
}

// InstallFabric resolves the loader profile from the fabric metadata service
// and materialises it, together with its maven libraries, under root.
func (c *Client) InstallFabric(ctx context.Context, engineVersion, loaderVersion, root string, cb Callback) error {
	cb.Status("Fetching loader profile")
	data, err := c.getBytes(ctx, fmt.Sprintf(fabricMetaURL, engineVersion, loaderVersion))
	if err != nil {
		return fmt.Errorf("failed to fetch fabric profile %s/%s: %w", engineVersion, loaderVersion, err)
	}
	var profile versionMeta
	if err := json.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("malformed fabric profile: %w", err)
	}
	if profile.ID == "" {
		return fmt.Errorf("fabric profile carries no version id")
	}
	if err := c.fs.Upload(ctx, url.Join(root, "versions", profile.ID, profile.ID+".json"), file.DefaultFileOsMode, strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("failed to store fabric profile %s: %w", profile.ID, err)
	}

	cb.Max(len(profile.Libraries))
	for i, library := range profile.Libraries {
		base := library.URL
		if base == "" {
			base = fabricMavenURL
		}
		path := mavenPath(library.Name)
		if path == "" {
			continue
		}
		cb.Status(fmt.Sprintf("Downloading %s", library.Name))
		if err := c.fetchArtifact(ctx, strings.TrimSuffix(base, "/")+"/"+path, url.Join(root, "libraries", path)); err != nil {
			return fmt.Errorf("failed to download %s: %w", library.Name, err)
		}
		cb.Progress(i + 1)
	}
	return nil
}

// fetchArtifact downloads src to dest unless dest already exists.
func (c *Client) fetchArtifact(ctx context.Context, src, dest string) error {
	if exists, _ := c.fs.Exists(ctx, dest); exists {
		ctxlog.FromContext(ctx).Debug("artifact already present", "dest", dest)
		return nil
	}
	data, err := c.getBytes(ctx, src)
	if err != nil {
		return err
	}
	return c.fs.Upload(ctx, dest, file.DefaultFileOsMode, strings.NewReader(string(data)))
}

func (c *Client) getBytes(ctx context.Context, location string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", response.StatusCode, location)
	}
	return io.ReadAll(response.Body)
}

func (c *Client) getJSON(ctx context.Context, location string, target interface{}) error {
	data, err := c.getBytes(ctx, location)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// mavenPath converts "group:artifact:version" into the repository layout
// path group/.../artifact/version/artifact-version.jar.
func mavenPath(name string) string {
	parts := strings.Split(name, ":")
	if len(parts) < 3 {
		return ""
	}
	group, artifactID, version := parts[0], parts[1], parts[2]
	return fmt.Sprintf("%s/%s/%s/%s-%s.jar", strings.ReplaceAll(group, ".", "/"), artifactID, version, artifactID, version)
}
