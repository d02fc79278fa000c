package minecraft

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/viant/afs/url"
)

// Command composes the java invocation for an installed version. Loader
// profiles inherit the vanilla version via inheritsFrom; the effective
// classpath is the union of both metadata files plus the vanilla client jar.
func (c *Client) Command(ctx context.Context, versionID, root string, options LaunchOptions) ([]string, error) {
	meta, err := c.loadVersionMeta(ctx, root, versionID)
	if err != nil {
		return nil, err
	}
	chain := []*versionMeta{meta}
	jarID := versionID
	if meta.InheritsFrom != "" {
		parent, err := c.loadVersionMeta(ctx, root, meta.InheritsFrom)
		if err != nil {
			return nil, fmt.Errorf("failed to load inherited version %s: %w", meta.InheritsFrom, err)
		}
		chain = append(chain, parent)
		jarID = parent.ID
	}

	mainClass := ""
	assets := ""
	var classpath []string
	seen := map[string]bool{}
	for _, member := range chain {
		if mainClass == "" {
			mainClass = member.MainClass
		}
		if assets == "" {
			assets = member.Assets
		}
		for _, library := range member.Libraries {
			path := libraryPath(library.Downloads.Artifact.Path, library.Name)
			if path == "" || seen[path] {
				continue
			}
			seen[path] = true
			classpath = append(classpath, filepath.Join(root, "libraries", filepath.FromSlash(path)))
		}
	}
	if mainClass == "" {
		return nil, fmt.Errorf("version %s declares no main class", versionID)
	}
	classpath = append(classpath, filepath.Join(root, "versions", jarID, jarID+".jar"))

	lookPath := c.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	java, err := lookPath("java")
	if err != nil {
		return nil, fmt.Errorf("java executable not found in PATH: %w", err)
	}

	command := []string{java}
	command = append(command, options.JVMArguments...)
	command = append(command,
		"-cp", strings.Join(classpath, classpathSeparator()),
		mainClass,
		"--username", options.Username,
		"--uuid", options.UUID,
		"--accessToken", options.Token,
		"--version", versionID,
		"--gameDir", root,
		"--assetsDir", filepath.Join(root, "assets"),
	)
	if assets != "" {
		command = append(command, "--assetIndex", assets)
	}
	return command, nil
}

func (c *Client) loadVersionMeta(ctx context.Context, root, versionID string) (*versionMeta, error) {
	location := url.Join(root, "versions", versionID, versionID+".json")
	data, err := c.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read version metadata %s: %w", location, err)
	}
	meta := &versionMeta{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("malformed version metadata %s: %w", location, err)
	}
	if meta.ID == "" {
		meta.ID = versionID
	}
	return meta, nil
}

// libraryPath resolves the on-disk repository path for a library entry,
// preferring the declared artifact path over the maven coordinate.
func libraryPath(declared, name string) string {
	if declared != "" {
		return declared
	}
	return mavenPath(name)
}

func classpathSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}
