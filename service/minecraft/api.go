// Package minecraft defines the boundary to the engine-installation
// collaborators: the primitives that install engine and loader versions under
// an installation root, enumerate what is already installed and compose the
// final launch command. The orchestration engine depends only on the
// interfaces declared here.
package minecraft

import "context"

// Callback is the three-hook progress contract passed to the install
// collaborators. Each hook may be nil; collaborators must tolerate that.
type Callback struct {
	SetStatus   func(text string)
	SetProgress func(value int)
	SetMax      func(value int)
}

// Status invokes the set-status hook when present.
func (c Callback) Status(text string) {
	if c.SetStatus != nil {
		c.SetStatus(text)
	}
}

// Progress invokes the set-progress hook when present.
func (c Callback) Progress(value int) {
	if c.SetProgress != nil {
		c.SetProgress(value)
	}
}

// Max invokes the set-max hook when present.
func (c Callback) Max(value int) {
	if c.SetMax != nil {
		c.SetMax(value)
	}
}

// Installer installs a base engine version under root.
type Installer interface {
	Install(ctx context.Context, version, root string, cb Callback) error
}

// FabricInstaller installs the library-managed loader for an engine version.
// It does not return the resulting version identifier; callers verify the
// outcome against the installed-version inventory.
type FabricInstaller interface {
	InstallFabric(ctx context.Context, engineVersion, loaderVersion, root string, cb Callback) error
}

// LaunchOptions carries the per-player values recognised by the command
// builder.
type LaunchOptions struct {
	Username     string
	UUID         string
	Token        string
	JVMArguments []string
}

// CommandBuilder composes the full process invocation for an installed
// version identifier.
type CommandBuilder interface {
	Command(ctx context.Context, versionID, root string, options LaunchOptions) ([]string, error)
}
