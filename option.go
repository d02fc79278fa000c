package launcher

import (
	"net/http"

	"github.com/viant/afs"

	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/service/launch"
	"github.com/modsmith/launcher/service/minecraft"
)

// Option customises the launcher service.
type Option func(s *Service)

// WithConfig sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithFS sets the abstract file service (tests pass a mem:// rooted one).
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithHTTPClient sets the HTTP client shared by the fetcher and the stage
// executors.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) { s.httpClient = client }
}

// WithSink sets the status-update sink feeding the presentation layer.
func WithSink(sink progress.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithInstaller overrides the engine install collaborator.
func WithInstaller(installer minecraft.Installer) Option {
	return func(s *Service) { s.installer = installer }
}

// WithFabricInstaller overrides the loader-kind-B install collaborator.
func WithFabricInstaller(installer minecraft.FabricInstaller) Option {
	return func(s *Service) { s.fabricInstaller = installer }
}

// WithCommandBuilder overrides the launch command builder.
func WithCommandBuilder(builder minecraft.CommandBuilder) Option {
	return func(s *Service) { s.commandBuilder = builder }
}

// WithInventory overrides the installed-version inventory.
func WithInventory(inventory *minecraft.Inventory) Option {
	return func(s *Service) { s.inventory = inventory }
}

// WithStarter overrides the detached process starter.
func WithStarter(starter launch.Starter) Option {
	return func(s *Service) { s.starter = starter }
}
