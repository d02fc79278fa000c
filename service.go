package launcher

import (
	"net/http"

	"github.com/viant/afs"

	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/service/bundle"
	"github.com/modsmith/launcher/service/install"
	"github.com/modsmith/launcher/service/launch"
	"github.com/modsmith/launcher/service/manifest"
	"github.com/modsmith/launcher/service/minecraft"
	"github.com/modsmith/launcher/service/settings"
)

// Service wires the stage executors, the settings store, the manifest
// fetcher and the progress tracker into a Runtime.
type Service struct {
	runtime *Runtime

	config          *Config
	fs              afs.Service
	httpClient      *http.Client
	sink            progress.Sink
	installer       minecraft.Installer
	fabricInstaller minecraft.FabricInstaller
	commandBuilder  minecraft.CommandBuilder
	inventory       *minecraft.Inventory
	starter         launch.Starter
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()

	tracker := progress.New(s.sink)
	s.runtime = &Runtime{
		config:   s.config,
		fs:       s.fs,
		tracker:  tracker,
		settings: settings.New(s.fs, s.config.SettingsLocation),
		manifest: manifest.New(manifest.WithClient(s.httpClient)),
		engine:   install.NewEngine(s.installer, s.inventory, s.config.Engine.Attempts, s.config.Engine.Delay),
		forge:    install.NewForge(s.fs, s.httpClient, s.inventory),
		fabric:   install.NewFabric(s.fabricInstaller, s.inventory, s.config.Fabric.Attempts, s.config.Fabric.Delay),
		bundle:   bundle.New(s.fs, s.httpClient),
		launcher: launch.New(s.commandBuilder, s.starter),
	}
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.config.InstallRoot == "" {
		s.config.InstallRoot = DefaultInstallRoot()
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{}
	}
	if s.inventory == nil {
		s.inventory = minecraft.NewInventory(s.fs)
	}
	client := minecraft.NewClient(s.fs, s.httpClient)
	if s.installer == nil {
		s.installer = client
	}
	if s.fabricInstaller == nil {
		s.fabricInstaller = client
	}
	if s.commandBuilder == nil {
		s.commandBuilder = client
	}
}

// Runtime returns the orchestrated run sequencer.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// New creates a launcher service with the supplied options applied over the
// defaults.
func New(options ...Option) *Service {
	ret := &Service{}
	ret.init(options)
	return ret
}
