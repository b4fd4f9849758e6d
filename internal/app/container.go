package app

import (
	"context"
	"fmt"
	"time"

	appconfig "github.com/doeshing/infernav/internal/application/config"
	"github.com/doeshing/infernav/internal/application/doctor"
	"github.com/doeshing/infernav/internal/application/registry"
	"github.com/doeshing/infernav/internal/application/session"
	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/infrastructure/ai"
	"github.com/doeshing/infernav/internal/infrastructure/cache"
	"github.com/doeshing/infernav/internal/infrastructure/config"
	"github.com/doeshing/infernav/internal/infrastructure/servers"
	"github.com/doeshing/infernav/internal/pkg/logger"
	"github.com/doeshing/infernav/internal/ports"
)

// Options selects how the container is built.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.ZeroLogger
	ServerList     *servers.FileStore
	Validation     *cache.ValidationCache
	Metadata       *cache.MetadataStore
	Client         *ai.Client
	Registry       *registry.Service
	DoctorService  *doctor.Service
}

// BuildContainer constructs the dependency graph. Every store is created once
// here and handed to the services that need it.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", cfgLoader.Path(), err)
	}

	log := logger.New(cfg.LogLevel, opts.Verbose)
	log.Debug("configuration loaded", map[string]interface{}{
		"path":         cfgLoader.Path(),
		"servers_file": cfg.ServersFile,
	})

	serverList := servers.NewFileStore(cfg.ServersFile, log)
	validation := cache.NewValidationCache(cfg.ValidationCacheFile, log)
	metadata := cache.NewMetadataStore(cfg.MetadataFile, log)
	client := ai.NewClient(ai.Options{
		ProbeTimeout:      cfg.ProbeTimeoutDuration(),
		CatalogTimeout:    cfg.CatalogTimeoutDuration(),
		GenerationTimeout: cfg.GenerationTimeoutDuration(),
	}, log)

	reg := registry.New(serverList, validation, client, log, time.Now)
	reg.Load()

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		ServerList:     serverList,
		Validation:     validation,
		Metadata:       metadata,
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		ServerList:     serverList,
		Validation:     validation,
		Metadata:       metadata,
		Client:         client,
		Registry:       reg,
		DoctorService:  doctorService,
	}, nil
}

// NewSession builds a state machine driven by op.
func (c *Container) NewSession(op ports.Operator) (*session.Machine, error) {
	return session.New(session.Dependencies{
		Registry: c.Registry,
		Metadata: c.Metadata,
		Catalog:  c.Client,
		Streamer: c.Client,
		Operator: op,
		Logger:   c.Logger,
	})
}

// LoadWarnings lists cache files that were discarded or partly dropped at startup.
func (c *Container) LoadWarnings() []string {
	var warnings []string
	if w := c.Validation.LoadWarning(); w != "" {
		warnings = append(warnings, w)
	}
	if n := c.Validation.Dropped(); n > 0 {
		warnings = append(warnings, fmt.Sprintf("validation cache: dropped %d unparsable row(s)", n))
	}
	if w := c.Metadata.LoadWarning(); w != "" {
		warnings = append(warnings, w)
	}
	return warnings
}
