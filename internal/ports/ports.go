// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application core (registry, session, doctor) depends only on these
// interfaces. Adapters in the infrastructure layer implement them against the
// filesystem, the inference endpoints and the terminal.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., ValidationStore, Operator)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"time"

	"github.com/doeshing/infernav/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.infernav/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ServerListStore reads and rewrites the flat list of server addresses.
// Load never fails: a missing or unreadable file yields an empty list.
type ServerListStore interface {
	Load() []string
	Save(addresses []string) error
}

// ValidationStore is the TTL-based reachability cache.
type ValidationStore interface {
	Get(address string) (domain.ValidationRecord, bool)
	Put(address string, reachable bool, now time.Time) error
	IsFresh(record domain.ValidationRecord, now time.Time) bool
}

// MetadataStore keeps operator notes and cached model catalogs per server.
type MetadataStore interface {
	GetNote(address string) string
	SetNote(address, note string) error
	CacheModels(address string, models []domain.ModelDescriptor) error
	GetCachedModels(address string) []domain.ModelDescriptor
	ClearModels(address string) error
}

// HealthProber checks whether an endpoint answers its health path.
// Every failure mode is reported as false.
type HealthProber interface {
	Probe(ctx context.Context, address string) bool
}

// CatalogFetcher lists the models an endpoint serves. Failures yield an empty catalog.
type CatalogFetcher interface {
	FetchModels(ctx context.Context, address string) []domain.ModelDescriptor
}

// GenerationStreamer issues a generation request and streams decoded text into the writer.
type GenerationStreamer interface {
	Generate(ctx context.Context, address, model, prompt string, out domain.StreamWriter) domain.GenerationOutcome
}

// Operator is the interactive collaborator driving the session.
// An error from any method means the operator is gone (EOF or interrupt).
// Methods that wait for input return ctx.Err() once ctx is cancelled.
type Operator interface {
	ConfirmValidation(ctx context.Context) (bool, error)
	ConfirmPrune(ctx context.Context, invalid []string) (bool, error)
	ChooseServer(ctx context.Context, servers []domain.ServerView) (domain.ServerSelection, error)
	EditNote(ctx context.Context, address, current string) (string, error)
	ChooseModel(ctx context.Context, address string, models []domain.ModelDescriptor) (domain.ModelSelection, error)
	ReadPrompt(ctx context.Context, address, model string) (string, error)
	Status(level domain.StatusLevel, msg string)
	Busy(label string) (stop func())
	StreamWriter() domain.StreamWriter
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
