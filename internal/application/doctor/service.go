package doctor

import (
	"context"
	"fmt"
	"time"

	appconfig "github.com/doeshing/infernav/internal/application/config"
	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/ports"
)

// ValidationInspector exposes what doctor reads from the validation cache.
type ValidationInspector interface {
	Records() []domain.ValidationRecord
	LoadWarning() string
	Dropped() int
}

// MetadataInspector exposes what doctor reads from the metadata store.
type MetadataInspector interface {
	Records() []domain.ServerMetadataRecord
	LoadWarning() string
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	ServerList     ports.ServerListStore
	Validation     ValidationInspector
	Metadata       MetadataInspector
	Now            func() time.Time
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("probe %s, catalog %s", cfg.ProbeTimeoutDuration(), cfg.CatalogTimeoutDuration())))
	}

	var known []string
	if s.ServerList != nil {
		known = s.ServerList.Load()
		if len(known) == 0 {
			checks = append(checks, warn("Server list", fmt.Sprintf("no servers in %s", cfg.ServersFile)))
		} else {
			checks = append(checks, ok("Server list", fmt.Sprintf("%d server(s)", len(known))))
		}
	}

	if s.Validation != nil {
		checks = append(checks, s.validationCheck(known))
	}
	if s.Metadata != nil {
		checks = append(checks, metadataCheck(s.Metadata))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) validationCheck(known []string) domain.HealthCheck {
	if w := s.Validation.LoadWarning(); w != "" {
		return warn("Validation cache", w)
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	records := s.Validation.Records()
	fresh, reachable := 0, 0
	for _, rec := range records {
		if rec.IsFresh(now) {
			fresh++
			if rec.Reachable {
				reachable++
			}
		}
	}
	details := fmt.Sprintf("%d record(s), %d fresh, %d fresh and reachable", len(records), fresh, reachable)
	if dropped := s.Validation.Dropped(); dropped > 0 {
		return warn("Validation cache", fmt.Sprintf("%s; %d unparsable row(s) dropped", details, dropped))
	}
	if len(known) > 0 && fresh < len(known) {
		return warn("Validation cache", fmt.Sprintf("%s; %d server(s) need probing", details, len(known)-fresh))
	}
	return ok("Validation cache", details)
}

func metadataCheck(m MetadataInspector) domain.HealthCheck {
	if w := m.LoadWarning(); w != "" {
		return warn("Metadata", w)
	}
	records := m.Records()
	notes, catalogs := 0, 0
	for _, rec := range records {
		if rec.Note != "" {
			notes++
		}
		if rec.ModelsCachedAt != nil {
			catalogs++
		}
	}
	return ok("Metadata", fmt.Sprintf("%d note(s), %d cached catalog(s)", notes, catalogs))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
