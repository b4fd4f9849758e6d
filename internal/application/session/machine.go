// Package session drives the interactive flow: server selection, model
// selection and the prompt loop, with transitions back to either selection.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/infernav/internal/application/registry"
	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/ports"
)

// Registry is the slice of the endpoint registry the session needs.
type Registry interface {
	ValidateAll(ctx context.Context, useCache bool, reviewer registry.Reviewer) (domain.ValidationReport, error)
	GetAvailable(ctx context.Context, validateFirst bool, reviewer registry.Reviewer) ([]string, error)
}

// Dependencies wires the machine to its collaborators.
type Dependencies struct {
	Registry Registry
	Metadata ports.MetadataStore
	Catalog  ports.CatalogFetcher
	Streamer ports.GenerationStreamer
	Operator ports.Operator
	Logger   ports.Logger
}

// Machine is single threaded: one step runs at a time and blocks on the operator.
type Machine struct {
	deps Dependencies

	state  domain.SessionState
	server string
	model  domain.ModelDescriptor

	valid        []string
	needsRefresh bool
}

// New returns a machine in StateSelectingServer.
func New(deps Dependencies) (*Machine, error) {
	if deps.Registry == nil || deps.Metadata == nil || deps.Catalog == nil ||
		deps.Streamer == nil || deps.Operator == nil {
		return nil, errors.New("session.Machine dependencies not satisfied")
	}
	return &Machine{
		deps:         deps,
		state:        domain.StateSelectingServer,
		needsRefresh: true,
	}, nil
}

// State reports the current state.
func (m *Machine) State() domain.SessionState { return m.state }

// Server reports the selected server address, "" outside model selection and prompting.
func (m *Machine) Server() string { return m.server }

// Model reports the selected model, zero outside prompting.
func (m *Machine) Model() domain.ModelDescriptor { return m.model }

// Run steps until the session is done. Operator exit and cancellation end the
// session normally, so Run only reports nil.
func (m *Machine) Run(ctx context.Context) error {
	for m.state != domain.StateDone {
		if err := m.Step(ctx); err != nil {
			m.debug("session ended", map[string]interface{}{
				"state":  m.state.String(),
				"reason": err.Error(),
			})
			m.state = domain.StateDone
		}
	}
	return nil
}

// Step performs exactly one transition. A returned error means the operator
// is gone or ctx was cancelled.
func (m *Machine) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch m.state {
	case domain.StateSelectingServer:
		return m.selectServer(ctx)
	case domain.StateSelectingModel:
		return m.selectModel(ctx)
	case domain.StatePrompting:
		return m.prompt(ctx)
	default:
		return nil
	}
}

func (m *Machine) selectServer(ctx context.Context) error {
	op := m.deps.Operator
	if m.needsRefresh {
		validate, err := op.ConfirmValidation(ctx)
		if err != nil {
			return err
		}
		var valid []string
		if validate {
			report, err := m.deps.Registry.ValidateAll(ctx, true, op)
			if err != nil {
				return err
			}
			valid = report.Valid
		} else {
			valid, err = m.deps.Registry.GetAvailable(ctx, false, op)
			if err != nil {
				return err
			}
		}
		m.valid = valid
		m.needsRefresh = false
	}

	if len(m.valid) == 0 {
		op.Status(domain.StatusError, "No valid servers available")
		m.state = domain.StateDone
		return nil
	}

	views := make([]domain.ServerView, 0, len(m.valid))
	for _, addr := range m.valid {
		views = append(views, domain.ServerView{Address: addr, Note: m.deps.Metadata.GetNote(addr)})
	}
	sel, err := op.ChooseServer(ctx, views)
	if err != nil {
		return err
	}

	switch sel.Action {
	case domain.ServerChoose:
		if !m.isValid(sel.Address) {
			op.Status(domain.StatusWarn, fmt.Sprintf("%s is not a valid server", sel.Address))
			return nil
		}
		m.server = sel.Address
		m.model = domain.ModelDescriptor{}
		m.state = domain.StateSelectingModel
		m.debug("server selected", map[string]interface{}{"address": m.server})
	case domain.ServerEditNote:
		note, err := op.EditNote(ctx, sel.Address, m.deps.Metadata.GetNote(sel.Address))
		if err != nil {
			return err
		}
		if err := m.deps.Metadata.SetNote(sel.Address, note); err != nil {
			m.warn("note not persisted", err, sel.Address)
			op.Status(domain.StatusWarn, fmt.Sprintf("could not save note: %v", err))
			return nil
		}
		op.Status(domain.StatusSuccess, fmt.Sprintf("Note saved for %s", sel.Address))
	case domain.ServerRevalidate:
		report, err := m.deps.Registry.ValidateAll(ctx, false, op)
		if err != nil {
			return err
		}
		m.valid = report.Valid
	case domain.ServerQuit:
		m.state = domain.StateDone
	}
	return nil
}

func (m *Machine) selectModel(ctx context.Context) error {
	op := m.deps.Operator
	models := m.deps.Metadata.GetCachedModels(m.server)
	if len(models) == 0 {
		stop := op.Busy(fmt.Sprintf("Fetching models from %s", m.server))
		models = m.deps.Catalog.FetchModels(ctx, m.server)
		stop()
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(models) > 0 {
			if err := m.deps.Metadata.CacheModels(m.server, models); err != nil {
				m.warn("catalog not persisted", err, m.server)
				op.Status(domain.StatusWarn, fmt.Sprintf("could not cache models: %v", err))
			}
		} else {
			op.Status(domain.StatusWarn, fmt.Sprintf("No models available on %s", m.server))
		}
	}

	sel, err := op.ChooseModel(ctx, m.server, models)
	if err != nil {
		return err
	}

	switch sel.Kind {
	case domain.ModelSelected:
		m.model = sel.Model
		m.state = domain.StatePrompting
		m.debug("model selected", map[string]interface{}{"address": m.server, "model": m.model.ID})
	case domain.ModelRetry:
		if err := m.deps.Metadata.ClearModels(m.server); err != nil {
			m.warn("catalog not cleared", err, m.server)
		}
	case domain.ModelBackToServer:
		m.toServerSelection()
	}
	return nil
}

func (m *Machine) prompt(ctx context.Context) error {
	op := m.deps.Operator
	line, err := op.ReadPrompt(ctx, m.server, m.model.ID)
	if err != nil {
		return err
	}

	input := domain.ParsePromptInput(line)
	switch input.Kind {
	case domain.PromptEmpty:
		return nil
	case domain.PromptChangeModel:
		m.model = domain.ModelDescriptor{}
		m.state = domain.StateSelectingModel
		return nil
	case domain.PromptChangeServer:
		m.toServerSelection()
		return nil
	}

	outcome := m.deps.Streamer.Generate(ctx, m.server, m.model.ID, input.Text, op.StreamWriter())
	if err := ctx.Err(); err != nil {
		return err
	}
	if outcome.Skipped > 0 {
		m.debug("malformed fragments skipped", map[string]interface{}{"count": outcome.Skipped})
	}
	switch {
	case outcome.Detail != "":
		op.Status(domain.StatusError, outcome.Detail)
	case !outcome.Completed:
		op.Status(domain.StatusWarn, "Generation ended before the stream completed")
	}
	return nil
}

func (m *Machine) toServerSelection() {
	m.server = ""
	m.model = domain.ModelDescriptor{}
	m.state = domain.StateSelectingServer
	m.needsRefresh = true
}

func (m *Machine) isValid(addr string) bool {
	for _, v := range m.valid {
		if v == addr {
			return true
		}
	}
	return false
}

func (m *Machine) debug(msg string, fields map[string]interface{}) {
	if m.deps.Logger != nil {
		m.deps.Logger.Debug(msg, fields)
	}
}

func (m *Machine) warn(msg string, err error, addr string) {
	if m.deps.Logger != nil {
		m.deps.Logger.Warn(msg, map[string]interface{}{"address": addr, "error": err.Error()})
	}
}
