package domain

import "strings"

// SessionState names a step of the interactive flow.
type SessionState int

const (
	StateSelectingServer SessionState = iota
	StateSelectingModel
	StatePrompting
	StateDone
)

func (s SessionState) String() string {
	switch s {
	case StateSelectingServer:
		return "selecting-server"
	case StateSelectingModel:
		return "selecting-model"
	case StatePrompting:
		return "prompting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ServerAction is the operator's decision while selecting a server.
type ServerAction int

const (
	ServerChoose ServerAction = iota
	ServerEditNote
	ServerRevalidate
	ServerQuit
)

// ServerSelection is the tagged result of the server selection step.
type ServerSelection struct {
	Action  ServerAction
	Address string
}

// ChooseServer selects addr and moves on to model selection.
func ChooseServer(addr string) ServerSelection {
	return ServerSelection{Action: ServerChoose, Address: addr}
}

// EditNote asks to annotate addr without leaving server selection.
func EditNote(addr string) ServerSelection {
	return ServerSelection{Action: ServerEditNote, Address: addr}
}

// Revalidate asks for a live validation pass that ignores the cache.
func Revalidate() ServerSelection {
	return ServerSelection{Action: ServerRevalidate}
}

// Quit ends the session.
func Quit() ServerSelection {
	return ServerSelection{Action: ServerQuit}
}

// ModelSelectionKind discriminates ModelSelection.
type ModelSelectionKind int

const (
	ModelSelected ModelSelectionKind = iota
	ModelRetry
	ModelBackToServer
)

func (k ModelSelectionKind) String() string {
	switch k {
	case ModelSelected:
		return "selected"
	case ModelRetry:
		return "retry"
	case ModelBackToServer:
		return "back-to-server"
	default:
		return "unknown"
	}
}

// ModelSelection is the tagged result of the model selection step:
// Selected(model), Retry or BackToServer.
type ModelSelection struct {
	Kind  ModelSelectionKind
	Model ModelDescriptor
}

// Selected wraps a chosen model.
func Selected(m ModelDescriptor) ModelSelection {
	return ModelSelection{Kind: ModelSelected, Model: m}
}

// Retry asks for the catalog to be fetched again.
func Retry() ModelSelection {
	return ModelSelection{Kind: ModelRetry}
}

// BackToServer returns to server selection.
func BackToServer() ModelSelection {
	return ModelSelection{Kind: ModelBackToServer}
}

// Reserved prompt tokens. A prompt equal to one of these is a command, never sent.
const (
	TokenChangeModel  = "b"
	TokenChangeServer = "s"
)

// PromptInputKind discriminates PromptInput.
type PromptInputKind int

const (
	PromptSubmit PromptInputKind = iota
	PromptChangeModel
	PromptChangeServer
	PromptEmpty
)

// PromptInput is a parsed line from the prompt loop.
type PromptInput struct {
	Kind PromptInputKind
	Text string
}

// ParsePromptInput classifies a raw prompt line. Reserved tokens match
// case-insensitively after trimming surrounding whitespace.
func ParsePromptInput(line string) PromptInput {
	trimmed := strings.TrimSpace(line)
	switch strings.ToLower(trimmed) {
	case "":
		return PromptInput{Kind: PromptEmpty}
	case TokenChangeModel:
		return PromptInput{Kind: PromptChangeModel}
	case TokenChangeServer:
		return PromptInput{Kind: PromptChangeServer}
	}
	return PromptInput{Kind: PromptSubmit, Text: trimmed}
}

// GenerationOutcome summarizes one streamed generation.
// Failures are reduced to Completed=false plus a human readable Detail.
type GenerationOutcome struct {
	Text      string
	Fragments int
	Skipped   int
	Completed bool
	Detail    string
}

// StreamWriter receives incremental output while a generation streams.
type StreamWriter interface {
	WriteChunk(text string)
	Done()
}

// StatusLevel classifies operator-facing status lines.
type StatusLevel string

const (
	StatusInfo    StatusLevel = "info"
	StatusSuccess StatusLevel = "success"
	StatusWarn    StatusLevel = "warn"
	StatusError   StatusLevel = "error"
)
