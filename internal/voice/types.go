// Package voice provides the streaming voice translation collaborator.
// A session relays live transcription and state events from the model
// to an event sink supplied by the caller.
package voice

import "context"

// State is a voice session lifecycle state.
type State string

// Session lifecycle: absent -> connecting -> listening <-> speaking ->
// closed/error -> absent.
const (
	StateConnecting State = "connecting"
	StateListening  State = "listening"
	StateSpeaking   State = "speaking"
	StateError      State = "error"
	StateClosed     State = "closed"
)

// TranscriptionData is an incremental transcription update. UserInput
// accumulates the speaker's words, ModelOutput the translation; IsFinal
// marks the end of a turn, after which both accumulators reset.
type TranscriptionData struct {
	UserInput   string `json:"userInput"`
	ModelOutput string `json:"modelOutput"`
	IsFinal     bool   `json:"isFinal"`
}

// EventSink receives session events. Calls are made from the session's
// read loop; implementations must not block indefinitely. Per-session
// ordering is preserved.
type EventSink interface {
	OnStateChange(state State)
	OnTranscription(data TranscriptionData)
	OnError(err error)
}

// Handle controls a live session. Stop releases the session's stream
// resources before the closed state is signaled and is safe to call
// more than once.
type Handle interface {
	Stop()
}

// Service connects voice translation sessions.
type Service interface {
	Connect(ctx context.Context, sourceLang, targetLang string, sink EventSink) (Handle, error)
}
