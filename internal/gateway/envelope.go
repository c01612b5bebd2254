package gateway

import "encoding/json"

// Source tags identify traffic belonging to this API on the shared
// message channel. Inbound messages must carry the client tag exactly;
// everything the gateway emits carries the gateway tag.
const (
	ClientSourceTag  = "longanicore-api-client"
	GatewaySourceTag = "longanicore-api"
)

// Operation types accepted by the gateway.
const (
	TypeTextTranslation   = "text-translation"
	TypeStartVoiceSession = "start-voice-session"
	TypeStopVoiceSession  = "stop-voice-session"
)

// Response and session event types.
const (
	TypeTranslationResult = "text-translation-result"
	TypeSessionStarted    = "voice-session-started"

	EventStateChange   = "voice-session-state-change"
	EventTranscription = "voice-session-transcription"
	EventSessionError  = "voice-session-error"
	EventSessionClosed = "voice-session-closed"
)

// Message is the inbound envelope. RequestID is caller-chosen and
// opaque; the gateway echoes it verbatim and never interprets it.
type Message struct {
	Source       string          `json:"source"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	RequestID    string          `json:"requestId,omitempty"`
	SessionID    string          `json:"sessionId,omitempty"`
	APIKey       string          `json:"apiKey,omitempty"`
	GlobalAPIKey string          `json:"globalApiKey,omitempty"`
}

// Response is the outbound envelope for correlated responses and
// asynchronous session events.
type Response struct {
	Source    string `json:"source"`
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	RequestID string `json:"requestId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// TranslationPayload is the payload of a text-translation request.
type TranslationPayload struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// StartSessionPayload is the payload of a start-voice-session request.
type StartSessionPayload struct {
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// StopSessionPayload is the payload of a stop-voice-session request.
type StopSessionPayload struct {
	SessionID string `json:"sessionId"`
}

// ErrorPayload is the payload of every <type>-error response. Rate
// limit errors additionally carry the advisory retry time in whole
// seconds.
type ErrorPayload struct {
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// SessionStartedPayload answers an accepted start-voice-session.
type SessionStartedPayload struct {
	SessionID string `json:"sessionId"`
}

// StateChangePayload is the payload of a voice-session-state-change event.
type StateChangePayload struct {
	State string `json:"state"`
}

// Sink delivers outbound envelopes to the caller's side of the
// channel. Send failures are logged and otherwise ignored: responding
// and audit logging are independent actions.
type Sink interface {
	Send(resp Response) error
}
