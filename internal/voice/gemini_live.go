package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	liveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	dialTimeout  = 15 * time.Second
	setupTimeout = 15 * time.Second
)

// GeminiLiveService connects bidirectional voice translation sessions
// against the Gemini Live API over WebSocket.
type GeminiLiveService struct {
	apiKey  string
	model   string
	enabled bool
}

// NewGeminiLiveService creates the voice collaborator. An empty API
// key leaves it disabled.
func NewGeminiLiveService(apiKey, model string) *GeminiLiveService {
	svc := &GeminiLiveService{
		apiKey:  apiKey,
		model:   model,
		enabled: apiKey != "",
	}

	if svc.enabled {
		logrus.Infof("Gemini Live voice service: enabled (model=%s)", model)
	} else {
		logrus.Info("Gemini Live voice service: disabled (no API key)")
	}

	return svc
}

// IsEnabled reports whether voice sessions can be started.
func (s *GeminiLiveService) IsEnabled() bool {
	return s.enabled
}

// liveSetup is the first client message on a Live connection.
type liveSetup struct {
	Setup liveSetupBody `json:"setup"`
}

type liveSetupBody struct {
	Model                    string             `json:"model"`
	GenerationConfig         liveGenConfig      `json:"generationConfig"`
	SystemInstruction        liveContent        `json:"systemInstruction"`
	InputAudioTranscription  map[string]any     `json:"inputAudioTranscription"`
	OutputAudioTranscription map[string]any     `json:"outputAudioTranscription"`
}

type liveGenConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type liveContent struct {
	Parts []livePart `json:"parts"`
}

type livePart struct {
	Text string `json:"text"`
}

// Connect dials the Live API, performs setup, and starts a read loop
// that forwards transcription and state events to the sink. Partially
// acquired resources are released when any setup step fails.
func (s *GeminiLiveService) Connect(ctx context.Context, sourceLang, targetLang string, sink EventSink) (Handle, error) {
	if !s.enabled {
		return nil, fmt.Errorf("voice service not enabled")
	}

	sink.OnStateChange(StateConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, liveEndpoint+"?key="+s.apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect voice session: %w", err)
	}
	// Transcription payloads for long turns can exceed the default read limit.
	conn.SetReadLimit(1 << 20)

	instruction := fmt.Sprintf(
		"You are a real-time, low-latency translator. The user will speak in %s, and you must immediately respond by translating their speech into %s. Do not add any conversational filler, confirmation, or introductory text. Just provide the direct, spoken translation of what the user said.",
		sourceLang, targetLang)

	setup := liveSetup{Setup: liveSetupBody{
		Model:                    "models/" + s.model,
		GenerationConfig:         liveGenConfig{ResponseModalities: []string{"AUDIO"}},
		SystemInstruction:        liveContent{Parts: []livePart{{Text: instruction}}},
		InputAudioTranscription:  map[string]any{},
		OutputAudioTranscription: map[string]any{},
	}}

	setupJSON, err := json.Marshal(setup)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "setup encode failed")
		return nil, fmt.Errorf("failed to encode session setup: %w", err)
	}

	setupCtx, cancelSetup := context.WithTimeout(ctx, setupTimeout)
	defer cancelSetup()

	if err := conn.Write(setupCtx, websocket.MessageText, setupJSON); err != nil {
		conn.Close(websocket.StatusInternalError, "setup write failed")
		return nil, fmt.Errorf("failed to send session setup: %w", err)
	}

	// The server acknowledges setup before any content flows.
	_, ack, err := conn.Read(setupCtx)
	if err != nil || !gjson.GetBytes(ack, "setupComplete").Exists() {
		conn.Close(websocket.StatusProtocolError, "setup not acknowledged")
		if err == nil {
			err = fmt.Errorf("unexpected setup response")
		}
		return nil, fmt.Errorf("voice session setup failed: %w", err)
	}

	sess := &liveSession{
		conn: conn,
		sink: sink,
	}
	sess.ctx, sess.cancel = context.WithCancel(context.Background())

	sink.OnStateChange(StateListening)
	go sess.readLoop()

	return sess, nil
}

// liveSession is one active Live API connection.
type liveSession struct {
	conn   *websocket.Conn
	sink   EventSink
	ctx    context.Context
	cancel context.CancelFunc

	stopOnce sync.Once
	stopped  bool
	mu       sync.Mutex

	inputTranscription  string
	outputTranscription string
}

// Stop releases the connection. The read loop observes the closed
// connection and terminates without reporting an error.
func (s *liveSession) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.cancel()
		s.conn.Close(websocket.StatusNormalClosure, "session stopped")
	})
}

// readLoop pumps server messages into the sink until the connection
// closes. Ordering per session is preserved because all sink calls
// happen on this goroutine.
func (s *liveSession) readLoop() {
	for {
		_, data, err := s.conn.Read(s.ctx)
		if err != nil {
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if !stopped {
				logrus.Warnf("Voice session read failed: %v", err)
				s.sink.OnError(fmt.Errorf("voice session closed unexpectedly: %w", err))
				s.sink.OnStateChange(StateError)
			}
			return
		}
		s.handleServerMessage(data)
	}
}

func (s *liveSession) handleServerMessage(data []byte) {
	content := gjson.GetBytes(data, "serverContent")
	if !content.Exists() {
		return
	}

	// Model audio signals the speaking half of the listening/speaking
	// cycle. Audio payloads themselves are not relayed; playback is the
	// embedding client's concern.
	if content.Get("modelTurn.parts.0.inlineData").Exists() {
		s.sink.OnStateChange(StateSpeaking)
	}

	if t := content.Get("outputTranscription.text"); t.Exists() {
		s.outputTranscription += t.String()
	} else if t := content.Get("inputTranscription.text"); t.Exists() {
		s.inputTranscription += t.String()
	}

	turnComplete := content.Get("turnComplete").Bool()
	s.sink.OnTranscription(TranscriptionData{
		UserInput:   s.inputTranscription,
		ModelOutput: s.outputTranscription,
		IsFinal:     turnComplete,
	})

	if turnComplete {
		s.inputTranscription = ""
		s.outputTranscription = ""
		s.sink.OnStateChange(StateListening)
	}

	if content.Get("interrupted").Bool() {
		s.inputTranscription = ""
		s.outputTranscription = ""
		s.sink.OnStateChange(StateListening)
	}
}
