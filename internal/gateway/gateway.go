// Package gateway implements the cross-origin message gateway: the
// authentication, rate limiting, correlation, and dispatch pipeline
// between untrusted embedding sites and the translation collaborators.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ban2lab/longanicore-gateway/internal/auth"
	"github.com/ban2lab/longanicore-gateway/internal/connlog"
	"github.com/ban2lab/longanicore-gateway/internal/metrics"
	"github.com/ban2lab/longanicore-gateway/internal/ratelimit"
	"github.com/ban2lab/longanicore-gateway/internal/session"
	"github.com/ban2lab/longanicore-gateway/internal/translate"
	"github.com/ban2lab/longanicore-gateway/internal/voice"
)

// invalidCredentialsMessage is sent to callers whose credentials did
// not validate. Deliberately generic: it must not reveal whether the
// origin is known or which method came closest.
const invalidCredentialsMessage = "Invalid credentials. Please check your API key and ensure your origin is whitelisted if not using a global key."

// Switch reads the master API flag. Implemented by the credential store.
type Switch interface {
	APIEnabled() bool
}

// Gateway drives the inbound message pipeline. All collaborators are
// injected so tests can run isolated instances; there are no package
// singletons.
type Gateway struct {
	enabled    Switch
	validator  *auth.Validator
	limiter    *ratelimit.Limiter
	translator translate.Translator
	voice      voice.Service
	sessions   *session.Registry
	audit      *connlog.Log
}

// Options collects the Gateway's collaborators.
type Options struct {
	Switch     Switch
	Validator  *auth.Validator
	Limiter    *ratelimit.Limiter
	Translator translate.Translator
	Voice      voice.Service
	Sessions   *session.Registry
	Audit      *connlog.Log
}

// New creates a gateway from its collaborators.
func New(opts Options) *Gateway {
	return &Gateway{
		enabled:    opts.Switch,
		validator:  opts.Validator,
		limiter:    opts.Limiter,
		translator: opts.Translator,
		voice:      opts.Voice,
		sessions:   opts.Sessions,
		audit:      opts.Audit,
	}
}

// Handle runs the pipeline for one inbound message. origin is the
// trusted connection origin, never a caller-supplied value. Every
// early exit either drops silently (wrong intent tag, API disabled,
// credential storage failure) or answers with a correlated error.
func (g *Gateway) Handle(ctx context.Context, origin string, msg Message, sink Sink) {
	// Intent filter: unrelated channel traffic is ignored without any
	// observable difference from the gateway being absent.
	if msg.Source != ClientSourceTag {
		return
	}

	// Master switch: silently drop so a disabled gateway does not leak
	// its existence.
	if !g.enabled.APIEnabled() {
		metrics.GatewayMessagesTotal.WithLabelValues(msg.Type, "dropped").Inc()
		return
	}

	res, err := g.validator.Authenticate(origin, msg.APIKey, msg.GlobalAPIKey)
	if err != nil {
		// Storage read failure: reportable internally, but the caller
		// gets nothing, so a broken store cannot be probed.
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		metrics.GatewayMessagesTotal.WithLabelValues(msg.Type, "auth_error").Inc()
		logrus.Errorf("Credential lookup failed for origin %s: %v", origin, err)
		g.audit.Append(origin, connlog.StatusFailure, "Internal Error: could not read credential store.")
		return
	}
	if !res.Authenticated {
		metrics.AuthAttemptsTotal.WithLabelValues("denied").Inc()
		metrics.GatewayMessagesTotal.WithLabelValues(msg.Type, "denied").Inc()
		logrus.Warnf("Discarding message with invalid credentials from origin: %s", origin)
		g.audit.Append(origin, connlog.StatusFailure, "Invalid Credentials")
		g.sendError(sink, msg, invalidCredentialsMessage, 0)
		return
	}
	metrics.AuthAttemptsTotal.WithLabelValues(authResultLabel(res.Method)).Inc()

	if cost := operationCost(msg.Type); cost > 0 {
		limit := g.limiter.Check(origin, cost)
		if !limit.Allowed {
			metrics.RateLimitDeniedTotal.Inc()
			metrics.GatewayMessagesTotal.WithLabelValues(msg.Type, "rate_limited").Inc()
			reason := fmt.Sprintf("Rate Limit Exceeded. Try again in %ds.", limit.RetryAfter)
			g.audit.Append(origin, connlog.StatusFailure, reason)
			g.sendError(sink, msg, reason, limit.RetryAfter)
			return
		}
	}

	// Exactly one success entry per request that reaches dispatch.
	g.audit.Append(origin, connlog.StatusSuccess,
		fmt.Sprintf("Authenticated via %s. Request Type: %s", res.Method, msg.Type))

	if err := g.dispatch(ctx, origin, msg, sink); err != nil {
		metrics.GatewayMessagesTotal.WithLabelValues(msg.Type, "error").Inc()
		logrus.Warnf("Gateway dispatch error (request %s, origin %s): %v", msg.RequestID, origin, err)
		g.sendError(sink, msg, err.Error(), 0)
		return
	}
	metrics.GatewayMessagesTotal.WithLabelValues(msg.Type, "ok").Inc()
}

// dispatch routes an authenticated, rate-limited message to exactly
// one operation. Any error, including a panic in an operation, is
// returned for conversion into a correlated error response; dispatch
// never crashes the gateway.
func (g *Gateway) dispatch(ctx context.Context, origin string, msg Message, sink Sink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Recovered panic in gateway dispatch: %v", r)
			err = fmt.Errorf("an internal error occurred")
		}
	}()

	switch msg.Type {
	case TypeTextTranslation:
		return g.handleTranslate(ctx, msg, sink)
	case TypeStartVoiceSession:
		return g.handleStartSession(ctx, msg, sink)
	case TypeStopVoiceSession:
		return g.handleStopSession(msg, sink)
	default:
		return fmt.Errorf("unknown API request type: '%s'", msg.Type)
	}
}

func (g *Gateway) handleTranslate(ctx context.Context, msg Message, sink Sink) error {
	var p TranslationPayload
	if err := unmarshalPayload(msg.Payload, &p); err != nil {
		return err
	}
	if strings.TrimSpace(p.Text) == "" || p.SourceLanguage == "" || p.TargetLanguage == "" {
		return errors.New("missing required parameters")
	}
	if err := translate.ValidateLanguages(p.SourceLanguage, p.TargetLanguage); err != nil {
		return err
	}

	result, err := g.translator.Translate(ctx, p.Text, p.SourceLanguage, p.TargetLanguage)
	if err != nil {
		return err
	}

	g.send(sink, Response{
		Source:    GatewaySourceTag,
		Type:      TypeTranslationResult,
		Payload:   result,
		RequestID: msg.RequestID,
		SessionID: msg.SessionID,
	})
	return nil
}

func (g *Gateway) handleStartSession(ctx context.Context, msg Message, sink Sink) error {
	var p StartSessionPayload
	if err := unmarshalPayload(msg.Payload, &p); err != nil {
		return err
	}
	if p.SourceLanguage == "" || p.TargetLanguage == "" {
		return errors.New("missing required parameters")
	}
	if err := translate.ValidateLanguages(p.SourceLanguage, p.TargetLanguage); err != nil {
		return err
	}

	// The slot is claimed synchronously before the collaborator is
	// dialed; a concurrent start observes the reservation and fails
	// with the conflict error instead of racing the connect.
	sessionID, err := g.sessions.Reserve()
	if err != nil {
		metrics.VoiceSessionsTotal.WithLabelValues("conflict").Inc()
		return err
	}

	sessSink := &sessionEventSink{gateway: g, sink: sink, sessionID: sessionID}
	handle, err := g.voice.Connect(ctx, p.SourceLanguage, p.TargetLanguage, sessSink)
	if err != nil {
		g.sessions.Release(sessionID)
		metrics.VoiceSessionsTotal.WithLabelValues("error").Inc()
		return err
	}
	g.sessions.Bind(sessionID, handle.Stop)
	metrics.VoiceSessionsTotal.WithLabelValues("started").Inc()

	g.send(sink, Response{
		Source:    GatewaySourceTag,
		Type:      TypeSessionStarted,
		Payload:   SessionStartedPayload{SessionID: sessionID},
		RequestID: msg.RequestID,
		SessionID: msg.SessionID,
	})
	return nil
}

func (g *Gateway) handleStopSession(msg Message, sink Sink) error {
	var p StopSessionPayload
	if len(msg.Payload) > 0 {
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
	}
	if p.SessionID == "" {
		p.SessionID = msg.SessionID
	}

	// The registry clears the slot before we release resources and
	// emit the closed event, so a new start accepted during shutdown
	// cannot collide with this session.
	stop, err := g.sessions.Stop(p.SessionID)
	if err != nil {
		return err
	}
	stop()
	metrics.VoiceSessionsTotal.WithLabelValues("stopped").Inc()

	g.send(sink, Response{
		Source:    GatewaySourceTag,
		Type:      EventSessionClosed,
		Payload:   struct{}{},
		SessionID: p.SessionID,
	})
	return nil
}

// sendError answers a failed request with a correlated <type>-error.
func (g *Gateway) sendError(sink Sink, msg Message, message string, retryAfter int) {
	g.send(sink, Response{
		Source:    GatewaySourceTag,
		Type:      msg.Type + "-error",
		Payload:   ErrorPayload{Message: message, RetryAfter: retryAfter},
		RequestID: msg.RequestID,
		SessionID: msg.SessionID,
	})
}

// send delivers a response, logging delivery failures without letting
// them affect the rest of the pipeline.
func (g *Gateway) send(sink Sink, resp Response) {
	if err := sink.Send(resp); err != nil {
		logrus.Warnf("Failed to deliver %s response: %v", resp.Type, err)
	}
}

// sessionEventSink forwards collaborator events to the connection that
// started the session, tagged with its session id. A collaborator
// error clears the registry entry as if the session had been stopped.
type sessionEventSink struct {
	gateway   *Gateway
	sink      Sink
	sessionID string
}

func (s *sessionEventSink) OnStateChange(state voice.State) {
	s.gateway.send(s.sink, Response{
		Source:    GatewaySourceTag,
		Type:      EventStateChange,
		Payload:   StateChangePayload{State: string(state)},
		SessionID: s.sessionID,
	})
}

func (s *sessionEventSink) OnTranscription(data voice.TranscriptionData) {
	s.gateway.send(s.sink, Response{
		Source:    GatewaySourceTag,
		Type:      EventTranscription,
		Payload:   data,
		SessionID: s.sessionID,
	})
}

func (s *sessionEventSink) OnError(err error) {
	s.gateway.sessions.Release(s.sessionID)
	metrics.VoiceSessionsTotal.WithLabelValues("error").Inc()
	s.gateway.send(s.sink, Response{
		Source:    GatewaySourceTag,
		Type:      EventSessionError,
		Payload:   ErrorPayload{Message: err.Error()},
		SessionID: s.sessionID,
	})
}

// operationCost maps operation types to their token cost. Stopping a
// session is never throttled; unknown types carry no cost and fail at
// dispatch instead.
func operationCost(msgType string) float64 {
	switch msgType {
	case TypeTextTranslation:
		return ratelimit.CostTextTranslation
	case TypeStartVoiceSession:
		return ratelimit.CostStartVoiceSession
	default:
		return ratelimit.CostStopVoiceSession
	}
}

func authResultLabel(method string) string {
	if method == auth.MethodGlobalKey {
		return "global_key"
	}
	return "origin_key"
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing required parameters")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.New("malformed request payload")
	}
	return nil
}
