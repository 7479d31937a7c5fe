// Package status implements the service's single public endpoint.
//
// GET / returns {"status":"ok","message":...,"timestamp":...,"secret":...}
// where timestamp is the current wall-clock time in the configured UTC offset,
// formatted as YYYY-MM-DD HH:MM:SS.
package status

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/config"
	apierrors "github.com/otherjamesbrown/ai-aas/services/status-service/internal/errors"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/logging"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/observability"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/timezone"
)

// StatusOK is the fixed value of the "status" field.
const StatusOK = "ok"

// OffsetField names the setting reported when the offset does not parse.
const OffsetField = "TIMEZONE_OFFSET"

// Payload is the response body of GET /.
type Payload struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Secret    string `json:"secret"`
}

// Options configure a Handler.
type Options struct {
	Source config.PayloadSource
	// Clock defaults to time.Now.
	Clock  func() time.Time
	Logger *zap.Logger
}

// Handler serves the status payload.
type Handler struct {
	source config.PayloadSource
	clock  func() time.Time
	logger *zap.Logger
}

// NewHandler builds a Handler. A nil Source serves the built-in defaults.
func NewHandler(opts Options) *Handler {
	if opts.Source == nil {
		opts.Source = config.StaticSource(config.Payload{
			Greeting:       "Hello World",
			TimezoneOffset: "+05:30",
			SecretMessage:  "N/A",
		})
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handler{source: opts.Source, clock: opts.Clock, logger: opts.Logger}
}

// Build renders the payload for instant now.
func (h *Handler) Build(now time.Time) (Payload, error) {
	settings, err := h.source.Current()
	if err != nil {
		return Payload{}, err
	}
	offset, err := timezone.Parse(settings.TimezoneOffset)
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		Status:    StatusOK,
		Message:   settings.Greeting,
		Timestamp: offset.Format(now),
		Secret:    settings.SecretMessage,
	}, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Build(h.clock())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	opts := []apierrors.Option{apierrors.WithDetail(err.Error())}
	if id, ok := observability.RequestIDFromContext(ctx); ok {
		opts = append(opts, apierrors.WithRequestID(id))
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		opts = append(opts, apierrors.WithTraceID(spanCtx.TraceID().String()))
	}

	var apiErr *apierrors.Error
	var parseErr *timezone.ParseError
	switch {
	case errors.As(err, &parseErr):
		observability.RecordConfigError(OffsetField)
		apiErr = apierrors.New(apierrors.CodeConfigInvalid, "invalid "+OffsetField+" configuration", opts...)
	default:
		apiErr = apierrors.New(apierrors.CodeInternal, "unexpected error occurred", opts...)
	}

	logging.FromContext(h.logger, ctx).Warn("status payload unavailable",
		zap.String("code", apiErr.Code),
		zap.String("request_id", apiErr.RequestID),
		zap.Error(err),
	)
	apierrors.Write(w, apiErr)
}
