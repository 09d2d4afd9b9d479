package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/wakdex/internal/apperr"
	"github.com/HerbHall/wakdex/internal/envelope"
)

// Redacted replaces the value of any credential-like key.
const Redacted = "[REDACTED]"

const internalMessage = "Internal server error"

var sensitiveKeys = []string{"password", "secret", "token", "authorization", "api_key", "apikey"}

// Problem is the uniform error body.
type Problem struct {
	StatusCode    int         `json:"statusCode"`
	Message       any         `json:"message"`
	Error         string      `json:"error"`
	Timestamp     string      `json:"timestamp"`
	Path          string      `json:"path"`
	Parameters    *Parameters `json:"parameters,omitempty"`
	StackLocation string      `json:"stackLocation,omitempty"`
}

// Parameters echoes the request inputs back in development mode.
type Parameters struct {
	Query  map[string]any    `json:"query"`
	Params map[string]string `json:"params"`
}

// Formatter renders every failure as a Problem and logs it once.
type Formatter struct {
	logger     *zap.Logger
	production bool
	now        func() time.Time
}

// NewFormatter creates a Formatter. In production, diagnostics
// (parameters, stack location, unhandled error text) are left out of bodies.
func NewFormatter(logger *zap.Logger, production bool, now func() time.Time) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{logger: logger, production: production, now: now}
}

// Write renders err for r. Errors without a Kind are treated as unhandled.
func (f *Formatter) Write(w http.ResponseWriter, r *http.Request, err error) {
	p := f.Problem(r, err)
	f.log(r, err, p)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(p.StatusCode)
	_ = json.NewEncoder(w).Encode(p)
}

// Problem builds the body for err without writing or logging it.
func (f *Formatter) Problem(r *http.Request, err error) Problem {
	kind := apperr.KindOf(err)
	status := kind.Status()

	p := Problem{
		StatusCode: status,
		Error:      http.StatusText(status),
		Timestamp:  envelope.Timestamp(f.now()),
		Path:       r.URL.Path,
		Message:    message(err, kind),
	}
	if kind == apperr.KindUnhandled && f.production {
		p.Message = internalMessage
	}
	if !f.production {
		p.Parameters = &Parameters{
			Query:  redactQuery(r.URL.Query()),
			Params: redactParams(pathParams(r)),
		}
		p.StackLocation = location(err)
	}
	return p
}

func (f *Formatter) log(r *http.Request, err error, p Problem) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Any("query", redactQuery(r.URL.Query())),
		zap.Int("status", p.StatusCode),
		zap.String("timestamp", p.Timestamp),
		zap.String("kind", string(apperr.KindOf(err))),
		zap.Error(err),
	}
	if loc := location(err); loc != "" {
		fields = append(fields, zap.String("stack_location", loc))
	}
	if id := RequestID(r.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	if p.StatusCode >= http.StatusInternalServerError {
		f.logger.Error("request failed", fields...)
		return
	}
	f.logger.Warn("request rejected", fields...)
}

// message is a string, or a list when a validation error carries several.
func message(err error, kind apperr.Kind) any {
	e, ok := apperr.As(err)
	if !ok {
		return err.Error()
	}
	switch len(e.Messages) {
	case 0:
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return http.StatusText(kind.Status())
	case 1:
		return e.Messages[0]
	default:
		return e.Messages
	}
}

func location(err error) string {
	if e, ok := apperr.As(err); ok {
		return e.Location
	}
	return ""
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// redactQuery flattens single-valued keys to a string and masks sensitive ones.
func redactQuery(q url.Values) map[string]any {
	out := make(map[string]any, len(q))
	for k, vs := range q {
		switch {
		case isSensitive(k):
			out[k] = Redacted
		case len(vs) == 1:
			out[k] = vs[0]
		default:
			out[k] = vs
		}
	}
	return out
}

func redactParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if isSensitive(k) {
			v = Redacted
		}
		out[k] = v
	}
	return out
}

type paramsKey struct{}

// withPathParams records the named path values of the matched route so the
// formatter can echo them.
func withPathParams(r *http.Request, names []string) *http.Request {
	if len(names) == 0 {
		return r
	}
	params := make(map[string]string, len(names))
	for _, n := range names {
		params[n] = r.PathValue(n)
	}
	return r.WithContext(context.WithValue(r.Context(), paramsKey{}, params))
}

func pathParams(r *http.Request) map[string]string {
	params, _ := r.Context().Value(paramsKey{}).(map[string]string)
	return params
}

// wildcards returns the {name} segments of a route path in order.
func wildcards(path string) []string {
	var names []string
	for _, seg := range strings.Split(path, "/") {
		if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
			names = append(names, strings.TrimSuffix(seg[1:len(seg)-1], "..."))
		}
	}
	return names
}

// notFound is the catch-all for unmatched routes.
func notFound(r *http.Request) error {
	return apperr.NotFound(fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
}
