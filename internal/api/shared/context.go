package shared

import (
	"context"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type contextKey string

const (
	identityKey   contextKey = "identity"
	traceIDKey    contextKey = "traceID"
	showStackKey  contextKey = "showStack"
	fallbackTrace            = "untraced"
)

// TraceIDHeader carries the request trace id back to the client.
const TraceIDHeader = "X-Trace-ID"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	// Token is the bearer token the caller presented.
	Token string
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// NewTraceID returns a random URL-safe trace id.
func NewTraceID() string {
	id, err := gonanoid.New()
	if err != nil {
		slog.Error("failed to generate trace ID", slog.String("error", err.Error()))
		return fallbackTrace
	}
	return id
}

// WithTraceID returns a copy of ctx carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// SetTraceID attaches a freshly generated trace id to ctx.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}

// GetTraceID returns the trace id in ctx, or "" if none was set.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey).(string)
	return traceID
}

// WithStackTraces controls whether 500 responses for this request include
// a stack.
func WithStackTraces(ctx context.Context, show bool) context.Context {
	return context.WithValue(ctx, showStackKey, show)
}

// StackTracesEnabled reports the value set by WithStackTraces.
func StackTracesEnabled(ctx context.Context) bool {
	show, _ := ctx.Value(showStackKey).(bool)
	return show
}
