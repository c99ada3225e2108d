package shared

import "context"

type sessionContextKey struct{}

type stateContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithState stores the signed-in state in context.
func ContextWithState(ctx context.Context, state *SessionContext) context.Context {
	return context.WithValue(ctx, stateContextKey{}, state)
}

// StateFromContext returns the signed-in state, loading it from the session
// when the middleware has not done so.
func StateFromContext(ctx context.Context) *SessionContext {
	if state, ok := ctx.Value(stateContextKey{}).(*SessionContext); ok {
		return state
	}
	return LoadSessionContext(SessionFromContext(ctx))
}
