package constants

const (
	// ContextKeyUserID is the session and gin context key holding the authenticated user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyActor is the gin context key holding the resolved access.Actor.
	ContextKeyActor = "actor"
	// ContextKeyRequestID is the gin context key holding the request ID.
	ContextKeyRequestID = "request_id"
	// RequestIDHeader carries the request ID on requests and responses.
	RequestIDHeader = "X-Request-ID"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "fremont_session"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MeAlias refers to the authenticated user in /users/:user routes.
	MeAlias = "me"

	// MaxPushBatchSize is the most messages the push endpoint accepts per request.
	MaxPushBatchSize = 100
	// PushExcerptLength is the number of characters of post content sent in a notification.
	PushExcerptLength = 300
)
