package constants

const (
	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Message listing
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200

	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Gin context keys
	ContextKeyCaller    = "caller"
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
)
