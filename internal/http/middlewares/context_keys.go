package middlewares

const (
	ctxUserKey  = "auth.user"
	ctxTokenKey = "auth.token"

	CtxRequestID = "request_id"
)
