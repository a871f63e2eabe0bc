package middlewares

import (
	"context"

	"github.com/dropDatabas3/socialgate/internal/jwt"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxSubjectKey   ctxKey = "subject"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims inyecta las claims verificadas y su subject.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxClaimsKey, claims)
	return context.WithValue(ctx, ctxSubjectKey, claims.Subject)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetClaims retorna nil si el request no está autenticado.
func GetClaims(ctx context.Context) *jwt.Claims {
	c, _ := ctx.Value(ctxClaimsKey).(*jwt.Claims)
	return c
}

// GetSubject retorna "" si el request no está autenticado.
func GetSubject(ctx context.Context) string {
	s, _ := ctx.Value(ctxSubjectKey).(string)
	return s
}

func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
