package logger

import (
	"strings"
	"time"

	"github.com/dropDatabas3/socialgate/internal/security/token"
	"go.uber.org/zap"
)

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field         { return zap.String("request_id", v) }
func Method(v string) zap.Field            { return zap.String("method", v) }
func Path(v string) zap.Field              { return zap.String("path", v) }
func Status(v int) zap.Field               { return zap.Int("status", v) }
func DurationMs(v time.Duration) zap.Field { return zap.Int64("duration_ms", v.Milliseconds()) }
func ClientIP(v string) zap.Field          { return zap.String("client_ip", v) }

// =================================================================================
// DOMINIO
// =================================================================================

// Provider identifica el identity provider (google, kakao, naver).
func Provider(v string) zap.Field { return zap.String("provider", v) }

// SubjectID es el identificador de cuenta local que viaja en el claim sub.
func SubjectID(v string) zap.Field { return zap.String("subject_id", v) }

// TokenKind es access | refresh.
func TokenKind(v string) zap.Field { return zap.String("token_kind", v) }

// Token registra solo una huella corta del token, nunca el valor.
func Token(raw string) zap.Field { return zap.String("token_fp", TokenFingerprint(raw)) }

// Email registra el email enmascarado.
func Email(v string) zap.Field { return zap.String("email_masked", MaskEmail(v)) }

// Reason es un código corto de rechazo/fallo.
func Reason(v string) zap.Field { return zap.String("reason", v) }

// =================================================================================
// SISTEMA
// =================================================================================

func Component(v string) zap.Field                 { return zap.String("component", v) }
func Op(v string) zap.Field                        { return zap.String("op", v) }
func Layer(v string) zap.Field                     { return zap.String("layer", v) }
func Err(err error) zap.Field                      { return zap.Error(err) }
func String(k, v string) zap.Field                 { return zap.String(k, v) }
func Any(k string, v any) zap.Field                { return zap.Any(k, v) }
func Duration(k string, v time.Duration) zap.Field { return zap.Duration(k, v) }

// TokenFingerprint devuelve los primeros 12 hex de sha256(token).
func TokenFingerprint(raw string) string {
	return tokens.Fingerprint(raw)
}

// MaskEmail deja la primera letra del usuario y del dominio: j…@x….com
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		if s == "" {
			return ""
		}
		return "***"
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	parts := strings.Split(dom, ".")
	if len(parts) > 0 && len(parts[0]) > 1 {
		parts[0] = parts[0][:1] + "…"
	}
	return user + "@" + strings.Join(parts, ".")
}
