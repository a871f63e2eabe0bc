package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j…@x….com", MaskEmail("Jane@Example.com"))
	assert.Equal(t, "***", MaskEmail("nomail"))
	assert.Equal(t, "", MaskEmail("  "))
}

func TestTokenFingerprint_NeverEchoesToken(t *testing.T) {
	raw := "eyJhbGciOiJIUzI1NiJ9.payload.sig"
	fp := TokenFingerprint(raw)
	assert.Len(t, fp, 12)
	assert.NotContains(t, raw, fp)
	assert.Equal(t, fp, TokenFingerprint(raw))
	assert.Empty(t, TokenFingerprint(""))
}

func TestFrom_FallsBackToSingleton(t *testing.T) {
	assert.Same(t, L(), From(context.Background()))

	scoped := zap.NewNop()
	ctx := ToContext(context.Background(), scoped)
	assert.Same(t, scoped, From(ctx))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}
