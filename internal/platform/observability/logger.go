package observability

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/infinite-doughmain/ordering/internal/platform/requestctx"
)

// NewLogger builds the JSON logger. An unrecognised level falls back to info.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.LevelKey = "severity"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	return cfg.Build()
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return requestctx.WithLogger(ctx, logger)
}

// SessionFields returns order_id and phone_key fields for the session the request acted on.
// Guest sessions omit phone_key, untagged requests get no fields.
func SessionFields(ctx context.Context) []zap.Field {
	orderID, phoneKey := requestctx.Session(ctx)
	var fields []zap.Field
	if orderID != "" {
		fields = append(fields, zap.String("order_id", orderID))
	}
	if phoneKey != "" {
		fields = append(fields, zap.String("phone_key", phoneKey))
	}
	return fields
}

// logSafe strips control characters, which keeps request values from forging log lines, and
// caps the result at limit runes.
func logSafe(value string, limit int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, value)
	if runes := []rune(cleaned); len(runes) > limit {
		return string(runes[:limit])
	}
	return cleaned
}
