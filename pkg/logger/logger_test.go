package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext_AddsRequestAndUserIDs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{Logger: zap.New(core)}

	ctx := context.WithValue(context.Background(), RequestIdKey, "req-1")
	ctx = context.WithValue(ctx, UserIdKey, "user-1")
	l.WithContext(ctx).Info("hello")
	l.Named("outbox").WithContext(context.Background()).Info("bare")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "user-1", fields["user_id"])
		assert.Empty(t, entries[1].ContextMap())
		assert.Equal(t, "outbox", entries[1].LoggerName)
	}
}

func TestNew_TestModeIsSilent(t *testing.T) {
	l := New(TestMode)
	assert.False(t, l.Logger.Core().Enabled(zap.ErrorLevel))
}
