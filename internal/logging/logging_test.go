package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/justsurfingit/jobboard/internal/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.Config{Environment: "production", LogLevel: "loud"})
	require.Error(t, err)

	logger, err := New(config.Config{Environment: "production", LogLevel: "warn"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.InfoLevel))
	require.True(t, logger.Core().Enabled(zap.WarnLevel))
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), 50*time.Millisecond)
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), sql, errors.New("boom"))
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	l.Trace(ctx, time.Now(), sql, nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	require.Equal(t, "query", entries[0].Message)
	require.Equal(t, "query failed", entries[1].Message)
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	require.Equal(t, "slow query", entries[2].Message)
	require.Equal(t, "query", entries[3].Message)

	logs.TakeAll()
	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), sql, errors.New("boom"))
	require.Zero(t, logs.Len())
}
