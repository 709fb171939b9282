package internal

import (
	"context"
	"duitku/entity"
	"duitku/services"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memoryDatabase struct {
	delay    time.Duration
	mutex    sync.Mutex
	messages []*entity.LogMessage
}

func (m *memoryDatabase) WriteLogMessage(_ context.Context, data services.Data) error {
	time.Sleep(m.delay)
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if message, ok := data.(*entity.LogMessage); ok {
		m.messages = append(m.messages, message)
	}
	return nil
}

func (m *memoryDatabase) Close(_ context.Context) error {
	return nil
}

func (m *memoryDatabase) count() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.messages)
}

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := newLoggerWithCore("test", false, zap.New(core), nil)

	logger.Debug("hidden")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "info message", entries[0].Message)
	assert.Equal(t, "test", entries[0].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestLogger_DebugEnabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := newLoggerWithCore("test", true, zap.New(core), nil)

	logger.Debug("visible")
	assert.Equal(t, 1, logs.FilterMessage("visible").Len())
}

func TestLogger_StoresRecords(t *testing.T) {
	database := &memoryDatabase{}
	logger := newLoggerWithCore("server", false, zap.NewNop(), database)

	logger.Info("started")
	logger.Error("failed", errors.New("boom"))
	logger.Debug("not stored")

	assert.Eventually(t, func() bool { return database.count() == 2 }, time.Second, 10*time.Millisecond)

	database.mutex.Lock()
	defer database.mutex.Unlock()
	for _, message := range database.messages {
		assert.Equal(t, "server", message.Category)
		if message.Level == "error" {
			assert.Equal(t, "boom", message.Error)
		}
	}
}

func TestLogger_WaitDrainsWrites(t *testing.T) {
	database := &memoryDatabase{delay: 50 * time.Millisecond}
	logger := newLoggerWithCore("server", false, zap.NewNop(), database)

	for i := 0; i < 5; i++ {
		logger.Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, logger.Wait(ctx))
	assert.Equal(t, 5, database.count())
}

func TestLogger_WaitExpired(t *testing.T) {
	database := &memoryDatabase{delay: time.Second}
	logger := newLoggerWithCore("server", false, zap.NewNop(), database)
	logger.Warn("slow write")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, logger.Wait(ctx), context.DeadlineExceeded)
}

// nopLogger keeps test output quiet.
func nopLogger() *Logger {
	return newLoggerWithCore("test", false, zap.NewNop(), nil)
}
