package internal

import (
	"context"
	"duitku/entity"
	"duitku/services"
	"sync"
	"time"

	"go.uber.org/zap"
)

const logWriteTimeout = 5 * time.Second

// Logger implements services.LogHandler on top of zap. When a database is
// set, records of info level and above are also stored there.
type Logger struct {
	category string
	debug    bool
	zap      *zap.Logger
	database services.Database
	pending  sync.WaitGroup
}

func NewLogger(category string, debug bool, database services.Database) *Logger {
	conf := zap.NewProductionConfig()
	if debug {
		conf = zap.NewDevelopmentConfig()
	}
	base, err := conf.Build()
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{
		category: category,
		debug:    debug,
		zap:      base.Named(category),
		database: database,
	}
}

// newLoggerWithCore is used by tests to capture output.
func newLoggerWithCore(category string, debug bool, base *zap.Logger, database services.Database) *Logger {
	return &Logger{
		category: category,
		debug:    debug,
		zap:      base.Named(category),
		database: database,
	}
}

func (l *Logger) Debug(text string) {
	if !l.debug {
		return
	}
	l.zap.Debug(text)
}

func (l *Logger) Info(text string) {
	l.zap.Info(text)
	l.store("info", text, nil)
}

func (l *Logger) Warn(text string) {
	l.zap.Warn(text)
	l.store("warning", text, nil)
}

func (l *Logger) Error(text string, err error) {
	l.zap.Error(text, zap.Error(err))
	l.store("error", text, err)
}

func (l *Logger) Sync() {
	_ = l.zap.Sync()
}

func (l *Logger) store(level, text string, err error) {
	if l.database == nil {
		return
	}
	now := time.Now()
	message := &entity.LogMessage{
		Time:      now,
		Level:     level,
		Category:  l.category,
		Text:      text,
		Timestamp: now.Format(time.RFC3339),
	}
	if err != nil {
		message.Error = err.Error()
	}
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
		defer cancel()
		if e := l.database.WriteLogMessage(ctx, message); e != nil {
			l.zap.Warn("write log message", zap.Error(e))
		}
	}()
}

// Wait blocks until queued database writes are done or ctx expires.
func (l *Logger) Wait(ctx context.Context) error {
	return waitFor(ctx, &l.pending)
}

func waitFor(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
