package goroutine

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/videomarket-backend/internal/logger"
)

// Logger получает перехваченную panic вместе со стеком.
type Logger interface {
	Panic(where string, value interface{}, stack []byte)
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer rh.recover("goroutine")
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.recover("goroutine (with context)")
		fn(ctx)
	}()
}

// recover перехватывает panic в текущей горутине. Вызывается через defer.
func (rh *RecoveryHandler) recover(where string) {
	if r := recover(); r != nil {
		rh.logger.Panic(where, r, debug.Stack())
	}
}

// logrusLogger пишет в глобальный логгер, даже если его пересоздали после старта.
type logrusLogger struct{}

func (logrusLogger) Panic(where string, value interface{}, stack []byte) {
	logger.Log.WithFields(logrus.Fields{
		"where": where,
		"panic": fmt.Sprint(value),
		"stack": string(stack),
	}).Error("goroutine: перехвачена panic")
}

// DefaultRecoveryHandler - глобальный обработчик, пишущий в logger.Log
var DefaultRecoveryHandler = NewRecoveryHandler(logrusLogger{})

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}
