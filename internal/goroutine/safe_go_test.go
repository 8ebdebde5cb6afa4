package goroutine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
	done     chan struct{}
}

func (l *recordingLogger) Panic(where string, value interface{}, stack []byte) {
	l.mu.Lock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %v", where, value))
	l.mu.Unlock()
	close(l.done)
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	log := &recordingLogger{done: make(chan struct{})}
	rh := NewRecoveryHandler(log)

	rh.SafeGo(func() { panic("boom") })
	<-log.done

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Len(t, log.messages, 1)
	assert.Equal(t, "goroutine: boom", log.messages[0])
}

func TestSafeGoWithContext_PassesContext(t *testing.T) {
	rh := NewRecoveryHandler(&recordingLogger{done: make(chan struct{})})
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")

	got := make(chan interface{}, 1)
	rh.SafeGoWithContext(ctx, func(ctx context.Context) {
		got <- ctx.Value(key{})
	})

	assert.Equal(t, "value", <-got)
}
