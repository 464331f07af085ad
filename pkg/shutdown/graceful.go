// Package shutdown предоставляет корректное завершение приложения
// по сигналам SIGINT/SIGTERM или по отмене родительского контекста.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gonotes/pkg/logger"
)

// Hook - функция освобождения ресурса.
type Hook func(ctx context.Context) error

const (
	logSignalReceived  = "shutdown signal received"
	logContextCanceled = "parent context canceled, shutting down"
	logHookFailed      = "shutdown hook failed"
	logTimeoutExceeded = "shutdown timeout exceeded"
)

// ErrTimeout возвращается, если хуки не уложились в отведенное время.
var ErrTimeout = errors.New("shutdown timeout exceeded")

// Wait блокируется до получения SIGINT/SIGTERM или отмены ctx, затем
// параллельно выполняет хуки в пределах timeout. Ошибки хуков объединяются.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	log := logger.Log(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info(ctx, logSignalReceived, zap.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info(ctx, logContextCanceled)
	}

	return runHooks(context.WithoutCancel(ctx), timeout, hooks)
}

func runHooks(parent context.Context, timeout time.Duration, hooks []Hook) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := logger.Log(ctx)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i, hook := range hooks {
		wg.Add(1)
		go func(idx int, fn Hook) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				log.Error(ctx, logHookFailed, zap.Int("hook", idx), zap.Error(err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("hook %d: %w", idx, err))
				mu.Unlock()
			}
		}(i, hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn(ctx, logTimeoutExceeded, zap.Duration("timeout", timeout))
		mu.Lock()
		defer mu.Unlock()
		return errors.Join(append(errs, ErrTimeout)...)
	}

	return errors.Join(errs...)
}
