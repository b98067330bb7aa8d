package worker

import (
	"context"
	"sync"
	"time"

	"timeTracker/internal/logger"
	"timeTracker/internal/notify"

	"go.uber.org/zap"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, events []notify.Event) int
}

// NotificationWorker рассылает уведомления в фоне, чтобы запрос не ждал почту
type NotificationWorker struct {
	dispatcher Dispatcher
	queue      chan []notify.Event

	mu     sync.RWMutex
	closed bool
}

func NewNotificationWorker(dispatcher Dispatcher, queueSize *int) *NotificationWorker {
	var sizeToSet int
	if queueSize == nil || *queueSize <= 0 {
		sizeToSet = 256
	} else {
		sizeToSet = *queueSize
	}

	return &NotificationWorker{
		dispatcher: dispatcher,
		queue:      make(chan []notify.Event, sizeToSet),
	}
}

// Publish не блокирует: при переполненной очереди события отбрасываются
func (w *NotificationWorker) Publish(ctx context.Context, events []notify.Event) {
	if len(events) == 0 {
		return
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		logger.Warn("Worker: Рассылка остановлена, уведомления потеряны",
			zap.Int("events", len(events)))
		return
	}

	select {
	case w.queue <- events:
	default:
		logger.Warn("Worker: Очередь уведомлений переполнена, события отброшены",
			zap.Int("events", len(events)),
			zap.Int("queue_size", cap(w.queue)))
	}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	logger.Info("Worker: Рассылка уведомлений запущена")

	for {
		select {
		case events := <-w.queue:
			w.send(ctx, events)
		case <-ctx.Done():
			w.close()
			w.drain()
			logger.Info("Worker: Рассылка уведомлений остановлена")
			return
		}
	}
}

// close запрещает новые публикации; после него очередь только досылается
func (w *NotificationWorker) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// drain досылает то, что уже лежит в очереди, на отдельном контексте
func (w *NotificationWorker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		select {
		case events := <-w.queue:
			w.send(ctx, events)
		default:
			return
		}
	}
}

func (w *NotificationWorker) send(ctx context.Context, events []notify.Event) {
	start := time.Now()
	delivered := w.dispatcher.Dispatch(ctx, events)

	logger.Info(
		"Worker: Пачка уведомлений обработана",
		zap.Duration("ms", time.Since(start)),
		zap.Int("events", len(events)),
		zap.Int("delivered", delivered),
	)
}
