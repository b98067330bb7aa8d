package notify

import (
	"context"
	"sync/atomic"
	"time"

	"timeTracker/internal/logger"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Dispatcher рассылает события параллельно, по одному письму на получателя:
// ошибка одного получателя не мешает остальным
type Dispatcher struct {
	notifier    Notifier
	concurrency int
	timeout     time.Duration
}

func NewDispatcher(notifier Notifier, concurrency int, timeout time.Duration) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		notifier:    notifier,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// Dispatch возвращает количество доставленных писем, ошибки только логируются
func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) int {
	if len(events) == 0 {
		return 0
	}

	var delivered atomic.Int64
	p := pool.New().WithMaxGoroutines(d.concurrency)

	for _, ev := range events {
		ev := ev
		p.Go(func() {
			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			if err := d.notifier.Send(sendCtx, ev.Subject, ev.Message, ev.From, ev.To); err != nil {
				logger.Warn("Notify: Не удалось доставить уведомление",
					zap.String("kind", string(ev.Kind)),
					zap.String("task_id", ev.TaskID.String()),
					zap.String("to", ev.To),
					zap.Error(err))
				return
			}
			delivered.Add(1)
		})
	}
	p.Wait()

	logger.Info("Notify: Рассылка завершена",
		zap.Int("events", len(events)),
		zap.Int64("delivered", delivered.Load()))
	return int(delivered.Load())
}
