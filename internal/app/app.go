package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"timeTracker/internal/config"
	"timeTracker/internal/handlers"
	"timeTracker/internal/lock"
	"timeTracker/internal/logger"
	"timeTracker/internal/notify"
	"timeTracker/internal/repository/inmemory"
	"timeTracker/internal/repository/postgres"
	"timeTracker/internal/service"
	"timeTracker/internal/worker"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// storage - всё, что сервисам нужно от хранилища
type storage interface {
	service.TaskRepository
	service.CommentRepository
	service.UserRepository
	service.TimerRepository
	service.TimeRecordRepository
}

type App struct {
	config     *config.Config
	server     *http.Server
	repository storage // интерфейс!
	worker     *worker.NotificationWorker
	shutdowns  []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	logCfg := a.config.Logging
	if err := logger.InitWithFile(logCfg.Development, &logger.FileOptions{
		Path:       logCfg.File,
		MaxSizeMB:  logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAgeDays: logCfg.MaxAgeDays,
	}); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initRepository(ctx); err != nil {
		return nil, err
	}

	locker, err := a.initLocker(ctx)
	if err != nil {
		return nil, err
	}

	notifyCfg := a.config.Notify
	dispatcher := notify.NewDispatcher(a.initNotifier(), notifyCfg.Concurrency, notifyCfg.SendTimeout)
	a.worker = worker.NewNotificationWorker(dispatcher, &notifyCfg.QueueSize)

	observer := service.NewTaskMutationObserver(a.repository, a.repository, notifyCfg.From)
	taskService := service.NewTaskService(a.repository, a.repository, a.repository, observer, a.worker)
	timerService := service.NewTimerService(a.repository, a.repository, locker, nil)
	reportService := service.NewReportService(a.repository, nil)
	userService := service.NewUserService(a.repository)

	router := handlers.NewRouter(
		handlers.RouterConfig{
			JWTSecret:      a.config.Auth.JWTSecret,
			RequestTimeout: a.config.Server.RequestTimeout,
			RateLimit:      a.config.Server.RateLimit,
			AllowedOrigins: a.config.Server.AllowedOrigins,
		},
		handlers.NewTaskHandler(taskService),
		handlers.NewTimerHandler(timerService, reportService),
		handlers.NewUserHandler(userService),
	)

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(router, "time-tracker"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Приложение инициализировано",
		zap.String("addr", a.server.Addr),
		zap.String("repository", a.config.Repository.Type),
		zap.String("lock", a.config.Lock.Type),
		zap.String("notify", notifyCfg.Transport))

	return a, nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case "postgres":
		store, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		if a.config.Database.Migrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return fmt.Errorf("миграции: %w", err)
			}
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие пула соединений БД...")
			store.Close()
		})
		a.repository = store
	default:
		a.repository = inmemory.NewStorage()
	}
	return nil
}

func (a *App) initLocker(ctx context.Context) (service.Locker, error) {
	lockCfg := a.config.Lock
	if lockCfg.Type != "redis" {
		return lock.NewKeyed(), nil
	}

	client, err := lock.Connect(ctx, lockCfg.RedisAddr, lockCfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("подключение к redis: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие соединения с redis...")
		if err := client.Close(); err != nil {
			logger.Error("Ошибка закрытия redis", err)
		}
	})

	return lock.NewRedis(client, lock.RedisOptions{
		TTL:       lockCfg.TTL,
		WaitLimit: lockCfg.WaitLimit,
	}), nil
}

func (a *App) initNotifier() notify.Notifier {
	cfg := a.config.Notify
	if cfg.Transport != "smtp" {
		return notify.LogNotifier{}
	}
	return notify.NewSMTP(notify.SMTPOptions{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
}

// Run блокируется до отмены ctx или падения сервера
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	g, gctx := errgroup.WithContext(ctx)

	// воркер живёт дольше сервера: запросы, которые доделываются в Shutdown, ещё публикуют события
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	g.Go(func() error {
		a.worker.Start(workerCtx)
		return nil
	})

	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		err := a.server.Shutdown(shutdownCtx)
		stopWorker()
		if err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// shutdown выполняет shutdowns в обратном порядке
func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
