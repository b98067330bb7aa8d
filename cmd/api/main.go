package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"timeTracker/internal/app"
	"timeTracker/internal/config"
	"timeTracker/internal/logger"
)

func main() {
	configPath := flag.String("config", "config.yml", "путь к файлу конфигурации")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", err)
	}

	application, err := app.New(cfg).Init(ctx)
	if err != nil {
		logger.Fatal("Ошибка инициализации приложения", err)
	}

	if err := application.Run(ctx); err != nil {
		logger.Fatal("Приложение завершилось с ошибкой", err)
	}
	logger.Info("Сервер остановлен")
}
