package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pharmez/medimate/internal/adherence"
	"github.com/pharmez/medimate/internal/api"
	"github.com/pharmez/medimate/internal/calendar"
	"github.com/pharmez/medimate/internal/config"
	"github.com/pharmez/medimate/internal/notify"
	"github.com/pharmez/medimate/internal/reminder"
	"github.com/pharmez/medimate/internal/scheduler"
	"github.com/pharmez/medimate/internal/store"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	version    = "dev"
)

func main() {
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	st, err := store.New(cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer st.Close()

	reminderStore, err := reminder.NewStore(st.DB())
	if err != nil {
		logger.Fatal("Failed to initialize reminder store", zap.Error(err))
	}
	adherenceStore, err := adherence.NewStore(st.DB())
	if err != nil {
		logger.Fatal("Failed to initialize adherence store", zap.Error(err))
	}
	aggregator := adherence.NewAggregator(reminderStore, adherenceStore)

	mailer, err := notify.NewMailer(cfg.Mail, logger)
	if err != nil {
		logger.Fatal("Failed to initialize mail transport", zap.Error(err))
	}
	dispatcher := notify.NewDispatcher(mailer, st.Badger(), logger)

	calendarClient := calendar.NewClient(cfg.Calendar, logger)
	calendarSync := calendar.NewSync(calendarClient, logger)

	detector := reminder.NewDetector(reminderStore, logger)
	loop := scheduler.New(scheduler.Config{
		DispatchTimeout: time.Duration(cfg.Scheduler.DispatchTimeout) * time.Second,
		MaxConcurrent:   cfg.Scheduler.MaxConcurrent,
	}, detector, dispatcher, logger)

	if err := loop.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	server := api.NewServer(cfg, logger, reminderStore, adherenceStore, aggregator, dispatcher, calendarSync)

	go func() {
		logger.Info("Starting medimate",
			zap.String("version", version),
			zap.String("address", cfg.Server.Address),
			zap.Int("port", cfg.Server.Port),
		)
		if err := server.Start(); err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	if err := server.Shutdown(); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	loop.Stop()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
