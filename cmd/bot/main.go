package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/furclan/eventbot/internal/calendar"
	"github.com/furclan/eventbot/internal/clock"
	"github.com/furclan/eventbot/internal/config"
	"github.com/furclan/eventbot/internal/database"
	"github.com/furclan/eventbot/internal/domain/service"
	"github.com/furclan/eventbot/internal/handlers"
	"github.com/furclan/eventbot/internal/transport"
	"github.com/furclan/eventbot/migrator/sqlite"
	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := config.Load()

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Println("Running migrations...")
	if err := sqlite.Migrate(db.DB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slackClient := slack.New(cfg.SlackBotToken)
	chat := transport.New(slackClient)

	provider, err := calendar.NewClient(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleTokenFile, cfg.GoogleCalendarID)
	if err != nil {
		log.Fatalf("Failed to initialize calendar client: %v", err)
	}

	dm := database.NewInstance(db)
	services := service.New(dm, chat, provider, clock.New(), cfg)

	services.CalendarSync.Start(ctx)
	services.Reminder.Start(ctx)
	services.Broadcast.Start(ctx)

	handler := handlers.New(services, cfg.SlackSigningSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("/slack/commands", handler.HandleSlashCommand)
	mux.HandleFunc("/slack/events", handler.HandleEvents)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: mux}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	services.CalendarSync.Stop()
	services.Reminder.Stop()
	services.Broadcast.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	cancel()
	log.Println("Shutdown complete")
}
