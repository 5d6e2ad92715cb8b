package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/techtracker/internal/bot"
	"github.com/example/techtracker/internal/scheduler"
	"github.com/example/techtracker/internal/search"
	"github.com/example/techtracker/internal/storage"
	"github.com/example/techtracker/internal/store"
	"github.com/example/techtracker/pkg/models"
	"github.com/joho/godotenv"
)

// logNotifier writes reminders to the log when no bot is configured
type logNotifier struct{}

func (logNotifier) SendDeadlineReminders(entries []models.DeadlineEntry) error {
	for _, e := range entries {
		log.Printf("Reminder: %q is due in %d days (%s)", e.Technology.Title, e.DaysLeft, e.Technology.Deadline)
	}
	return nil
}

func main() {
	// Load environment variables from a local .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	st, err := storage.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer st.Close()

	collection := store.New(st)
	collection.Load()
	log.Printf("Loaded %d technologies", len(collection.Items()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down...")
		cancel()
	}()

	// The bot is optional: without a token the tracker still runs the
	// reminder scheduler and logs reminders instead of sending them.
	var notifier scheduler.Notifier = logNotifier{}
	var b *bot.Bot
	if os.Getenv("TELEGRAM_BOT_TOKEN") != "" {
		b, err = bot.New(collection, search.NewMockClient())
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		notifier = b
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, running without the Telegram surface")
	}

	sched := scheduler.New(collection, notifier)
	sched.Start()
	defer sched.Stop()

	log.Println("Technology Tracker started")
	if b != nil {
		if err := b.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Bot stopped: %v", err)
		}
		if err := b.Stop(context.Background()); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
		return
	}

	<-ctx.Done()
}
