package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/techtracker/internal/stats"
	"github.com/example/techtracker/internal/store"
	"github.com/example/techtracker/pkg/models"
	"github.com/go-co-op/gocron"
)

// Default notification window
const (
	DefaultNotificationStartHour = 8  // earliest hour reminders go out
	DefaultNotificationEndHour   = 22 // latest hour reminders go out
)

// DefaultReminderHorizonDays is how close a deadline must be to trigger
// a reminder
const DefaultReminderHorizonDays = 7

// Notifier delivers deadline reminders to the user surface
type Notifier interface {
	SendDeadlineReminders(entries []models.DeadlineEntry) error
}

// Scheduler manages the periodic deadline check
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     *store.Store
	notifier  Notifier

	// HorizonDays limits reminders to deadlines this many days out
	HorizonDays int
}

// New creates a scheduler over the given store and notifier
func New(st *store.Store, notifier Notifier) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:   s,
		store:       st,
		notifier:    notifier,
		HorizonDays: DefaultReminderHorizonDays,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	// Hourly check for deadlines that are getting close
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders sends a reminder when upcoming deadlines fall
// within the horizon and the current hour is inside the notification
// window.
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()

	startHour := hourFromEnv("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := hourFromEnv("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	if err := s.RunManualCheck(); err != nil {
		log.Printf("Error sending deadline reminders: %v", err)
	}
}

// RunManualCheck performs one deadline check immediately
func (s *Scheduler) RunManualCheck() error {
	entries := stats.UpcomingDeadlines(s.store.Items(), time.Now(), 0)

	var due []models.DeadlineEntry
	for _, e := range entries {
		if e.DaysLeft <= s.HorizonDays {
			due = append(due, e)
		}
	}

	if len(due) == 0 {
		return nil
	}
	return s.notifier.SendDeadlineReminders(due)
}

func hourFromEnv(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
