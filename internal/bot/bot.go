package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/example/techtracker/internal/debounce"
	"github.com/example/techtracker/internal/search"
	"github.com/example/techtracker/internal/store"
	"github.com/example/techtracker/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxImportFileSize bounds how much of an uploaded document is read
const maxImportFileSize = 5 << 20

// noteKey identifies one debounced notes edit. Keyed per technology, not
// per chat: edits to different records within the autosave window must
// both commit, only edits to the same record coalesce.
type noteKey struct {
	chatID int64
	techID int64
}

// Bot is the Telegram surface of the tracker
type Bot struct {
	api      *tgbotapi.BotAPI
	store    *store.Store
	searcher search.Client
	config   *Config

	// chat that receives scheduled deadline reminders
	reminderChatID int64

	mu                 sync.Mutex
	awaitingFileUpload map[int64]bool
	lastSearchResults  map[int64][]search.Result
	noteDebouncers     map[noteKey]*debounce.Debouncer
	pendingNotes       map[noteKey]string
}

// New creates a bot instance from the environment
func New(st *store.Store, searcher search.Client) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API client: %v", err)
	}

	var reminderChatID int64
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("Warning: invalid TELEGRAM_CHAT_ID %q, reminders disabled", v)
		} else {
			reminderChatID = id
		}
	}

	return &Bot{
		api:                api,
		store:              st,
		searcher:           searcher,
		config:             DefaultConfig(),
		reminderChatID:     reminderChatID,
		awaitingFileUpload: make(map[int64]bool),
		lastSearchResults:  make(map[int64][]search.Result),
		noteDebouncers:     make(map[noteKey]*debounce.Debouncer),
		pendingNotes:       make(map[noteKey]string),
	}, nil
}

// Start processes updates until the context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	log.Printf("Bot authorized as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("Error handling message from chat %d: %v", update.Message.Chat.ID, err)
			}
		}
	}
}

// Stop shuts the update channel down and flushes pending note edits
func (b *Bot) Stop(ctx context.Context) error {
	b.api.StopReceivingUpdates()
	b.flushNotes()
	return nil
}

// flushNotes commits every pending debounced note edit immediately
func (b *Bot) flushNotes() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.noteDebouncers {
		d.Stop()
	}
	for key, text := range b.pendingNotes {
		if err := b.store.UpdateNotes(key.techID, text); err != nil {
			log.Printf("Error flushing notes for technology %d: %v", key.techID, err)
		}
		delete(b.pendingNotes, key)
	}
}

// SendDeadlineReminders delivers scheduled reminders to the configured
// chat. It implements scheduler.Notifier.
func (b *Bot) SendDeadlineReminders(entries []models.DeadlineEntry) error {
	if b.reminderChatID == 0 {
		return nil
	}

	text := "⏰ Upcoming deadlines:\n"
	for _, e := range entries {
		text += fmt.Sprintf("• %s — %s\n", e.Technology.Title, formatDaysLeft(e.DaysLeft))
	}

	return b.send(b.reminderChatID, text)
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.Document != nil {
		return b.handleDocument(message)
	}
	if message.IsCommand() {
		return b.handleCommand(ctx, message)
	}
	return nil
}

// handleDocument runs the import flow for an uploaded export file. Only
// JSON documents are accepted; the check happens here at the input
// boundary, before anything reaches the codec.
func (b *Bot) handleDocument(message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	b.mu.Lock()
	awaiting := b.awaitingFileUpload[chatID]
	delete(b.awaitingFileUpload, chatID)
	b.mu.Unlock()

	if !awaiting {
		return b.send(chatID, "Use /import first if you want to import a file.")
	}

	doc := message.Document
	if !isJSONDocument(doc) {
		return b.send(chatID, "❌ Only JSON files are supported.")
	}

	raw, err := b.downloadDocument(doc)
	if err != nil {
		return b.send(chatID, fmt.Sprintf("❌ Failed to read file: %v", err))
	}

	return b.importRaw(chatID, raw)
}

func (b *Bot) downloadDocument(doc *tgbotapi.Document) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %v", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImportFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %v", err)
	}
	return raw, nil
}

func isJSONDocument(doc *tgbotapi.Document) bool {
	if doc.MimeType == "application/json" {
		return true
	}
	name := doc.FileName
	return len(name) > 5 && name[len(name)-5:] == ".json"
}

func (b *Bot) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %v", err)
	}
	return nil
}

func (b *Bot) sendFile(chatID int64, name string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send file: %v", err)
	}
	return nil
}

func formatDaysLeft(days int) string {
	switch days {
	case 0:
		return "due today"
	case 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}
