package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/techtracker/internal/debounce"
	"github.com/example/techtracker/internal/export"
	"github.com/example/techtracker/internal/importer"
	"github.com/example/techtracker/internal/stats"
	"github.com/example/techtracker/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Available commands:
/list [query] - show tracked technologies
/stats - learning statistics
/deadlines - upcoming deadlines
/add Title | Description | Category | Difficulty - track a new technology
/done <id> - advance a technology one step
/progress <id> <percent> - set completion percentage
/note <id> <text> - attach a note (autosaved)
/deadline <id> <YYYY-MM-DD> - set a deadline, empty date clears it
/remove <id> - stop tracking a technology
/search <query> - search the technology catalog
/popular - trending technologies
/track <number> - track a search result
/export [json|csv|xlsx] [min] - download the collection
/import - upload a previously exported JSON file
/clear confirm - delete the whole collection`

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		return b.send(chatID, "👋 Welcome to Technology Tracker!\nTrack what you are learning, keep notes and deadlines, and never lose your progress.\n\nUse /help to see what I can do.")
	case "help":
		return b.send(chatID, helpText)
	case "list":
		return b.handleList(chatID, args)
	case "stats":
		return b.handleStats(chatID)
	case "deadlines":
		return b.handleDeadlines(chatID)
	case "add":
		return b.handleAdd(chatID, args)
	case "done":
		return b.handleDone(chatID, args)
	case "progress":
		return b.handleProgress(chatID, args)
	case "note":
		return b.handleNote(chatID, args)
	case "deadline":
		return b.handleDeadline(chatID, args)
	case "remove":
		return b.handleRemove(chatID, args)
	case "search":
		return b.handleSearch(ctx, chatID, args)
	case "popular":
		return b.handlePopular(ctx, chatID)
	case "track":
		return b.handleTrack(chatID, args)
	case "export":
		return b.handleExport(chatID, args)
	case "import":
		return b.handleImport(chatID)
	case "clear":
		return b.handleClear(chatID, args)
	default:
		return b.send(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

func (b *Bot) handleList(chatID int64, query string) error {
	items := b.store.Filter(query, "", "")
	if len(items) == 0 {
		if query == "" {
			return b.send(chatID, "Nothing tracked yet. Use /add or /search to get started.")
		}
		return b.send(chatID, fmt.Sprintf("No technologies match %q.", query))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📚 Tracked technologies (%d):\n\n", len(items)))
	for i, t := range items {
		if i >= b.config.ListLimit {
			sb.WriteString(fmt.Sprintf("… and %d more. Narrow the list with /list <query>.\n", len(items)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s — %d%% (%s)\n", statusEmoji(t.Status), t.ID, t.Title, t.Progress, t.Status))
		if t.HasDeadline() {
			sb.WriteString(fmt.Sprintf("    📅 %s\n", t.Deadline))
		}
	}
	return b.send(chatID, sb.String())
}

func (b *Bot) handleStats(chatID int64) error {
	items := b.store.Items()
	overview := stats.Overview(items)

	var sb strings.Builder
	sb.WriteString("📊 Learning statistics:\n\n")
	sb.WriteString(fmt.Sprintf("Total: %d\n", overview.Total))
	sb.WriteString(fmt.Sprintf("✅ Completed: %d\n", overview.Completed))
	sb.WriteString(fmt.Sprintf("🔄 In progress: %d\n", overview.InProgress))
	sb.WriteString(fmt.Sprintf("⭕ Not started: %d\n", overview.NotStarted))
	if overview.OnHold > 0 {
		sb.WriteString(fmt.Sprintf("⏸ On hold: %d\n", overview.OnHold))
	}
	if overview.Dropped > 0 {
		sb.WriteString(fmt.Sprintf("🗑 Dropped: %d\n", overview.Dropped))
	}
	sb.WriteString(fmt.Sprintf("\nOverall progress: %d%%\n", overview.ProgressPercentage))
	sb.WriteString(fmt.Sprintf("Average completion: %.1f%%\n", stats.AverageProgress(items)))

	byCategory := stats.ByCategory(items)
	if len(byCategory) > 0 {
		sb.WriteString("\nBy category:\n")
		names := make([]string, 0, len(byCategory))
		for name := range byCategory {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			g := byCategory[name]
			sb.WriteString(fmt.Sprintf("  %s: %d/%d (%d%%)\n", name, g.Completed, g.Total, g.Percentage()))
		}
	}
	return b.send(chatID, sb.String())
}

func (b *Bot) handleDeadlines(chatID int64) error {
	entries := stats.UpcomingDeadlines(b.store.Items(), time.Now(), b.config.DeadlineLimit)
	if len(entries) == 0 {
		return b.send(chatID, "No upcoming deadlines. 🎉")
	}

	var sb strings.Builder
	sb.WriteString("⏰ Upcoming deadlines:\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• %s — %s (%s)\n", e.Technology.Title, formatDaysLeft(e.DaysLeft), e.Technology.Deadline))
	}
	return b.send(chatID, sb.String())
}

// handleAdd creates a technology from pipe-separated arguments. Only the
// title and description are required.
func (b *Bot) handleAdd(chatID int64, args string) error {
	if args == "" {
		return b.send(chatID, "Usage: /add Title | Description | Category | Difficulty")
	}

	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	tech := models.Technology{Title: parts[0]}
	if len(parts) > 1 {
		tech.Description = parts[1]
	}
	if len(parts) > 2 {
		tech.Category = parts[2]
	}
	if len(parts) > 3 {
		tech.Difficulty = parts[3]
	}
	if tech.Description == "" {
		return b.send(chatID, "A description is required: /add Title | Description")
	}

	added, err := b.store.Add(tech)
	if err != nil {
		return b.send(chatID, fmt.Sprintf("❌ %v", err))
	}
	return b.send(chatID, fmt.Sprintf("✅ Now tracking %q (id %d).", added.Title, added.ID))
}

// handleDone advances one technology a single step along the learning
// chain: not started becomes in progress, in progress becomes completed.
func (b *Bot) handleDone(chatID int64, args string) error {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return b.send(chatID, "Usage: /done <id>")
	}

	tech, ok := b.store.Get(id)
	if !ok {
		return b.send(chatID, fmt.Sprintf("No technology with id %d.", id))
	}

	next, ok := models.NextStatus(tech.Status)
	if !ok {
		return b.send(chatID, fmt.Sprintf("%q is %s and cannot advance further.", tech.Title, tech.Status))
	}
	if err := b.store.UpdateStatus(id, next); err != nil {
		return b.send(chatID, fmt.Sprintf("❌ %v", err))
	}
	if next == models.StatusCompleted {
		return b.send(chatID, fmt.Sprintf("🎉 %q completed!", tech.Title))
	}
	return b.send(chatID, fmt.Sprintf("▶️ %q is now %s.", tech.Title, next))
}

func (b *Bot) handleProgress(chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.send(chatID, "Usage: /progress <id> <percent>")
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return b.send(chatID, "Usage: /progress <id> <percent>")
	}
	percent, err := strconv.Atoi(strings.TrimSuffix(fields[1], "%"))
	if err != nil {
		return b.send(chatID, "Usage: /progress <id> <percent>")
	}

	tech, ok := b.store.Get(id)
	if !ok {
		return b.send(chatID, fmt.Sprintf("No technology with id %d.", id))
	}
	if err := b.store.UpdateProgress(id, percent); err != nil {
		return b.send(chatID, fmt.Sprintf("❌ %v", err))
	}
	return b.send(chatID, fmt.Sprintf("📈 %q is now at %d%%.", tech.Title, percent))
}

// handleNote schedules a debounced autosave of the note text, so a burst
// of edits produces one store write.
func (b *Bot) handleNote(chatID int64, args string) error {
	fields := strings.SplitN(args, " ", 2)
	if len(fields) < 2 {
		return b.send(chatID, "Usage: /note <id> <text>")
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return b.send(chatID, "Usage: /note <id> <text>")
	}
	text := strings.TrimSpace(fields[1])
	if len([]rune(text)) > models.MaxNotesLength {
		return b.send(chatID, fmt.Sprintf("❌ Note too long (max %d characters).", models.MaxNotesLength))
	}

	tech, ok := b.store.Get(id)
	if !ok {
		return b.send(chatID, fmt.Sprintf("No technology with id %d.", id))
	}

	b.scheduleNote(chatID, id, text)

	return b.send(chatID, fmt.Sprintf("📝 Note for %q will be saved.", tech.Title))
}

// scheduleNote arranges a debounced commit of the note text. Each
// technology gets its own debouncer, so rapid edits to one record
// coalesce while edits to different records all commit.
func (b *Bot) scheduleNote(chatID, techID int64, text string) {
	key := noteKey{chatID: chatID, techID: techID}

	b.mu.Lock()
	d, ok := b.noteDebouncers[key]
	if !ok {
		d = debounce.New(b.config.NotesAutosaveDelay)
		b.noteDebouncers[key] = d
	}
	b.pendingNotes[key] = text
	b.mu.Unlock()

	d.Schedule(func() { b.commitNote(key) })
}

func (b *Bot) commitNote(key noteKey) {
	b.mu.Lock()
	text, ok := b.pendingNotes[key]
	delete(b.pendingNotes, key)
	b.mu.Unlock()
	if !ok {
		return
	}
	if err := b.store.UpdateNotes(key.techID, text); err != nil {
		b.send(key.chatID, fmt.Sprintf("❌ Failed to save note: %v", err))
	}
}

func (b *Bot) handleDeadline(chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return b.send(chatID, "Usage: /deadline <id> <YYYY-MM-DD>, omit the date to clear")
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return b.send(chatID, "Usage: /deadline <id> <YYYY-MM-DD>")
	}

	tech, ok := b.store.Get(id)
	if !ok {
		return b.send(chatID, fmt.Sprintf("No technology with id %d.", id))
	}

	if len(fields) == 1 {
		if err := b.store.UpdateDeadline(id, ""); err != nil {
			return b.send(chatID, fmt.Sprintf("❌ %v", err))
		}
		return b.send(chatID, fmt.Sprintf("🗓 Deadline cleared for %q.", tech.Title))
	}

	deadline := fields[1]
	if err := models.ValidateDeadline(deadline, time.Now()); err != nil {
		return b.send(chatID, fmt.Sprintf("❌ %v", err))
	}
	if err := b.store.UpdateDeadline(id, deadline); err != nil {
		return b.send(chatID, fmt.Sprintf("❌ %v", err))
	}
	return b.send(chatID, fmt.Sprintf("🗓 Deadline for %q set to %s.", tech.Title, deadline))
}

func (b *Bot) handleRemove(chatID int64, args string) error {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return b.send(chatID, "Usage: /remove <id>")
	}
	tech, ok := b.store.Get(id)
	if !ok {
		return b.send(chatID, fmt.Sprintf("No technology with id %d.", id))
	}
	b.store.Remove(id)
	return b.send(chatID, fmt.Sprintf("🗑 Stopped tracking %q.", tech.Title))
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, query string) error {
	if query == "" {
		return b.send(chatID, "Usage: /search <query>")
	}

	results, err := b.searcher.Search(ctx, query)
	if err != nil {
		return b.send(chatID, fmt.Sprintf("❌ Search failed: %v", err))
	}
	if len(results) == 0 {
		return b.send(chatID, fmt.Sprintf("Nothing found for %q.", query))
	}

	b.mu.Lock()
	b.lastSearchResults[chatID] = results
	b.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 Results for %q:\n\n", query))
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. %s ⭐%d\n    %s\n", i+1, r.Title, r.Stars, r.Description))
	}
	sb.WriteString("\nUse /track <number> to start tracking one.")
	return b.send(chatID, sb.String())
}

func (b *Bot) handlePopular(ctx context.Context, chatID int64) error {
	results, err := b.searcher.Popular(ctx)
	if err != nil {
		return b.send(chatID, fmt.Sprintf("❌ Failed to load popular technologies: %v", err))
	}

	b.mu.Lock()
	b.lastSearchResults[chatID] = results
	b.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("🔥 Popular technologies:\n\n")
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. %s ⭐%d — %s\n", i+1, r.Title, r.Stars, r.Description))
	}
	sb.WriteString("\nUse /track <number> to start tracking one.")
	return b.send(chatID, sb.String())
}

// handleTrack adds a result from the chat's most recent search
func (b *Bot) handleTrack(chatID int64, args string) error {
	n, err := strconv.Atoi(args)
	if err != nil {
		return b.send(chatID, "Usage: /track <number> after a /search or /popular")
	}

	b.mu.Lock()
	results := b.lastSearchResults[chatID]
	b.mu.Unlock()

	if len(results) == 0 {
		return b.send(chatID, "Run /search or /popular first, then /track <number>.")
	}
	if n < 1 || n > len(results) {
		return b.send(chatID, fmt.Sprintf("Pick a number between 1 and %d.", len(results)))
	}

	r := results[n-1]
	added, err := b.store.AddExternal(r.Title, r.Description, r.Category, r.Difficulty, r.URL, r.Language, r.Stars, r.Topics)
	if err != nil {
		return b.send(chatID, fmt.Sprintf("❌ %v", err))
	}
	return b.send(chatID, fmt.Sprintf("✅ Now tracking %q (id %d).", added.Title, added.ID))
}

// handleExport serializes the whole collection and sends it back as a
// document. The optional "min" argument switches to compact output.
func (b *Bot) handleExport(chatID int64, args string) error {
	format := "json"
	opts := export.DefaultOptions()
	for _, f := range strings.Fields(strings.ToLower(args)) {
		switch f {
		case "json", "csv", "xlsx":
			format = f
		case "min", "compress":
			opts.Compress = true
		default:
			return b.send(chatID, "Usage: /export [json|csv|xlsx] [min]")
		}
	}

	now := time.Now()
	doc := export.BuildDocument(b.store.Items(), now, opts)

	var data []byte
	var err error
	switch format {
	case "csv":
		data = export.MarshalCSV(doc)
	case "xlsx":
		data, err = export.MarshalXLSX(doc)
	default:
		data, err = export.MarshalJSON(doc)
	}
	if err != nil {
		return b.send(chatID, fmt.Sprintf("❌ Export failed: %v", err))
	}

	return b.sendFile(chatID, export.Filename(format, now, opts.Compress), data)
}

func (b *Bot) handleImport(chatID int64) error {
	b.mu.Lock()
	b.awaitingFileUpload[chatID] = true
	b.mu.Unlock()
	return b.send(chatID, "📥 Send me a JSON export file and I will merge it into your collection.")
}

// importRaw validates the uploaded document and merges it into the store,
// echoing validation errors back when the file is rejected.
func (b *Bot) importRaw(chatID int64, raw []byte) error {
	doc, err := importer.Parse(raw)
	if err != nil {
		return b.send(chatID, fmt.Sprintf("❌ %v", err))
	}

	result := importer.Validate(doc)
	if !result.IsValid {
		var sb strings.Builder
		sb.WriteString("❌ Import rejected:\n")
		for i, e := range result.Errors {
			if i >= b.config.ImportErrorLimit {
				sb.WriteString(fmt.Sprintf("… and %d more errors\n", len(result.Errors)-i))
				break
			}
			sb.WriteString(fmt.Sprintf("• %s\n", e))
		}
		return b.send(chatID, sb.String())
	}

	summary, err := importer.Apply(doc, b.store, time.Now())
	if err != nil {
		return b.send(chatID, fmt.Sprintf("❌ Import failed: %v", err))
	}

	return b.send(chatID, fmt.Sprintf(
		"✅ Imported %d technologies.\n📅 With deadlines: %d\n📝 With notes: %d\n🎉 Completed: %d",
		summary.Imported, summary.WithDeadlines, summary.WithNotes, summary.Completed))
}

func (b *Bot) handleClear(chatID int64, args string) error {
	if args != "confirm" {
		return b.send(chatID, "⚠️ This deletes every tracked technology. Run /clear confirm if you are sure.")
	}
	b.store.Clear()
	return b.send(chatID, "🗑 Collection cleared.")
}

func statusEmoji(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return "✅"
	case models.StatusInProgress:
		return "🔄"
	case models.StatusOnHold:
		return "⏸"
	case models.StatusDropped:
		return "🗑"
	default:
		return "⭕"
	}
}
