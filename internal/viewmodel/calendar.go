package viewmodel

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/azoai/botadmin/internal/store"
)

// CalendarSource identifies the table behind a merged calendar entry.
type CalendarSource string

const (
	SourceBotTask     CalendarSource = "task"
	SourceTransaction CalendarSource = "tx"
	SourceAdminEvent  CalendarSource = "evt"
)

// ErrUnknownCalendarSource signals a synthetic id whose prefix does not map
// to a backing table.
var ErrUnknownCalendarSource = errors.New("viewmodel: unknown calendar source")

// CalendarEntry is a display-only merge of one task, transaction or admin
// event. Entries are derived per render and never persisted; the prefixed ID
// routes deletes back to the correct table.
type CalendarEntry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	EventDate   time.Time `json:"event_date"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
}

// MergeCalendar combines the three heterogeneous calendar sources into one
// list ordered by event date. Tasks without a deadline carry no date and are
// skipped.
func MergeCalendar(tasks []store.BotTask, transactions []store.Transaction, events []store.AdminEvent) []CalendarEntry {
	entries := make([]CalendarEntry, 0, len(tasks)+len(transactions)+len(events))

	for _, task := range tasks {
		if task.Deadline == nil {
			continue
		}
		eventType := "Deadline"
		if task.IsCompleted {
			eventType = "Completed"
		}
		entries = append(entries, CalendarEntry{
			ID:          string(SourceBotTask) + "-" + task.ID,
			Title:       task.Title,
			EventDate:   *task.Deadline,
			EventType:   eventType,
			Description: task.UserPhone,
		})
	}

	for _, tx := range transactions {
		eventType := "Expense"
		if tx.Type == store.TransactionTypeIncome {
			eventType = "Income"
		}
		title := tx.Description
		if title == "" {
			title = tx.Category
		}
		if title == "" {
			title = "Transaction"
		}
		entries = append(entries, CalendarEntry{
			ID:          string(SourceTransaction) + "-" + tx.ID,
			Title:       title,
			EventDate:   tx.CreatedAt,
			EventType:   eventType,
			Description: tx.Category,
		})
	}

	for _, event := range events {
		entries = append(entries, CalendarEntry{
			ID:          string(SourceAdminEvent) + "-" + event.ID,
			Title:       event.Title,
			EventDate:   event.EventDate,
			EventType:   capitalize(event.Type),
			Description: event.Description,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].EventDate.Equal(entries[j].EventDate) {
			return entries[i].EventDate.Before(entries[j].EventDate)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// EntriesOn filters merged entries to one calendar day. Year, month and day
// must all match; a matching day-of-month in a different month is not a hit.
func EntriesOn(entries []CalendarEntry, day time.Time) []CalendarEntry {
	matched := make([]CalendarEntry, 0)
	for _, entry := range entries {
		y1, m1, d1 := entry.EventDate.Date()
		y2, m2, d2 := day.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			matched = append(matched, entry)
		}
	}
	return matched
}

// SplitCalendarID resolves a synthetic entry id back to its source table and
// raw row id. Unrecognized prefixes are rejected rather than guessed at.
func SplitCalendarID(id string) (CalendarSource, string, error) {
	for _, source := range []CalendarSource{SourceBotTask, SourceTransaction, SourceAdminEvent} {
		prefix := string(source) + "-"
		if strings.HasPrefix(id, prefix) {
			raw := strings.TrimPrefix(id, prefix)
			if raw == "" {
				return "", "", ErrUnknownCalendarSource
			}
			return source, raw, nil
		}
	}
	return "", "", ErrUnknownCalendarSource
}

func capitalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return trimmed
	}
	runes := []rune(trimmed)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
