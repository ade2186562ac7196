package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/azoai/botadmin/internal/store"
	"github.com/azoai/botadmin/internal/viewmodel"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type tasksResponsePayload struct {
	Tasks []viewmodel.TaskItem `json:"tasks"`
	Stats viewmodel.TaskStats  `json:"stats"`
}

func (h *httpHandler) handleListTasks(c *gin.Context) {
	ctx := c.Request.Context()
	botTasks, err := h.store.ListBotTasks(ctx)
	if err != nil {
		h.failQuery(c, "list_bot_tasks", err)
		return
	}
	adminTasks, err := h.store.ListAdminTasks(ctx)
	if err != nil {
		h.failQuery(c, "list_admin_tasks", err)
		return
	}
	tasks, stats := viewmodel.UnifyTasks(botTasks, adminTasks, h.clock())
	c.JSON(http.StatusOK, tasksResponsePayload{Tasks: tasks, Stats: stats})
}

type createTaskPayload struct {
	Title     string `json:"title"`
	GroupName string `json:"group_name"`
	Priority  string `json:"priority"`
	DueDate   string `json:"due_date"`
}

func (h *httpHandler) handleCreateTask(c *gin.Context) {
	var request createTaskPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	var dueDate time.Time
	if strings.TrimSpace(request.DueDate) != "" {
		parsed, err := time.Parse(dateLayout, request.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_due_date"})
			return
		}
		dueDate = parsed
	}
	task, err := h.store.CreateAdminTask(c.Request.Context(), store.NewAdminTask{
		Title:     request.Title,
		GroupName: request.GroupName,
		Priority:  request.Priority,
		DueDate:   dueDate,
	})
	if err != nil {
		h.failMutation(c, "create_task", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// handleDeleteTask routes a unified-task delete to its backing table using
// the origin prefix. A second delete of the same id finds nothing to remove
// and still succeeds.
func (h *httpHandler) handleDeleteTask(c *gin.Context) {
	id := c.Param("id")
	botPrefix := string(viewmodel.TaskOriginBot) + "-"
	adminPrefix := string(viewmodel.TaskOriginAdmin) + "-"

	var err error
	switch {
	case strings.HasPrefix(id, botPrefix):
		err = h.store.DeleteBotTask(c.Request.Context(), strings.TrimPrefix(id, botPrefix))
	case strings.HasPrefix(id, adminPrefix):
		err = h.store.DeleteAdminTask(c.Request.Context(), strings.TrimPrefix(id, adminPrefix))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_task_source"})
		return
	}
	if err != nil {
		h.failMutation(c, "delete_task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *httpHandler) fetchCalendarEntries(c *gin.Context) ([]viewmodel.CalendarEntry, bool) {
	ctx := c.Request.Context()
	botTasks, err := h.store.ListBotTasks(ctx)
	if err != nil {
		h.failQuery(c, "calendar_tasks", err)
		return nil, false
	}
	transactions, err := h.store.ListTransactions(ctx, 0)
	if err != nil {
		h.failQuery(c, "calendar_transactions", err)
		return nil, false
	}
	events, err := h.store.ListAdminEvents(ctx)
	if err != nil {
		h.failQuery(c, "calendar_events", err)
		return nil, false
	}
	return viewmodel.MergeCalendar(botTasks, transactions, events), true
}

// handleCalendarMonth returns merged entries filtered to one month, defaulting
// to the current one.
func (h *httpHandler) handleCalendarMonth(c *gin.Context) {
	now := h.clock()
	year := now.Year()
	month := int(now.Month())
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_year"})
			return
		}
		year = parsed
	}
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_month"})
			return
		}
		month = parsed
	}

	entries, ok := h.fetchCalendarEntries(c)
	if !ok {
		return
	}
	matched := make([]viewmodel.CalendarEntry, 0)
	for _, entry := range entries {
		y, m, _ := entry.EventDate.Date()
		if y == year && int(m) == month {
			matched = append(matched, entry)
		}
	}
	c.JSON(http.StatusOK, gin.H{"entries": matched})
}

func (h *httpHandler) handleCalendarDay(c *gin.Context) {
	day, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}
	entries, ok := h.fetchCalendarEntries(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": viewmodel.EntriesOn(entries, day)})
}

type createEventPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	EventDate   string `json:"event_date"`
}

func (h *httpHandler) handleCreateEvent(c *gin.Context) {
	var request createEventPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	eventDate, err := time.Parse(dateLayout, request.EventDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_event_date"})
		return
	}
	event, err := h.store.CreateAdminEvent(c.Request.Context(), store.NewAdminEvent{
		Title:       request.Title,
		Description: request.Description,
		Type:        request.Type,
		EventDate:   eventDate,
	})
	if err != nil {
		h.failMutation(c, "create_event", err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// handleDeleteCalendarEntry routes a merged-calendar delete to the backing
// table identified by the synthetic id prefix. Transactions are a read-only
// source, so tx- entries are rejected alongside unrecognized prefixes.
func (h *httpHandler) handleDeleteCalendarEntry(c *gin.Context) {
	source, rawID, err := viewmodel.SplitCalendarID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "undeletable_entry"})
		return
	}

	switch source {
	case viewmodel.SourceBotTask:
		err = h.store.DeleteBotTask(c.Request.Context(), rawID)
	case viewmodel.SourceAdminEvent:
		err = h.store.DeleteAdminEvent(c.Request.Context(), rawID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "undeletable_entry"})
		return
	}
	if err != nil {
		h.failMutation(c, "delete_calendar_entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
