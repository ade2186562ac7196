package viewmodel

import (
	"sort"
	"time"

	"github.com/azoai/botadmin/internal/store"
)

// Task statuses shown in the dashboard. Bot task statuses are derived from
// the completion flag and deadline; admin task statuses are stored verbatim.
const (
	TaskStatusCompleted  = "Completed"
	TaskStatusPending    = "Pending"
	TaskStatusOverdue    = "Overdue"
	TaskStatusInProgress = "In Progress"
)

// TaskOrigin tags which table a unified task row came from so deletes route
// back correctly.
type TaskOrigin string

const (
	TaskOriginBot   TaskOrigin = "bot"
	TaskOriginAdmin TaskOrigin = "admin"
)

// TaskItem is one row of the unified task table.
type TaskItem struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority"`
	DueDate   *time.Time `json:"due_date"`
	GroupName string     `json:"group_name"`
	Origin    TaskOrigin `json:"origin"`
	CreatedAt time.Time  `json:"created_at"`
}

// TaskStats counts unified tasks per status. Recomputed from the merged set
// after every fetch and delete, never adjusted incrementally.
type TaskStats struct {
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	Overdue    int `json:"overdue"`
	InProgress int `json:"in_progress"`
}

// DeriveBotTaskStatus maps a bot task to its display status. Completion wins
// over any deadline; an unfinished task with a past deadline is overdue.
func DeriveBotTaskStatus(task store.BotTask, now time.Time) string {
	if task.IsCompleted {
		return TaskStatusCompleted
	}
	if task.Deadline != nil && task.Deadline.Before(now) {
		return TaskStatusOverdue
	}
	return TaskStatusPending
}

// UnifyTasks merges bot and admin tasks into one list sorted newest first,
// with per-status counts over the merged set.
func UnifyTasks(botTasks []store.BotTask, adminTasks []store.AdminTask, now time.Time) ([]TaskItem, TaskStats) {
	items := make([]TaskItem, 0, len(botTasks)+len(adminTasks))

	for _, task := range botTasks {
		title := task.Title
		if title == "" {
			title = "Untitled Task"
		}
		group := task.UserPhone
		if group == "" {
			group = "Unknown"
		}
		items = append(items, TaskItem{
			ID:        string(TaskOriginBot) + "-" + task.ID,
			Title:     title,
			Status:    DeriveBotTaskStatus(task, now),
			Priority:  "Medium",
			DueDate:   task.Deadline,
			GroupName: group,
			Origin:    TaskOriginBot,
			CreatedAt: task.CreatedAt,
		})
	}

	for _, task := range adminTasks {
		due := task.DueDate
		items = append(items, TaskItem{
			ID:        string(TaskOriginAdmin) + "-" + task.ID,
			Title:     task.Title,
			Status:    task.Status,
			Priority:  task.Priority,
			DueDate:   &due,
			GroupName: task.GroupName,
			Origin:    TaskOriginAdmin,
			CreatedAt: task.CreatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return items, CountTaskStats(items)
}

// CountTaskStats tallies statuses over an already-merged task list.
func CountTaskStats(items []TaskItem) TaskStats {
	var stats TaskStats
	for _, item := range items {
		switch item.Status {
		case TaskStatusCompleted:
			stats.Completed++
		case TaskStatusPending:
			stats.Pending++
		case TaskStatusOverdue:
			stats.Overdue++
		case TaskStatusInProgress:
			stats.InProgress++
		}
	}
	return stats
}
