package store

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	opListBotTasks    = "store.list_bot_tasks"
	opListAdminTasks  = "store.list_admin_tasks"
	opCreateAdminTask = "store.create_admin_task"
	opDeleteBotTask   = "store.delete_bot_task"
	opDeleteAdminTask = "store.delete_admin_task"
)

// ListBotTasks returns all bot-captured tasks, newest first.
func (s *Store) ListBotTasks(ctx context.Context) ([]BotTask, error) {
	var tasks []BotTask
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error; err != nil {
		s.logError(opListBotTasks, "query_failed", err)
		return nil, newStoreError(opListBotTasks, "query_failed", err)
	}
	return tasks, nil
}

// ListAdminTasks returns all operator-created tasks, newest first.
func (s *Store) ListAdminTasks(ctx context.Context) ([]AdminTask, error) {
	var tasks []AdminTask
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error; err != nil {
		s.logError(opListAdminTasks, "query_failed", err)
		return nil, newStoreError(opListAdminTasks, "query_failed", err)
	}
	return tasks, nil
}

// NewAdminTask carries the fields of the add-task form.
type NewAdminTask struct {
	Title     string
	GroupName string
	Priority  string
	DueDate   time.Time
}

// CreateAdminTask inserts one operator task with status Pending.
func (s *Store) CreateAdminTask(ctx context.Context, input NewAdminTask) (AdminTask, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return AdminTask{}, newStoreError(opCreateAdminTask, "invalid_input", ErrInvalidRow)
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreateAdminTask, "id_generation_failed", err)
		return AdminTask{}, newStoreError(opCreateAdminTask, "id_generation_failed", err)
	}

	group := strings.TrimSpace(input.GroupName)
	if group == "" {
		group = "General"
	}
	priority := strings.TrimSpace(input.Priority)
	if priority == "" {
		priority = "Medium"
	}
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = s.clock().UTC()
	}
	task := AdminTask{
		ID:        id,
		Title:     title,
		GroupName: group,
		Priority:  priority,
		Status:    "Pending",
		DueDate:   dueDate,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		s.logError(opCreateAdminTask, "insert_failed", err, zap.String("title", title))
		return AdminTask{}, newStoreError(opCreateAdminTask, "insert_failed", err)
	}
	return task, nil
}

// DeleteBotTask removes one bot task by identifier. Absent rows are ignored
// so a repeated delete stays harmless.
func (s *Store) DeleteBotTask(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&BotTask{}).Error; err != nil {
		s.logError(opDeleteBotTask, "delete_failed", err, zap.String("task_id", id))
		return newStoreError(opDeleteBotTask, "delete_failed", err)
	}
	return nil
}

// DeleteAdminTask removes one operator task by identifier.
func (s *Store) DeleteAdminTask(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&AdminTask{}).Error; err != nil {
		s.logError(opDeleteAdminTask, "delete_failed", err, zap.String("task_id", id))
		return newStoreError(opDeleteAdminTask, "delete_failed", err)
	}
	return nil
}
