package viewmodel

import (
	"testing"
	"time"

	"github.com/azoai/botadmin/internal/store"
)

func TestDeriveBotTaskStatus(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		task     store.BotTask
		expected string
	}{
		{name: "completed wins over overdue deadline", task: store.BotTask{IsCompleted: true, Deadline: &past}, expected: TaskStatusCompleted},
		{name: "past deadline is overdue", task: store.BotTask{Deadline: &past}, expected: TaskStatusOverdue},
		{name: "future deadline is pending", task: store.BotTask{Deadline: &future}, expected: TaskStatusPending},
		{name: "no deadline is pending", task: store.BotTask{}, expected: TaskStatusPending},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveBotTaskStatus(tc.task, now); got != tc.expected {
				t.Fatalf("status = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestUnifyTasksMergesAndCounts(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)

	botTasks := []store.BotTask{
		{ID: "b1", Title: "Reply customer", UserPhone: "628111", Deadline: &past, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "b2", Title: "", IsCompleted: true, CreatedAt: now.Add(-time.Hour)},
	}
	adminTasks := []store.AdminTask{
		{ID: "a1", Title: "Audit stock", GroupName: "Ops", Priority: "High", Status: TaskStatusInProgress, DueDate: now.Add(24 * time.Hour), CreatedAt: now.Add(-30 * time.Minute)},
	}

	items, stats := UnifyTasks(botTasks, adminTasks, now)
	if len(items) != 3 {
		t.Fatalf("expected 3 unified tasks, got %d", len(items))
	}
	if items[0].ID != "admin-a1" {
		t.Fatalf("expected newest first, got %q", items[0].ID)
	}
	if items[1].ID != "bot-b2" || items[1].Title != "Untitled Task" {
		t.Fatalf("expected untitled fallback, got %+v", items[1])
	}
	if items[1].GroupName != "Unknown" {
		t.Fatalf("expected Unknown group fallback, got %q", items[1].GroupName)
	}
	if items[2].Status != TaskStatusOverdue {
		t.Fatalf("expected overdue bot task, got %q", items[2].Status)
	}

	expected := TaskStats{Completed: 1, Overdue: 1, InProgress: 1}
	if stats != expected {
		t.Fatalf("stats = %+v, expected %+v", stats, expected)
	}
}

func TestCountTaskStatsIgnoresUnknownStatus(t *testing.T) {
	stats := CountTaskStats([]TaskItem{
		{Status: TaskStatusPending},
		{Status: "Archived"},
		{Status: TaskStatusPending},
	})
	if stats.Pending != 2 {
		t.Fatalf("expected 2 pending, got %d", stats.Pending)
	}
	if stats.Completed+stats.Overdue+stats.InProgress != 0 {
		t.Fatalf("unknown status should not be counted: %+v", stats)
	}
}
