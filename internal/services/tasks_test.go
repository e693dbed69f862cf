package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/planhive/backend/internal/models"
)

func TestTaskService_Create(t *testing.T) {
	db := setupServiceDB(t)
	service := NewTaskService(db, time.UTC)
	service.Now = fixedClock()
	user := newTestUser(t, db, "task-create@test.com")

	t.Run("defaults applied for priority and status", func(t *testing.T) {
		task, err := service.Create(context.Background(), user.ID, TaskInput{
			Title:    "Write essay",
			Deadline: "2025-01-15",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if task.Priority != models.TaskPriorityNormal || task.Status != models.TaskStatusTodo {
			t.Fatalf("expected defaults, got %s/%s", task.Priority, task.Status)
		}
	})

	t.Run("unknown priority falls back to normal", func(t *testing.T) {
		task, err := service.Create(context.Background(), user.ID, TaskInput{
			Title:    "Odd priority",
			Deadline: "2025-01-15",
			Priority: "urgent",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if task.Priority != models.TaskPriorityNormal {
			t.Fatalf("expected normal fallback, got %s", task.Priority)
		}
	})

	t.Run("deadline today accepted", func(t *testing.T) {
		if _, err := service.Create(context.Background(), user.ID, TaskInput{
			Title:    "Due today",
			Deadline: "2025-01-08",
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	})

	t.Run("deadline in the past rejected", func(t *testing.T) {
		_, err := service.Create(context.Background(), user.ID, TaskInput{
			Title:    "Too late",
			Deadline: "2025-01-07",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("missing title rejected", func(t *testing.T) {
		_, err := service.Create(context.Background(), user.ID, TaskInput{
			Deadline: "2025-01-15",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestTaskService_OwnerScoping(t *testing.T) {
	db := setupServiceDB(t)
	service := NewTaskService(db, time.UTC)
	service.Now = fixedClock()
	owner := newTestUser(t, db, "task-owner@test.com")
	stranger := newTestUser(t, db, "task-stranger@test.com")

	task, err := service.Create(context.Background(), owner.ID, TaskInput{
		Title:    "Private",
		Deadline: "2025-01-20",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := service.GetByID(context.Background(), task.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign task, got %v", err)
	}

	title := "Hijacked"
	if _, err := service.Update(context.Background(), task.ID, stranger.ID, TaskPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign update, got %v", err)
	}

	if err := service.Delete(context.Background(), task.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign delete, got %v", err)
	}
}

func TestTaskService_ListingAndStats(t *testing.T) {
	db := setupServiceDB(t)
	service := NewTaskService(db, time.UTC)
	service.Now = fixedClock()
	user := newTestUser(t, db, "task-list@test.com")

	specs := []struct {
		title    string
		deadline string
		priority models.TaskPriority
		status   models.TaskStatus
	}{
		{"Late low", "2025-01-20", models.TaskPriorityLow, models.TaskStatusTodo},
		{"Soon high", "2025-01-09", models.TaskPriorityHigh, models.TaskStatusInProgress},
		{"Soon low", "2025-01-09", models.TaskPriorityLow, models.TaskStatusTodo},
		{"Done one", "2025-01-10", models.TaskPriorityNormal, models.TaskStatusDone},
	}
	for _, spec := range specs {
		if _, err := service.Create(context.Background(), user.ID, TaskInput{
			Title:    spec.title,
			Deadline: spec.deadline,
			Priority: spec.priority,
			Status:   spec.status,
		}); err != nil {
			t.Fatalf("create %s failed: %v", spec.title, err)
		}
	}

	t.Run("ordered by deadline then priority", func(t *testing.T) {
		tasks, err := service.ListForUser(context.Background(), user.ID, "")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		got := make([]string, 0, len(tasks))
		for _, task := range tasks {
			got = append(got, task.Title)
		}
		expected := []string{"Soon high", "Soon low", "Done one", "Late low"}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("expected order %v, got %v", expected, got)
			}
		}
	})

	t.Run("status filter", func(t *testing.T) {
		tasks, err := service.ListForUser(context.Background(), user.ID, models.TaskStatusDone)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "Done one" {
			t.Fatalf("expected only the done task, got %+v", tasks)
		}
	})

	t.Run("unknown status filter rejected", func(t *testing.T) {
		_, err := service.ListForUser(context.Background(), user.ID, "archived")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("stats split per status with rounded percentage", func(t *testing.T) {
		stats, err := service.StatsForUser(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if stats.Total != 4 || stats.Todo != 2 || stats.InProgress != 1 || stats.Done != 1 || stats.Open != 3 {
			t.Fatalf("unexpected stats %+v", stats)
		}
		if stats.PercentageDone != 25 {
			t.Fatalf("expected 25%% done, got %d", stats.PercentageDone)
		}
	})

	t.Run("upcoming excludes done and honors the limit", func(t *testing.T) {
		tasks, err := service.Upcoming(context.Background(), user.ID, 2)
		if err != nil {
			t.Fatalf("upcoming failed: %v", err)
		}
		if len(tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(tasks))
		}
		for _, task := range tasks {
			if task.Status == models.TaskStatusDone {
				t.Fatal("expected done tasks excluded from upcoming")
			}
		}
	})
}
