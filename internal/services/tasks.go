package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planhive/backend/internal/models"
	"gorm.io/gorm"
)

// priorityOrder sorts tasks high, normal, low.
const priorityOrder = "CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END"

// TaskService manages a user's personal task list. Tasks are strictly
// per-user; every operation is scoped to the owning user.
type TaskService struct {
	DB  *gorm.DB
	Loc *time.Location

	Now func() time.Time
}

func NewTaskService(db *gorm.DB, loc *time.Location) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	return &TaskService{DB: db, Loc: loc, Now: time.Now}
}

func (s *TaskService) today() string {
	return s.Now().In(s.Loc).Format(dateLayout)
}

type TaskInput struct {
	Title       string
	Description *string
	Deadline    string
	Priority    models.TaskPriority
	Status      models.TaskStatus
}

type TaskPatch struct {
	Title       *string
	Description *string
	Deadline    *string
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
}

// TaskStats summarizes a user's task list for the dashboard.
type TaskStats struct {
	Total          int64 `json:"total"`
	Todo           int64 `json:"todo"`
	InProgress     int64 `json:"inProgress"`
	Done           int64 `json:"done"`
	Open           int64 `json:"open"`
	PercentageDone int   `json:"percentageDone"`
}

// Create validates and stores a task. Deadlines before today are rejected;
// an unknown priority or status silently falls back to the default.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, input TaskInput) (*models.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Deadline == "" || !validDate(input.Deadline) {
		return nil, fmt.Errorf("%w: deadline must be formatted as %s", ErrValidation, dateLayout)
	}
	if input.Deadline < s.today() {
		return nil, fmt.Errorf("%w: deadline cannot be in the past", ErrValidation)
	}

	if !input.Priority.Valid() {
		input.Priority = models.TaskPriorityNormal
	}
	if !input.Status.Valid() {
		input.Status = models.TaskStatusTodo
	}

	task := models.Task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Deadline:    input.Deadline,
		Priority:    input.Priority,
		Status:      input.Status,
	}

	if err := s.DB.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) GetByID(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.DB.WithContext(ctx).First(&task, "id = ? AND user_id = ?", taskID, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: task does not exist", ErrNotFound)
		}
		return nil, err
	}
	return &task, nil
}

// ListForUser returns the user's tasks, nearest deadline first and higher
// priority first within a day. Status filters when non-empty.
func (s *TaskService) ListForUser(ctx context.Context, userID uuid.UUID, status models.TaskStatus) ([]models.Task, error) {
	query := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("deadline ASC, " + priorityOrder + " ASC")
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		query = query.Where("status = ?", status)
	}

	tasks := make([]models.Task, 0)
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, taskID, userID uuid.UUID, patch TaskPatch) (*models.Task, error) {
	task, err := s.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Deadline != nil {
		if !validDate(*patch.Deadline) {
			return nil, fmt.Errorf("%w: deadline must be formatted as %s", ErrValidation, dateLayout)
		}
		updates["deadline"] = *patch.Deadline
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, *patch.Priority)
		}
		updates["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
		}
		updates["status"] = *patch.Status
	}

	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	if err := s.DB.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, taskID, userID)
}

func (s *TaskService) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	result := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: task does not exist", ErrNotFound)
	}
	return nil
}

// StatsForUser counts the user's tasks per status.
func (s *TaskService) StatsForUser(ctx context.Context, userID uuid.UUID) (TaskStats, error) {
	type row struct {
		Status models.TaskStatus
		Count  int64
	}

	var rows []row
	err := s.DB.WithContext(ctx).
		Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return TaskStats{}, err
	}

	var stats TaskStats
	for _, r := range rows {
		switch r.Status {
		case models.TaskStatusTodo:
			stats.Todo = r.Count
		case models.TaskStatusInProgress:
			stats.InProgress = r.Count
		case models.TaskStatusDone:
			stats.Done = r.Count
		}
		stats.Total += r.Count
	}
	stats.Open = stats.Total - stats.Done
	if stats.Total > 0 {
		stats.PercentageDone = int(float64(stats.Done)/float64(stats.Total)*100 + 0.5)
	}
	return stats, nil
}

// Upcoming returns the user's unfinished tasks with the nearest deadlines.
func (s *TaskService) Upcoming(ctx context.Context, userID uuid.UUID, limit int) ([]models.Task, error) {
	if limit <= 0 {
		limit = 5
	}

	tasks := make([]models.Task, 0, limit)
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status != ?", userID, models.TaskStatusDone).
		Order("deadline ASC, " + priorityOrder + " ASC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
