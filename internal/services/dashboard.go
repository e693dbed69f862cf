package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/planhive/backend/internal/models"
	"github.com/planhive/backend/pkg/logger"
)

// DashboardService composes a read-only summary over groups, appointments,
// responses and tasks. It never mutates anything.
type DashboardService struct {
	Groups       *GroupService
	Appointments *AppointmentService
	Tasks        *TaskService

	// UpcomingTaskLimit bounds the task list on the dashboard.
	UpcomingTaskLimit int
}

func NewDashboardService(groups *GroupService, appointments *AppointmentService, tasks *TaskService, upcomingTaskLimit int) *DashboardService {
	if upcomingTaskLimit <= 0 {
		upcomingTaskLimit = 5
	}
	return &DashboardService{
		Groups:            groups,
		Appointments:      appointments,
		Tasks:             tasks,
		UpcomingTaskLimit: upcomingTaskLimit,
	}
}

type Dashboard struct {
	Tasks           TaskStats            `json:"tasks"`
	Groups          GroupStats           `json:"groups"`
	Appointments    UserAppointmentStats `json:"appointments"`
	UpcomingTasks   []models.Task        `json:"upcomingTasks"`
	NextAppointment *models.Appointment  `json:"nextAppointment"`
}

// Build runs the five sub-queries concurrently. A failing sub-query is logged
// and reported as its zero value; Build itself never fails on one of them.
func (s *DashboardService) Build(ctx context.Context, userID uuid.UUID) Dashboard {
	dashboard := Dashboard{
		UpcomingTasks: []models.Task{},
	}

	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		stats, err := s.Tasks.StatsForUser(ctx, userID)
		if err != nil {
			logger.Error("dashboard_task_stats_failed", err, map[string]interface{}{"user_id": userID.String()})
			return
		}
		dashboard.Tasks = stats
	}()

	go func() {
		defer wg.Done()
		stats, err := s.Groups.StatsForUser(ctx, userID)
		if err != nil {
			logger.Error("dashboard_group_stats_failed", err, map[string]interface{}{"user_id": userID.String()})
			return
		}
		dashboard.Groups = stats
	}()

	go func() {
		defer wg.Done()
		stats, err := s.Appointments.StatsForUser(ctx, userID)
		if err != nil {
			logger.Error("dashboard_appointment_stats_failed", err, map[string]interface{}{"user_id": userID.String()})
			return
		}
		dashboard.Appointments = stats
	}()

	go func() {
		defer wg.Done()
		tasks, err := s.Tasks.Upcoming(ctx, userID, s.UpcomingTaskLimit)
		if err != nil {
			logger.Error("dashboard_upcoming_tasks_failed", err, map[string]interface{}{"user_id": userID.String()})
			return
		}
		dashboard.UpcomingTasks = tasks
	}()

	go func() {
		defer wg.Done()
		next, err := s.Appointments.NextForUser(ctx, userID)
		if err != nil {
			logger.Error("dashboard_next_appointment_failed", err, map[string]interface{}{"user_id": userID.String()})
			return
		}
		dashboard.NextAppointment = next
	}()

	wg.Wait()
	return dashboard
}
