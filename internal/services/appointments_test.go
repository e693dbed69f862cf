package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/planhive/backend/internal/models"
)

// fixedClock pins "today" to 2025-01-08 so upcoming/past splits are stable.
func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	}
}

func TestAppointmentService_Create(t *testing.T) {
	db := setupServiceDB(t)
	groups := NewGroupService(db)
	service := NewAppointmentService(db, time.UTC)

	owner := newTestUser(t, db, "appt-create@test.com")
	group, err := groups.Create(context.Background(), owner.ID, "Agenda", nil)
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}

	t.Run("valid input persists", func(t *testing.T) {
		appointment, err := service.Create(context.Background(), group.ID, owner.ID, AppointmentInput{
			Title: "Exam prep",
			Date:  "2025-01-10",
			Time:  "10:00",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if appointment.CreatedByID != owner.ID {
			t.Fatal("expected creator recorded")
		}
	})

	t.Run("missing title rejected", func(t *testing.T) {
		_, err := service.Create(context.Background(), group.ID, owner.ID, AppointmentInput{
			Date: "2025-01-10",
			Time: "10:00",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("malformed date rejected", func(t *testing.T) {
		_, err := service.Create(context.Background(), group.ID, owner.ID, AppointmentInput{
			Title: "Bad",
			Date:  "10-01-2025",
			Time:  "10:00",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("malformed time rejected", func(t *testing.T) {
		_, err := service.Create(context.Background(), group.ID, owner.ID, AppointmentInput{
			Title: "Bad",
			Date:  "2025-01-10",
			Time:  "10am",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestAppointmentService_Authorization(t *testing.T) {
	db := setupServiceDB(t)
	groups := NewGroupService(db)
	service := NewAppointmentService(db, time.UTC)

	owner := newTestUser(t, db, "appt-auth-owner@test.com")
	creator := newTestUser(t, db, "appt-auth-creator@test.com")
	bystander := newTestUser(t, db, "appt-auth-bystander@test.com")

	group, err := groups.Create(context.Background(), owner.ID, "Authz", nil)
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}
	for _, u := range []*models.User{creator, bystander} {
		if _, err := groups.JoinByInviteCode(context.Background(), group.InviteCode, u.ID); err != nil {
			t.Fatalf("join failed: %v", err)
		}
	}

	appointment, err := service.Create(context.Background(), group.ID, creator.ID, AppointmentInput{
		Title: "Owned by creator",
		Date:  "2025-02-01",
		Time:  "09:00",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	t.Run("bystander cannot delete another member's appointment", func(t *testing.T) {
		err := service.Delete(context.Background(), appointment.ID, bystander.ID)
		if !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("expected ErrNotAuthorized, got %v", err)
		}

		var count int64
		db.Model(&models.Appointment{}).Where("id = ?", appointment.ID).Count(&count)
		if count != 1 {
			t.Fatal("expected appointment to survive the denied delete")
		}
	})

	t.Run("bystander cannot update either", func(t *testing.T) {
		title := "Hijacked"
		_, err := service.Update(context.Background(), appointment.ID, bystander.ID, AppointmentPatch{Title: &title})
		if !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("expected ErrNotAuthorized, got %v", err)
		}
	})

	t.Run("group owner may modify a member's appointment", func(t *testing.T) {
		title := "Moved by owner"
		updated, err := service.Update(context.Background(), appointment.ID, owner.ID, AppointmentPatch{Title: &title})
		if err != nil {
			t.Fatalf("owner update failed: %v", err)
		}
		if updated.Title != title {
			t.Fatalf("expected updated title, got %q", updated.Title)
		}
	})

	t.Run("creator may delete, responses go with it", func(t *testing.T) {
		responses := NewResponseService(db)
		if _, err := responses.Respond(context.Background(), appointment.ID, bystander.ID, models.ResponseMaybe); err != nil {
			t.Fatalf("respond failed: %v", err)
		}

		if err := service.Delete(context.Background(), appointment.ID, creator.ID); err != nil {
			t.Fatalf("creator delete failed: %v", err)
		}

		var leftover int64
		db.Model(&models.AppointmentResponse{}).Where("appointment_id = ?", appointment.ID).Count(&leftover)
		if leftover != 0 {
			t.Fatalf("expected responses removed with the appointment, found %d", leftover)
		}
	})
}

func TestAppointmentService_Listing(t *testing.T) {
	db := setupServiceDB(t)
	groups := NewGroupService(db)
	service := NewAppointmentService(db, time.UTC)
	service.Now = fixedClock()

	owner := newTestUser(t, db, "appt-list@test.com")
	group, err := groups.Create(context.Background(), owner.ID, "Calendar", nil)
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}

	for _, spec := range []struct {
		title string
		date  string
		time  string
	}{
		{"C", "2025-01-10", "14:00"},
		{"A", "2025-01-05", "09:00"},
		{"B", "2025-01-10", "09:30"},
		{"D", "2025-02-01", "08:00"},
	} {
		if _, err := service.Create(context.Background(), group.ID, owner.ID, AppointmentInput{
			Title: spec.title,
			Date:  spec.date,
			Time:  spec.time,
		}); err != nil {
			t.Fatalf("create %s failed: %v", spec.title, err)
		}
	}

	t.Run("listForGroup sorted by date then time regardless of insertion order", func(t *testing.T) {
		appointments, err := service.ListForGroup(context.Background(), group.ID, false)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		got := make([]string, 0, len(appointments))
		for _, a := range appointments {
			got = append(got, a.Title)
		}
		expected := []string{"A", "B", "C", "D"}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("expected order %v, got %v", expected, got)
			}
		}
	})

	t.Run("upcoming filter keeps today and later", func(t *testing.T) {
		appointments, err := service.ListForGroup(context.Background(), group.ID, true)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(appointments) != 3 {
			t.Fatalf("expected 3 upcoming appointments, got %d", len(appointments))
		}
		for _, a := range appointments {
			if a.Title == "A" {
				t.Fatal("expected the past appointment filtered out")
			}
		}
	})

	t.Run("NextForUser returns earliest upcoming", func(t *testing.T) {
		next, err := service.NextForUser(context.Background(), owner.ID)
		if err != nil {
			t.Fatalf("next failed: %v", err)
		}
		if next == nil || next.Title != "B" {
			t.Fatalf("expected B as next appointment, got %+v", next)
		}
	})

	t.Run("NextForUser nil without upcoming appointments", func(t *testing.T) {
		loner := newTestUser(t, db, "appt-loner@test.com")
		next, err := service.NextForUser(context.Background(), loner.ID)
		if err != nil {
			t.Fatalf("next failed: %v", err)
		}
		if next != nil {
			t.Fatalf("expected nil, got %+v", next)
		}
	})

	t.Run("GroupStats splits upcoming from total", func(t *testing.T) {
		stats, err := service.GroupStats(context.Background(), group.ID)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if stats.Total != 4 || stats.Upcoming != 3 {
			t.Fatalf("unexpected stats %+v", stats)
		}
	})

	t.Run("StatsForUser derives past from total", func(t *testing.T) {
		stats, err := service.StatsForUser(context.Background(), owner.ID)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if stats.Total != 4 || stats.Upcoming != 3 || stats.Past != 1 {
			t.Fatalf("unexpected stats %+v", stats)
		}
	})
}
