package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/planhive/backend/internal/middleware"
	"github.com/planhive/backend/internal/models"
	"github.com/planhive/backend/internal/services"
	"github.com/planhive/backend/pkg/logger"
	"github.com/planhive/backend/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app          *fiber.App
	db           *gorm.DB
	groups       *services.GroupService
	appointments *services.AppointmentService
	responses    *services.ResponseService
	tasks        *services.TaskService
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Appointment{},
		&models.AppointmentResponse{},
		&models.Task{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	groupService := services.NewGroupService(db)
	appointmentService := services.NewAppointmentService(db, time.UTC)
	responseService := services.NewResponseService(db)
	taskService := services.NewTaskService(db, time.UTC)
	dashboardService := services.NewDashboardService(groupService, appointmentService, taskService, 5)

	authHandler := NewAuthHandler(db)
	usersHandler := NewUsersHandler(db)
	groupsHandler := NewGroupsHandler(groupService, appointmentService)
	appointmentsHandler := NewAppointmentsHandler(groupService, appointmentService, responseService)
	tasksHandler := NewTasksHandler(taskService)
	dashboardHandler := NewDashboardHandler(dashboardService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 1 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	authRoutes.Put("/me", authMiddleware.RequireAuth, authHandler.UpdateMe)
	authRoutes.Put("/password", authMiddleware.RequireAuth, authHandler.ChangePassword)

	userRoutes := api.Group("/users", authMiddleware.RequireAuth, middleware.AdminOnly)
	userRoutes.Get("/", usersHandler.List)
	userRoutes.Get("/:id", usersHandler.Get)
	userRoutes.Put("/:id", usersHandler.Update)
	userRoutes.Delete("/:id", usersHandler.Delete)

	groupRoutes := api.Group("/groups", authMiddleware.RequireAuth)
	groupRoutes.Post("/", groupsHandler.Create)
	groupRoutes.Get("/", groupsHandler.List)
	groupRoutes.Post("/join", groupsHandler.Join)
	groupRoutes.Get("/:id", groupsHandler.Get)
	groupRoutes.Put("/:id", groupsHandler.Update)
	groupRoutes.Delete("/:id", groupsHandler.Delete)
	groupRoutes.Post("/:id/leave", groupsHandler.Leave)
	groupRoutes.Get("/:id/members", groupsHandler.ListMembers)
	groupRoutes.Get("/:id/stats", groupsHandler.Stats)
	groupRoutes.Post("/:id/appointments", appointmentsHandler.Create)
	groupRoutes.Get("/:id/appointments", appointmentsHandler.ListForGroup)

	appointmentRoutes := api.Group("/appointments", authMiddleware.RequireAuth)
	appointmentRoutes.Get("/", appointmentsHandler.ListForUser)
	appointmentRoutes.Get("/next", appointmentsHandler.Next)
	appointmentRoutes.Get("/:id", appointmentsHandler.Get)
	appointmentRoutes.Put("/:id", appointmentsHandler.Update)
	appointmentRoutes.Delete("/:id", appointmentsHandler.Delete)
	appointmentRoutes.Put("/:id/response", appointmentsHandler.Respond)
	appointmentRoutes.Delete("/:id/response", appointmentsHandler.DeleteResponse)
	appointmentRoutes.Get("/:id/responses", appointmentsHandler.ListResponses)
	appointmentRoutes.Get("/:id/tally", appointmentsHandler.Tally)

	taskRoutes := api.Group("/tasks", authMiddleware.RequireAuth)
	taskRoutes.Post("/", tasksHandler.Create)
	taskRoutes.Get("/", tasksHandler.List)
	taskRoutes.Get("/stats", tasksHandler.Stats)
	taskRoutes.Get("/:id", tasksHandler.Get)
	taskRoutes.Put("/:id", tasksHandler.Update)
	taskRoutes.Delete("/:id", tasksHandler.Delete)

	api.Get("/dashboard", authMiddleware.RequireAuth, dashboardHandler.Get)

	return &testEnv{
		app:          app,
		db:           db,
		groups:       groupService,
		appointments: appointmentService,
		responses:    responseService,
		tasks:        taskService,
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
