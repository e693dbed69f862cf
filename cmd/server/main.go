package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/planhive/backend/internal/config"
	"github.com/planhive/backend/internal/database"
	"github.com/planhive/backend/internal/handlers"
	"github.com/planhive/backend/internal/middleware"
	"github.com/planhive/backend/internal/services"
	"github.com/planhive/backend/pkg/logger"
	"github.com/planhive/backend/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		log.Fatalf("invalid SERVER_TIMEZONE %q: %v", cfg.Server.Timezone, err)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	groupService := services.NewGroupService(db)
	appointmentService := services.NewAppointmentService(db, loc)
	responseService := services.NewResponseService(db)
	taskService := services.NewTaskService(db, loc)
	dashboardService := services.NewDashboardService(groupService, appointmentService, taskService, cfg.Dashboard.UpcomingTaskLimit)

	authHandler := handlers.NewAuthHandler(db)
	usersHandler := handlers.NewUsersHandler(db)
	groupsHandler := handlers.NewGroupsHandler(groupService, appointmentService)
	appointmentsHandler := handlers.NewAppointmentsHandler(groupService, appointmentService, responseService)
	tasksHandler := handlers.NewTasksHandler(taskService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

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

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":     cfg.Server.Port,
		"address":  listenAddr,
		"timezone": cfg.Server.Timezone,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
