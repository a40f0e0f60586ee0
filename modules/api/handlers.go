package api

import (
	"log"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/modules/notification"
	"github.com/Sid-047/reminderApp/modules/task"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	m.app.Get("/health", m.healthHandler)

	v1 := m.app.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/login", m.login)
	authRoutes.Post("/register", m.register)
	authRoutes.Post("/forgot-password", m.forgotPassword)
	authRoutes.Post("/reset-password", m.resetPassword)

	protected := v1.Group("", AuthMiddleware(m.authAdapter))
	protected.Post("/auth/logout", m.logout)

	tasks := protected.Group("/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)
	tasks.Post("/:id/complete", m.completeTask)

	protected.Get("/dashboard", m.dashboard)
	protected.Get("/calendar", m.calendar)
	protected.Get("/calendar/month", m.month)
	protected.Get("/summary", m.summary)
	protected.Get("/status", m.status)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"addr":   m.addr,
		},
	})
}

// login handles POST /api/v1/auth/login.
func (m *APIModule) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	resp, err := m.authAdapter.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(TokenResponse{
		User:        resp.User,
		AccessToken: resp.AccessToken,
		ExpiresIn:   resp.ExpiresIn,
		TokenType:   resp.TokenType,
	})
}

// register handles POST /api/v1/auth/register.
func (m *APIModule) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	resp, err := m.authAdapter.Register(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(TokenResponse{
		User:        resp.User,
		AccessToken: resp.AccessToken,
		ExpiresIn:   resp.ExpiresIn,
		TokenType:   resp.TokenType,
	})
}

// logout handles POST /api/v1/auth/logout.
func (m *APIModule) logout(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	if err := m.authAdapter.Logout(c.UserContext(), claims.UserID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Logged out"})
}

// forgotPassword handles POST /api/v1/auth/forgot-password.
func (m *APIModule) forgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := m.authAdapter.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: "If the account exists, a reset link has been sent"})
}

// resetPassword handles POST /api/v1/auth/reset-password.
func (m *APIModule) resetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := m.authAdapter.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Password has been reset"})
}

// listTasks handles GET /api/v1/tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	resp, err := m.taskAdapter.ListTasks(c.UserContext(), &task.ListTasksRequest{
		UserID:    claims.UserID,
		Criteria:  criteriaFrom(c),
		SortBy:    domain.SortField(c.Query("sort")),
		Direction: domain.Direction(c.Query("order")),
		Timezone:  c.Query("tz"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ListTasksResponse{Tasks: resp.Tasks, Total: resp.Total})
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	var in domain.Input
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := m.taskAdapter.AddTask(c.UserContext(), claims.UserID, in)
	perr, err := appliedDespite(t != nil, err)
	if err != nil {
		return writeError(c, err)
	}
	if perr != "" {
		log.Printf("[api] Task %s created but not saved: %s", t.ID, perr)
	}
	return c.Status(fiber.StatusCreated).JSON(TaskResponse{Task: t, PersistenceError: perr})
}

// getTask handles GET /api/v1/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	t, err := m.taskAdapter.GetTask(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(TaskResponse{Task: t})
}

// updateTask handles PUT /api/v1/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	var patch domain.Patch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := m.taskAdapter.UpdateTask(c.UserContext(), claims.UserID, c.Params("id"), patch)
	perr, err := appliedDespite(t != nil, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(TaskResponse{Task: t, PersistenceError: perr})
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	deleted, err := m.taskAdapter.DeleteTask(c.UserContext(), claims.UserID, c.Params("id"))
	perr, err := appliedDespite(deleted, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(DeleteResponse{Deleted: deleted, PersistenceError: perr})
}

// completeTask handles POST /api/v1/tasks/:id/complete.
func (m *APIModule) completeTask(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	t, err := m.taskAdapter.CompleteTask(c.UserContext(), claims.UserID, c.Params("id"))
	perr, err := appliedDespite(t != nil, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(TaskResponse{Task: t, PersistenceError: perr})
}

// dashboard handles GET /api/v1/dashboard.
func (m *APIModule) dashboard(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	resp, err := m.taskAdapter.Dashboard(c.UserContext(), &task.DashboardRequest{
		UserID:    claims.UserID,
		Criteria:  criteriaFrom(c),
		SortBy:    domain.SortField(c.Query("sort")),
		Direction: domain.Direction(c.Query("order")),
		Timezone:  c.Query("tz"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(DashboardResponse{Buckets: resp.Buckets, Summary: resp.Summary})
}

// calendar handles GET /api/v1/calendar.
func (m *APIModule) calendar(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	resp, err := m.taskAdapter.Calendar(c.UserContext(), &task.CalendarRequest{
		UserID:   claims.UserID,
		Date:     c.Query("date"),
		Timezone: c.Query("tz"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(CalendarResponse{Date: resp.Date, Pending: resp.Pending, Completed: resp.Completed})
}

// month handles GET /api/v1/calendar/month.
func (m *APIModule) month(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	resp, err := m.taskAdapter.Month(c.UserContext(), &task.MonthRequest{
		UserID:   claims.UserID,
		Month:    c.Query("month"),
		Timezone: c.Query("tz"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(MonthResponse{Month: resp.Month, Markers: resp.Markers, Stats: resp.Stats})
}

// summary handles GET /api/v1/summary.
func (m *APIModule) summary(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	s, err := m.taskAdapter.Summary(c.UserContext(), claims.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

// status handles GET /api/v1/status.
func (m *APIModule) status(c *fiber.Ctx) error {
	claims, _ := currentUser(c)
	st, err := m.taskAdapter.Status(c.UserContext(), claims.UserID)
	if err != nil {
		return writeError(c, err)
	}

	resp := StatusResponse{
		UserID:    st.UserID,
		Loaded:    st.Loaded,
		Version:   st.Version,
		LastError: st.LastError,
		Activity:  []notification.Entry{},
	}
	if m.notifications != nil {
		n, err := m.notifications.Notifications(c.UserContext(), claims.UserID)
		if err != nil {
			log.Printf("[api] Warning: notifications unavailable: %v", err)
		} else {
			resp.LastFailure = n.LastFailure
			if n.Entries != nil {
				resp.Activity = n.Entries
			}
		}
	}
	return c.JSON(resp)
}

func criteriaFrom(c *fiber.Ctx) domain.Criteria {
	return domain.Criteria{
		Priority: domain.Priority(c.Query("priority")),
		Status:   domain.StatusFilter(c.Query("status")),
		Date:     domain.DateFilter(c.Query("date")),
	}
}
