// Package http wires the echo server: route registration, the request
// logging middleware and the single error-handler boundary that collapses
// every failure into the {success:false, message} envelope.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/handlers"
	"github.com/quizhub/quiz_platform/internal/logging"
	"github.com/quizhub/quiz_platform/internal/middleware"
	"github.com/quizhub/quiz_platform/internal/models"
)

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewErrorHandler maps taxonomy errors and echo's own HTTP errors onto
// the shared error envelope. Internal errors are logged with their cause
// and surfaced as a generic message.
func NewErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := apperr.MessageOf(err)

		var appErr *apperr.Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Kind.HTTPStatus()
			if appErr.Kind == apperr.Internal {
				log.Error("request failed", "path", c.Path(), "error", err)
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(status)
			}
		default:
			log.Error("request failed", "path", c.Path(), "error", err)
		}

		if err := c.JSON(status, errorEnvelope{Success: false, Message: message}); err != nil {
			log.Error("write error response", "error", err)
		}
	}
}

// RequestLogger injects the logger into the request context and emits one
// line per completed request.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), log)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start).String(),
			)
			return err
		}
	}
}

type Deps struct {
	Auth *middleware.Auth

	Accounts       *handlers.AccountHandler
	Users          *handlers.UserHandler
	Admins         *handlers.AdminHandler
	Exams          *handlers.ExamHandler
	Questions      *handlers.QuestionHandler
	Answers        *handlers.AnswerHandler
	Ratings        *handlers.RatingHandler
	Comments       *handlers.CommentHandler
	Groups         *handlers.GroupHandler
	GroupMembers   *handlers.GroupMemberHandler
	Attempts       *handlers.AttemptHandler
	AttemptDetails *handlers.AttemptDetailHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	adminOrModerator := middleware.RequireRole(models.RoleAdmin, models.RoleModerator)

	accounts := e.Group("/accounts")
	accounts.POST("", d.Accounts.Register)
	accounts.POST("/login", d.Accounts.Login)
	accounts.POST("/refresh-token", d.Accounts.RefreshToken)
	accounts.POST("/logout", d.Accounts.Logout)
	accounts.POST("/forgot-password/check", d.Accounts.ForgotPasswordCheck)
	accounts.POST("/:id/reset-password", d.Accounts.ResetPassword)

	accountsAuthed := accounts.Group("", d.Auth.RequireAuth)
	accountsAuthed.GET("", d.Accounts.List, adminOnly)
	accountsAuthed.POST("/search", d.Accounts.Search)
	accountsAuthed.GET("/:id", d.Accounts.GetByID)
	accountsAuthed.PUT("/:id", d.Accounts.Update)
	accountsAuthed.DELETE("/:id", d.Accounts.Delete)
	accountsAuthed.PUT("/:id/password", d.Accounts.ChangePassword)

	users := e.Group("/users", d.Auth.RequireAuth)
	users.POST("", d.Users.Create)
	users.GET("", d.Users.List, adminOnly)
	users.GET("/:id", d.Users.GetByID)
	users.PUT("/:id", d.Users.Update)
	users.DELETE("/:id", d.Users.Delete)

	admins := e.Group("/admins", d.Auth.RequireAuth, adminOnly)
	admins.POST("", d.Admins.Create)
	admins.GET("", d.Admins.List)
	admins.GET("/:id", d.Admins.GetByID)
	admins.GET("/account/:accountId", d.Admins.GetByAccountID)
	admins.PUT("/:id", d.Admins.Update)
	admins.DELETE("/:id", d.Admins.Delete)

	exams := e.Group("/exams")
	exams.GET("", d.Exams.FindAll)
	exams.GET("/search", d.Exams.Search)
	exams.GET("/:id", d.Exams.FindOne)
	exams.GET("/account/:accountId", d.Exams.FindByAccountID)

	examsAuthed := exams.Group("", d.Auth.RequireAuth)
	examsAuthed.POST("", d.Exams.Create)
	examsAuthed.PUT("/:id", d.Exams.Update)
	examsAuthed.DELETE("/:id", d.Exams.Delete)
	examsAuthed.PATCH("/:id/approve", d.Exams.Approve, adminOrModerator)

	questions := e.Group("/questions", d.Auth.RequireAuth)
	questions.GET("", d.Questions.FindAll)
	questions.GET("/:id", d.Questions.FindOne)
	questions.GET("/exam/:examId", d.Questions.FindByExamID)
	questions.POST("", d.Questions.Create)
	questions.POST("/bulk", d.Questions.CreateBulk)
	questions.POST("/with-answers", d.Questions.CreateWithAnswers)
	questions.PUT("/:id", d.Questions.Update)
	questions.DELETE("/:id", d.Questions.Delete)

	answers := e.Group("/answers", d.Auth.RequireAuth)
	answers.GET("", d.Answers.FindAll)
	answers.GET("/:id", d.Answers.FindOne)
	answers.GET("/question/:questionId", d.Answers.FindByQuestionID)
	answers.POST("", d.Answers.Create)
	answers.POST("/bulk", d.Answers.CreateBulk)
	answers.PUT("/:id", d.Answers.Update)
	answers.PATCH("/:id/correct", d.Answers.MarkAsCorrect)
	answers.DELETE("/:id", d.Answers.Delete)

	ratings := e.Group("/ratings")
	ratings.GET("", d.Ratings.FindAll)
	ratings.GET("/:id", d.Ratings.FindOne)
	ratings.GET("/exam/:examId/average", d.Ratings.AverageByExam)

	ratingsAuthed := ratings.Group("", d.Auth.RequireAuth)
	ratingsAuthed.POST("", d.Ratings.Create)
	ratingsAuthed.PUT("/:id", d.Ratings.Update)
	ratingsAuthed.DELETE("/:id", d.Ratings.Delete)

	comments := e.Group("/comments")
	comments.GET("", d.Comments.FindAll)
	comments.GET("/:id", d.Comments.FindOne)
	comments.GET("/exam/:examId", d.Comments.FindByExamID)
	comments.GET("/account/:accountId", d.Comments.FindByAccountID)

	commentsAuthed := comments.Group("", d.Auth.RequireAuth)
	commentsAuthed.POST("", d.Comments.Create)
	commentsAuthed.PUT("/:id", d.Comments.Update)
	commentsAuthed.DELETE("/:id", d.Comments.Delete)

	groups := e.Group("/group_study", d.Auth.RequireAuth)
	groups.POST("", d.Groups.Create)
	groups.GET("", d.Groups.FindAll)
	groups.GET("/:id", d.Groups.FindOne)
	groups.GET("/account/:accountId", d.Groups.FindByAccountID)
	groups.PUT("/:id", d.Groups.Update)
	groups.PATCH("/:id/transfer", d.Groups.TransferOwnership)
	groups.DELETE("/:id", d.Groups.Delete)

	members := e.Group("/group_members", d.Auth.RequireAuth)
	members.POST("", d.GroupMembers.AddMember)
	members.GET("/group/:groupId", d.GroupMembers.GetGroupMembers)
	members.GET("/group/:groupId/count", d.GroupMembers.CountGroupMembers)
	members.GET("/group/:groupId/account/:accountId", d.GroupMembers.CheckMembership)
	members.GET("/account/:accountId", d.GroupMembers.GetMemberGroups)
	members.DELETE("/group/:groupId/account/:accountId", d.GroupMembers.RemoveMember)

	attempts := e.Group("/exam_attempts", d.Auth.RequireAuth)
	attempts.POST("", d.Attempts.Create)
	attempts.GET("", d.Attempts.FindAll)
	attempts.GET("/:id", d.Attempts.FindOne)
	attempts.GET("/account/:accountId", d.Attempts.FindByAccountID)
	attempts.GET("/exam/:examId", d.Attempts.FindByExamID)
	attempts.GET("/exam/:examId/account/:accountId", d.Attempts.FindByExamAndAccount)
	attempts.PUT("/:id", d.Attempts.Update)
	attempts.PATCH("/:id/score", d.Attempts.UpdateScore)
	attempts.DELETE("/:id", d.Attempts.Delete)

	details := e.Group("/exam_attempt_details", d.Auth.RequireAuth)
	details.POST("", d.AttemptDetails.Create)
	details.POST("/bulk", d.AttemptDetails.CreateBulk)
	details.GET("", d.AttemptDetails.FindAll)
	details.GET("/:id", d.AttemptDetails.FindOne)
	details.GET("/attempt/:attemptId", d.AttemptDetails.FindByAttemptID)
	details.GET("/attempt/:attemptId/correct", d.AttemptDetails.FindCorrect)
	details.GET("/question/:questionId", d.AttemptDetails.FindByQuestionID)
	details.PUT("/:id", d.AttemptDetails.Update)
	details.PATCH("/:id/answer", d.AttemptDetails.UpdateAnswer)
	details.DELETE("/:id", d.AttemptDetails.Delete)
}
