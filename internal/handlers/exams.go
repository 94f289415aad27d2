package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/events"
	"github.com/quizhub/quiz_platform/internal/logging"
	"github.com/quizhub/quiz_platform/internal/middleware"
	"github.com/quizhub/quiz_platform/internal/models"
	"github.com/quizhub/quiz_platform/internal/service/search"
	"github.com/quizhub/quiz_platform/internal/util"
)

type ExamHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Producer *events.Producer
}

func (h *ExamHandler) index(c echo.Context, exam *models.Exam) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexExam(ctx, h.ES, exam); err != nil {
		logging.FromContext(c.Request().Context()).Error("exam indexing failed", "examID", exam.ID, "error", err)
	}
}

func (h *ExamHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicExamEvents, event["examId"].(string), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("event publish failed", "error", err)
	}
}

func (h *ExamHandler) FindAll(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Exam{})
	if title := c.QueryParam("title"); title != "" {
		q = q.Where("title LIKE ?", "%"+title+"%")
	}
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if level := c.QueryParam("level"); level != "" {
		q = q.Where("level = ?", level)
	}
	if approved := c.QueryParam("isApproved"); approved != "" {
		q = q.Where("is_approved = ?", approved == "true")
	}
	if accountID := c.QueryParam("accountId"); accountID != "" {
		q = q.Where("account_id = ?", accountID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot count exams", err)
	}

	var exams []models.Exam
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&exams).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list exams", err)
	}
	return listResponse(c, exams, total)
}

func (h *ExamHandler) FindOne(c echo.Context) error {
	var exam models.Exam
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "exam not found")
		}
		return apperr.Wrap(apperr.Internal, "exam lookup failed", err)
	}
	return successResponse(c, exam, "")
}

func (h *ExamHandler) Create(c echo.Context) error {
	var req struct {
		Title       string `json:"title"`
		Category    string `json:"category"`
		Level       string `json:"level"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.Title == "" {
		return apperr.New(apperr.Validation, "title is required")
	}
	if req.Level != "" && req.Level != "easy" && req.Level != "medium" && req.Level != "hard" {
		return apperr.New(apperr.Validation, "level must be easy, medium or hard")
	}

	account := middleware.AccountFromContext(c)
	exam := models.Exam{
		Title:       req.Title,
		Category:    req.Category,
		Level:       req.Level,
		Description: req.Description,
		AccountID:   account.ID,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&exam).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create exam", err)
	}

	h.index(c, &exam)
	h.publish(c, map[string]any{
		"type":      "exam_created",
		"examId":    exam.ID,
		"accountId": account.ID,
	})
	return successResponse(c, exam, "exam created", http.StatusCreated)
}

func (h *ExamHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	var exam models.Exam
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "exam not found")
		}
		return apperr.Wrap(apperr.Internal, "exam lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, exam.AccountID, models.RoleAdmin, models.RoleModerator); err != nil {
		return err
	}

	var req struct {
		Title       string `json:"title"`
		Category    string `json:"category"`
		Level       string `json:"level"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}

	updates := map[string]any{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Level != "" {
		updates["level"] = req.Level
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(&exam).Updates(updates).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "cannot update exam", err)
		}
	}

	h.index(c, &exam)
	return successResponse(c, exam, "exam updated")
}

func (h *ExamHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	var exam models.Exam
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "exam not found")
		}
		return apperr.Wrap(apperr.Internal, "exam lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, exam.AccountID, models.RoleAdmin, models.RoleModerator); err != nil {
		return err
	}

	if err := h.DB.WithContext(ctx).Delete(&exam).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete exam", err)
	}
	return successResponse(c, nil, "exam deleted")
}

func (h *ExamHandler) FindByAccountID(c echo.Context) error {
	var exams []models.Exam
	err := h.DB.WithContext(c.Request().Context()).
		Where("account_id = ?", c.Param("accountId")).
		Order("created_at DESC").
		Find(&exams).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list exams", err)
	}
	return listResponse(c, exams, int64(len(exams)))
}

func (h *ExamHandler) Approve(c echo.Context) error {
	ctx := c.Request().Context()
	var exam models.Exam
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "exam not found")
		}
		return apperr.Wrap(apperr.Internal, "exam lookup failed", err)
	}

	if err := h.DB.WithContext(ctx).Model(&exam).Update("is_approved", true).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot approve exam", err)
	}

	h.index(c, &exam)
	h.publish(c, map[string]any{
		"type":   "exam_approved",
		"examId": exam.ID,
	})
	return successResponse(c, exam, "exam approved")
}

// Search queries Elasticsearch; falls back with an error when the search
// backend is not configured.
func (h *ExamHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return apperr.New(apperr.Validation, "query parameter q is required")
	}
	if h.ES == nil {
		return apperr.New(apperr.Internal, "search backend is not configured")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, exams, err := search.SearchExams(c.Request().Context(), h.ES, query, from, limit)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "search failed", err)
	}
	return listResponse(c, exams, total)
}
