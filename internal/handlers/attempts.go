package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/middleware"
	"github.com/quizhub/quiz_platform/internal/models"
)

type AttemptHandler struct {
	DB *gorm.DB
}

func (h *AttemptHandler) FindAll(c echo.Context) error {
	var attempts []models.ExamAttempt
	if err := h.DB.WithContext(c.Request().Context()).Order("attempt_date DESC").Find(&attempts).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list attempts", err)
	}
	return listResponse(c, attempts, int64(len(attempts)))
}

func (h *AttemptHandler) FindOne(c echo.Context) error {
	var attempt models.ExamAttempt
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "attempt not found")
		}
		return apperr.Wrap(apperr.Internal, "attempt lookup failed", err)
	}
	return successResponse(c, attempt, "")
}

func (h *AttemptHandler) Create(c echo.Context) error {
	var req struct {
		ExamID string   `json:"examId"`
		Score  *float64 `json:"score"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.ExamID == "" {
		return apperr.New(apperr.Validation, "examId is required")
	}

	account := middleware.AccountFromContext(c)
	attempt := models.ExamAttempt{
		AccountID: account.ID,
		ExamID:    req.ExamID,
		Score:     req.Score,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&attempt).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create attempt", err)
	}
	return successResponse(c, attempt, "attempt created", http.StatusCreated)
}

func (h *AttemptHandler) Update(c echo.Context) error {
	var req struct {
		Score *float64 `json:"score"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.Score == nil {
		return apperr.New(apperr.Validation, "score is required")
	}

	result := h.DB.WithContext(c.Request().Context()).Model(&models.ExamAttempt{}).
		Where("id = ?", c.Param("id")).
		Update("score", *req.Score)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot update attempt", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "attempt not found")
	}
	return successResponse(c, nil, "attempt updated")
}

func (h *AttemptHandler) Delete(c echo.Context) error {
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).Delete(&models.ExamAttempt{})
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete attempt", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "attempt not found")
	}
	return successResponse(c, nil, "attempt deleted")
}

func (h *AttemptHandler) FindByAccountID(c echo.Context) error {
	var attempts []models.ExamAttempt
	err := h.DB.WithContext(c.Request().Context()).
		Where("account_id = ?", c.Param("accountId")).
		Order("attempt_date DESC").
		Find(&attempts).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list attempts", err)
	}
	return listResponse(c, attempts, int64(len(attempts)))
}

func (h *AttemptHandler) FindByExamID(c echo.Context) error {
	var attempts []models.ExamAttempt
	err := h.DB.WithContext(c.Request().Context()).
		Where("exam_id = ?", c.Param("examId")).
		Order("attempt_date DESC").
		Find(&attempts).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list attempts", err)
	}
	return listResponse(c, attempts, int64(len(attempts)))
}

func (h *AttemptHandler) UpdateScore(c echo.Context) error {
	var req struct {
		Score *float64 `json:"score"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.Score == nil {
		return apperr.New(apperr.Validation, "score is required")
	}

	result := h.DB.WithContext(c.Request().Context()).Model(&models.ExamAttempt{}).
		Where("id = ?", c.Param("id")).
		Update("score", *req.Score)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot update score", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "attempt not found")
	}
	return successResponse(c, nil, "score updated")
}

// FindByExamAndAccount returns the attempt together with its per-question
// details.
func (h *AttemptHandler) FindByExamAndAccount(c echo.Context) error {
	ctx := c.Request().Context()
	var attempt models.ExamAttempt
	err := h.DB.WithContext(ctx).
		Where("exam_id = ? AND account_id = ?", c.Param("examId"), c.Param("accountId")).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "attempt not found")
		}
		return apperr.Wrap(apperr.Internal, "attempt lookup failed", err)
	}

	var details []models.ExamAttemptDetail
	if err := h.DB.WithContext(ctx).Where("exam_attempt_id = ?", attempt.ID).Find(&details).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot load attempt details", err)
	}
	return successResponse(c, echo.Map{"attempt": attempt, "details": details}, "")
}
