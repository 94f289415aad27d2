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

type RatingHandler struct {
	DB *gorm.DB
}

func (h *RatingHandler) FindAll(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context())
	if accountID := c.QueryParam("accountId"); accountID != "" {
		q = q.Where("account_id = ?", accountID)
	}
	if examID := c.QueryParam("examId"); examID != "" {
		q = q.Where("exam_id = ?", examID)
	}
	if rating := c.QueryParam("rating"); rating != "" {
		q = q.Where("rating = ?", rating)
	}

	var ratings []models.Rating
	if err := q.Order("created_at DESC").Find(&ratings).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list ratings", err)
	}
	return listResponse(c, ratings, int64(len(ratings)))
}

func (h *RatingHandler) FindOne(c echo.Context) error {
	var rating models.Rating
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "rating not found")
		}
		return apperr.Wrap(apperr.Internal, "rating lookup failed", err)
	}
	return successResponse(c, rating, "")
}

func (h *RatingHandler) Create(c echo.Context) error {
	var req struct {
		ExamID  string `json:"examId"`
		Rating  *int   `json:"rating"`
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.ExamID == "" {
		return apperr.New(apperr.Validation, "examId is required")
	}
	if req.Rating == nil {
		return apperr.New(apperr.Validation, "rating is required")
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		return apperr.New(apperr.Validation, "rating must be between 1 and 5")
	}

	account := middleware.AccountFromContext(c)
	ctx := c.Request().Context()

	// One rating per account per exam.
	var existing models.Rating
	err := h.DB.WithContext(ctx).
		Where("account_id = ? AND exam_id = ?", account.ID, req.ExamID).
		First(&existing).Error
	if err == nil {
		return apperr.New(apperr.Validation, "you have already rated this exam, use update instead")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.Internal, "rating lookup failed", err)
	}

	rating := models.Rating{
		AccountID: account.ID,
		ExamID:    req.ExamID,
		Rating:    *req.Rating,
		Content:   req.Content,
	}
	if err := h.DB.WithContext(ctx).Create(&rating).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create rating", err)
	}
	return successResponse(c, rating, "rating created", http.StatusCreated)
}

func (h *RatingHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	var rating models.Rating
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "rating not found")
		}
		return apperr.Wrap(apperr.Internal, "rating lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, rating.AccountID, models.RoleAdmin); err != nil {
		return err
	}

	var req struct {
		Rating  *int   `json:"rating"`
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}

	updates := map[string]any{}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return apperr.New(apperr.Validation, "rating must be between 1 and 5")
		}
		updates["rating"] = *req.Rating
	}
	if req.Content != "" {
		updates["content"] = req.Content
	}
	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(&rating).Updates(updates).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "cannot update rating", err)
		}
	}
	return successResponse(c, rating, "rating updated")
}

func (h *RatingHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	var rating models.Rating
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "rating not found")
		}
		return apperr.Wrap(apperr.Internal, "rating lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, rating.AccountID, models.RoleAdmin); err != nil {
		return err
	}

	if err := h.DB.WithContext(ctx).Delete(&rating).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete rating", err)
	}
	return successResponse(c, nil, "rating deleted")
}

// AverageByExam aggregates the mean rating and vote count for one exam.
func (h *RatingHandler) AverageByExam(c echo.Context) error {
	var result struct {
		Average float64 `json:"average"`
		Count   int64   `json:"count"`
	}
	err := h.DB.WithContext(c.Request().Context()).Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("exam_id = ?", c.Param("examId")).
		Scan(&result).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot aggregate ratings", err)
	}
	return successResponse(c, result, "")
}
