package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/models"
)

type AttemptDetailHandler struct {
	DB *gorm.DB
}

func (h *AttemptDetailHandler) FindAll(c echo.Context) error {
	var details []models.ExamAttemptDetail
	if err := h.DB.WithContext(c.Request().Context()).Find(&details).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list attempt details", err)
	}
	return listResponse(c, details, int64(len(details)))
}

func (h *AttemptDetailHandler) FindOne(c echo.Context) error {
	var detail models.ExamAttemptDetail
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&detail).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "attempt detail not found")
		}
		return apperr.Wrap(apperr.Internal, "attempt detail lookup failed", err)
	}
	return successResponse(c, detail, "")
}

func (h *AttemptDetailHandler) Create(c echo.Context) error {
	var req struct {
		ExamAttemptID string  `json:"examAttemptId"`
		QuestionID    string  `json:"questionId"`
		AnswerID      *string `json:"answerId"`
		IsCorrect     bool    `json:"isCorrect"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.ExamAttemptID == "" || req.QuestionID == "" {
		return apperr.New(apperr.Validation, "examAttemptId and questionId are required")
	}

	detail := models.ExamAttemptDetail{
		ExamAttemptID: req.ExamAttemptID,
		QuestionID:    req.QuestionID,
		AnswerID:      req.AnswerID,
		IsCorrect:     req.IsCorrect,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&detail).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create attempt detail", err)
	}
	return successResponse(c, detail, "attempt detail created", http.StatusCreated)
}

func (h *AttemptDetailHandler) Update(c echo.Context) error {
	var req struct {
		AnswerID  *string `json:"answerId"`
		IsCorrect *bool   `json:"isCorrect"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}

	updates := map[string]any{}
	if req.AnswerID != nil {
		updates["answer_id"] = *req.AnswerID
	}
	if req.IsCorrect != nil {
		updates["is_correct"] = *req.IsCorrect
	}
	if len(updates) == 0 {
		return apperr.New(apperr.Validation, "nothing to update")
	}

	result := h.DB.WithContext(c.Request().Context()).Model(&models.ExamAttemptDetail{}).
		Where("id = ?", c.Param("id")).
		Updates(updates)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot update attempt detail", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "attempt detail not found")
	}
	return successResponse(c, nil, "attempt detail updated")
}

func (h *AttemptDetailHandler) Delete(c echo.Context) error {
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).Delete(&models.ExamAttemptDetail{})
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete attempt detail", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "attempt detail not found")
	}
	return successResponse(c, nil, "attempt detail deleted")
}

func (h *AttemptDetailHandler) FindByAttemptID(c echo.Context) error {
	var details []models.ExamAttemptDetail
	err := h.DB.WithContext(c.Request().Context()).
		Where("exam_attempt_id = ?", c.Param("attemptId")).
		Find(&details).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list attempt details", err)
	}
	return listResponse(c, details, int64(len(details)))
}

func (h *AttemptDetailHandler) FindByQuestionID(c echo.Context) error {
	var details []models.ExamAttemptDetail
	err := h.DB.WithContext(c.Request().Context()).
		Where("question_id = ?", c.Param("questionId")).
		Find(&details).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list attempt details", err)
	}
	return listResponse(c, details, int64(len(details)))
}

func (h *AttemptDetailHandler) FindCorrect(c echo.Context) error {
	var details []models.ExamAttemptDetail
	err := h.DB.WithContext(c.Request().Context()).
		Where("exam_attempt_id = ? AND is_correct = ?", c.Param("attemptId"), true).
		Find(&details).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list attempt details", err)
	}
	return listResponse(c, details, int64(len(details)))
}

// UpdateAnswer records the picked answer and whether it was correct.
func (h *AttemptDetailHandler) UpdateAnswer(c echo.Context) error {
	var req struct {
		AnswerID  string `json:"answerId"`
		IsCorrect *bool  `json:"isCorrect"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.AnswerID == "" || req.IsCorrect == nil {
		return apperr.New(apperr.Validation, "answerId and isCorrect are required")
	}

	result := h.DB.WithContext(c.Request().Context()).Model(&models.ExamAttemptDetail{}).
		Where("id = ?", c.Param("id")).
		Updates(map[string]any{"answer_id": req.AnswerID, "is_correct": *req.IsCorrect})
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot update answer", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "attempt detail not found")
	}
	return successResponse(c, nil, "answer updated")
}

func (h *AttemptDetailHandler) CreateBulk(c echo.Context) error {
	var req struct {
		Details []models.ExamAttemptDetail `json:"details"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if len(req.Details) == 0 {
		return apperr.New(apperr.Validation, "a non-empty array of details is required")
	}
	for _, d := range req.Details {
		if d.ExamAttemptID == "" || d.QuestionID == "" {
			return apperr.New(apperr.Validation, "every detail needs examAttemptId and questionId")
		}
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&req.Details).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create attempt details", err)
	}
	return successResponse(c, req.Details, "attempt details created", http.StatusCreated)
}
