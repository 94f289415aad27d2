package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/models"
)

type AnswerHandler struct {
	DB *gorm.DB
}

func (h *AnswerHandler) FindAll(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context())
	if questionID := c.QueryParam("questionId"); questionID != "" {
		q = q.Where("question_id = ?", questionID)
	}

	var answers []models.Answer
	if err := q.Find(&answers).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list answers", err)
	}
	return listResponse(c, answers, int64(len(answers)))
}

func (h *AnswerHandler) FindOne(c echo.Context) error {
	var answer models.Answer
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "answer not found")
		}
		return apperr.Wrap(apperr.Internal, "answer lookup failed", err)
	}
	return successResponse(c, answer, "")
}

func (h *AnswerHandler) Create(c echo.Context) error {
	var req struct {
		QuestionID  string `json:"questionId"`
		Content     string `json:"content"`
		IsCorrect   bool   `json:"isCorrect"`
		Explanation string `json:"explanation"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.QuestionID == "" || req.Content == "" {
		return apperr.New(apperr.Validation, "questionId and content are required")
	}

	answer := models.Answer{
		QuestionID:  req.QuestionID,
		Content:     req.Content,
		IsCorrect:   req.IsCorrect,
		Explanation: req.Explanation,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&answer).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create answer", err)
	}
	return successResponse(c, answer, "answer created", http.StatusCreated)
}

func (h *AnswerHandler) Update(c echo.Context) error {
	var req struct {
		Content     string `json:"content"`
		Explanation string `json:"explanation"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}

	updates := map[string]any{}
	if req.Content != "" {
		updates["content"] = req.Content
	}
	if req.Explanation != "" {
		updates["explanation"] = req.Explanation
	}
	if len(updates) == 0 {
		return apperr.New(apperr.Validation, "nothing to update")
	}

	result := h.DB.WithContext(c.Request().Context()).Model(&models.Answer{}).
		Where("id = ?", c.Param("id")).
		Updates(updates)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot update answer", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "answer not found")
	}
	return successResponse(c, nil, "answer updated")
}

func (h *AnswerHandler) Delete(c echo.Context) error {
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).Delete(&models.Answer{})
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete answer", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "answer not found")
	}
	return successResponse(c, nil, "answer deleted")
}

func (h *AnswerHandler) FindByQuestionID(c echo.Context) error {
	var answers []models.Answer
	err := h.DB.WithContext(c.Request().Context()).
		Where("question_id = ?", c.Param("questionId")).
		Find(&answers).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list answers", err)
	}
	return listResponse(c, answers, int64(len(answers)))
}

// MarkAsCorrect makes the given answer the single correct one within its
// question: all siblings are reset inside one transaction.
func (h *AnswerHandler) MarkAsCorrect(c echo.Context) error {
	var req struct {
		QuestionID string `json:"questionId"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.QuestionID == "" {
		return apperr.New(apperr.Validation, "questionId is required")
	}

	id := c.Param("id")
	err := h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Answer{}).
			Where("question_id = ?", req.QuestionID).
			Update("is_correct", false).Error; err != nil {
			return err
		}
		result := tx.Model(&models.Answer{}).
			Where("id = ? AND question_id = ?", id, req.QuestionID).
			Update("is_correct", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "answer not found")
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return err
		}
		return apperr.Wrap(apperr.Internal, "cannot mark answer as correct", err)
	}
	return successResponse(c, nil, "answer marked as correct")
}

func (h *AnswerHandler) CreateBulk(c echo.Context) error {
	var req struct {
		Answers []models.Answer `json:"answers"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if len(req.Answers) == 0 {
		return apperr.New(apperr.Validation, "a non-empty array of answers is required")
	}
	for _, a := range req.Answers {
		if a.QuestionID == "" || a.Content == "" {
			return apperr.New(apperr.Validation, "every answer needs questionId and content")
		}
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&req.Answers).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create answers", err)
	}
	return successResponse(c, req.Answers, "answers created", http.StatusCreated)
}
