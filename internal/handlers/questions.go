package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/models"
)

type QuestionHandler struct {
	DB *gorm.DB
}

func (h *QuestionHandler) FindAll(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context())
	if examID := c.QueryParam("examId"); examID != "" {
		q = q.Where("exam_id = ?", examID)
	}

	var questions []models.Question
	if err := q.Find(&questions).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list questions", err)
	}
	return listResponse(c, questions, int64(len(questions)))
}

func (h *QuestionHandler) FindOne(c echo.Context) error {
	var question models.Question
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "question not found")
		}
		return apperr.Wrap(apperr.Internal, "question lookup failed", err)
	}
	return successResponse(c, question, "")
}

func (h *QuestionHandler) Create(c echo.Context) error {
	var req struct {
		ExamID  string `json:"examId"`
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.ExamID == "" || req.Content == "" {
		return apperr.New(apperr.Validation, "examId and content are required")
	}

	question := models.Question{ExamID: req.ExamID, Content: req.Content}
	if err := h.DB.WithContext(c.Request().Context()).Create(&question).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create question", err)
	}
	return successResponse(c, question, "question created", http.StatusCreated)
}

func (h *QuestionHandler) Update(c echo.Context) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.Content == "" {
		return apperr.New(apperr.Validation, "content is required")
	}

	result := h.DB.WithContext(c.Request().Context()).Model(&models.Question{}).
		Where("id = ?", c.Param("id")).
		Update("content", req.Content)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot update question", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "question not found")
	}
	return successResponse(c, nil, "question updated")
}

func (h *QuestionHandler) Delete(c echo.Context) error {
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).Delete(&models.Question{})
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete question", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "question not found")
	}
	return successResponse(c, nil, "question deleted")
}

func (h *QuestionHandler) FindByExamID(c echo.Context) error {
	var questions []models.Question
	err := h.DB.WithContext(c.Request().Context()).
		Where("exam_id = ?", c.Param("examId")).
		Find(&questions).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list questions", err)
	}
	return listResponse(c, questions, int64(len(questions)))
}

func (h *QuestionHandler) CreateBulk(c echo.Context) error {
	var req struct {
		Questions []models.Question `json:"questions"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if len(req.Questions) == 0 {
		return apperr.New(apperr.Validation, "a non-empty array of questions is required")
	}
	for _, q := range req.Questions {
		if q.ExamID == "" || q.Content == "" {
			return apperr.New(apperr.Validation, "every question needs examId and content")
		}
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&req.Questions).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create questions", err)
	}
	return successResponse(c, req.Questions, "questions created", http.StatusCreated)
}

// CreateWithAnswers persists one question plus its four answer options in
// a single transaction.
func (h *QuestionHandler) CreateWithAnswers(c echo.Context) error {
	var req struct {
		ExamID  string `json:"examId"`
		Content string `json:"content"`
		Answers []struct {
			Content     string `json:"content"`
			IsCorrect   bool   `json:"isCorrect"`
			Explanation string `json:"explanation"`
		} `json:"answers"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.ExamID == "" {
		return apperr.New(apperr.Validation, "examId is required")
	}
	if req.Content == "" {
		return apperr.New(apperr.Validation, "content is required")
	}
	if len(req.Answers) != 4 {
		return apperr.New(apperr.Validation, "exactly 4 answers are required")
	}

	question := models.Question{ExamID: req.ExamID, Content: req.Content}
	err := h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		answers := make([]models.Answer, len(req.Answers))
		for i, a := range req.Answers {
			answers[i] = models.Answer{
				QuestionID:  question.ID,
				Content:     a.Content,
				IsCorrect:   a.IsCorrect,
				Explanation: a.Explanation,
			}
		}
		return tx.Create(&answers).Error
	})
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create question with answers", err)
	}
	return successResponse(c, question, "question created", http.StatusCreated)
}
