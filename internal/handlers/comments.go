package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/middleware"
	"github.com/quizhub/quiz_platform/internal/models"
	"github.com/quizhub/quiz_platform/internal/util"
)

type CommentHandler struct {
	DB *gorm.DB
}

func (h *CommentHandler) FindAll(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Comment{})
	if accountID := c.QueryParam("accountId"); accountID != "" {
		q = q.Where("account_id = ?", accountID)
	}
	if examID := c.QueryParam("examId"); examID != "" {
		q = q.Where("exam_id = ?", examID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot count comments", err)
	}

	var comments []models.Comment
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list comments", err)
	}
	return listResponse(c, comments, total)
}

func (h *CommentHandler) FindOne(c echo.Context) error {
	var comment models.Comment
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "comment not found")
		}
		return apperr.Wrap(apperr.Internal, "comment lookup failed", err)
	}
	return successResponse(c, comment, "")
}

func (h *CommentHandler) Create(c echo.Context) error {
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

	account := middleware.AccountFromContext(c)
	comment := models.Comment{
		AccountID: account.ID,
		ExamID:    req.ExamID,
		Content:   req.Content,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&comment).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create comment", err)
	}
	return successResponse(c, comment, "comment created", http.StatusCreated)
}

func (h *CommentHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	var comment models.Comment
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "comment not found")
		}
		return apperr.Wrap(apperr.Internal, "comment lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, comment.AccountID, models.RoleAdmin, models.RoleModerator); err != nil {
		return err
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.Content == "" {
		return apperr.New(apperr.Validation, "content is required")
	}

	if err := h.DB.WithContext(ctx).Model(&comment).Update("content", req.Content).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot update comment", err)
	}
	return successResponse(c, comment, "comment updated")
}

func (h *CommentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	var comment models.Comment
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "comment not found")
		}
		return apperr.Wrap(apperr.Internal, "comment lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, comment.AccountID, models.RoleAdmin, models.RoleModerator); err != nil {
		return err
	}

	if err := h.DB.WithContext(ctx).Delete(&comment).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete comment", err)
	}
	return successResponse(c, nil, "comment deleted")
}

func (h *CommentHandler) FindByExamID(c echo.Context) error {
	var comments []models.Comment
	err := h.DB.WithContext(c.Request().Context()).
		Where("exam_id = ?", c.Param("examId")).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list comments", err)
	}
	return listResponse(c, comments, int64(len(comments)))
}

func (h *CommentHandler) FindByAccountID(c echo.Context) error {
	var comments []models.Comment
	err := h.DB.WithContext(c.Request().Context()).
		Where("account_id = ?", c.Param("accountId")).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list comments", err)
	}
	return listResponse(c, comments, int64(len(comments)))
}
