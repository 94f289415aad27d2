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

type GroupHandler struct {
	DB *gorm.DB
}

// Create registers the group and enrolls the owner as its first member.
func (h *GroupHandler) Create(c echo.Context) error {
	var req struct {
		GroupName string `json:"groupName"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.GroupName == "" {
		return apperr.New(apperr.Validation, "groupName is required")
	}

	account := middleware.AccountFromContext(c)
	ctx := c.Request().Context()

	var existing models.StudyGroup
	err := h.DB.WithContext(ctx).Where("group_name = ?", req.GroupName).First(&existing).Error
	if err == nil {
		return apperr.New(apperr.Validation, "group name already in use")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.Internal, "group lookup failed", err)
	}

	group := models.StudyGroup{GroupName: req.GroupName, AccountID: account.ID}
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{GroupID: group.ID, AccountID: account.ID}).Error
	})
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create group", err)
	}
	return successResponse(c, group, "group created", http.StatusCreated)
}

func (h *GroupHandler) FindAll(c echo.Context) error {
	var groups []models.StudyGroup
	if err := h.DB.WithContext(c.Request().Context()).Order("created_at DESC").Find(&groups).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list groups", err)
	}
	return listResponse(c, groups, int64(len(groups)))
}

func (h *GroupHandler) FindOne(c echo.Context) error {
	var group models.StudyGroup
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "group not found")
		}
		return apperr.Wrap(apperr.Internal, "group lookup failed", err)
	}
	return successResponse(c, group, "")
}

func (h *GroupHandler) FindByAccountID(c echo.Context) error {
	var groups []models.StudyGroup
	err := h.DB.WithContext(c.Request().Context()).
		Where("account_id = ?", c.Param("accountId")).
		Find(&groups).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list groups", err)
	}
	return listResponse(c, groups, int64(len(groups)))
}

func (h *GroupHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	var group models.StudyGroup
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "group not found")
		}
		return apperr.Wrap(apperr.Internal, "group lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, group.AccountID, models.RoleAdmin); err != nil {
		return err
	}

	var req struct {
		GroupName string `json:"groupName"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.GroupName == "" {
		return apperr.New(apperr.Validation, "groupName is required")
	}

	if err := h.DB.WithContext(ctx).Model(&group).Update("group_name", req.GroupName).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot update group", err)
	}
	return successResponse(c, group, "group updated")
}

// TransferOwnership moves the group to another account. The new owner
// must already be a member.
func (h *GroupHandler) TransferOwnership(c echo.Context) error {
	ctx := c.Request().Context()
	var group models.StudyGroup
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "group not found")
		}
		return apperr.Wrap(apperr.Internal, "group lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, group.AccountID, models.RoleAdmin); err != nil {
		return err
	}

	var req struct {
		NewAccountID string `json:"newAccountId"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.NewAccountID == "" {
		return apperr.New(apperr.Validation, "newAccountId is required")
	}

	var member models.GroupMember
	err := h.DB.WithContext(ctx).
		Where("group_id = ? AND account_id = ?", group.ID, req.NewAccountID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.Validation, "the new owner must be a member of the group")
		}
		return apperr.Wrap(apperr.Internal, "membership lookup failed", err)
	}

	if err := h.DB.WithContext(ctx).Model(&group).Update("account_id", req.NewAccountID).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot transfer ownership", err)
	}
	return successResponse(c, group, "ownership transferred")
}

func (h *GroupHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	var group models.StudyGroup
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "group not found")
		}
		return apperr.Wrap(apperr.Internal, "group lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, group.AccountID, models.RoleAdmin); err != nil {
		return err
	}

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete group", err)
	}
	return successResponse(c, nil, "group deleted")
}
