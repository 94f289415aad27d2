package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/models"
)

// AdminHandler manages admin records. Every route using it sits behind
// the admin role gate, so no per-handler ownership checks are needed.
type AdminHandler struct {
	DB *gorm.DB
}

type adminInput struct {
	AccountID       string `json:"accountId"`
	PermissionLevel *int   `json:"permissionLevel"`
}

func (h *AdminHandler) Create(c echo.Context) error {
	var req adminInput
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.AccountID == "" {
		return apperr.New(apperr.Validation, "accountId is required")
	}

	ctx := c.Request().Context()
	var account models.Account
	if err := h.DB.WithContext(ctx).Where("id = ?", req.AccountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "account not found")
		}
		return apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}

	var existing models.Admin
	err := h.DB.WithContext(ctx).Where("account_id = ?", req.AccountID).First(&existing).Error
	if err == nil {
		return apperr.New(apperr.Validation, "account is already an admin")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.Internal, "admin lookup failed", err)
	}

	admin := models.Admin{AccountID: req.AccountID, PermissionLevel: 1}
	if req.PermissionLevel != nil {
		admin.PermissionLevel = *req.PermissionLevel
	}
	if err := h.DB.WithContext(ctx).Create(&admin).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create admin", err)
	}
	return successResponse(c, admin, "admin created", http.StatusCreated)
}

func (h *AdminHandler) List(c echo.Context) error {
	var admins []models.Admin
	if err := h.DB.WithContext(c.Request().Context()).Find(&admins).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list admins", err)
	}
	return listResponse(c, admins, int64(len(admins)))
}

func (h *AdminHandler) GetByID(c echo.Context) error {
	var admin models.Admin
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "admin not found")
		}
		return apperr.Wrap(apperr.Internal, "admin lookup failed", err)
	}
	return successResponse(c, admin, "")
}

func (h *AdminHandler) GetByAccountID(c echo.Context) error {
	var admin models.Admin
	if err := h.DB.WithContext(c.Request().Context()).Where("account_id = ?", c.Param("accountId")).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "admin not found")
		}
		return apperr.Wrap(apperr.Internal, "admin lookup failed", err)
	}
	return successResponse(c, admin, "")
}

func (h *AdminHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	var admin models.Admin
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "admin not found")
		}
		return apperr.Wrap(apperr.Internal, "admin lookup failed", err)
	}

	var req adminInput
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.PermissionLevel == nil {
		return apperr.New(apperr.Validation, "permissionLevel is required")
	}

	if err := h.DB.WithContext(ctx).Model(&admin).Update("permission_level", *req.PermissionLevel).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot update admin", err)
	}
	return successResponse(c, admin, "admin updated")
}

func (h *AdminHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	var admin models.Admin
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "admin not found")
		}
		return apperr.Wrap(apperr.Internal, "admin lookup failed", err)
	}
	if err := h.DB.WithContext(ctx).Delete(&admin).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete admin", err)
	}
	return successResponse(c, nil, "admin deleted")
}
