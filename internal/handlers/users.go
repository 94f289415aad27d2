package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/middleware"
	"github.com/quizhub/quiz_platform/internal/models"
)

// UserHandler manages the optional profile extension record attached to
// an account.
type UserHandler struct {
	DB *gorm.DB
}

type userInput struct {
	AccountID   string  `json:"accountId"`
	FullName    string  `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
	DateOfBirth *string `json:"dateOfBirth"`
	Gender      string  `json:"gender"`
}

func parseDateOfBirth(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "dateOfBirth must be YYYY-MM-DD")
	}
	return &t, nil
}

func (h *UserHandler) Create(c echo.Context) error {
	var req userInput
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.AccountID == "" {
		return apperr.New(apperr.Validation, "accountId is required")
	}
	if err := middleware.OwnerOrRole(c, req.AccountID, models.RoleAdmin); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var account models.Account
	if err := h.DB.WithContext(ctx).Where("id = ?", req.AccountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "account not found")
		}
		return apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("account_id = ?", req.AccountID).First(&existing).Error
	if err == nil {
		return apperr.New(apperr.Validation, "account already has a user profile")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.Internal, "profile lookup failed", err)
	}

	dob, perr := parseDateOfBirth(req.DateOfBirth)
	if perr != nil {
		return perr
	}

	user := models.User{
		AccountID:   req.AccountID,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: dob,
		Gender:      req.Gender,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot create user profile", err)
	}
	return successResponse(c, user, "user profile created", http.StatusCreated)
}

func (h *UserHandler) List(c echo.Context) error {
	var users []models.User
	if err := h.DB.WithContext(c.Request().Context()).Find(&users).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list user profiles", err)
	}
	return listResponse(c, users, int64(len(users)))
}

// GetByID resolves either a profile id or an account id, falling back to
// the account-id lookup when no profile matches.
func (h *UserHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	var user models.User
	err := h.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = h.DB.WithContext(ctx).Where("account_id = ?", id).First(&user).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "user profile not found")
		}
		return apperr.Wrap(apperr.Internal, "profile lookup failed", err)
	}
	return successResponse(c, user, "")
}

func (h *UserHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	var user models.User
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "user profile not found")
		}
		return apperr.Wrap(apperr.Internal, "profile lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, user.AccountID, models.RoleAdmin); err != nil {
		return err
	}

	var req userInput
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}

	updates := map[string]any{}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.Gender != "" {
		updates["gender"] = req.Gender
	}
	if dob, perr := parseDateOfBirth(req.DateOfBirth); perr != nil {
		return perr
	} else if dob != nil {
		updates["date_of_birth"] = *dob
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "cannot update user profile", err)
		}
	}
	return successResponse(c, user, "user profile updated")
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	var user models.User
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "user profile not found")
		}
		return apperr.Wrap(apperr.Internal, "profile lookup failed", err)
	}
	if err := middleware.OwnerOrRole(c, user.AccountID, models.RoleAdmin); err != nil {
		return err
	}

	if err := h.DB.WithContext(ctx).Delete(&user).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete user profile", err)
	}
	return successResponse(c, nil, "user profile deleted")
}
