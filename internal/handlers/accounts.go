package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/events"
	"github.com/quizhub/quiz_platform/internal/logging"
	"github.com/quizhub/quiz_platform/internal/middleware"
	"github.com/quizhub/quiz_platform/internal/models"
	"github.com/quizhub/quiz_platform/internal/service"
)

type AccountHandler struct {
	DB       *gorm.DB
	Svc      *service.AuthService
	Producer *events.Producer
}

func (h *AccountHandler) publish(c echo.Context, topic string, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("event publish failed", "topic", topic, "error", err)
	}
}

func (h *AccountHandler) Register(c echo.Context) error {
	var req struct {
		Email           string `json:"email"`
		Username        string `json:"username"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
		AvatarURL       string `json:"avatarURL"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return apperr.New(apperr.Validation, "email, username and password are required")
	}
	if len(req.Password) < 8 {
		return apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return apperr.New(apperr.Validation, "password confirmation does not match")
	}

	account, err := h.Svc.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return err
	}

	h.publish(c, events.TopicAccountEvents, account.ID, map[string]any{
		"type":      "account_registered",
		"accountId": account.ID,
		"username":  account.Username,
	})

	return successResponse(c, account, "account created", http.StatusCreated)
}

func (h *AccountHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.Username == "" && req.Email == "" {
		return apperr.New(apperr.Validation, "username or email is required")
	}
	if req.Password == "" {
		return apperr.New(apperr.Validation, "password is required")
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.publish(c, events.TopicAccountEvents, res.Account.ID, map[string]any{
		"type":      "account_logged_in",
		"accountId": res.Account.ID,
		"username":  res.Account.Username,
	})

	return successResponse(c, echo.Map{
		"account":      res.Account,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
		"expiresIn":    res.ExpiresIn,
	}, "login successful")
}

func (h *AccountHandler) RefreshToken(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.RefreshToken == "" {
		return apperr.New(apperr.Validation, "refresh token is required")
	}

	res, err := h.Svc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return successResponse(c, echo.Map{
		"accessToken": res.AccessToken,
		"expiresIn":   res.ExpiresIn,
		"account":     res.Account,
	}, "token refreshed")
}

func (h *AccountHandler) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.RefreshToken == "" {
		return apperr.New(apperr.Validation, "refresh token is required")
	}

	if err := h.Svc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}
	return successResponse(c, nil, "logout successful")
}

func (h *AccountHandler) Search(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.Username == "" && req.Email == "" {
		return apperr.New(apperr.Validation, "username or email is required")
	}

	q := h.DB.WithContext(c.Request().Context())
	if req.Username != "" {
		q = q.Where("username = ?", req.Username)
	}
	if req.Email != "" {
		// stored lowercase, match any casing
		q = q.Where("email = ?", strings.ToLower(req.Email))
	}

	var account models.Account
	if err := q.First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "account not found")
		}
		return apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}
	return successResponse(c, account, "")
}

func (h *AccountHandler) List(c echo.Context) error {
	var accounts []models.Account
	if err := h.DB.WithContext(c.Request().Context()).Order("created_at DESC").Find(&accounts).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list accounts", err)
	}
	return listResponse(c, accounts, int64(len(accounts)))
}

func (h *AccountHandler) GetByID(c echo.Context) error {
	var account models.Account
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", c.Param("id")).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "account not found")
		}
		return apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}
	return successResponse(c, account, "")
}

func (h *AccountHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if err := middleware.OwnerOrRole(c, id, models.RoleAdmin); err != nil {
		return err
	}

	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		AvatarURL string `json:"avatarURL"`
		Role      string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}

	ctx := c.Request().Context()
	var account models.Account
	if err := h.DB.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "account not found")
		}
		return apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}

	updates := map[string]any{}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.AvatarURL != "" {
		updates["avatar_url"] = req.AvatarURL
	}
	// Role changes are an admin-only mutation.
	if req.Role != "" {
		caller := middleware.AccountFromContext(c)
		if caller == nil || caller.Role != models.RoleAdmin {
			return apperr.New(apperr.Authorization, "only admins can change roles")
		}
		if req.Role != models.RoleUser && req.Role != models.RoleModerator && req.Role != models.RoleAdmin {
			return apperr.New(apperr.Validation, "unknown role")
		}
		updates["role"] = req.Role
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(&account).Updates(updates).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "cannot update account", err)
		}
	}

	if err := h.DB.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}
	return successResponse(c, account, "account updated")
}

func (h *AccountHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := middleware.OwnerOrRole(c, id, models.RoleAdmin); err != nil {
		return err
	}

	ctx := c.Request().Context()
	result := h.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Account{})
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot delete account", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "account not found")
	}
	return successResponse(c, nil, "account deleted")
}

func (h *AccountHandler) ChangePassword(c echo.Context) error {
	id := c.Param("id")
	if err := middleware.OwnerOrRole(c, id, models.RoleAdmin); err != nil {
		return err
	}

	var req struct {
		OldPassword        string `json:"oldPassword"`
		NewPassword        string `json:"newPassword"`
		ConfirmNewPassword string `json:"confirmNewPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return apperr.New(apperr.Validation, "old and new passwords are required")
	}
	if len(req.NewPassword) < 8 {
		return apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	if req.NewPassword != req.ConfirmNewPassword {
		return apperr.New(apperr.Validation, "password confirmation does not match")
	}

	account, err := h.Svc.ChangePassword(c.Request().Context(), id, req.OldPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return successResponse(c, account, "password updated")
}

func (h *AccountHandler) ForgotPasswordCheck(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.Username == "" && req.Email == "" {
		return apperr.New(apperr.Validation, "username or email is required")
	}

	account, resetToken, err := h.Svc.ForgotPasswordCheck(c.Request().Context(), req.Username, req.Email)
	if err != nil {
		return err
	}
	return successResponse(c, echo.Map{
		"account":    account,
		"resetToken": resetToken,
	}, "account found")
}

func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var req struct {
		ResetToken         string `json:"resetToken"`
		NewPassword        string `json:"newPassword"`
		ConfirmNewPassword string `json:"confirmNewPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.ResetToken == "" || req.NewPassword == "" {
		return apperr.New(apperr.Validation, "reset token and new password are required")
	}
	if len(req.NewPassword) < 8 {
		return apperr.New(apperr.Validation, "password must be at least 8 characters")
	}
	if req.ConfirmNewPassword != "" && req.NewPassword != req.ConfirmNewPassword {
		return apperr.New(apperr.Validation, "password confirmation does not match")
	}

	account, err := h.Svc.ResetPassword(c.Request().Context(), req.ResetToken, c.Param("id"), req.NewPassword)
	if err != nil {
		return err
	}
	return successResponse(c, account, "password updated")
}
