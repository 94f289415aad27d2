package service

import (
	"context"
	"errors"
	"strings"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/hash"
	"github.com/quizhub/quiz_platform/internal/logging"
	"github.com/quizhub/quiz_platform/internal/models"
	"github.com/quizhub/quiz_platform/internal/repo"
	"github.com/quizhub/quiz_platform/internal/tokens"
)

// Login failures are reported with a single opaque message. Telling the
// caller whether the username or the password was wrong would let an
// attacker enumerate accounts.
var errInvalidCredentials = apperr.New(apperr.Authentication, "invalid username/email or password")

type AuthService struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
}

type LoginResult struct {
	Account      *models.Account
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type RefreshResult struct {
	Account     *models.Account
	AccessToken string
	ExpiresIn   int
}

type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	AvatarURL string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_failed", "reason", "hash", "error", err)
		return nil, apperr.Wrap(apperr.Internal, "cannot hash password", err)
	}

	if _, err := s.Repo.FindAccountByLogin(ctx, in.Username, in.Email); err == nil {
		l.Warn("register_failed", "reason", "duplicate")
		return nil, apperr.New(apperr.Validation, "username or email already in use")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}

	account := &models.Account{
		Email:        strings.ToLower(in.Email),
		Username:     in.Username,
		PasswordHash: pwHash,
		AvatarURL:    in.AvatarURL,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateAccount(ctx, account); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "cannot create account", err)
	}

	l.Info("account_registered", "accountID", account.ID)
	return account, nil
}

func (s *AuthService) Login(ctx context.Context, username, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	account, err := s.Repo.FindAccountByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "account not found")
			return nil, errInvalidCredentials
		}
		return nil, apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}

	if !hash.CheckPassword(account.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch", "accountID", account.ID)
		return nil, errInvalidCredentials
	}

	accessToken, _, err := s.Issuer.IssueAccessToken(account)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "cannot sign access token", err)
	}

	refreshToken, refreshExp, err := s.Issuer.IssueRefreshToken(account)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "cannot sign refresh token", err)
	}

	if _, err := s.Repo.StoreRefreshToken(ctx, account.ID, refreshToken, refreshExp); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "cannot store refresh token", err)
	}

	l.Info("login_successful", "accountID", account.ID)
	return &LoginResult{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.Issuer.AccessTTL.Seconds()),
	}, nil
}

// Refresh mints a new access token against a still-active ledger row. The
// refresh token itself is not rotated: the same token remains usable until
// its own expiry or an explicit logout. Two concurrent refreshes with the
// same token may both succeed; that is a documented property of this
// design, not a bug.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if _, err := s.Issuer.ParseRefreshToken(rawToken); err != nil {
		l.Warn("refresh_failed", "reason", "parse", "error", err)
		return nil, apperr.New(apperr.Authentication, "refresh token is invalid or expired")
	}

	row, err := s.Repo.FindActiveRefreshToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "reason", "not active")
			return nil, apperr.New(apperr.Authentication, "refresh token is invalid or expired")
		}
		return nil, apperr.Wrap(apperr.Internal, "refresh token lookup failed", err)
	}

	account, err := s.Repo.FindAccountByID(ctx, row.AccountID)
	if err != nil {
		l.Warn("refresh_failed", "reason", "account missing", "accountID", row.AccountID)
		return nil, apperr.New(apperr.Authentication, "refresh token is invalid or expired")
	}

	accessToken, _, err := s.Issuer.IssueAccessToken(account)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "cannot sign access token", err)
	}

	l.Info("token_refreshed", "accountID", account.ID)
	return &RefreshResult{
		Account:     account,
		AccessToken: accessToken,
		ExpiresIn:   int(s.Issuer.AccessTTL.Seconds()),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	affected, err := s.Repo.RevokeRefreshToken(ctx, rawToken)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot revoke refresh token", err)
	}
	if affected == 0 {
		l.Warn("logout_failed", "reason", "token not found active")
		return apperr.New(apperr.NotFound, "refresh token not found")
	}

	l.Info("logout_successful")
	return nil
}

// ChangePassword verifies the current password before rotating the
// credential and revoking every outstanding refresh token. A wrong old
// password changes nothing and revokes nothing.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "accountID", accountID)

	account, err := s.Repo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "account not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}

	if !hash.CheckPassword(account.PasswordHash, oldPassword) {
		l.Warn("change_password_failed", "reason", "old password mismatch")
		return nil, apperr.New(apperr.Validation, "old password is incorrect")
	}

	return s.rotatePassword(ctx, account, newPassword)
}

// ResetPassword is the forgot-password variant: possession of a valid
// purpose-scoped reset token replaces the old-password check.
func (s *AuthService) ResetPassword(ctx context.Context, rawResetToken, accountID, newPassword string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password", "accountID", accountID)

	claims, err := s.Issuer.ParseResetToken(rawResetToken)
	if err != nil {
		l.Warn("reset_password_failed", "reason", "token", "error", err)
		return nil, apperr.New(apperr.Authentication, "reset token is invalid or expired")
	}
	if claims.Subject != accountID {
		l.Warn("reset_password_failed", "reason", "subject mismatch")
		return nil, apperr.New(apperr.Authorization, "reset token does not belong to this account")
	}

	account, err := s.Repo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "account not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}

	return s.rotatePassword(ctx, account, newPassword)
}

// ForgotPasswordCheck confirms the account exists and hands out the
// short-lived reset token for the follow-up reset call.
func (s *AuthService) ForgotPasswordCheck(ctx context.Context, username, email string) (*models.Account, string, error) {
	account, err := s.Repo.FindAccountByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", apperr.New(apperr.NotFound, "account not found")
		}
		return nil, "", apperr.Wrap(apperr.Internal, "account lookup failed", err)
	}

	resetToken, _, err := s.Issuer.IssueResetToken(account.ID)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "cannot sign reset token", err)
	}
	return account, resetToken, nil
}

func (s *AuthService) rotatePassword(ctx context.Context, account *models.Account, newPassword string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "auth.rotate_password", "accountID", account.ID)

	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "cannot hash password", err)
	}

	if err := s.Repo.UpdatePassword(ctx, account.ID, newHash); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "cannot update password", err)
	}

	revoked, err := s.Repo.RevokeAllForAccount(ctx, account.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "cannot revoke refresh tokens", err)
	}

	account.PasswordHash = newHash
	l.Info("password_rotated", "revokedTokens", revoked)
	return account, nil
}
