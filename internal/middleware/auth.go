package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quizhub/quiz_platform/internal/models"
	"github.com/quizhub/quiz_platform/internal/repo"
	"github.com/quizhub/quiz_platform/internal/tokens"
)

// AccountContextKey is where RequireAuth stores the loaded account.
const AccountContextKey = "account"

type Auth struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
}

func NewAuth(r *repo.GormRepo, issuer *tokens.Issuer) *Auth {
	return &Auth{Repo: r, Issuer: issuer}
}

// RequireAuth validates the bearer access token and attaches the current
// account to the context. The snapshot embedded in the token must match
// the persisted account field for field; any drift (role change, profile
// update) rejects the token even before its nominal expiry. The expired
// case gets its own message so clients know to refresh instead of
// re-logging in.
func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := bearerToken(c)
		if err != nil {
			return err
		}

		claims, err := m.Issuer.ParseAccessToken(raw)
		if err != nil {
			if errors.Is(err, tokens.ErrExpiredToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, "access token expired, use the refresh token")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "access token is invalid")
		}

		account, err := m.Repo.FindAccountByID(c.Request().Context(), claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
		}

		if !claims.Matches(account) {
			return echo.NewHTTPError(http.StatusUnauthorized, "access token is stale, please re-authenticate")
		}

		c.Set(AccountContextKey, account)
		return next(c)
	}
}

// RequireRole gates a route on the validated account's role.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account := AccountFromContext(c)
			if account == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, role := range roles {
				if account.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

// OwnerOrRole passes when the caller owns the resource or holds one of
// the listed roles. Pure check on already-validated session state.
func OwnerOrRole(c echo.Context, ownerID string, roles ...string) error {
	account := AccountFromContext(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if account.ID == ownerID {
		return nil
	}
	for _, role := range roles {
		if account.Role == role {
			return nil
		}
	}
	return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to access this resource")
}

func AccountFromContext(c echo.Context) *models.Account {
	if v, ok := c.Get(AccountContextKey).(*models.Account); ok {
		return v
	}
	return nil
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authorization header must use the Bearer scheme")
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	return raw, nil
}
