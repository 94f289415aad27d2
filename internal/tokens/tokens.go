package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quizhub/quiz_platform/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrWrongPurpose = errors.New("token purpose mismatch")
)

const resetPurpose = "password_reset"

// AccessClaims carry the account id plus a snapshot of the mutable profile
// fields at issuance time. The session validator compares the snapshot to
// the current account row, so a role or profile change kills outstanding
// access tokens without a server-side revocation list.
type AccessClaims struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarURL,omitempty"`
	CreatedAt int64  `json:"accountCreatedAt"`
	jwt.RegisteredClaims
}

// Matches reports whether the snapshot still reflects the account.
func (c *AccessClaims) Matches(a *models.Account) bool {
	return c.Username == a.Username &&
		c.Email == a.Email &&
		c.Role == a.Role &&
		c.AvatarURL == a.AvatarURL &&
		c.CreatedAt == a.CreatedAt.Unix()
}

type RefreshClaims struct {
	jwt.RegisteredClaims
}

type ResetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Issuer is the only component that mints tokens. Secrets are loaded once
// at startup and are immutable afterwards.
type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

func (i *Issuer) IssueAccessToken(a *models.Account) (string, time.Time, error) {
	exp := time.Now().Add(i.AccessTTL)
	claims := AccessClaims{
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		AvatarURL: a.AvatarURL,
		CreatedAt: a.CreatedAt.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.AccessSecret)
	return signed, exp, err
}

func (i *Issuer) IssueRefreshToken(a *models.Account) (string, time.Time, error) {
	exp := time.Now().Add(i.RefreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.RefreshSecret)
	return signed, exp, err
}

// IssueResetToken mints a short-lived token usable only by the
// reset-password endpoint. It is signed with the access secret but scoped
// by an explicit purpose claim.
func (i *Issuer) IssueResetToken(accountID string) (string, time.Time, error) {
	exp := time.Now().Add(i.ResetTTL)
	claims := ResetClaims{
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.AccessSecret)
	return signed, exp, err
}

func (i *Issuer) ParseAccessToken(raw string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := parse(raw, &claims, i.AccessSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (i *Issuer) ParseRefreshToken(raw string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := parse(raw, &claims, i.RefreshSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (i *Issuer) ParseResetToken(raw string) (*ResetClaims, error) {
	var claims ResetClaims
	if err := parse(raw, &claims, i.AccessSecret); err != nil {
		return nil, err
	}
	if claims.Purpose != resetPurpose {
		return nil, ErrWrongPurpose
	}
	return &claims, nil
}

// parse distinguishes expiry from every other failure so callers can tell
// the client to refresh instead of re-login.
func parse(raw string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !tkn.Valid {
		return ErrInvalidToken
	}
	return nil
}
