package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quiz_platform/internal/models"
)

func testIssuer() *Issuer {
	return &Issuer{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      10 * time.Minute,
	}
}

func testAccount() *models.Account {
	return &models.Account{
		ID:        "acc-1",
		Username:  "test_user",
		Email:     "test@example.com",
		Role:      models.RoleUser,
		AvatarURL: "https://cdn.example.com/a.png",
		CreatedAt: time.Unix(1700000000, 0),
	}
}

func TestIssueAccessToken_CarriesSnapshot(t *testing.T) {
	issuer := testIssuer()
	account := testAccount()

	raw, exp, err := issuer.IssueAccessToken(account)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := issuer.ParseAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.Subject)
	assert.Equal(t, account.Username, claims.Username)
	assert.Equal(t, account.Email, claims.Email)
	assert.Equal(t, account.Role, claims.Role)
	assert.Equal(t, account.AvatarURL, claims.AvatarURL)
	assert.Equal(t, account.CreatedAt.Unix(), claims.CreatedAt)
	assert.True(t, claims.Matches(account))
}

func TestAccessClaims_Matches_DetectsDrift(t *testing.T) {
	issuer := testIssuer()
	account := testAccount()

	raw, _, err := issuer.IssueAccessToken(account)
	require.NoError(t, err)
	claims, err := issuer.ParseAccessToken(raw)
	require.NoError(t, err)

	changed := *account
	changed.Role = models.RoleModerator
	assert.False(t, claims.Matches(&changed))

	changed = *account
	changed.Email = "other@example.com"
	assert.False(t, claims.Matches(&changed))

	changed = *account
	changed.AvatarURL = ""
	assert.False(t, claims.Matches(&changed))
}

func TestParseAccessToken_Expired(t *testing.T) {
	issuer := testIssuer()
	issuer.AccessTTL = -time.Minute

	raw, _, err := issuer.IssueAccessToken(testAccount())
	require.NoError(t, err)

	_, err = issuer.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	issuer := testIssuer()
	raw, _, err := issuer.IssueAccessToken(testAccount())
	require.NoError(t, err)

	other := testIssuer()
	other.AccessSecret = []byte("a-different-secret")
	_, err = other.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken_UniquePerIssue(t *testing.T) {
	issuer := testIssuer()
	account := testAccount()

	first, _, err := issuer.IssueRefreshToken(account)
	require.NoError(t, err)
	second, _, err := issuer.IssueRefreshToken(account)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := issuer.ParseRefreshToken(first)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshToken_NotValidAsAccessToken(t *testing.T) {
	issuer := testIssuer()
	raw, _, err := issuer.IssueRefreshToken(testAccount())
	require.NoError(t, err)

	_, err = issuer.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetToken_PurposeScoped(t *testing.T) {
	issuer := testIssuer()

	raw, _, err := issuer.IssueResetToken("acc-1")
	require.NoError(t, err)

	claims, err := issuer.ParseResetToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.Subject)

	// An access token must not pass as a reset token even though both are
	// signed with the same secret.
	access, _, err := issuer.IssueAccessToken(testAccount())
	require.NoError(t, err)
	_, err = issuer.ParseResetToken(access)
	assert.ErrorIs(t, err, ErrWrongPurpose)
}
