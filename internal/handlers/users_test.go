package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/models"
)

func TestUserProfileCreate(t *testing.T) {
	env := newTestEnv(t)
	h := &UserHandler{DB: env.DB}
	account := env.seedAccount(t, "alice", models.RoleUser)

	rec, c := env.doJSON(t, http.MethodPost, "/users", map[string]string{
		"accountId":   account.ID,
		"fullName":    "Alice Smith",
		"dateOfBirth": "1995-04-02",
		"gender":      "female",
	})
	asAccount(c, account)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var profile models.User
	decodeData(t, rec, &profile)
	assert.Equal(t, account.ID, profile.AccountID)
	require.NotNil(t, profile.DateOfBirth)

	// one profile per account
	_, c = env.doJSON(t, http.MethodPost, "/users", map[string]string{
		"accountId": account.ID,
		"fullName":  "Alice Again",
	})
	asAccount(c, account)
	err := h.Create(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestUserProfileCreate_UnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	h := &UserHandler{DB: env.DB}
	admin := env.seedAccount(t, "root", models.RoleAdmin)

	_, c := env.doJSON(t, http.MethodPost, "/users", map[string]string{
		"accountId": "missing",
		"fullName":  "Ghost",
	})
	asAccount(c, admin)
	err := h.Create(c)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestUserProfileCreate_BadDateFormat(t *testing.T) {
	env := newTestEnv(t)
	h := &UserHandler{DB: env.DB}
	account := env.seedAccount(t, "bob", models.RoleUser)

	_, c := env.doJSON(t, http.MethodPost, "/users", map[string]string{
		"accountId":   account.ID,
		"fullName":    "Bob",
		"dateOfBirth": "02/04/1995",
	})
	asAccount(c, account)
	err := h.Create(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestUserProfileGetByID_FallsBackToAccountID(t *testing.T) {
	env := newTestEnv(t)
	h := &UserHandler{DB: env.DB}
	account := env.seedAccount(t, "carol", models.RoleUser)

	profile := &models.User{AccountID: account.ID, FullName: "Carol"}
	require.NoError(t, env.DB.Create(profile).Error)

	// lookup by profile id
	rec, c := env.doJSON(t, http.MethodGet, "/users/"+profile.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(profile.ID)
	require.NoError(t, h.GetByID(c))
	var found models.User
	decodeData(t, rec, &found)
	assert.Equal(t, profile.ID, found.ID)

	// lookup by account id resolves the same profile
	rec, c = env.doJSON(t, http.MethodGet, "/users/"+account.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(account.ID)
	require.NoError(t, h.GetByID(c))
	decodeData(t, rec, &found)
	assert.Equal(t, profile.ID, found.ID)
}

func TestUserProfileUpdate_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	h := &UserHandler{DB: env.DB}
	account := env.seedAccount(t, "dave", models.RoleUser)
	stranger := env.seedAccount(t, "mallory", models.RoleUser)

	profile := &models.User{AccountID: account.ID, FullName: "Dave"}
	require.NoError(t, env.DB.Create(profile).Error)

	_, c := env.doJSON(t, http.MethodPut, "/users/"+profile.ID, map[string]string{"fullName": "Hacked"})
	c.SetParamNames("id")
	c.SetParamValues(profile.ID)
	asAccount(c, stranger)
	requireForbidden(t, h.Update(c))
}

func TestAdminCreateAndGetByAccount(t *testing.T) {
	env := newTestEnv(t)
	h := &AdminHandler{DB: env.DB}
	account := env.seedAccount(t, "erin", models.RoleAdmin)

	rec, c := env.doJSON(t, http.MethodPost, "/admins", map[string]string{"accountId": account.ID})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var admin models.Admin
	decodeData(t, rec, &admin)
	assert.Equal(t, 1, admin.PermissionLevel)

	// duplicate admin record rejected
	_, c = env.doJSON(t, http.MethodPost, "/admins", map[string]string{"accountId": account.ID})
	err := h.Create(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	rec, c = env.doJSON(t, http.MethodGet, "/admins/account/"+account.ID, nil)
	c.SetParamNames("accountId")
	c.SetParamValues(account.ID)
	require.NoError(t, h.GetByAccountID(c))
	var found models.Admin
	decodeData(t, rec, &found)
	assert.Equal(t, admin.ID, found.ID)
}

func TestAdminUpdatePermissionLevel(t *testing.T) {
	env := newTestEnv(t)
	h := &AdminHandler{DB: env.DB}
	account := env.seedAccount(t, "frank", models.RoleAdmin)

	admin := &models.Admin{AccountID: account.ID, PermissionLevel: 1}
	require.NoError(t, env.DB.Create(admin).Error)

	rec, c := env.doJSON(t, http.MethodPut, "/admins/"+admin.ID, map[string]int{"permissionLevel": 3})
	c.SetParamNames("id")
	c.SetParamValues(admin.ID)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Admin
	require.NoError(t, env.DB.First(&stored, "id = ?", admin.ID).Error)
	assert.Equal(t, 3, stored.PermissionLevel)
}
