package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/middleware"
	"github.com/quizhub/quiz_platform/internal/models"
	"github.com/quizhub/quiz_platform/internal/repo"
	"github.com/quizhub/quiz_platform/internal/service"
	"github.com/quizhub/quiz_platform/internal/tokens"
)

type testEnv struct {
	DB  *gorm.DB
	Svc *service.AuthService
	e   *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	svc := &service.AuthService{
		Repo: &repo.GormRepo{DB: db},
		Issuer: &tokens.Issuer{
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			ResetTTL:      10 * time.Minute,
		},
	}

	return &testEnv{DB: db, Svc: svc, e: echo.New()}
}

// seedAccount creates an account directly and reloads it so database
// defaults and timestamps are populated.
func (env *testEnv) seedAccount(t *testing.T, username, role string) *models.Account {
	t.Helper()

	account := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, env.DB.Create(account).Error)
	require.NoError(t, env.DB.First(account, "id = ?", account.ID).Error)
	return account
}

func (env *testEnv) seedExam(t *testing.T, ownerID, title string) *models.Exam {
	t.Helper()

	exam := &models.Exam{
		Title:     title,
		Category:  "math",
		Level:     "easy",
		AccountID: ownerID,
	}
	require.NoError(t, env.DB.Create(exam).Error)
	return exam
}

// doJSON builds an echo context carrying a JSON body; the caller invokes
// the handler directly, matching how the routes dispatch.
func (env *testEnv) doJSON(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.e.NewContext(req, rec)
}

// asAccount marks the context as an authenticated session for account.
func asAccount(c echo.Context, account *models.Account) {
	c.Set(middleware.AccountContextKey, account)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   int64           `json:"count"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) envelope {
	t.Helper()

	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, out))
	return env
}

// requireForbidden asserts the handler rejected the call with 403.
func requireForbidden(t *testing.T, err error) {
	t.Helper()

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusForbidden, he.Code)
}
