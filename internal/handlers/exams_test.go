package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/models"
)

func TestExamCreate(t *testing.T) {
	env := newTestEnv(t)
	h := &ExamHandler{DB: env.DB}
	owner := env.seedAccount(t, "alice", models.RoleUser)

	rec, c := env.doJSON(t, http.MethodPost, "/exams", map[string]string{
		"title":    "Algebra basics",
		"category": "math",
		"level":    "easy",
	})
	asAccount(c, owner)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var exam models.Exam
	decodeData(t, rec, &exam)
	assert.Equal(t, owner.ID, exam.AccountID)
	assert.False(t, exam.IsApproved)
}

func TestExamCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	h := &ExamHandler{DB: env.DB}
	owner := env.seedAccount(t, "bob", models.RoleUser)

	_, c := env.doJSON(t, http.MethodPost, "/exams", map[string]string{"category": "math"})
	asAccount(c, owner)
	err := h.Create(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, c = env.doJSON(t, http.MethodPost, "/exams", map[string]string{
		"title": "x",
		"level": "impossible",
	})
	asAccount(c, owner)
	err = h.Create(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestExamFindAll_Filters(t *testing.T) {
	env := newTestEnv(t)
	h := &ExamHandler{DB: env.DB}
	owner := env.seedAccount(t, "carol", models.RoleUser)

	env.seedExam(t, owner.ID, "Algebra")
	env.seedExam(t, owner.ID, "Geometry")
	other := env.seedExam(t, owner.ID, "History")
	require.NoError(t, env.DB.Model(other).Updates(map[string]any{"category": "history", "is_approved": true}).Error)

	rec, c := env.doJSON(t, http.MethodGet, "/exams?category=math", nil)
	require.NoError(t, h.FindAll(c))
	list := decodeEnvelope(t, rec)
	assert.Equal(t, int64(2), list.Count)

	rec, c = env.doJSON(t, http.MethodGet, "/exams?isApproved=true", nil)
	require.NoError(t, h.FindAll(c))
	list = decodeEnvelope(t, rec)
	assert.Equal(t, int64(1), list.Count)

	rec, c = env.doJSON(t, http.MethodGet, "/exams?title=Geo", nil)
	require.NoError(t, h.FindAll(c))
	list = decodeEnvelope(t, rec)
	assert.Equal(t, int64(1), list.Count)
}

func TestExamUpdate_Ownership(t *testing.T) {
	env := newTestEnv(t)
	h := &ExamHandler{DB: env.DB}
	owner := env.seedAccount(t, "dave", models.RoleUser)
	stranger := env.seedAccount(t, "mallory", models.RoleUser)
	moderator := env.seedAccount(t, "mod", models.RoleModerator)
	exam := env.seedExam(t, owner.ID, "Original title")

	_, c := env.doJSON(t, http.MethodPut, "/exams/"+exam.ID, map[string]string{"title": "Hijacked"})
	c.SetParamNames("id")
	c.SetParamValues(exam.ID)
	asAccount(c, stranger)
	requireForbidden(t, h.Update(c))

	rec, c := env.doJSON(t, http.MethodPut, "/exams/"+exam.ID, map[string]string{"title": "Moderated title"})
	c.SetParamNames("id")
	c.SetParamValues(exam.ID)
	asAccount(c, moderator)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestExamApprove(t *testing.T) {
	env := newTestEnv(t)
	h := &ExamHandler{DB: env.DB}
	owner := env.seedAccount(t, "erin", models.RoleUser)
	exam := env.seedExam(t, owner.ID, "Pending exam")

	rec, c := env.doJSON(t, http.MethodPatch, "/exams/"+exam.ID+"/approve", nil)
	c.SetParamNames("id")
	c.SetParamValues(exam.ID)
	require.NoError(t, h.Approve(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Exam
	require.NoError(t, env.DB.First(&stored, "id = ?", exam.ID).Error)
	assert.True(t, stored.IsApproved)
}

func TestExamDelete_NotFound(t *testing.T) {
	env := newTestEnv(t)
	h := &ExamHandler{DB: env.DB}
	admin := env.seedAccount(t, "root", models.RoleAdmin)

	_, c := env.doJSON(t, http.MethodDelete, "/exams/missing", nil)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	asAccount(c, admin)
	err := h.Delete(c)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestExamSearch_BackendNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	h := &ExamHandler{DB: env.DB}

	_, c := env.doJSON(t, http.MethodGet, "/exams/search?q=algebra", nil)
	err := h.Search(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))

	_, c = env.doJSON(t, http.MethodGet, "/exams/search", nil)
	err = h.Search(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}
