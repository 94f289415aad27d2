package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/models"
)

func seedQuestionWithAnswers(t *testing.T, env *testEnv) (*models.Question, []models.Answer) {
	t.Helper()

	owner := env.seedAccount(t, "seed_owner", models.RoleUser)
	exam := env.seedExam(t, owner.ID, "Seed exam")

	question := &models.Question{ExamID: exam.ID, Content: "pick one"}
	require.NoError(t, env.DB.Create(question).Error)

	answers := []models.Answer{
		{QuestionID: question.ID, Content: "a", IsCorrect: true},
		{QuestionID: question.ID, Content: "b"},
		{QuestionID: question.ID, Content: "c"},
	}
	require.NoError(t, env.DB.Create(&answers).Error)
	return question, answers
}

func TestAnswerMarkAsCorrect_Exclusive(t *testing.T) {
	env := newTestEnv(t)
	h := &AnswerHandler{DB: env.DB}
	question, answers := seedQuestionWithAnswers(t, env)

	rec, c := env.doJSON(t, http.MethodPatch, "/answers/"+answers[1].ID+"/correct", map[string]string{
		"questionId": question.ID,
	})
	c.SetParamNames("id")
	c.SetParamValues(answers[1].ID)
	require.NoError(t, h.MarkAsCorrect(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var correct []models.Answer
	require.NoError(t, env.DB.Where("question_id = ? AND is_correct = ?", question.ID, true).Find(&correct).Error)
	require.Len(t, correct, 1)
	assert.Equal(t, answers[1].ID, correct[0].ID)
}

func TestAnswerMarkAsCorrect_UnknownAnswer(t *testing.T) {
	env := newTestEnv(t)
	h := &AnswerHandler{DB: env.DB}
	question, answers := seedQuestionWithAnswers(t, env)

	_, c := env.doJSON(t, http.MethodPatch, "/answers/missing/correct", map[string]string{
		"questionId": question.ID,
	})
	c.SetParamNames("id")
	c.SetParamValues("missing")
	err := h.MarkAsCorrect(c)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	// the transaction rolled back, the original flag survives
	var stored models.Answer
	require.NoError(t, env.DB.First(&stored, "id = ?", answers[0].ID).Error)
	assert.True(t, stored.IsCorrect)
}

func TestAnswerCreateBulk_Validation(t *testing.T) {
	env := newTestEnv(t)
	h := &AnswerHandler{DB: env.DB}
	question, _ := seedQuestionWithAnswers(t, env)

	_, c := env.doJSON(t, http.MethodPost, "/answers/bulk", map[string]any{
		"answers": []map[string]any{
			{"questionId": question.ID, "content": "d"},
			{"questionId": question.ID},
		},
	})
	err := h.CreateBulk(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}
