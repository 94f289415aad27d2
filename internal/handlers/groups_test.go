package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/models"
)

func TestGroupCreate_OwnerAutoMembership(t *testing.T) {
	env := newTestEnv(t)
	h := &GroupHandler{DB: env.DB}
	owner := env.seedAccount(t, "alice", models.RoleUser)

	rec, c := env.doJSON(t, http.MethodPost, "/group_study", map[string]string{"groupName": "study-buddies"})
	asAccount(c, owner)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var group models.StudyGroup
	decodeData(t, rec, &group)
	assert.Equal(t, owner.ID, group.AccountID)

	var member models.GroupMember
	require.NoError(t, env.DB.Where("group_id = ? AND account_id = ?", group.ID, owner.ID).First(&member).Error)

	// duplicate name rejected
	_, c = env.doJSON(t, http.MethodPost, "/group_study", map[string]string{"groupName": "study-buddies"})
	asAccount(c, owner)
	err := h.Create(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestGroupTransferOwnership_TargetMustBeMember(t *testing.T) {
	env := newTestEnv(t)
	h := &GroupHandler{DB: env.DB}
	mh := &GroupMemberHandler{DB: env.DB}
	owner := env.seedAccount(t, "bob", models.RoleUser)
	outsider := env.seedAccount(t, "carol", models.RoleUser)

	rec, c := env.doJSON(t, http.MethodPost, "/group_study", map[string]string{"groupName": "transfer-test"})
	asAccount(c, owner)
	require.NoError(t, h.Create(c))
	var group models.StudyGroup
	decodeData(t, rec, &group)

	// target not a member yet
	_, c = env.doJSON(t, http.MethodPatch, "/group_study/"+group.ID+"/transfer", map[string]string{
		"newAccountId": outsider.ID,
	})
	c.SetParamNames("id")
	c.SetParamValues(group.ID)
	asAccount(c, owner)
	err := h.TransferOwnership(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	// enroll and retry
	_, c = env.doJSON(t, http.MethodPost, "/group_members", map[string]string{
		"groupId":   group.ID,
		"accountId": outsider.ID,
	})
	asAccount(c, owner)
	require.NoError(t, mh.AddMember(c))

	rec, c = env.doJSON(t, http.MethodPatch, "/group_study/"+group.ID+"/transfer", map[string]string{
		"newAccountId": outsider.ID,
	})
	c.SetParamNames("id")
	c.SetParamValues(group.ID)
	asAccount(c, owner)
	require.NoError(t, h.TransferOwnership(c))

	var stored models.StudyGroup
	require.NoError(t, env.DB.First(&stored, "id = ?", group.ID).Error)
	assert.Equal(t, outsider.ID, stored.AccountID)
}

func TestGroupDelete_CleansUpMembers(t *testing.T) {
	env := newTestEnv(t)
	h := &GroupHandler{DB: env.DB}
	owner := env.seedAccount(t, "dave", models.RoleUser)

	rec, c := env.doJSON(t, http.MethodPost, "/group_study", map[string]string{"groupName": "doomed"})
	asAccount(c, owner)
	require.NoError(t, h.Create(c))
	var group models.StudyGroup
	decodeData(t, rec, &group)

	_, c = env.doJSON(t, http.MethodDelete, "/group_study/"+group.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(group.ID)
	asAccount(c, owner)
	require.NoError(t, h.Delete(c))

	var members int64
	require.NoError(t, env.DB.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&members).Error)
	assert.Equal(t, int64(0), members)
}

func TestGroupMember_AddCheckRemove(t *testing.T) {
	env := newTestEnv(t)
	gh := &GroupHandler{DB: env.DB}
	h := &GroupMemberHandler{DB: env.DB}
	owner := env.seedAccount(t, "erin", models.RoleUser)
	member := env.seedAccount(t, "frank", models.RoleUser)

	rec, c := env.doJSON(t, http.MethodPost, "/group_study", map[string]string{"groupName": "membership"})
	asAccount(c, owner)
	require.NoError(t, gh.Create(c))
	var group models.StudyGroup
	decodeData(t, rec, &group)

	_, c = env.doJSON(t, http.MethodPost, "/group_members", map[string]string{
		"groupId":   group.ID,
		"accountId": member.ID,
	})
	asAccount(c, owner)
	require.NoError(t, h.AddMember(c))

	// duplicate enrollment rejected
	_, c = env.doJSON(t, http.MethodPost, "/group_members", map[string]string{
		"groupId":   group.ID,
		"accountId": member.ID,
	})
	asAccount(c, owner)
	err := h.AddMember(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	rec, c = env.doJSON(t, http.MethodGet, "/group_members/group/"+group.ID+"/account/"+member.ID, nil)
	c.SetParamNames("groupId", "accountId")
	c.SetParamValues(group.ID, member.ID)
	require.NoError(t, h.CheckMembership(c))
	var check struct {
		IsMember bool `json:"isMember"`
	}
	decodeData(t, rec, &check)
	assert.True(t, check.IsMember)

	// a stranger cannot remove someone else
	stranger := env.seedAccount(t, "mallory", models.RoleUser)
	_, c = env.doJSON(t, http.MethodDelete, "/group_members/group/"+group.ID+"/account/"+member.ID, nil)
	c.SetParamNames("groupId", "accountId")
	c.SetParamValues(group.ID, member.ID)
	asAccount(c, stranger)
	err = h.RemoveMember(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Authorization, apperr.KindOf(err))

	// self-removal works
	_, c = env.doJSON(t, http.MethodDelete, "/group_members/group/"+group.ID+"/account/"+member.ID, nil)
	c.SetParamNames("groupId", "accountId")
	c.SetParamValues(group.ID, member.ID)
	asAccount(c, member)
	require.NoError(t, h.RemoveMember(c))
}

func TestGroupMember_OwnerCannotBeRemoved(t *testing.T) {
	env := newTestEnv(t)
	gh := &GroupHandler{DB: env.DB}
	h := &GroupMemberHandler{DB: env.DB}
	owner := env.seedAccount(t, "gina", models.RoleUser)

	rec, c := env.doJSON(t, http.MethodPost, "/group_study", map[string]string{"groupName": "owner-lock"})
	asAccount(c, owner)
	require.NoError(t, gh.Create(c))
	var group models.StudyGroup
	decodeData(t, rec, &group)

	_, c = env.doJSON(t, http.MethodDelete, "/group_members/group/"+group.ID+"/account/"+owner.ID, nil)
	c.SetParamNames("groupId", "accountId")
	c.SetParamValues(group.ID, owner.ID)
	asAccount(c, owner)
	err := h.RemoveMember(c)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestGroupMember_CountAndMemberGroups(t *testing.T) {
	env := newTestEnv(t)
	gh := &GroupHandler{DB: env.DB}
	h := &GroupMemberHandler{DB: env.DB}
	owner := env.seedAccount(t, "henry", models.RoleUser)

	rec, c := env.doJSON(t, http.MethodPost, "/group_study", map[string]string{"groupName": "counters"})
	asAccount(c, owner)
	require.NoError(t, gh.Create(c))
	var group models.StudyGroup
	decodeData(t, rec, &group)

	rec, c = env.doJSON(t, http.MethodGet, "/group_members/group/"+group.ID+"/count", nil)
	c.SetParamNames("groupId")
	c.SetParamValues(group.ID)
	require.NoError(t, h.CountGroupMembers(c))
	var count struct {
		MemberCount int64 `json:"memberCount"`
	}
	decodeData(t, rec, &count)
	assert.Equal(t, int64(1), count.MemberCount)

	rec, c = env.doJSON(t, http.MethodGet, "/group_members/account/"+owner.ID, nil)
	c.SetParamNames("accountId")
	c.SetParamValues(owner.ID)
	require.NoError(t, h.GetMemberGroups(c))
	list := decodeEnvelope(t, rec)
	assert.Equal(t, int64(1), list.Count)
}
