package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/apperr"
	"github.com/quizhub/quiz_platform/internal/middleware"
	"github.com/quizhub/quiz_platform/internal/models"
)

type GroupMemberHandler struct {
	DB *gorm.DB
}

func (h *GroupMemberHandler) findGroup(c echo.Context, groupID string) (*models.StudyGroup, error) {
	var group models.StudyGroup
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "group not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "group lookup failed", err)
	}
	return &group, nil
}

func (h *GroupMemberHandler) AddMember(c echo.Context) error {
	var req struct {
		GroupID   string `json:"groupId"`
		AccountID string `json:"accountId"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}
	if req.GroupID == "" || req.AccountID == "" {
		return apperr.New(apperr.Validation, "groupId and accountId are required")
	}

	if _, err := h.findGroup(c, req.GroupID); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var existing models.GroupMember
	err := h.DB.WithContext(ctx).
		Where("group_id = ? AND account_id = ?", req.GroupID, req.AccountID).
		First(&existing).Error
	if err == nil {
		return apperr.New(apperr.Validation, "account is already a member of this group")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.Internal, "membership lookup failed", err)
	}

	member := models.GroupMember{GroupID: req.GroupID, AccountID: req.AccountID}
	if err := h.DB.WithContext(ctx).Create(&member).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "cannot add member", err)
	}
	return successResponse(c, member, "member added", http.StatusCreated)
}

func (h *GroupMemberHandler) GetGroupMembers(c echo.Context) error {
	groupID := c.Param("groupId")
	if _, err := h.findGroup(c, groupID); err != nil {
		return err
	}

	var members []models.GroupMember
	err := h.DB.WithContext(c.Request().Context()).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list members", err)
	}
	return listResponse(c, members, int64(len(members)))
}

func (h *GroupMemberHandler) CheckMembership(c echo.Context) error {
	groupID, accountID := c.Param("groupId"), c.Param("accountId")
	if _, err := h.findGroup(c, groupID); err != nil {
		return err
	}

	var member models.GroupMember
	err := h.DB.WithContext(c.Request().Context()).
		Where("group_id = ? AND account_id = ?", groupID, accountID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return successResponse(c, echo.Map{"isMember": false}, "")
		}
		return apperr.Wrap(apperr.Internal, "membership lookup failed", err)
	}
	return successResponse(c, echo.Map{"isMember": true, "joinedAt": member.JoinedAt}, "")
}

func (h *GroupMemberHandler) GetMemberGroups(c echo.Context) error {
	accountID := c.Param("accountId")

	var groups []models.StudyGroup
	err := h.DB.WithContext(c.Request().Context()).
		Joins("JOIN group_members ON group_members.group_id = group_study.id").
		Where("group_members.account_id = ?", accountID).
		Find(&groups).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot list groups", err)
	}
	return listResponse(c, groups, int64(len(groups)))
}

// RemoveMember drops a member from the group. The owner cannot be
// removed; ownership has to be transferred first. Members may remove
// themselves; otherwise owner or admin rights are required.
func (h *GroupMemberHandler) RemoveMember(c echo.Context) error {
	groupID, accountID := c.Param("groupId"), c.Param("accountId")
	group, err := h.findGroup(c, groupID)
	if err != nil {
		return err
	}

	caller := middleware.AccountFromContext(c)
	if caller == nil || (caller.ID != accountID && caller.ID != group.AccountID && caller.Role != models.RoleAdmin) {
		return apperr.New(apperr.Authorization, "you do not have permission to remove this member")
	}
	if group.AccountID == accountID {
		return apperr.New(apperr.Validation, "cannot remove the group owner, transfer ownership first")
	}

	result := h.DB.WithContext(c.Request().Context()).
		Where("group_id = ? AND account_id = ?", groupID, accountID).
		Delete(&models.GroupMember{})
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "cannot remove member", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "member not found in group")
	}
	return successResponse(c, nil, "member removed")
}

func (h *GroupMemberHandler) CountGroupMembers(c echo.Context) error {
	groupID := c.Param("groupId")
	if _, err := h.findGroup(c, groupID); err != nil {
		return err
	}

	var count int64
	err := h.DB.WithContext(c.Request().Context()).Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	if err != nil {
		return apperr.Wrap(apperr.Internal, "cannot count members", err)
	}
	return successResponse(c, echo.Map{"groupId": groupID, "memberCount": count}, "")
}
