package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/planhive/backend/internal/models"
	"github.com/planhive/backend/pkg/invitecode"
	"gorm.io/gorm"
)

// GroupService owns group lifecycle, membership and group-level authorization.
type GroupService struct {
	DB *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{DB: db}
}

// GroupPatch enumerates the mutable group fields. Nil pointers leave a field
// untouched.
type GroupPatch struct {
	Name        *string
	Description *string
}

// Member is one row of a group member listing.
type Member struct {
	User     models.User `json:"user"`
	IsOwner  bool        `json:"isOwner"`
	JoinedAt string      `json:"joinedAt"`
}

// GroupStats counts a user's groups split by ownership.
type GroupStats struct {
	Total    int64 `json:"total"`
	Owned    int64 `json:"owned"`
	MemberOf int64 `json:"memberOf"`
}

// Create persists a group together with the owner's membership inside one
// transaction. The invite-code uniqueness check runs inside the same
// transaction and retries with a fresh code on collision, so two concurrent
// creations can never commit the same code.
func (s *GroupService) Create(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	group := models.Group{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for {
			code, err := invitecode.Generate()
			if err != nil {
				return err
			}

			var count int64
			if err := tx.Model(&models.Group{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			group.InviteCode = code
			break
		}

		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		membership := models.GroupMembership{
			GroupID: group.ID,
			UserID:  ownerID,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	return &group, nil
}

// JoinByInviteCode adds the user to the group behind the code. The lookup is
// case-insensitive; codes are stored uppercase.
func (s *GroupService) JoinByInviteCode(ctx context.Context, code string, userID uuid.UUID) (*models.Group, error) {
	normalized := invitecode.Normalize(code)
	if normalized == "" {
		return nil, fmt.Errorf("%w: invite code is required", ErrValidation)
	}

	var group models.Group
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&group, "invite_code = ?", normalized).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: unknown invite code", ErrNotFound)
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.GroupMembership{}).
			Where("group_id = ? AND user_id = ?", group.ID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyMember
		}

		membership := models.GroupMembership{
			GroupID: group.ID,
			UserID:  userID,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	return &group, nil
}

// Leave removes the user's membership. The owner can never leave this way;
// owners delete the group instead.
func (s *GroupService) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: group does not exist", ErrNotFound)
		}
		return err
	}

	if group.OwnerID == userID {
		return ErrOwnerCannotLeave
	}

	result := s.DB.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: not a member of this group", ErrNotFound)
	}
	return nil
}

// Delete removes a group and cascades memberships, appointments and the
// responses on those appointments. Only the owner may delete.
func (s *GroupService) Delete(ctx context.Context, groupID, userID uuid.UUID) error {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: group does not exist", ErrNotFound)
		}
		return err
	}

	if group.OwnerID != userID {
		return fmt.Errorf("%w: only the owner can delete a group", ErrNotAuthorized)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"appointment_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&models.Appointment{}).Select("id").Where("group_id = ?", groupID),
		).Delete(&models.AppointmentResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", groupID).Error
	})
}

// Update changes name and/or description. Only the owner may update.
func (s *GroupService) Update(ctx context.Context, groupID, userID uuid.UUID, patch GroupPatch) (*models.Group, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: group does not exist", ErrNotFound)
		}
		return nil, err
	}

	if group.OwnerID != userID {
		return nil, fmt.Errorf("%w: only the owner can update a group", ErrNotAuthorized)
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		updates["name"] = name
	}
	if patch.Description != nil {
		trimmed := strings.TrimSpace(*patch.Description)
		if trimmed == "" {
			updates["description"] = nil
		} else {
			updates["description"] = trimmed
		}
	}

	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	if err := s.DB.WithContext(ctx).Model(&group).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *GroupService) GetByID(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).Preload("Owner").First(&group, "id = ?", groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: group does not exist", ErrNotFound)
		}
		return nil, err
	}
	return &group, nil
}

func (s *GroupService) GetByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	var group models.Group
	err := s.DB.WithContext(ctx).Preload("Owner").
		First(&group, "invite_code = ?", invitecode.Normalize(code)).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: unknown invite code", ErrNotFound)
		}
		return nil, err
	}
	return &group, nil
}

// ListForUser returns every group the user belongs to, newest first.
func (s *GroupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	err := s.DB.WithContext(ctx).
		Model(&models.Group{}).
		Joins("JOIN group_memberships ON group_memberships.group_id = groups.id").
		Where("group_memberships.user_id = ?", userID).
		Order("groups.created_at DESC").
		Preload("Memberships").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ListMembers returns the members of a group, owner first, then by join date.
func (s *GroupService) ListMembers(ctx context.Context, groupID uuid.UUID) ([]Member, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: group does not exist", ErrNotFound)
		}
		return nil, err
	}

	var memberships []models.GroupMembership
	err := s.DB.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Preload("User").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(memberships))
	var owner *Member
	for _, m := range memberships {
		member := Member{
			User:     m.User,
			IsOwner:  m.UserID == group.OwnerID,
			JoinedAt: m.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if member.IsOwner {
			ownerCopy := member
			owner = &ownerCopy
			continue
		}
		members = append(members, member)
	}
	if owner != nil {
		members = append([]Member{*owner}, members...)
	}
	return members, nil
}

// IsMember reports whether the user belongs to the group.
func (s *GroupService) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// StatsForUser counts the groups a user belongs to, split by ownership.
func (s *GroupService) StatsForUser(ctx context.Context, userID uuid.UUID) (GroupStats, error) {
	var stats GroupStats
	err := s.DB.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Joins("JOIN groups ON groups.id = group_memberships.group_id").
		Where("group_memberships.user_id = ?", userID).
		Count(&stats.Total).Error
	if err != nil {
		return GroupStats{}, err
	}

	err = s.DB.WithContext(ctx).
		Model(&models.Group{}).
		Where("owner_id = ?", userID).
		Count(&stats.Owned).Error
	if err != nil {
		return GroupStats{}, err
	}

	stats.MemberOf = stats.Total - stats.Owned
	return stats, nil
}
