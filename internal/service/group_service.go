package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/storage"
)

// GroupService manages reusable friend groups. Groups are a convenience
// for pre-filling participants on a new bill; they carry no money state.
type GroupService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewGroupService creates a group service backed by the given store.
func NewGroupService(store storage.Store, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, logger: logger}
}

// CreateGroup creates a named group with its member list.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID, name string, memberNames []string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrValidation)
	}
	if len(memberNames) == 0 {
		return nil, fmt.Errorf("%w: a group needs at least one member", ErrValidation)
	}

	members := make([]models.GroupMember, len(memberNames))
	for i, n := range memberNames {
		if n == "" {
			return nil, fmt.Errorf("%w: member name is required", ErrValidation)
		}
		members[i] = models.GroupMember{DisplayName: n}
	}

	group := &models.Group{
		Name:      name,
		CreatorID: creatorID,
		Members:   members,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	s.logger.Info("Group created", "group_id", group.ID, "members", len(members))
	return group, nil
}

// GetGroup returns a group. Creator only.
func (s *GroupService) GetGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatorID != userID {
		return nil, ErrForbidden
	}
	return group, nil
}

// ListGroups returns the user's groups, oldest first.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]models.Group, error) {
	return s.store.ListGroupsByCreator(ctx, userID)
}

// DeleteGroup removes a group and its members. Creator only.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, userID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatorID != userID {
		return ErrForbidden
	}
	return s.store.DeleteGroup(ctx, groupID)
}
