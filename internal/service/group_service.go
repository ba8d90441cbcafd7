// Package service implements the use cases exposed to the HTTP layer:
// managing groups, recording expenses, and answering balance and settlement
// queries. It owns validation and orchestration; the arithmetic lives in
// internal/calculator and persistence behind storage.Store.
package service

import (
	"context"
	"log/slog"

	"github.com/nkathuria/settleup/internal/models"
	"github.com/nkathuria/settleup/internal/storage"
)

// GroupService manages group rosters.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup validates and persists a new group roster.
func (s *GroupService) CreateGroup(ctx context.Context, name string, members []string) (*models.Group, error) {
	group := &models.Group{
		Name:    name,
		Members: members,
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}
