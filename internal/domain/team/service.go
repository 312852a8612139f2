package team

import (
	"context"
	"strings"
)

// StoreAPI is the persistence surface the service needs; the pgx-backed
// Store implements it.
type StoreAPI interface {
	ListMembers(ctx context.Context, managerID string) ([]Member, error)
	GetMember(ctx context.Context, managerID, memberID string) (Member, error)
	UpdateMember(ctx context.Context, managerID string, member Member) error
	ListRoles(ctx context.Context, managerID string) ([]Role, error)
	MemberIDsByCustomRole(ctx context.Context, managerID, roleName string) ([]string, error)
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Members(ctx context.Context, managerID string) ([]Member, error) {
	return s.store.ListMembers(ctx, managerID)
}

func (s *Service) UpdateMember(ctx context.Context, managerID, memberID string, patch MemberPatch) (Member, error) {
	member, err := s.store.GetMember(ctx, managerID, memberID)
	if err != nil {
		return Member{}, err
	}
	if patch.JobTitle != nil {
		member.JobTitle = strings.TrimSpace(*patch.JobTitle)
	}
	if patch.CustomRole != nil {
		member.CustomRole = strings.TrimSpace(*patch.CustomRole)
	}
	if patch.IsActive != nil {
		member.IsActive = *patch.IsActive
	}
	if err := s.store.UpdateMember(ctx, managerID, member); err != nil {
		return Member{}, err
	}
	return member, nil
}

func (s *Service) Roles(ctx context.Context, managerID string) ([]Role, error) {
	return s.store.ListRoles(ctx, managerID)
}

// MemberIDsByCustomRole satisfies goals.Directory for role-based
// assignment.
func (s *Service) MemberIDsByCustomRole(ctx context.Context, managerID, roleName string) ([]string, error) {
	return s.store.MemberIDsByCustomRole(ctx, managerID, roleName)
}
