package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"goalspark/internal/platform/querier"
)

var ErrMemberNotFound = errors.New("team member not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const memberColumns = `id, email, first_name, last_name, job_title, custom_role, is_active, created_at, last_login`

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(
		&m.ID,
		&m.Email,
		&m.FirstName,
		&m.LastName,
		&m.JobTitle,
		&m.CustomRole,
		&m.IsActive,
		&m.CreatedAt,
		&m.LastLogin,
	)
	if err != nil {
		return Member{}, err
	}
	return m, nil
}

func (s *Store) ListMembers(ctx context.Context, managerID string) ([]Member, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+memberColumns+`
		FROM users
		WHERE manager_id = $1
		ORDER BY first_name, last_name`,
		managerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) GetMember(ctx context.Context, managerID, memberID string) (Member, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM users
		WHERE id = $1 AND manager_id = $2`,
		memberID, managerID,
	)
	m, err := scanMember(row)
	if err == pgx.ErrNoRows {
		return Member{}, ErrMemberNotFound
	}
	if err != nil {
		return Member{}, fmt.Errorf("get team member: %w", err)
	}
	return m, nil
}

func (s *Store) UpdateMember(ctx context.Context, managerID string, member Member) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE users
		SET job_title = $1, custom_role = $2, is_active = $3
		WHERE id = $4 AND manager_id = $5`,
		member.JobTitle, member.CustomRole, member.IsActive, member.ID, managerID,
	)
	if err != nil {
		return fmt.Errorf("update team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, managerID string) ([]Role, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT custom_role, count(*)
		FROM users
		WHERE manager_id = $1 AND custom_role <> '' AND is_active
		GROUP BY custom_role
		ORDER BY custom_role`,
		managerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := []Role{}
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.Name, &r.MemberCount); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (s *Store) MemberIDsByCustomRole(ctx context.Context, managerID, roleName string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id FROM users
		WHERE manager_id = $1 AND custom_role = $2 AND is_active`,
		managerID, roleName,
	)
	if err != nil {
		return nil, fmt.Errorf("list role members: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan role member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
