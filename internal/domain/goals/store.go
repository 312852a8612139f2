package goals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const goalColumns = `
  g.id, g.title, g.description, g.goal_type, g.comparison, g.target_value,
  g.current_value, g.unit, g.cycle_type, g.start_date, g.end_date, g.status,
  g.assigned_by, g.assigned_role, g.is_active, g.created_at, g.last_updated,
  ARRAY(SELECT ga.user_id::text FROM goal_assignees ga WHERE ga.goal_id = g.id ORDER BY ga.user_id),
  COALESCE(lc.comment, ''), COALESCE(lc.user_name, ''), lc.created_at`

const latestCommentJoin = `
  LEFT JOIN LATERAL (
    SELECT pu.comment, u.first_name || ' ' || u.last_name AS user_name, pu.created_at
    FROM progress_updates pu
    JOIN users u ON u.id = pu.user_id
    WHERE pu.goal_id = g.id AND pu.comment <> ''
    ORDER BY pu.created_at DESC
    LIMIT 1
  ) lc ON true`

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	err := row.Scan(
		&g.ID, &g.Title, &g.Description, &g.GoalType, &g.Comparison, &g.TargetValue,
		&g.CurrentValue, &g.Unit, &g.CycleType, &g.StartDate, &g.EndDate, &g.Status,
		&g.AssignedBy, &g.AssignedRole, &g.IsActive, &g.CreatedAt, &g.LastUpdated,
		&g.AssignedTo, &g.LatestComment, &g.LatestCommentUser, &g.LatestCommentTimestamp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, ErrNotFound
	}
	if err != nil {
		return Goal{}, err
	}
	// Derived, never stored: keep the percentage consistent with whatever
	// current/target the row holds right now.
	g.ProgressPercentage = ProgressPercent(g.Comparison, g.TargetValue, g.CurrentValue)
	return g, nil
}

func (s *Store) Create(ctx context.Context, goal Goal) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO goals (title, description, goal_type, comparison, target_value, current_value,
                       unit, cycle_type, start_date, end_date, status, assigned_by, assigned_role)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING id
  `, goal.Title, goal.Description, goal.GoalType, goal.Comparison, goal.TargetValue, goal.CurrentValue,
		goal.Unit, goal.CycleType, goal.StartDate, goal.EndDate, goal.Status, goal.AssignedBy, goal.AssignedRole).Scan(&id)
	if err != nil {
		return "", err
	}

	for _, userID := range goal.AssignedTo {
		if _, err := tx.Exec(ctx, `
      INSERT INTO goal_assignees (goal_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING
    `, id, userID); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, goalID string) (Goal, error) {
	return scanGoal(s.DB.QueryRow(ctx, `
    SELECT `+goalColumns+`
    FROM goals g`+latestCommentJoin+`
    WHERE g.id = $1
  `, goalID))
}

func (s *Store) ListForAssignee(ctx context.Context, userID, statusFilter string) ([]Goal, error) {
	query := `
    SELECT ` + goalColumns + `
    FROM goals g` + latestCommentJoin + `
    WHERE g.is_active
      AND EXISTS (SELECT 1 FROM goal_assignees ga WHERE ga.goal_id = g.id AND ga.user_id = $1)`
	args := []any{userID}
	if statusFilter != "" {
		query += fmt.Sprintf(" AND g.status = $%d", len(args)+1)
		args = append(args, statusFilter)
	}
	query += " ORDER BY g.created_at DESC"
	return s.listGoals(ctx, query, args)
}

// ListForManager returns goals the manager created plus goals assigned to
// anyone on the manager's team.
func (s *Store) ListForManager(ctx context.Context, managerID, statusFilter string) ([]Goal, error) {
	query := `
    SELECT ` + goalColumns + `
    FROM goals g` + latestCommentJoin + `
    WHERE g.is_active
      AND (g.assigned_by = $1 OR EXISTS (
        SELECT 1
        FROM goal_assignees ga
        JOIN users u ON u.id = ga.user_id
        WHERE ga.goal_id = g.id AND (u.manager_id = $1 OR u.id = $1)
      ))`
	args := []any{managerID}
	if statusFilter != "" {
		query += fmt.Sprintf(" AND g.status = $%d", len(args)+1)
		args = append(args, statusFilter)
	}
	query += " ORDER BY g.created_at DESC"
	return s.listGoals(ctx, query, args)
}

func (s *Store) listGoals(ctx context.Context, query string, args []any) ([]Goal, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, goal Goal) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET title = $1, description = $2, target_value = $3, unit = $4,
        end_date = $5, is_active = $6, last_updated = now()
    WHERE id = $7
  `, goal.Title, goal.Description, goal.TargetValue, goal.Unit, goal.EndDate, goal.IsActive, goal.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyProgress records the entry and moves the goal's current value and
// status in one transaction, so a progress row never exists without the
// matching goal update.
func (s *Store) ApplyProgress(ctx context.Context, entry ProgressEntry) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO progress_updates (goal_id, user_id, previous_value, new_value, status, comment)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, entry.GoalID, entry.UserID, entry.PreviousValue, entry.NewValue, entry.Status, entry.Comment).Scan(&id)
	if err != nil {
		return "", err
	}

	tag, err := tx.Exec(ctx, `
    UPDATE goals SET current_value = $1, status = $2, last_updated = now() WHERE id = $3
  `, entry.NewValue, entry.Status, entry.GoalID)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return "", ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListProgress(ctx context.Context, goalID string, limit int) ([]ProgressEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT pu.id, pu.goal_id, pu.user_id, u.first_name || ' ' || u.last_name,
           pu.previous_value, pu.new_value, pu.status, pu.comment, pu.created_at
    FROM progress_updates pu
    JOIN users u ON u.id = pu.user_id
    WHERE pu.goal_id = $1
    ORDER BY pu.created_at DESC, pu.id DESC
    LIMIT $2
  `, goalID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProgressEntry
	for rows.Next() {
		var e ProgressEntry
		if err := rows.Scan(&e.ID, &e.GoalID, &e.UserID, &e.UserName, &e.PreviousValue, &e.NewValue, &e.Status, &e.Comment, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) MissingUsers(ctx context.Context, userIDs []string) ([]string, error) {
	var missing []string
	for _, userID := range userIDs {
		var count int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE id = $1 AND is_active", userID).Scan(&count); err != nil {
			return nil, err
		}
		if count == 0 {
			missing = append(missing, userID)
		}
	}
	return missing, nil
}
