package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"goalspark/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const itemColumns = `id, type, title, description, goal_id, goal_title, user_id, user_name, team_owner_id, metadata, created_at`

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(
		&item.ID,
		&item.Type,
		&item.Title,
		&item.Description,
		&item.GoalID,
		&item.GoalTitle,
		&item.UserID,
		&item.UserName,
		&item.TeamOwnerID,
		&item.Metadata,
		&item.CreatedAt,
	)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *Store) Insert(ctx context.Context, item Item) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
		INSERT INTO activities (type, title, description, goal_id, goal_title, user_id, user_name, team_owner_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		item.Type, item.Title, item.Description, item.GoalID, item.GoalTitle,
		item.UserID, item.UserName, item.TeamOwnerID, item.Metadata,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert activity: %w", err)
	}
	return id, nil
}

func (s *Store) ListForTeam(ctx context.Context, teamOwnerID, typeFilter string, limit int) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+itemColumns+`
		FROM activities
		WHERE team_owner_id = $1
		  AND ($2 = '' OR type = $2)
		ORDER BY created_at DESC, seq DESC
		LIMIT $3`,
		teamOwnerID, typeFilter, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list team activities: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListForUser returns activities the user authored plus activity on goals
// they are assigned to.
func (s *Store) ListForUser(ctx context.Context, userID, typeFilter string, limit int) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+itemColumns+`
		FROM activities a
		WHERE ($2 = '' OR a.type = $2)
		  AND (a.user_id = $1
		   OR EXISTS (
			SELECT 1 FROM goal_assignees ga
			WHERE ga.goal_id = a.goal_id AND ga.user_id = $1
		   ))
		ORDER BY a.created_at DESC, a.seq DESC
		LIMIT $3`,
		userID, typeFilter, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list user activities: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) CountUnseenForTeam(ctx context.Context, teamOwnerID string, since time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
		SELECT count(*) FROM activities
		WHERE team_owner_id = $1 AND created_at > $2`,
		teamOwnerID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count team unseen: %w", err)
	}
	return count, nil
}

func (s *Store) CountUnseenForUser(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
		SELECT count(*) FROM activities a
		WHERE a.created_at > $2
		  AND (a.user_id = $1
		   OR EXISTS (
			SELECT 1 FROM goal_assignees ga
			WHERE ga.goal_id = a.goal_id AND ga.user_id = $1
		   ))`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count user unseen: %w", err)
	}
	return count, nil
}

// LastSeen returns the zero time for users who have never opened the feed,
// which makes every activity count as unread.
func (s *Store) LastSeen(ctx context.Context, userID string) (time.Time, error) {
	var at time.Time
	err := s.DB.QueryRow(ctx,
		`SELECT last_seen_at FROM activity_seen WHERE user_id = $1`, userID,
	).Scan(&at)
	if err == pgx.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load last seen: %w", err)
	}
	return at, nil
}

func (s *Store) MarkSeen(ctx context.Context, userID string, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO activity_seen (user_id, last_seen_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at`,
		userID, at,
	)
	if err != nil {
		return fmt.Errorf("mark activities seen: %w", err)
	}
	return nil
}
