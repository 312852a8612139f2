package activity

import (
	"context"
	"time"
)

type StoreAPI interface {
	Insert(ctx context.Context, item Item) (string, error)
	ListForTeam(ctx context.Context, teamOwnerID, typeFilter string, limit int) ([]Item, error)
	ListForUser(ctx context.Context, userID, typeFilter string, limit int) ([]Item, error)
	CountUnseenForTeam(ctx context.Context, teamOwnerID string, since time.Time) (int, error)
	CountUnseenForUser(ctx context.Context, userID string, since time.Time) (int, error)
	LastSeen(ctx context.Context, userID string) (time.Time, error)
	MarkSeen(ctx context.Context, userID string, at time.Time) error
}
