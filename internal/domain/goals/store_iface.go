package goals

import "context"

type StoreAPI interface {
	Create(ctx context.Context, goal Goal) (string, error)
	Get(ctx context.Context, goalID string) (Goal, error)
	ListForAssignee(ctx context.Context, userID, statusFilter string) ([]Goal, error)
	ListForManager(ctx context.Context, managerID, statusFilter string) ([]Goal, error)
	Update(ctx context.Context, goal Goal) error
	ApplyProgress(ctx context.Context, entry ProgressEntry) (string, error)
	ListProgress(ctx context.Context, goalID string, limit int) ([]ProgressEntry, error)
	MissingUsers(ctx context.Context, userIDs []string) ([]string, error)
}
