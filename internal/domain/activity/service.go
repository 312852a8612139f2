package activity

import (
	"context"
	"fmt"
	"time"

	"goalspark/internal/domain/auth"
	"goalspark/internal/domain/goals"
)

// Service writes feed entries for goal events and serves the feed back.
// It satisfies goals.Recorder.
type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

var _ goals.Recorder = (*Service)(nil)

func (s *Service) GoalCreated(ctx context.Context, actor auth.UserContext, goal goals.Goal) error {
	item := Item{
		Type:        TypeGoalCreated,
		Title:       "New goal created",
		Description: fmt.Sprintf("%s created goal %q", actor.FullName, goal.Title),
		GoalID:      goal.ID,
		GoalTitle:   goal.Title,
		UserID:      actor.UserID,
		UserName:    actor.FullName,
		TeamOwnerID: teamOwner(actor),
	}
	_, err := s.store.Insert(ctx, item)
	return err
}

func (s *Service) ProgressUpdated(ctx context.Context, actor auth.UserContext, goal goals.Goal, entry goals.ProgressEntry) error {
	pct := goal.ProgressPercentage
	item := Item{
		Type:        TypeProgressUpdated,
		Title:       "Progress updated",
		Description: fmt.Sprintf("%s reported %g %s on %q", actor.FullName, entry.NewValue, goal.Unit, goal.Title),
		GoalID:      goal.ID,
		GoalTitle:   goal.Title,
		UserID:      actor.UserID,
		UserName:    actor.FullName,
		TeamOwnerID: teamOwner(actor),
		Metadata: Metadata{
			ProgressPercentage: &pct,
			HasComment:         entry.Comment != "",
			Comment:            entry.Comment,
		},
	}
	_, err := s.store.Insert(ctx, item)
	return err
}

func (s *Service) StatusChanged(ctx context.Context, actor auth.UserContext, goal goals.Goal, previousStatus, newStatus string) error {
	item := Item{
		Type:        TypeStatusChanged,
		Title:       "Goal status changed",
		Description: fmt.Sprintf("%q moved from %s to %s", goal.Title, previousStatus, newStatus),
		GoalID:      goal.ID,
		GoalTitle:   goal.Title,
		UserID:      actor.UserID,
		UserName:    actor.FullName,
		TeamOwnerID: teamOwner(actor),
		Metadata: Metadata{
			PreviousStatus: previousStatus,
			NewStatus:      newStatus,
		},
	}
	_, err := s.store.Insert(ctx, item)
	return err
}

// Feed returns the newest activities visible to the viewer plus their
// current unread count. typeFilter narrows to one activity type; empty
// means all.
func (s *Service) Feed(ctx context.Context, viewer auth.UserContext, typeFilter string, limit int) (Feed, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	var (
		items []Item
		err   error
	)
	if viewer.IsAdmin() {
		items, err = s.store.ListForTeam(ctx, viewer.UserID, typeFilter, limit)
	} else {
		items, err = s.store.ListForUser(ctx, viewer.UserID, typeFilter, limit)
	}
	if err != nil {
		return Feed{}, err
	}

	unread, err := s.UnreadCount(ctx, viewer)
	if err != nil {
		return Feed{}, err
	}
	return Feed{Activities: items, UnreadCount: unread}, nil
}

func (s *Service) UnreadCount(ctx context.Context, viewer auth.UserContext) (int, error) {
	since, err := s.store.LastSeen(ctx, viewer.UserID)
	if err != nil {
		return 0, err
	}
	if viewer.IsAdmin() {
		return s.store.CountUnseenForTeam(ctx, viewer.UserID, since)
	}
	return s.store.CountUnseenForUser(ctx, viewer.UserID, since)
}

func (s *Service) MarkSeen(ctx context.Context, viewer auth.UserContext) error {
	return s.store.MarkSeen(ctx, viewer.UserID, s.now())
}

// teamOwner pins an activity to the feed it belongs to: the manager's
// feed for employees, the admin's own for managers.
func teamOwner(actor auth.UserContext) string {
	if actor.IsAdmin() || actor.ManagerID == "" {
		return actor.UserID
	}
	return actor.ManagerID
}
