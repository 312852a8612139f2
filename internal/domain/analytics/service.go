package analytics

import (
	"context"
	"time"

	"goalspark/internal/domain/activity"
	"goalspark/internal/domain/auth"
	"goalspark/internal/domain/goals"
	"goalspark/internal/domain/team"
)

// GoalSource, FeedSource and RosterSource are the slices of the other
// domains the dashboard reads from.
type GoalSource interface {
	ListForManager(ctx context.Context, managerID, statusFilter string) ([]goals.Goal, error)
	ListForAssignee(ctx context.Context, userID, statusFilter string) ([]goals.Goal, error)
}

type FeedSource interface {
	ListForTeam(ctx context.Context, teamOwnerID, typeFilter string, limit int) ([]activity.Item, error)
	ListForUser(ctx context.Context, userID, typeFilter string, limit int) ([]activity.Item, error)
}

type RosterSource interface {
	ListMembers(ctx context.Context, managerID string) ([]team.Member, error)
}

type Service struct {
	goals  GoalSource
	feed   FeedSource
	roster RosterSource
	score  ScoreFunc
	now    func() time.Time
}

func NewService(goalSource GoalSource, feedSource FeedSource, rosterSource RosterSource) *Service {
	return &Service{
		goals:  goalSource,
		feed:   feedSource,
		roster: rosterSource,
		score:  DefaultScore,
		now:    time.Now,
	}
}

// SetScoreFunc swaps the performance weighting. Passing nil restores the
// default.
func (s *Service) SetScoreFunc(fn ScoreFunc) {
	if fn == nil {
		fn = DefaultScore
	}
	s.score = fn
}

// Dashboard loads the viewer's scope and computes the snapshot. Admins see
// their whole team; employees see only their own goals and activity.
func (s *Service) Dashboard(ctx context.Context, viewer auth.UserContext) (Snapshot, error) {
	var (
		goalList []goals.Goal
		feed     []activity.Item
		members  []team.Member
		err      error
	)

	if viewer.IsAdmin() {
		goalList, err = s.goals.ListForManager(ctx, viewer.UserID, "")
		if err != nil {
			return Snapshot{}, err
		}
		feed, err = s.feed.ListForTeam(ctx, viewer.UserID, "", recentActivityLimit)
		if err != nil {
			return Snapshot{}, err
		}
		members, err = s.roster.ListMembers(ctx, viewer.UserID)
		if err != nil {
			return Snapshot{}, err
		}
	} else {
		goalList, err = s.goals.ListForAssignee(ctx, viewer.UserID, "")
		if err != nil {
			return Snapshot{}, err
		}
		feed, err = s.feed.ListForUser(ctx, viewer.UserID, "", recentActivityLimit)
		if err != nil {
			return Snapshot{}, err
		}
	}

	return ComputeDashboard(goalList, feed, members, s.now(), s.score), nil
}
