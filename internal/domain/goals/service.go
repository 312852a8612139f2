package goals

import (
	"context"
	"log/slog"
	"strings"

	"goalspark/internal/domain/auth"
)

// Recorder receives goal lifecycle events so the activity feed stays in
// step with every mutation. Failures are logged, never surfaced: the write
// that triggered the event has already been committed.
type Recorder interface {
	GoalCreated(ctx context.Context, actor auth.UserContext, goal Goal) error
	ProgressUpdated(ctx context.Context, actor auth.UserContext, goal Goal, entry ProgressEntry) error
	StatusChanged(ctx context.Context, actor auth.UserContext, goal Goal, previousStatus, newStatus string) error
}

// Directory resolves a custom role label to the manager's current team
// members holding it.
type Directory interface {
	MemberIDsByCustomRole(ctx context.Context, managerID, roleName string) ([]string, error)
}

type Service struct {
	store     StoreAPI
	recorder  Recorder
	directory Directory
}

func NewService(store StoreAPI, recorder Recorder, directory Directory) *Service {
	return &Service{store: store, recorder: recorder, directory: directory}
}

func (s *Service) Create(ctx context.Context, actor auth.UserContext, input CreateInput) (Goal, error) {
	goal := buildGoal(actor.UserID, input)

	missing, err := s.store.MissingUsers(ctx, goal.AssignedTo)
	if err != nil {
		return Goal{}, err
	}
	if len(missing) > 0 {
		return Goal{}, ErrUnknownAssignee
	}

	id, err := s.store.Create(ctx, goal)
	if err != nil {
		return Goal{}, err
	}

	created, err := s.store.Get(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	if s.recorder != nil {
		if err := s.recorder.GoalCreated(ctx, actor, created); err != nil {
			slog.Warn("goal created activity failed", "goalId", id, "err", err)
		}
	}
	return created, nil
}

// AssignByRole expands roleName to the members currently holding it and
// creates the goal against that frozen snapshot. Members added to the role
// later do not pick the goal up.
func (s *Service) AssignByRole(ctx context.Context, actor auth.UserContext, roleName string, input CreateInput) (Goal, int, error) {
	roleName = strings.TrimSpace(roleName)
	memberIDs, err := s.directory.MemberIDsByCustomRole(ctx, actor.UserID, roleName)
	if err != nil {
		return Goal{}, 0, err
	}
	if len(memberIDs) == 0 {
		return Goal{}, 0, ErrNoRoleMembers
	}

	input.AssignedTo = memberIDs
	goal := buildGoal(actor.UserID, input)
	goal.AssignedRole = roleName

	id, err := s.store.Create(ctx, goal)
	if err != nil {
		return Goal{}, 0, err
	}
	created, err := s.store.Get(ctx, id)
	if err != nil {
		return Goal{}, 0, err
	}
	if s.recorder != nil {
		if err := s.recorder.GoalCreated(ctx, actor, created); err != nil {
			slog.Warn("goal created activity failed", "goalId", id, "err", err)
		}
	}
	return created, len(memberIDs), nil
}

func (s *Service) Get(ctx context.Context, viewer auth.UserContext, goalID string) (Goal, error) {
	goal, err := s.store.Get(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if !canView(viewer, goal) {
		return Goal{}, ErrForbidden
	}
	return goal, nil
}

func (s *Service) List(ctx context.Context, viewer auth.UserContext, statusFilter string) ([]Goal, error) {
	if viewer.IsAdmin() {
		return s.store.ListForManager(ctx, viewer.UserID, statusFilter)
	}
	return s.store.ListForAssignee(ctx, viewer.UserID, statusFilter)
}

// Update applies a sparse patch. The progress percentage is derived on
// read, so a target change is reflected immediately without touching the
// historical progress entries.
func (s *Service) Update(ctx context.Context, actor auth.UserContext, goalID string, patch UpdateInput) (Goal, error) {
	goal, err := s.store.Get(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if goal.AssignedBy != actor.UserID {
		return Goal{}, ErrForbidden
	}

	if patch.Title != nil {
		goal.Title = *patch.Title
	}
	if patch.Description != nil {
		goal.Description = *patch.Description
	}
	if patch.TargetValue != nil {
		goal.TargetValue = *patch.TargetValue
	}
	if patch.Unit != nil {
		goal.Unit = *patch.Unit
	}
	if patch.EndDate != nil {
		goal.EndDate = *patch.EndDate
	}
	if patch.IsActive != nil {
		goal.IsActive = *patch.IsActive
	}

	if err := s.store.Update(ctx, goal); err != nil {
		return Goal{}, err
	}
	return s.store.Get(ctx, goalID)
}

// RecordProgress validates the report, persists it, and emits the matching
// activity events. Last writer wins on concurrent reports for one goal.
func (s *Service) RecordProgress(ctx context.Context, actor auth.UserContext, goalID string, newValue float64, declaredStatus, comment string) (Goal, ProgressEntry, error) {
	goal, err := s.store.Get(ctx, goalID)
	if err != nil {
		return Goal{}, ProgressEntry{}, err
	}
	if !isAssignee(actor.UserID, goal) {
		return Goal{}, ProgressEntry{}, ErrForbidden
	}

	eval, err := Evaluate(goal.Comparison, goal.TargetValue, newValue, declaredStatus, comment)
	if err != nil {
		return Goal{}, ProgressEntry{}, err
	}

	entry := ProgressEntry{
		GoalID:        goalID,
		UserID:        actor.UserID,
		UserName:      actor.FullName,
		PreviousValue: goal.CurrentValue,
		NewValue:      newValue,
		Status:        eval.Status,
		Comment:       eval.Comment,
	}
	entryID, err := s.store.ApplyProgress(ctx, entry)
	if err != nil {
		return Goal{}, ProgressEntry{}, err
	}
	entry.ID = entryID

	previousStatus := goal.Status
	goal.CurrentValue = newValue
	goal.Status = eval.Status
	goal.ProgressPercentage = eval.ProgressPercentage

	if s.recorder != nil {
		if err := s.recorder.ProgressUpdated(ctx, actor, goal, entry); err != nil {
			slog.Warn("progress activity failed", "goalId", goalID, "err", err)
		}
		if previousStatus != eval.Status {
			if err := s.recorder.StatusChanged(ctx, actor, goal, previousStatus, eval.Status); err != nil {
				slog.Warn("status change activity failed", "goalId", goalID, "err", err)
			}
		}
	}
	return goal, entry, nil
}

func (s *Service) ProgressHistory(ctx context.Context, viewer auth.UserContext, goalID string, limit int) ([]ProgressEntry, error) {
	goal, err := s.store.Get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !canView(viewer, goal) {
		return nil, ErrForbidden
	}
	return s.store.ListProgress(ctx, goalID, limit)
}

func buildGoal(creatorID string, input CreateInput) Goal {
	comparison := input.Comparison
	if comparison == "" {
		comparison = ComparisonGreaterThan
	}
	return Goal{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		GoalType:    input.GoalType,
		Comparison:  comparison,
		TargetValue: input.TargetValue,
		Unit:        input.Unit,
		CycleType:   input.CycleType,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      StatusOnTrack,
		AssignedTo:  input.AssignedTo,
		AssignedBy:  creatorID,
		IsActive:    true,
	}
}

func canView(viewer auth.UserContext, goal Goal) bool {
	if viewer.IsAdmin() {
		return true
	}
	return isAssignee(viewer.UserID, goal)
}

func isAssignee(userID string, goal Goal) bool {
	for _, id := range goal.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}
