package goals

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"goalspark/internal/domain/auth"
)

type fakeStore struct {
	goals    map[string]Goal
	entries  []ProgressEntry
	nextID   int
	allUsers map[string]bool
	applyErr error
}

func newFakeStore(userIDs ...string) *fakeStore {
	users := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		users[id] = true
	}
	return &fakeStore{goals: map[string]Goal{}, allUsers: users}
}

func (f *fakeStore) Create(_ context.Context, goal Goal) (string, error) {
	f.nextID++
	goal.ID = fmt.Sprintf("goal-%d", f.nextID)
	goal.CreatedAt = time.Now()
	f.goals[goal.ID] = goal
	return goal.ID, nil
}

func (f *fakeStore) Get(_ context.Context, goalID string) (Goal, error) {
	goal, ok := f.goals[goalID]
	if !ok {
		return Goal{}, ErrNotFound
	}
	goal.ProgressPercentage = ProgressPercent(goal.Comparison, goal.TargetValue, goal.CurrentValue)
	return goal, nil
}

func (f *fakeStore) ListForAssignee(_ context.Context, userID, statusFilter string) ([]Goal, error) {
	var out []Goal
	for _, g := range f.goals {
		for _, id := range g.AssignedTo {
			if id == userID && (statusFilter == "" || g.Status == statusFilter) {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListForManager(_ context.Context, managerID, statusFilter string) ([]Goal, error) {
	var out []Goal
	for _, g := range f.goals {
		if g.AssignedBy == managerID && (statusFilter == "" || g.Status == statusFilter) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, goal Goal) error {
	if _, ok := f.goals[goal.ID]; !ok {
		return ErrNotFound
	}
	f.goals[goal.ID] = goal
	return nil
}

func (f *fakeStore) ApplyProgress(_ context.Context, entry ProgressEntry) (string, error) {
	if f.applyErr != nil {
		return "", f.applyErr
	}
	goal, ok := f.goals[entry.GoalID]
	if !ok {
		return "", ErrNotFound
	}
	entry.ID = fmt.Sprintf("entry-%d", len(f.entries)+1)
	f.entries = append(f.entries, entry)
	goal.CurrentValue = entry.NewValue
	goal.Status = entry.Status
	goal.LastUpdated = time.Now()
	f.goals[entry.GoalID] = goal
	return entry.ID, nil
}

func (f *fakeStore) ListProgress(_ context.Context, goalID string, limit int) ([]ProgressEntry, error) {
	var out []ProgressEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].GoalID == goalID {
			out = append(out, f.entries[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) MissingUsers(_ context.Context, userIDs []string) ([]string, error) {
	var missing []string
	for _, id := range userIDs {
		if !f.allUsers[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type fakeRecorder struct {
	created   int
	progress  int
	statuses  []string
	failCalls bool
}

func (f *fakeRecorder) GoalCreated(context.Context, auth.UserContext, Goal) error {
	f.created++
	if f.failCalls {
		return errors.New("feed down")
	}
	return nil
}

func (f *fakeRecorder) ProgressUpdated(context.Context, auth.UserContext, Goal, ProgressEntry) error {
	f.progress++
	if f.failCalls {
		return errors.New("feed down")
	}
	return nil
}

func (f *fakeRecorder) StatusChanged(_ context.Context, _ auth.UserContext, _ Goal, prev, next string) error {
	f.statuses = append(f.statuses, prev+">"+next)
	if f.failCalls {
		return errors.New("feed down")
	}
	return nil
}

type fakeDirectory struct {
	members map[string][]string
}

func (f *fakeDirectory) MemberIDsByCustomRole(_ context.Context, _, roleName string) ([]string, error) {
	return f.members[roleName], nil
}

var (
	manager  = auth.UserContext{UserID: "mgr-1", Role: auth.RoleAdmin, FullName: "Dana Boss"}
	employee = auth.UserContext{UserID: "emp-1", Role: auth.RoleEmployee, FullName: "Riley Doe"}
	outsider = auth.UserContext{UserID: "emp-9", Role: auth.RoleEmployee, FullName: "Sam Other"}
)

func sampleInput() CreateInput {
	return CreateInput{
		Title:       "Close deals",
		GoalType:    TypeRevenue,
		TargetValue: 10,
		Unit:        "deals",
		CycleType:   CycleMonthly,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(0, 1, 0),
		AssignedTo:  []string{"emp-1"},
	}
}

func TestCreateDefaultsAndRecords(t *testing.T) {
	store := newFakeStore("emp-1")
	recorder := &fakeRecorder{}
	svc := NewService(store, recorder, &fakeDirectory{})

	goal, err := svc.Create(context.Background(), manager, sampleInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if goal.Comparison != ComparisonGreaterThan {
		t.Errorf("comparison = %q, want default %q", goal.Comparison, ComparisonGreaterThan)
	}
	if goal.Status != StatusOnTrack {
		t.Errorf("status = %q, want %q", goal.Status, StatusOnTrack)
	}
	if goal.AssignedBy != manager.UserID {
		t.Errorf("assigned_by = %q, want %q", goal.AssignedBy, manager.UserID)
	}
	if !goal.IsActive {
		t.Error("new goal should be active")
	}
	if recorder.created != 1 {
		t.Errorf("created events = %d, want 1", recorder.created)
	}
}

func TestCreateRejectsUnknownAssignee(t *testing.T) {
	svc := NewService(newFakeStore("emp-1"), &fakeRecorder{}, &fakeDirectory{})

	input := sampleInput()
	input.AssignedTo = []string{"emp-1", "ghost"}
	if _, err := svc.Create(context.Background(), manager, input); !errors.Is(err, ErrUnknownAssignee) {
		t.Fatalf("err = %v, want ErrUnknownAssignee", err)
	}
}

func TestAssignByRoleFreezesSnapshot(t *testing.T) {
	store := newFakeStore("emp-1", "emp-2")
	directory := &fakeDirectory{members: map[string][]string{"sdr": {"emp-1", "emp-2"}}}
	svc := NewService(store, &fakeRecorder{}, directory)

	goal, count, err := svc.AssignByRole(context.Background(), manager, "sdr", sampleInput())
	if err != nil {
		t.Fatalf("AssignByRole: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if goal.AssignedRole != "sdr" {
		t.Errorf("assigned_role = %q, want sdr", goal.AssignedRole)
	}
	if len(goal.AssignedTo) != 2 {
		t.Errorf("assignees = %v, want frozen pair", goal.AssignedTo)
	}

	// Later role membership changes must not touch the stored assignees.
	directory.members["sdr"] = append(directory.members["sdr"], "emp-3")
	stored, _ := store.Get(context.Background(), goal.ID)
	if len(stored.AssignedTo) != 2 {
		t.Errorf("stored assignees = %v, snapshot should not grow", stored.AssignedTo)
	}
}

func TestAssignByRoleEmptyRole(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeRecorder{}, &fakeDirectory{})
	if _, _, err := svc.AssignByRole(context.Background(), manager, "sdr", sampleInput()); !errors.Is(err, ErrNoRoleMembers) {
		t.Fatalf("err = %v, want ErrNoRoleMembers", err)
	}
}

func TestRecordProgressFlow(t *testing.T) {
	store := newFakeStore("emp-1")
	recorder := &fakeRecorder{}
	svc := NewService(store, recorder, &fakeDirectory{})

	created, err := svc.Create(context.Background(), manager, sampleInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	goal, entry, err := svc.RecordProgress(context.Background(), employee, created.ID, 4, StatusOnTrack, "")
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if goal.CurrentValue != 4 {
		t.Errorf("current = %v, want 4", goal.CurrentValue)
	}
	if goal.ProgressPercentage != 40 {
		t.Errorf("pct = %v, want 40", goal.ProgressPercentage)
	}
	if entry.PreviousValue != 0 || entry.NewValue != 4 {
		t.Errorf("entry values = %v -> %v", entry.PreviousValue, entry.NewValue)
	}
	if recorder.progress != 1 {
		t.Errorf("progress events = %d, want 1", recorder.progress)
	}
	if len(recorder.statuses) != 0 {
		t.Errorf("status events = %v, want none for same status", recorder.statuses)
	}

	// A declared slip emits a status change alongside the progress event.
	if _, _, err := svc.RecordProgress(context.Background(), employee, created.ID, 5, StatusAtRisk, "supply issues"); err != nil {
		t.Fatalf("RecordProgress at_risk: %v", err)
	}
	if len(recorder.statuses) != 1 || recorder.statuses[0] != "on_track>at_risk" {
		t.Errorf("status events = %v", recorder.statuses)
	}
}

func TestRecordProgressFailedWriteLeavesNoTrace(t *testing.T) {
	store := newFakeStore("emp-1")
	recorder := &fakeRecorder{}
	svc := NewService(store, recorder, &fakeDirectory{})
	created, _ := svc.Create(context.Background(), manager, sampleInput())

	store.applyErr = errors.New("connection reset")
	if _, _, err := svc.RecordProgress(context.Background(), employee, created.ID, 4, StatusOnTrack, ""); err == nil {
		t.Fatal("expected the write failure to surface")
	}

	// The entry and the goal move share one write; a failure leaves both
	// untouched and emits no feed events.
	if len(store.entries) != 0 {
		t.Errorf("entries = %d, want none after failed write", len(store.entries))
	}
	stored, _ := store.Get(context.Background(), created.ID)
	if stored.CurrentValue != 0 || stored.Status != StatusOnTrack {
		t.Errorf("goal mutated by failed write: %+v", stored)
	}
	if recorder.progress != 0 || len(recorder.statuses) != 0 {
		t.Errorf("recorder events = %d/%v, want none", recorder.progress, recorder.statuses)
	}
}

func TestRecordProgressNonAssigneeForbidden(t *testing.T) {
	store := newFakeStore("emp-1")
	svc := NewService(store, &fakeRecorder{}, &fakeDirectory{})
	created, _ := svc.Create(context.Background(), manager, sampleInput())

	if _, _, err := svc.RecordProgress(context.Background(), outsider, created.ID, 1, StatusOnTrack, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestRecordProgressSurvivesRecorderFailure(t *testing.T) {
	store := newFakeStore("emp-1")
	recorder := &fakeRecorder{failCalls: true}
	svc := NewService(store, recorder, &fakeDirectory{})
	created, _ := svc.Create(context.Background(), manager, sampleInput())

	goal, _, err := svc.RecordProgress(context.Background(), employee, created.ID, 3, StatusOnTrack, "")
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if goal.CurrentValue != 3 {
		t.Errorf("current = %v, want 3 despite feed failure", goal.CurrentValue)
	}
}

func TestGetVisibility(t *testing.T) {
	store := newFakeStore("emp-1")
	svc := NewService(store, &fakeRecorder{}, &fakeDirectory{})
	created, _ := svc.Create(context.Background(), manager, sampleInput())

	if _, err := svc.Get(context.Background(), employee, created.ID); err != nil {
		t.Errorf("assignee should view goal: %v", err)
	}
	if _, err := svc.Get(context.Background(), manager, created.ID); err != nil {
		t.Errorf("admin should view goal: %v", err)
	}
	if _, err := svc.Get(context.Background(), outsider, created.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider err = %v, want ErrForbidden", err)
	}
}

func TestUpdateOwnerOnlyAndPatch(t *testing.T) {
	store := newFakeStore("emp-1")
	svc := NewService(store, &fakeRecorder{}, &fakeDirectory{})
	created, _ := svc.Create(context.Background(), manager, sampleInput())

	newTarget := 20.0
	if _, err := svc.Update(context.Background(), employee, created.ID, UpdateInput{TargetValue: &newTarget}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner err = %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(context.Background(), manager, created.ID, UpdateInput{TargetValue: &newTarget})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.TargetValue != 20 {
		t.Errorf("target = %v, want 20", updated.TargetValue)
	}
	if updated.Title != created.Title {
		t.Errorf("title changed unexpectedly: %q", updated.Title)
	}
}

func TestListScoping(t *testing.T) {
	store := newFakeStore("emp-1", "emp-9")
	svc := NewService(store, &fakeRecorder{}, &fakeDirectory{})
	if _, err := svc.Create(context.Background(), manager, sampleInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mine, err := svc.List(context.Background(), employee, "")
	if err != nil {
		t.Fatalf("List assignee: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("assignee goals = %d, want 1", len(mine))
	}

	others, err := svc.List(context.Background(), outsider, "")
	if err != nil {
		t.Fatalf("List outsider: %v", err)
	}
	if len(others) != 0 {
		t.Errorf("outsider goals = %d, want 0", len(others))
	}

	team, err := svc.List(context.Background(), manager, "")
	if err != nil {
		t.Fatalf("List manager: %v", err)
	}
	if len(team) != 1 {
		t.Errorf("manager goals = %d, want 1", len(team))
	}
}
