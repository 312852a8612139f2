// Package demo seeds a manager's account with a believable team, goals
// and progress history so the product can be explored without real data.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"goalspark/internal/domain/auth"
	"goalspark/internal/domain/goals"
	"goalspark/internal/domain/team"
)

// DemoPassword is the shared login for generated employees.
const DemoPassword = "Demo1234!"

type Result struct {
	Generated        bool `json:"generated"`
	EmployeesCreated int  `json:"employees_created"`
	GoalsCreated     int  `json:"goals_created"`
}

type Generator struct {
	users *auth.Store
	team  *team.Store
	goals *goals.Service
}

func NewGenerator(users *auth.Store, teamStore *team.Store, goalService *goals.Service) *Generator {
	return &Generator{users: users, team: teamStore, goals: goalService}
}

type persona struct {
	firstName  string
	lastName   string
	jobTitle   string
	customRole string
}

var personas = []persona{
	{"Maya", "Chen", "Account Executive", "sales"},
	{"Jordan", "Okafor", "Account Executive", "sales"},
	{"Priya", "Nair", "Sales Development Rep", "sdr"},
	{"Lucas", "Weber", "Sales Development Rep", "sdr"},
	{"Sofia", "Martins", "Customer Success Manager", "success"},
}

type goalTemplate struct {
	title       string
	description string
	goalType    string
	comparison  string
	target      float64
	unit        string
	cycle       string
}

var goalTemplates = []goalTemplate{
	{"Close new deals", "Signed contracts this cycle", goals.TypeTarget, goals.ComparisonGreaterThan, 8, "deals", goals.CycleMonthly},
	{"Book discovery calls", "Qualified first meetings", goals.TypeTarget, goals.ComparisonGreaterThan, 25, "calls", goals.CycleMonthly},
	{"Grow pipeline revenue", "Open opportunity value", goals.TypeRevenue, goals.ComparisonGreaterThan, 120000, "USD", goals.CycleQuarterly},
	{"Keep churn down", "Accounts lost this quarter", goals.TypeTarget, goals.ComparisonLessThan, 3, "accounts", goals.CycleQuarterly},
	{"Hit renewal rate", "Share of renewals won", goals.TypePercentage, goals.ComparisonGreaterThan, 90, "%", goals.CycleQuarterly},
}

// Generate creates the demo team under the calling manager. Personas whose
// email already exists are skipped, so a second run only fills gaps.
func (g *Generator) Generate(ctx context.Context, manager auth.UserContext) (Result, error) {
	var result Result

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return result, err
	}

	employees := make([]auth.UserContext, 0, len(personas))
	for _, p := range personas {
		email := demoEmail(p, manager.UserID)
		exists, err := g.users.EmailExists(ctx, email)
		if err != nil {
			return result, err
		}
		if exists {
			existing, err := g.users.FindByEmail(ctx, email)
			if err != nil {
				return result, err
			}
			employees = append(employees, demoContext(existing.ID, email, p, manager.UserID))
			continue
		}

		id, err := g.users.CreateUser(ctx, email, hash, p.firstName, p.lastName, auth.RoleEmployee, p.jobTitle, manager.UserID)
		if err != nil {
			return result, fmt.Errorf("create demo employee: %w", err)
		}
		if err := g.team.UpdateMember(ctx, manager.UserID, team.Member{
			ID:         id,
			JobTitle:   p.jobTitle,
			CustomRole: p.customRole,
			IsActive:   true,
		}); err != nil {
			return result, fmt.Errorf("set demo role: %w", err)
		}
		employees = append(employees, demoContext(id, email, p, manager.UserID))
		result.EmployeesCreated++
	}

	if result.EmployeesCreated == 0 {
		return result, nil
	}

	now := time.Now()
	for i, tmpl := range goalTemplates {
		assignee := employees[i%len(employees)]
		created, err := g.goals.Create(ctx, manager, goals.CreateInput{
			Title:       tmpl.title,
			Description: tmpl.description,
			GoalType:    tmpl.goalType,
			Comparison:  tmpl.comparison,
			TargetValue: tmpl.target,
			Unit:        tmpl.unit,
			CycleType:   tmpl.cycle,
			StartDate:   now.AddDate(0, 0, -14),
			EndDate:     now.AddDate(0, 1, 0),
			AssignedTo:  []string{assignee.UserID},
		})
		if err != nil {
			return result, fmt.Errorf("create demo goal: %w", err)
		}
		result.GoalsCreated++

		if err := g.seedProgress(ctx, assignee, created); err != nil {
			return result, err
		}
	}

	result.Generated = true
	return result, nil
}

// seedProgress records a couple of plausible reports so charts and the
// activity feed have something to show.
func (g *Generator) seedProgress(ctx context.Context, reporter auth.UserContext, goal goals.Goal) error {
	steps := 1 + rand.Intn(3)
	value := 0.0
	for i := 0; i < steps; i++ {
		value += goal.TargetValue * (0.1 + 0.25*rand.Float64())
		status := goals.StatusOnTrack
		comment := ""
		if goals.ProgressPercent(goal.Comparison, goal.TargetValue, value) < 30 && i == steps-1 {
			status = goals.StatusAtRisk
			comment = "Slower start than planned, ramping up outreach."
		}
		if _, _, err := g.goals.RecordProgress(ctx, reporter, goal.ID, value, status, comment); err != nil {
			return fmt.Errorf("seed demo progress: %w", err)
		}
	}
	return nil
}

func demoEmail(p persona, managerID string) string {
	suffix := managerID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("%s.%s+%s@demo.goalspark.dev", strings.ToLower(p.firstName), strings.ToLower(p.lastName), suffix)
}

func demoContext(id, email string, p persona, managerID string) auth.UserContext {
	return auth.UserContext{
		UserID:    id,
		Email:     email,
		Role:      auth.RoleEmployee,
		ManagerID: managerID,
		FullName:  p.firstName + " " + p.lastName,
	}
}
