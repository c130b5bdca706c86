package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bilancio/internal/core"
)

type ProjectService struct {
	projects ProjectStore
	records  RecordStore
	log      *slog.Logger
}

func NewProjectService(projects ProjectStore, records RecordStore, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		records:  records,
		log:      logger.With(slog.String("component", "project_service")),
	}
}

type ProjectInput struct {
	Name        string
	Description string
	Budget      core.Money
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *ProjectService) Create(ctx context.Context, ownerID, createdBy int64, in ProjectInput) (*core.Project, error) {
	p := &core.Project{
		OwnerID:     ownerID,
		CreatedBy:   createdBy,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Budget:      in.Budget,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if p.Status == "" {
		p.Status = core.ProjectActive
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return nil, core.ErrInvalidRange
	}
	if err := s.projects.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.log.Info("project created", slog.Int64("project_id", p.ID))
	return p, nil
}

type ProjectPatch struct {
	Name        *string
	Description *string
	Budget      *core.Money
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *ProjectService) Update(ctx context.Context, ownerID, id int64, patch ProjectPatch) (*core.Project, error) {
	p, err := s.projects.GetProject(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		p.EndDate = patch.EndDate
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return nil, core.ErrInvalidRange
	}
	if err := s.projects.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project and every record attached to it.
func (s *ProjectService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.projects.DeleteProjectCascade(ctx, id, ownerID); err != nil {
		return err
	}
	s.log.Info("project deleted", slog.Int64("project_id", id))
	return nil
}

func (s *ProjectService) Get(ctx context.Context, ownerID, id int64) (*core.Project, error) {
	return s.projects.GetProject(ctx, id, ownerID)
}

func (s *ProjectService) List(ctx context.Context, ownerID int64, status string, limit, offset int) ([]core.Project, int64, error) {
	switch status {
	case "", core.ProjectActive, core.ProjectCompleted, core.ProjectArchived:
	default:
		return nil, 0, core.ErrInvalidStatus
	}
	projects, err := s.projects.ListProjects(ctx, ownerID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.projects.CountProjects(ctx, ownerID, status)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// ProjectStats sums a project's ledger against its planned budget.
type ProjectStats struct {
	Project *core.Project
	Income  core.Money
	Expense core.Money
	Balance core.Money
}

// Stats aggregates every record linked to the project, regardless of date.
func (s *ProjectService) Stats(ctx context.Context, ownerID, id int64) (*ProjectStats, error) {
	p, err := s.projects.GetProject(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListProjectRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	st := &ProjectStats{Project: p}
	for _, r := range records {
		switch r.Kind {
		case core.Income:
			st.Income.Cents += r.Amount.Cents
		case core.Expense:
			st.Expense.Cents += r.Amount.Cents
		}
	}
	st.Balance.Cents = st.Income.Cents - st.Expense.Cents
	return st, nil
}
