package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
)

type RecordService struct {
	records    RecordStore
	categories CategoryStore
	projects   ProjectStore
	log        *slog.Logger
}

func NewRecordService(records RecordStore, categories CategoryStore, projects ProjectStore, logger *slog.Logger) *RecordService {
	return &RecordService{
		records:    records,
		categories: categories,
		projects:   projects,
		log:        logger.With(slog.String("component", "record_service")),
	}
}

// RecordInput is the caller-supplied shape of a new record.
type RecordInput struct {
	CategoryID  int64
	Amount      core.Money
	Kind        core.Kind
	Description string
	Date        time.Time
	PayerCount  int
	Split       bool
	ProjectID   *int64
}

func (s *RecordService) Create(ctx context.Context, ownerID int64, in RecordInput) (*core.Record, error) {
	r := &core.Record{
		OwnerID:     ownerID,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Kind:        in.Kind,
		Description: in.Description,
		Date:        in.Date,
		PayerCount:  in.PayerCount,
		Split:       in.Split,
		ProjectID:   in.ProjectID,
	}
	if r.PayerCount == 0 {
		r.PayerCount = 1
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, ownerID, r.CategoryID, r.Kind); err != nil {
		return nil, err
	}
	if r.ProjectID != nil {
		if _, err := s.projects.GetProject(ctx, *r.ProjectID, ownerID); err != nil {
			return nil, err
		}
	}
	r.PerShare = r.ComputePerShare()

	if err := s.records.CreateRecord(ctx, r); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	s.log.Info("record created",
		slog.Int64("record_id", r.ID),
		slog.String("kind", string(r.Kind)),
		slog.Int64("amount_cents", r.Amount.Cents))
	return r, nil
}

// RecordPatch carries the updatable fields; nil means leave untouched. The
// kind of a record never changes after creation.
type RecordPatch struct {
	CategoryID  *int64
	Amount      *core.Money
	Description *string
	Date        *time.Time
	PayerCount  *int
	Split       *bool
}

func (s *RecordService) Update(ctx context.Context, ownerID, id int64, patch RecordPatch) (*core.Record, error) {
	r, err := s.records.GetRecord(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if patch.CategoryID != nil && *patch.CategoryID != r.CategoryID {
		if err := s.checkCategory(ctx, ownerID, *patch.CategoryID, r.Kind); err != nil {
			return nil, err
		}
		r.CategoryID = *patch.CategoryID
	}
	if patch.Amount != nil {
		r.Amount = *patch.Amount
	}
	if patch.Description != nil {
		r.Description = *patch.Description
	}
	if patch.Date != nil {
		r.Date = *patch.Date
	}
	if patch.PayerCount != nil {
		r.PayerCount = *patch.PayerCount
	}
	if patch.Split != nil {
		r.Split = *patch.Split
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.PerShare = r.ComputePerShare()

	if err := s.records.UpdateRecord(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecordService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.records.DeleteRecord(ctx, id, ownerID); err != nil {
		return err
	}
	s.log.Info("record deleted", slog.Int64("record_id", id))
	return nil
}

func (s *RecordService) Get(ctx context.Context, ownerID, id int64) (*core.Record, error) {
	return s.records.GetRecord(ctx, id, ownerID)
}

// List returns a page of records plus the unpaged total for the same filter.
func (s *RecordService) List(ctx context.Context, q core.RecordQuery) ([]core.Record, int64, error) {
	if q.Kind != "" && !q.Kind.Valid() {
		return nil, 0, core.ErrInvalidKind
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, 0, core.ErrInvalidRange
	}
	if q.CategoryID != nil {
		if err := s.visibleCategory(ctx, q.OwnerID, *q.CategoryID); err != nil {
			return nil, 0, err
		}
	}
	records, err := s.records.ListRecords(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.records.CountRecords(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// LinkProject attaches the record to a project the owner can see. A record
// belongs to at most one project; linking moves it.
func (s *RecordService) LinkProject(ctx context.Context, ownerID, recordID, projectID int64) (*core.Record, error) {
	r, err := s.records.GetRecord(ctx, recordID, ownerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.GetProject(ctx, projectID, ownerID); err != nil {
		return nil, err
	}
	r.ProjectID = &projectID
	if err := s.records.UpdateRecord(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// UnlinkProject detaches the record from the named project. The record must
// actually be linked to that project.
func (s *RecordService) UnlinkProject(ctx context.Context, ownerID, recordID, projectID int64) (*core.Record, error) {
	r, err := s.records.GetRecord(ctx, recordID, ownerID)
	if err != nil {
		return nil, err
	}
	if r.ProjectID == nil || *r.ProjectID != projectID {
		return nil, core.ErrNotLinked
	}
	r.ProjectID = nil
	if err := s.records.UpdateRecord(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// checkCategory admits system presets and the owner's own active categories,
// and rejects a category whose kind disagrees with the record's.
func (s *RecordService) checkCategory(ctx context.Context, ownerID, categoryID int64, kind core.Kind) error {
	c, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if !c.System && (c.OwnerID != ownerID || !c.Active) {
		return core.ErrNotFound
	}
	if c.Kind != kind {
		return core.ErrKindMismatch
	}
	return nil
}

// visibleCategory is the looser filter check: inactive categories are still
// valid filters because historical records keep pointing at them.
func (s *RecordService) visibleCategory(ctx context.Context, ownerID, categoryID int64) error {
	c, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if !c.System && c.OwnerID != ownerID {
		return core.ErrNotFound
	}
	return nil
}
