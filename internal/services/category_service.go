package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bilancio/internal/core"
)

type CategoryService struct {
	store CategoryStore
	log   *slog.Logger
}

func NewCategoryService(store CategoryStore, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store: store,
		log:   logger.With(slog.String("component", "category_service")),
	}
}

// CreatePrimary adds a top-level category for the owner. Names are unique
// among the owner's active primaries of any kind.
func (s *CategoryService) CreatePrimary(ctx context.Context, ownerID int64, name string, kind core.Kind, icon, color string, sortOrder int) (*core.Category, error) {
	c := &core.Category{
		Name:      strings.TrimSpace(name),
		Kind:      kind,
		Level:     core.LevelPrimary,
		OwnerID:   ownerID,
		Icon:      icon,
		Color:     color,
		SortOrder: sortOrder,
		Active:    true,
	}
	return s.create(ctx, c)
}

// CreateSecondary adds a child under an existing primary. The parent must
// belong to the owner, be active, be primary, and share the child's kind.
func (s *CategoryService) CreateSecondary(ctx context.Context, ownerID, parentID int64, name string, kind core.Kind, icon, color string, sortOrder int) (*core.Category, error) {
	parent, err := s.store.GetCategory(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.OwnerID != ownerID || parent.System || !parent.Active || parent.Level != core.LevelPrimary {
		return nil, core.ErrInvalidParent
	}
	if parent.Kind != kind {
		return nil, core.ErrKindMismatch
	}

	c := &core.Category{
		Name:      strings.TrimSpace(name),
		Kind:      kind,
		Level:     core.LevelSecondary,
		ParentID:  &parentID,
		OwnerID:   ownerID,
		Icon:      icon,
		Color:     color,
		SortOrder: sortOrder,
		Active:    true,
	}
	return s.create(ctx, c)
}

func (s *CategoryService) create(ctx context.Context, c *core.Category) (*core.Category, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	taken, err := s.store.CategoryNameTaken(ctx, c.OwnerID, c.Level, c.ParentID, c.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, core.ErrDuplicateName
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.log.Info("category created",
		slog.Int64("category_id", c.ID),
		slog.String("level", string(c.Level)))
	return c, nil
}

// CategoryPatch carries the updatable fields; nil means leave untouched.
// Kind, level and parent are fixed at creation.
type CategoryPatch struct {
	Name      *string
	Icon      *string
	Color     *string
	SortOrder *int
}

func (s *CategoryService) Update(ctx context.Context, ownerID, id int64, patch CategoryPatch) (*core.Category, error) {
	c, err := s.ownedCategory(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name != c.Name {
			taken, err := s.store.CategoryNameTaken(ctx, ownerID, c.Level, c.ParentID, name, c.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, core.ErrDuplicateName
			}
			c.Name = name
		}
	}
	if patch.Icon != nil {
		c.Icon = *patch.Icon
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	if patch.SortOrder != nil {
		c.SortOrder = *patch.SortOrder
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Deactivate soft-deletes the category; a primary takes its secondaries down
// with it atomically. Returns how many categories were deactivated.
func (s *CategoryService) Deactivate(ctx context.Context, ownerID, id int64) (int64, error) {
	n, err := s.store.DeactivateCategoryCascade(ctx, id, ownerID)
	if err != nil {
		return 0, err
	}
	s.log.Info("category deactivated",
		slog.Int64("category_id", id),
		slog.Int64("affected", n))
	return n, nil
}

func (s *CategoryService) Get(ctx context.Context, ownerID, id int64) (*core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.System && c.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	return c, nil
}

func (s *CategoryService) ListPrimary(ctx context.Context, ownerID int64, kind core.Kind) ([]core.Category, error) {
	return s.store.ListCategories(ctx, core.CategoryQuery{
		OwnerID:    ownerID,
		Level:      core.LevelPrimary,
		Kind:       kind,
		ActiveOnly: true,
	})
}

// ListSecondary lists the owner's active secondaries, optionally under one
// parent. The parent is verified to belong to the owner when given.
func (s *CategoryService) ListSecondary(ctx context.Context, ownerID int64, parentID *int64) ([]core.Category, error) {
	if parentID != nil {
		if _, err := s.ownedCategory(ctx, ownerID, *parentID); err != nil {
			return nil, err
		}
	}
	return s.store.ListCategories(ctx, core.CategoryQuery{
		OwnerID:    ownerID,
		Level:      core.LevelSecondary,
		ParentID:   parentID,
		ActiveOnly: true,
	})
}

// ListPresets lists the system categories every user starts from.
func (s *CategoryService) ListPresets(ctx context.Context, kind core.Kind) ([]core.Category, error) {
	return s.store.ListCategories(ctx, core.CategoryQuery{
		System:     true,
		Kind:       kind,
		ActiveOnly: true,
	})
}

func (s *CategoryService) ownedCategory(ctx context.Context, ownerID, id int64) (*core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.System || c.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	return c, nil
}
