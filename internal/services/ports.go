// Package services implements the ledger's domain rules: invitation
// admission, the category hierarchy, record and split handling, budget
// alerting and statistics. Services talk to the record store through the
// narrow ports below so the rules stay independent of sqlite.
package services

import (
	"context"
	"time"

	"bilancio/internal/core"
)

type (
	InvitationStore interface {
		CreateInvitation(ctx context.Context, inv *core.Invitation) error
		GetInvitationByCode(ctx context.Context, code string) (*core.Invitation, error)
		CodeExists(ctx context.Context, code string) (bool, error)
		// ConsumeInvitation atomically increments used_count with the
		// active/expiry/capacity guards evaluated at commit time.
		ConsumeInvitation(ctx context.Context, code string, now time.Time) (bool, error)
		DeactivateInvitation(ctx context.Context, issuedBy int64, code string) error
		ListInvitationsByIssuer(ctx context.Context, issuedBy int64) ([]core.Invitation, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c *core.Category) error
		GetCategory(ctx context.Context, id int64) (*core.Category, error)
		UpdateCategory(ctx context.Context, c *core.Category) error
		// DeactivateCategoryCascade soft-deletes the category and its
		// secondary children as one atomic operation.
		DeactivateCategoryCascade(ctx context.Context, id, ownerID int64) (int64, error)
		ListCategories(ctx context.Context, q core.CategoryQuery) ([]core.Category, error)
		CategoryNameTaken(ctx context.Context, ownerID int64, level core.CategoryLevel, parentID *int64, name string, excludeID int64) (bool, error)
	}

	RecordStore interface {
		CreateRecord(ctx context.Context, r *core.Record) error
		GetRecord(ctx context.Context, id, ownerID int64) (*core.Record, error)
		UpdateRecord(ctx context.Context, r *core.Record) error
		DeleteRecord(ctx context.Context, id, ownerID int64) error
		ListRecords(ctx context.Context, q core.RecordQuery) ([]core.Record, error)
		CountRecords(ctx context.Context, q core.RecordQuery) (int64, error)
		ListProjectRecords(ctx context.Context, projectID int64) ([]core.Record, error)
	}

	ProjectStore interface {
		CreateProject(ctx context.Context, p *core.Project) error
		GetProject(ctx context.Context, id, ownerID int64) (*core.Project, error)
		UpdateProject(ctx context.Context, p *core.Project) error
		DeleteProjectCascade(ctx context.Context, id, ownerID int64) error
		ListProjects(ctx context.Context, ownerID int64, status string, limit, offset int) ([]core.Project, error)
		CountProjects(ctx context.Context, ownerID int64, status string) (int64, error)
		ListProjectsTouchedBy(ctx context.Context, userID int64) ([]core.Project, error)
	}

	UserStore interface {
		CreateUser(ctx context.Context, u *core.User) error
		GetUserByID(ctx context.Context, id int64) (*core.User, error)
		GetUserByEmail(ctx context.Context, email string) (*core.User, error)
		UpdateUser(ctx context.Context, u *core.User) error
		UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error)
		EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
		CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
		GetSession(ctx context.Context, token string, now time.Time) (int64, error)
		DeleteSession(ctx context.Context, token string) error
		DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	}

	BudgetStore interface {
		CreateBudget(ctx context.Context, b *core.Budget) error
		GetBudget(ctx context.Context, id, ownerID int64) (*core.Budget, error)
		UpdateBudget(ctx context.Context, b *core.Budget) error
		DeleteBudget(ctx context.Context, id, ownerID int64) error
		ListBudgets(ctx context.Context, ownerID int64, limit, offset int) ([]core.Budget, error)
		CountBudgets(ctx context.Context, ownerID int64) (int64, error)
		ListActiveBudgets(ctx context.Context, ownerID int64) ([]core.Budget, error)
		ListBudgetOwners(ctx context.Context) ([]int64, error)
	}
)
