package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/core"
)

func recordFixture(t *testing.T) (*RecordService, *fakeStore, *core.Category, *core.Project) {
	t.Helper()
	store := newFakeStore()
	svc := NewRecordService(store, store, store, discardLogger())
	ctx := context.Background()

	cat := &core.Category{Name: "Groceries", Kind: core.Expense, Level: core.LevelPrimary, OwnerID: 1, Active: true}
	if err := store.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	proj := &core.Project{OwnerID: 1, CreatedBy: 1, Name: "Kitchen", Status: core.ProjectActive}
	if err := store.CreateProject(ctx, proj); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return svc, store, cat, proj
}

func TestCreateRecordComputesPerShare(t *testing.T) {
	svc, _, cat, _ := recordFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		cents      int64
		payerCount int
		split      bool
		wantShare  int64
	}{
		{"three way even", 30000, 3, true, 10000},
		{"two way rounds up", 101, 2, true, 51},
		{"unsplit keeps full amount", 30000, 3, false, 30000},
		{"single payer", 4200, 1, true, 4200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := svc.Create(ctx, 1, RecordInput{
				CategoryID: cat.ID,
				Amount:     core.Money{Cents: tt.cents},
				Kind:       core.Expense,
				Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
				PayerCount: tt.payerCount,
				Split:      tt.split,
			})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if r.PerShare.Cents != tt.wantShare {
				t.Errorf("PerShare = %d, want %d", r.PerShare.Cents, tt.wantShare)
			}
		})
	}
}

func TestCreateRecordValidation(t *testing.T) {
	svc, store, cat, _ := recordFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	incomeCat := &core.Category{Name: "Salary", Kind: core.Income, Level: core.LevelPrimary, OwnerID: 1, Active: true}
	store.CreateCategory(ctx, incomeCat)
	foreignCat := &core.Category{Name: "Other", Kind: core.Expense, Level: core.LevelPrimary, OwnerID: 2, Active: true}
	store.CreateCategory(ctx, foreignCat)

	tests := []struct {
		name string
		in   RecordInput
		want error
	}{
		{
			"zero amount",
			RecordInput{CategoryID: cat.ID, Kind: core.Expense, Date: date, PayerCount: 1},
			core.ErrInvalidAmount,
		},
		{
			"kind mismatch",
			RecordInput{CategoryID: incomeCat.ID, Amount: core.Money{Cents: 100}, Kind: core.Expense, Date: date, PayerCount: 1},
			core.ErrKindMismatch,
		},
		{
			"foreign category",
			RecordInput{CategoryID: foreignCat.ID, Amount: core.Money{Cents: 100}, Kind: core.Expense, Date: date, PayerCount: 1},
			core.ErrNotFound,
		},
		{
			"negative payer count",
			RecordInput{CategoryID: cat.ID, Amount: core.Money{Cents: 100}, Kind: core.Expense, Date: date, PayerCount: -1},
			core.ErrInvalidPayerCount,
		},
		{
			"missing date",
			RecordInput{CategoryID: cat.ID, Amount: core.Money{Cents: 100}, Kind: core.Expense, PayerCount: 1},
			core.ErrInvalidDate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, 1, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("Create = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateRecordAcceptsSystemCategory(t *testing.T) {
	svc, store, _, _ := recordFixture(t)
	ctx := context.Background()

	preset := &core.Category{Name: "Dining", Kind: core.Expense, Level: core.LevelPrimary, System: true, Active: true}
	store.CreateCategory(ctx, preset)

	if _, err := svc.Create(ctx, 1, RecordInput{
		CategoryID: preset.ID,
		Amount:     core.Money{Cents: 1500},
		Kind:       core.Expense,
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("Create with preset category: %v", err)
	}
}

func TestUpdateRecordRecomputesPerShare(t *testing.T) {
	svc, _, cat, _ := recordFixture(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, 1, RecordInput{
		CategoryID: cat.ID,
		Amount:     core.Money{Cents: 30000},
		Kind:       core.Expense,
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PayerCount: 3,
		Split:      true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	payers := 2
	got, err := svc.Update(ctx, 1, r.ID, RecordPatch{PayerCount: &payers})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.PerShare.Cents != 15000 {
		t.Errorf("PerShare = %d, want 15000", got.PerShare.Cents)
	}

	off := false
	got, err = svc.Update(ctx, 1, r.ID, RecordPatch{Split: &off})
	if err != nil {
		t.Fatalf("Update split off: %v", err)
	}
	if got.PerShare.Cents != 30000 {
		t.Errorf("PerShare after unsplit = %d, want 30000", got.PerShare.Cents)
	}
}

func TestLinkAndUnlinkProject(t *testing.T) {
	svc, _, cat, proj := recordFixture(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, 1, RecordInput{
		CategoryID: cat.ID,
		Amount:     core.Money{Cents: 500},
		Kind:       core.Expense,
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	linked, err := svc.LinkProject(ctx, 1, r.ID, proj.ID)
	if err != nil {
		t.Fatalf("LinkProject: %v", err)
	}
	if linked.ProjectID == nil || *linked.ProjectID != proj.ID {
		t.Errorf("ProjectID = %v, want %d", linked.ProjectID, proj.ID)
	}

	if _, err := svc.UnlinkProject(ctx, 1, r.ID, proj.ID+99); !errors.Is(err, core.ErrNotLinked) {
		t.Fatalf("unlink from wrong project: %v, want ErrNotLinked", err)
	}

	unlinked, err := svc.UnlinkProject(ctx, 1, r.ID, proj.ID)
	if err != nil {
		t.Fatalf("UnlinkProject: %v", err)
	}
	if unlinked.ProjectID != nil {
		t.Errorf("ProjectID = %v, want nil", unlinked.ProjectID)
	}

	if _, err := svc.UnlinkProject(ctx, 1, r.ID, proj.ID); !errors.Is(err, core.ErrNotLinked) {
		t.Fatalf("unlink unlinked record: %v, want ErrNotLinked", err)
	}
}

func TestLinkProjectRejectsForeignProject(t *testing.T) {
	svc, store, cat, _ := recordFixture(t)
	ctx := context.Background()

	other := &core.Project{OwnerID: 2, CreatedBy: 2, Name: "Theirs", Status: core.ProjectActive}
	store.CreateProject(ctx, other)

	r, _ := svc.Create(ctx, 1, RecordInput{
		CategoryID: cat.ID,
		Amount:     core.Money{Cents: 500},
		Kind:       core.Expense,
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if _, err := svc.LinkProject(ctx, 1, r.ID, other.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("link to foreign project: %v, want ErrNotFound", err)
	}
}

func TestListRecordsFilterValidation(t *testing.T) {
	svc, _, _, _ := recordFixture(t)
	ctx := context.Background()

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, _, err := svc.List(ctx, core.RecordQuery{OwnerID: 1, From: &from, To: &to}); !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("inverted range: %v, want ErrInvalidRange", err)
	}

	if _, _, err := svc.List(ctx, core.RecordQuery{OwnerID: 1, Kind: "transfer"}); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("bad kind: %v, want ErrInvalidKind", err)
	}
}

func TestListRecordsPaging(t *testing.T) {
	svc, _, cat, _ := recordFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, 1, RecordInput{
			CategoryID: cat.ID,
			Amount:     core.Money{Cents: int64(100 * (i + 1))},
			Kind:       core.Expense,
			Date:       date.AddDate(0, 0, i),
		}); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}

	page, total, err := svc.List(ctx, core.RecordQuery{OwnerID: 1, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 {
		t.Errorf("page size = %d, want 2", len(page))
	}
}
