package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"bilancio/internal/core"
)

// fakeStore is an in-memory implementation of every store port, good enough
// for exercising service rules without sqlite.
type fakeStore struct {
	mu sync.Mutex

	nextID      int64
	invitations map[string]*core.Invitation
	categories  map[int64]*core.Category
	records     map[int64]*core.Record
	projects    map[int64]*core.Project
	budgets     map[int64]*core.Budget
	users       map[int64]*core.User
	sessions    map[string]fakeSession
}

type fakeSession struct {
	userID    int64
	expiresAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		invitations: make(map[string]*core.Invitation),
		categories:  make(map[int64]*core.Category),
		records:     make(map[int64]*core.Record),
		projects:    make(map[int64]*core.Project),
		budgets:     make(map[int64]*core.Budget),
		users:       make(map[int64]*core.User),
		sessions:    make(map[string]fakeSession),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// --- invitations ---

func (f *fakeStore) CreateInvitation(_ context.Context, inv *core.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.ID = f.id()
	inv.CreatedAt = time.Now()
	cp := *inv
	f.invitations[inv.Code] = &cp
	return nil
}

func (f *fakeStore) GetInvitationByCode(_ context.Context, code string) (*core.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[code]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeStore) CodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.invitations[code]
	return ok, nil
}

func (f *fakeStore) ConsumeInvitation(_ context.Context, code string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[code]
	if !ok || !inv.CanUse(now) {
		return false, nil
	}
	inv.UsedCount++
	return true, nil
}

func (f *fakeStore) DeactivateInvitation(_ context.Context, issuedBy int64, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[code]
	if !ok || inv.IssuedBy != issuedBy {
		return core.ErrNotFound
	}
	inv.Active = false
	return nil
}

func (f *fakeStore) ListInvitationsByIssuer(_ context.Context, issuedBy int64) ([]core.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Invitation
	for _, inv := range f.invitations {
		if inv.IssuedBy == issuedBy {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- categories ---

func (f *fakeStore) CreateCategory(_ context.Context, c *core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id()
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeStore) GetCategory(_ context.Context, id int64) (*core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, c *core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[c.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeStore) DeactivateCategoryCascade(_ context.Context, id, ownerID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok || c.System || c.OwnerID != ownerID || !c.Active {
		return 0, core.ErrNotFound
	}
	c.Active = false
	n := int64(1)
	for _, child := range f.categories {
		if child.ParentID != nil && *child.ParentID == id && child.Active {
			child.Active = false
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListCategories(_ context.Context, q core.CategoryQuery) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Category
	for _, c := range f.categories {
		if q.System != c.System {
			continue
		}
		if !q.System && c.OwnerID != q.OwnerID {
			continue
		}
		if q.Level != "" && c.Level != q.Level {
			continue
		}
		if q.Kind != "" && c.Kind != q.Kind {
			continue
		}
		if q.ParentID != nil && (c.ParentID == nil || *c.ParentID != *q.ParentID) {
			continue
		}
		if q.ActiveOnly && !c.Active {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) CategoryNameTaken(_ context.Context, ownerID int64, level core.CategoryLevel, parentID *int64, name string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.ID == excludeID || !c.Active || c.OwnerID != ownerID || c.Level != level {
			continue
		}
		if parentID != nil && (c.ParentID == nil || *c.ParentID != *parentID) {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// --- records ---

func (f *fakeStore) CreateRecord(_ context.Context, r *core.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.id()
	r.CreatedAt = time.Now()
	cp := *r
	f.records[r.ID] = &cp
	return nil
}

func (f *fakeStore) GetRecord(_ context.Context, id, ownerID int64) (*core.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || r.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) UpdateRecord(_ context.Context, r *core.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.records[r.ID]
	if !ok || old.OwnerID != r.OwnerID {
		return core.ErrNotFound
	}
	cp := *r
	f.records[r.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteRecord(_ context.Context, id, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || r.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeStore) matchRecords(q core.RecordQuery) []core.Record {
	var out []core.Record
	for _, r := range f.records {
		if r.OwnerID != q.OwnerID {
			continue
		}
		if q.Kind != "" && r.Kind != q.Kind {
			continue
		}
		if q.CategoryID != nil && r.CategoryID != *q.CategoryID {
			continue
		}
		if q.ProjectID != nil && (r.ProjectID == nil || *r.ProjectID != *q.ProjectID) {
			continue
		}
		if q.From != nil && r.Date.Before(*q.From) {
			continue
		}
		if q.To != nil && r.Date.After(*q.To) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) ListRecords(_ context.Context, q core.RecordQuery) ([]core.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.matchRecords(q)
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) CountRecords(_ context.Context, q core.RecordQuery) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.Limit, q.Offset = 0, 0
	return int64(len(f.matchRecords(q))), nil
}

func (f *fakeStore) ListProjectRecords(_ context.Context, projectID int64) ([]core.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Record
	for _, r := range f.records {
		if r.ProjectID != nil && *r.ProjectID == projectID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- projects ---

func (f *fakeStore) CreateProject(_ context.Context, p *core.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.id()
	p.CreatedAt = time.Now()
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetProject(_ context.Context, id, ownerID int64) (*core.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpdateProject(_ context.Context, p *core.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.projects[p.ID]
	if !ok || old.OwnerID != p.OwnerID {
		return core.ErrNotFound
	}
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteProjectCascade(_ context.Context, id, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok || p.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(f.projects, id)
	for rid, r := range f.records {
		if r.ProjectID != nil && *r.ProjectID == id {
			delete(f.records, rid)
		}
	}
	return nil
}

func (f *fakeStore) ListProjects(_ context.Context, ownerID int64, status string, limit, offset int) ([]core.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Project
	for _, p := range f.projects {
		if p.OwnerID != ownerID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountProjects(_ context.Context, ownerID int64, status string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.projects {
		if p.OwnerID == ownerID && (status == "" || p.Status == status) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListProjectsTouchedBy(_ context.Context, userID int64) ([]core.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Project
	for _, p := range f.projects {
		if p.OwnerID == userID || p.CreatedBy == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --- budgets ---

func (f *fakeStore) CreateBudget(_ context.Context, b *core.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.id()
	cp := *b
	f.budgets[b.ID] = &cp
	return nil
}

func (f *fakeStore) GetBudget(_ context.Context, id, ownerID int64) (*core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) UpdateBudget(_ context.Context, b *core.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.budgets[b.ID]
	if !ok || old.OwnerID != b.OwnerID {
		return core.ErrNotFound
	}
	cp := *b
	f.budgets[b.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteBudget(_ context.Context, id, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(f.budgets, id)
	return nil
}

func (f *fakeStore) ListBudgets(_ context.Context, ownerID int64, limit, offset int) ([]core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Budget
	for _, b := range f.budgets {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountBudgets(_ context.Context, ownerID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.budgets {
		if b.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListActiveBudgets(_ context.Context, ownerID int64) ([]core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Budget
	for _, b := range f.budgets {
		if b.OwnerID == ownerID && b.Active {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListBudgetOwners(_ context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[int64]bool)
	var out []int64
	for _, b := range f.budgets {
		if b.Active && !seen[b.OwnerID] {
			seen[b.OwnerID] = true
			out = append(out, b.OwnerID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// --- users ---

func (f *fakeStore) CreateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = f.id()
	u.CreatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeStore) UpdateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) UsernameExists(_ context.Context, username string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID != excludeID && u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID != excludeID && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateSession(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = fakeSession{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, token string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[token]
	if !ok || !sess.expiresAt.After(now) {
		return 0, core.ErrNotFound
	}
	return sess.userID, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for token, sess := range f.sessions {
		if !sess.expiresAt.After(now) {
			delete(f.sessions, token)
			n++
		}
	}
	return n, nil
}
