package core

import "time"

// RecordQuery narrows a record scan. Zero values mean "no constraint"
// except OwnerID, which is always required.
type RecordQuery struct {
	OwnerID    int64
	Kind       Kind
	CategoryID *int64
	ProjectID  *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// CategoryQuery narrows a category listing. When System is set the owner
// constraint is ignored and only preset rows match.
type CategoryQuery struct {
	OwnerID    int64
	System     bool
	Level      CategoryLevel
	Kind       Kind
	ParentID   *int64
	ActiveOnly bool
}
