package core

import "errors"

// Domain failure sentinels. Handlers and callers classify failures with
// errors.Is; storage errors are wrapped and propagated, never mapped into
// these.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateName     = errors.New("name already exists")
	ErrKindMismatch      = errors.New("category kind does not match parent")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPayerCount = errors.New("payer count must be at least 1")
	ErrInvalidMonth      = errors.New("month must be between 1 and 12")
	ErrInvalidRange      = errors.New("invalid date range")
	ErrNotLinked         = errors.New("record is not linked to that project")

	ErrInvalidKind         = errors.New("kind must be income or expense")
	ErrInvalidLevel        = errors.New("level must be primary or secondary")
	ErrInvalidParent       = errors.New("secondary categories require a primary parent")
	ErrInvalidCategoryName = errors.New("invalid category name")
	ErrInvalidBudgetName   = errors.New("invalid budget name")
	ErrInvalidProjectName  = errors.New("invalid project name")
	ErrInvalidPeriod       = errors.New("invalid budget period")
	ErrInvalidThreshold    = errors.New("alert threshold must be between 0 and 100")
	ErrInvalidStatus       = errors.New("invalid project status")
	ErrInvalidDate         = errors.New("invalid date")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")

	ErrCodeInvalid   = errors.New("invitation code is invalid")
	ErrCodeExpired   = errors.New("invitation code has expired")
	ErrCodeExhausted = errors.New("invitation code has no uses left")
	ErrCodeInactive  = errors.New("invitation code has been deactivated")

	ErrEmailTaken     = errors.New("email already registered")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrBadCredentials = errors.New("invalid email or password")
)
