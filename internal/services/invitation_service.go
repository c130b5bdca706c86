package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
)

// codeAlphabet drops 0/O/1/I so codes survive being read aloud.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 8
)

type InvitationService struct {
	store  InvitationStore
	logger *slog.Logger
	now    func() time.Time
}

func NewInvitationService(store InvitationStore, logger *slog.Logger) *InvitationService {
	return &InvitationService{
		store:  store,
		logger: logger.With(slog.String("component", "invitation_service")),
		now:    time.Now,
	}
}

// Issue creates a new invitation for the issuing user. A maxUses below one
// is clamped to a single-use code.
func (s *InvitationService) Issue(ctx context.Context, issuedBy int64, maxUses int, expiresAt *time.Time) (*core.Invitation, error) {
	if maxUses < 1 {
		maxUses = 1
	}
	if expiresAt != nil && !expiresAt.After(s.now()) {
		return nil, core.ErrInvalidDate
	}

	code, err := s.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	inv := &core.Invitation{
		Code:      code,
		IssuedBy:  issuedBy,
		MaxUses:   maxUses,
		Active:    true,
		ExpiresAt: expiresAt,
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.logger.Info("invitation issued",
		slog.Int64("issued_by", issuedBy),
		slog.Int("max_uses", maxUses))
	return inv, nil
}

// Consume claims one slot on the code. The claim is a single conditional
// update in the store, so concurrent consumers can never overshoot the
// capacity; on a miss the code is re-read once to say why it failed.
func (s *InvitationService) Consume(ctx context.Context, code string) (*core.Invitation, error) {
	now := s.now()
	ok, err := s.store.ConsumeInvitation(ctx, code, now)
	if err != nil {
		return nil, fmt.Errorf("consume invitation: %w", err)
	}
	if !ok {
		return nil, s.classifyMiss(ctx, code, now)
	}

	inv, err := s.store.GetInvitationByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("reload invitation: %w", err)
	}
	s.logger.Info("invitation consumed",
		slog.Int64("invitation_id", inv.ID),
		slog.Int("used_count", inv.UsedCount))
	return inv, nil
}

// classifyMiss explains a failed consume. The state may have moved since the
// update ran; the answer is best-effort but the claim itself already failed
// authoritatively.
func (s *InvitationService) classifyMiss(ctx context.Context, code string, now time.Time) error {
	inv, err := s.store.GetInvitationByCode(ctx, code)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrCodeInvalid
		}
		return fmt.Errorf("inspect invitation: %w", err)
	}
	switch {
	case !inv.Active:
		return core.ErrCodeInactive
	case inv.Expired(now):
		return core.ErrCodeExpired
	default:
		return core.ErrCodeExhausted
	}
}

// Deactivate turns the code off for future consumers. Slots already claimed
// stay claimed.
func (s *InvitationService) Deactivate(ctx context.Context, issuedBy int64, code string) error {
	if err := s.store.DeactivateInvitation(ctx, issuedBy, code); err != nil {
		return err
	}
	s.logger.Info("invitation deactivated", slog.Int64("issued_by", issuedBy))
	return nil
}

func (s *InvitationService) ListByIssuer(ctx context.Context, issuedBy int64) ([]core.Invitation, error) {
	return s.store.ListInvitationsByIssuer(ctx, issuedBy)
}

func (s *InvitationService) generateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		taken, err := s.store.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("generate code: exhausted retries")
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
