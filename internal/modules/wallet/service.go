package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/autoworksph/garage-backend/internal/modules/user"
	"github.com/autoworksph/garage-backend/internal/platform/logger"
	"github.com/autoworksph/garage-backend/internal/platform/metrics"
)

var (
	// ErrNoFundsAvailable means the balance is zero; checked before any
	// credential so an empty wallet never burns a PIN attempt.
	ErrNoFundsAvailable = errors.New("no funds available for payout")
	// ErrInvalidCredential covers a wrong PIN, a missing PIN, an unknown
	// actor, or a bad authenticator code. The message stays generic.
	ErrInvalidCredential = errors.New("payout authorization failed")
	// ErrValidation means the request payload is malformed.
	ErrValidation = errors.New("validation error")
)

// Service defines wallet business logic.
type Service interface {
	GetSummary(ctx context.Context) (*Summary, error)
	ListPayouts(ctx context.Context) ([]*Payout, error)

	// ExecutePayout sweeps the full available balance after verifying
	// the actor's PIN and, if enrolled, their authenticator code.
	ExecutePayout(ctx context.Context, req PayoutRequest) (*Payout, error)
}

type service struct {
	repo  Repository
	users user.Repository
}

// NewService creates a new wallet service.
func NewService(repo Repository, users user.Repository) Service {
	return &service{repo: repo, users: users}
}

func (s *service) GetSummary(ctx context.Context) (*Summary, error) {
	return s.repo.Summary(ctx)
}

func (s *service) ListPayouts(ctx context.Context) ([]*Payout, error) {
	return s.repo.ListPayouts(ctx)
}

func (s *service) ExecutePayout(ctx context.Context, req PayoutRequest) (*Payout, error) {
	method := PayoutMethod(strings.ToUpper(req.Method))
	if !validMethods[method] {
		return nil, fmt.Errorf("%w: invalid method %q (allowed: BANK, GCASH, PAYMAYA)", ErrValidation, req.Method)
	}
	if req.Destination == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrValidation)
	}

	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	if summary.AvailableBalance <= 0 {
		return nil, ErrNoFundsAvailable
	}

	actor, err := s.users.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	if actor.PINHash == "" {
		return nil, ErrInvalidCredential
	}
	if bcrypt.CompareHashAndPassword([]byte(actor.PINHash), []byte(req.PIN)) != nil {
		return nil, ErrInvalidCredential
	}
	if actor.TOTPEnabled && !totp.Validate(req.Code, actor.TOTPSecret) {
		return nil, ErrInvalidCredential
	}

	p := &Payout{
		Method:      method,
		Destination: req.Destination,
		ActorID:     actor.ID,
	}
	amount, err := s.repo.ExecutePayout(ctx, p)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		// balance was drained between the summary read and the lock
		return nil, ErrNoFundsAvailable
	}

	metrics.PayoutsTotal.Inc()
	logger.L().Info("wallet payout executed",
		zap.String("payout_id", p.ID.String()),
		zap.Float64("amount", amount),
		zap.String("method", string(method)),
		zap.String("actor_id", actor.ID.String()),
	)
	return p, nil
}
