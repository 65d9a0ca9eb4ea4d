package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/changedesk/api/internal/domain"
	"github.com/changedesk/api/internal/platform/metrics"
	"github.com/changedesk/api/internal/platform/token"
	"github.com/changedesk/api/internal/repositories"
)

const defaultPairingTTL = 10 * time.Minute

// PairingServiceDeps wires the dependencies required by the pairing service.
type PairingServiceDeps struct {
	PairingTokens repositories.PairingTokenRepository
	Devices       repositories.DeviceRepository
	Clock         func() time.Time

	// CodeTTL bounds how long a pairing code stays redeemable; defaults to
	// ten minutes.
	CodeTTL time.Duration

	// NewSecret overrides the secret generator in tests.
	NewSecret func() (string, error)
}

type pairingService struct {
	pairingTokens repositories.PairingTokenRepository
	devices       repositories.DeviceRepository
	now           func() time.Time
	codeTTL       time.Duration
	newSecret     func() (string, error)
}

// NewPairingService constructs a PairingService validating required dependencies.
func NewPairingService(deps PairingServiceDeps) (PairingService, error) {
	if deps.PairingTokens == nil {
		return nil, errors.New("pairing service: pairing token repository is required")
	}
	if deps.Devices == nil {
		return nil, errors.New("pairing service: device repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := deps.CodeTTL
	if ttl <= 0 {
		ttl = defaultPairingTTL
	}
	newSecret := deps.NewSecret
	if newSecret == nil {
		newSecret = token.NewSecret
	}
	return &pairingService{
		pairingTokens: deps.PairingTokens,
		devices:       deps.Devices,
		now:           func() time.Time { return clock().UTC() },
		codeTTL:       ttl,
		newSecret:     newSecret,
	}, nil
}

// Start mints a short-lived pairing code bound to the user. Only the hash is
// persisted; the raw code rides back to the caller exactly once.
func (s *pairingService) Start(ctx context.Context, userID domain.UserID) (StartPairingResult, error) {
	if userID == "" {
		return StartPairingResult{}, domain.Validation("userId must not be empty")
	}

	code, err := s.newSecret()
	if err != nil {
		return StartPairingResult{}, fmt.Errorf("pairing service: mint code: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.codeTTL)
	pt := domain.PairingToken{
		ID:        newID(pairingIDPrefix),
		UserID:    userID,
		TokenHash: token.Hash(code),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.pairingTokens.Create(ctx, pt); err != nil {
		return StartPairingResult{}, err
	}
	return StartPairingResult{PairingCode: code, ExpiresAt: expiresAt}, nil
}

// Complete redeems a pairing code and mints the device credential. The
// consume is a single conditional write, so of two racing completions
// exactly one succeeds.
func (s *pairingService) Complete(ctx context.Context, cmd CompletePairingCommand) (CompletePairingResult, error) {
	if cmd.PairingCode == "" {
		metrics.TrackPairingCompletion(metrics.OutcomeConflict)
		return CompletePairingResult{}, domain.Validation("pairingCode must not be empty")
	}

	now := s.now()
	userID, err := s.pairingTokens.Consume(ctx, token.Hash(cmd.PairingCode), now)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Missing, already used, and expired are one failure to the
			// caller; a garbled code hashes to nothing and lands here too.
			metrics.TrackPairingCompletion(metrics.OutcomeConflict)
			return CompletePairingResult{}, domain.NotFound("invalid or expired pairing code")
		}
		metrics.TrackPairingCompletion(metrics.OutcomeError)
		return CompletePairingResult{}, err
	}

	deviceToken, err := s.newSecret()
	if err != nil {
		metrics.TrackPairingCompletion(metrics.OutcomeError)
		return CompletePairingResult{}, fmt.Errorf("pairing service: mint device token: %w", err)
	}

	device := domain.Device{
		ID:        domain.DeviceID(newID(deviceIDPrefix)),
		UserID:    userID,
		TokenHash: token.Hash(deviceToken),
		Label:     cmd.Label,
		UserAgent: cmd.UserAgent,
		CreatedAt: now,
	}
	if err := s.devices.Create(ctx, device); err != nil {
		metrics.TrackPairingCompletion(metrics.OutcomeError)
		return CompletePairingResult{}, err
	}

	metrics.TrackPairingCompletion(metrics.OutcomeApplied)
	return CompletePairingResult{
		DeviceToken: deviceToken,
		DeviceID:    device.ID,
		UserID:      userID,
	}, nil
}

// Revoke invalidates a device owned by the acting user. Revocation is
// terminal; a revoked device can only be replaced through a fresh pairing
// cycle.
func (s *pairingService) Revoke(ctx context.Context, actor domain.Actor, id domain.DeviceID) error {
	if actor.Kind != domain.ActorKindUser {
		return domain.Forbidden("only the account owner can revoke devices")
	}

	device, err := s.devices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.NotFound("device not found")
		}
		return err
	}
	if device.UserID != actor.UserID {
		return domain.Forbidden("device belongs to another account")
	}

	if err := s.devices.Revoke(ctx, id, s.now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.Conflict("device is already revoked")
		}
		return err
	}
	return nil
}
