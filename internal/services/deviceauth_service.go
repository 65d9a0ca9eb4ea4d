package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/changedesk/api/internal/platform/requestctx"
	"github.com/changedesk/api/internal/platform/token"
	"github.com/changedesk/api/internal/repositories"
)

// DeviceAuthServiceDeps wires the dependencies required by device auth.
type DeviceAuthServiceDeps struct {
	Devices repositories.DeviceRepository
	Clock   func() time.Time
}

type deviceAuthService struct {
	devices repositories.DeviceRepository
	now     func() time.Time
}

// NewDeviceAuthService constructs a DeviceAuthService validating required
// dependencies.
func NewDeviceAuthService(deps DeviceAuthServiceDeps) (DeviceAuthService, error) {
	if deps.Devices == nil {
		return nil, errors.New("device auth service: device repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &deviceAuthService{
		devices: deps.Devices,
		now:     func() time.Time { return clock().UTC() },
	}, nil
}

// Authenticate resolves the raw token by hash. Unknown and revoked tokens
// both come back not ok without an error; only infrastructure failures are
// surfaced.
func (s *deviceAuthService) Authenticate(ctx context.Context, rawToken string) (DeviceIdentity, bool, error) {
	if rawToken == "" {
		return DeviceIdentity{}, false, nil
	}

	device, err := s.devices.FindByTokenHash(ctx, token.Hash(rawToken))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return DeviceIdentity{}, false, nil
		}
		return DeviceIdentity{}, false, err
	}
	if device.Revoked() {
		return DeviceIdentity{}, false, nil
	}

	// Best effort; a failed touch must not fail the request.
	if err := s.devices.Touch(ctx, device.ID, s.now()); err != nil {
		requestctx.Logger(ctx).Warn("device last-seen update failed",
			zap.String("device_id", string(device.ID)),
			zap.Error(err),
		)
	}

	return DeviceIdentity{DeviceID: device.ID, UserID: device.UserID}, true, nil
}
