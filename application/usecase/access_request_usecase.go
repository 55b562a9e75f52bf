package usecase

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/guestgate/guestgate/application/port/inbound"
	"github.com/guestgate/guestgate/application/port/outbound"
	domainerr "github.com/guestgate/guestgate/domain/error"
	"github.com/guestgate/guestgate/domain/entity"
	"github.com/guestgate/guestgate/infrastructure/http/validator"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

type accessRequestUseCase struct {
	repo   outbound.AccessRequestRepository
	clock  clockwork.Clock
	logger logger.Logger
}

func NewAccessRequestUseCase(repo outbound.AccessRequestRepository, clock clockwork.Clock, log logger.Logger) inbound.AccessRequestUseCase {
	return &accessRequestUseCase{
		repo:   repo,
		clock:  clock,
		logger: log,
	}
}

// Submit records the request as received. Fields are not required and a
// malformed email is only logged.
func (uc *accessRequestUseCase) Submit(ctx context.Context, input inbound.AccessRequestInput) (*entity.AccessRequest, error) {
	fields := map[string]interface{}{
		"fullname":    input.FullName,
		"email":       input.Email,
		"idNumber":    input.IDNumber,
		"idType":      input.IDType,
		"requestType": input.RequestType,
	}
	uc.logger.Info(ctx, "Request access submission received", fields)

	if input.Email != "" && !validator.ValidateEmail(input.Email) {
		uc.logger.Warn(ctx, "Request access submission has a malformed email", map[string]interface{}{
			"email": input.Email,
		})
	}

	req := entity.NewAccessRequest(
		uc.clock.Now(),
		input.FullName,
		input.Email,
		input.IDNumber,
		input.IDType,
		input.RequestType,
	)

	if err := uc.repo.Append(ctx, req); err != nil {
		uc.logger.Error(ctx, "Error writing access request", err, map[string]interface{}{
			"path": uc.repo.Path(),
		})
		return nil, domainerr.ErrPersistenceFailed(uc.repo.Path(), err)
	}

	uc.logger.Info(ctx, "Access request saved", map[string]interface{}{
		"path": uc.repo.Path(),
	})
	return req, nil
}
