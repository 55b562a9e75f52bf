package outbound

import (
	"context"

	"github.com/guestgate/guestgate/domain/entity"
)

type AccessRequestRepository interface {
	Append(ctx context.Context, req *entity.AccessRequest) error
	Path() string
}
