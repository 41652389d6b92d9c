package ports

import (
	"context"

	"github.com/faridmamadou/anipHair/internal/model"
)

type Catalog interface {
	// GetService returns nil, nil when the id is unknown.
	GetService(ctx context.Context, id int64) (*model.Service, error)
	ListServices(ctx context.Context) ([]model.Service, error)
}
