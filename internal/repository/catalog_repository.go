package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faridmamadou/anipHair/internal/model"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetService returns the catalog entry or nil when the id is unknown.
func (r *CatalogRepository) GetService(ctx context.Context, id int64) (*model.Service, error) {
	query := `
		SELECT id, name, price, duration, category
		FROM services
		WHERE id = $1
	`

	var svc model.Service
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Price,
		&svc.Duration,
		&svc.Category,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}

	return &svc, nil
}

// ListServices returns the full catalog in id order.
func (r *CatalogRepository) ListServices(ctx context.Context) ([]model.Service, error) {
	query := `
		SELECT id, name, price, duration, category
		FROM services
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var svc model.Service
		err := rows.Scan(
			&svc.ID,
			&svc.Name,
			&svc.Price,
			&svc.Duration,
			&svc.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return services, nil
}
