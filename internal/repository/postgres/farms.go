package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/farmsight/backend/internal/domain"
)

const farmColumns = `id, owner_id, code, name, district, village,
	land_size_acres, soil_type, irrigation_type, crops, created_at`

// CreateFarm persists a new farm descriptor
func (r *PostgresRepository) CreateFarm(ctx context.Context, farm domain.Farm) error {
	query := `
		INSERT INTO farms (
			id, owner_id, code, name, district, village,
			land_size_acres, soil_type, irrigation_type, crops, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		farm.ID, farm.OwnerID, farm.Code, farm.Name, farm.District, farm.Village,
		farm.LandSizeAcres, farm.SoilType, farm.IrrigationType, farm.Crops, farm.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("postgres: farm code %s already exists: %w", farm.Code, err)
		}
		return fmt.Errorf("postgres: failed to create farm: %w", err)
	}

	return nil
}

// GetFarm retrieves a farm by primary key
func (r *PostgresRepository) GetFarm(ctx context.Context, id string) (domain.Farm, error) {
	query := `SELECT ` + farmColumns + ` FROM farms WHERE id = $1`

	farm, err := scanFarm(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Farm{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Farm{}, fmt.Errorf("postgres: failed to query farm: %w", err)
	}

	return farm, nil
}

// ListFarmsByOwner retrieves all farms belonging to a user, oldest first
func (r *PostgresRepository) ListFarmsByOwner(ctx context.Context, ownerID string) ([]domain.Farm, error) {
	query := `SELECT ` + farmColumns + ` FROM farms WHERE owner_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query farms by owner: %w", err)
	}
	defer rows.Close()

	return collectFarms(rows)
}

// ListFarms retrieves every farm (used by the snapshot scheduler)
func (r *PostgresRepository) ListFarms(ctx context.Context) ([]domain.Farm, error) {
	query := `SELECT ` + farmColumns + ` FROM farms ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query farms: %w", err)
	}
	defer rows.Close()

	return collectFarms(rows)
}

func scanFarm(row pgx.Row) (domain.Farm, error) {
	var f domain.Farm
	err := row.Scan(
		&f.ID, &f.OwnerID, &f.Code, &f.Name, &f.District, &f.Village,
		&f.LandSizeAcres, &f.SoilType, &f.IrrigationType, &f.Crops, &f.CreatedAt,
	)
	return f, err
}

func collectFarms(rows pgx.Rows) ([]domain.Farm, error) {
	var farms []domain.Farm
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan farm row: %w", err)
		}
		farms = append(farms, f)
	}
	return farms, rows.Err()
}
