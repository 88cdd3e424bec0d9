package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/farmsight/backend/internal/domain"
)

// SaveWeatherRecord persists one weather observation for a farm
func (r *PostgresRepository) SaveWeatherRecord(ctx context.Context, record domain.WeatherRecord) error {
	query := `
		INSERT INTO weather_records (
			farm_id, temperature_c, humidity, description,
			wind_speed_kmh, pressure_hpa, precip_mm, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		record.FarmID, record.TemperatureC, record.Humidity, record.Description,
		record.WindSpeedKmh, record.PressureHpa, record.PrecipMM, record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save weather record: %w", err)
	}

	return nil
}

// GetWeatherHistory retrieves weather observations within a time range, newest first
func (r *PostgresRepository) GetWeatherHistory(ctx context.Context, farmID string, from, to time.Time) ([]domain.WeatherRecord, error) {
	query := `
		SELECT farm_id, temperature_c, humidity, description,
			   wind_speed_kmh, pressure_hpa, precip_mm, recorded_at
		FROM weather_records
		WHERE farm_id = $1 AND recorded_at BETWEEN $2 AND $3
		ORDER BY recorded_at DESC
		LIMIT 500
	`

	rows, err := r.pool.Query(ctx, query, farmID, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query weather records: %w", err)
	}
	defer rows.Close()

	var records []domain.WeatherRecord
	for rows.Next() {
		var rec domain.WeatherRecord
		err := rows.Scan(
			&rec.FarmID, &rec.TemperatureC, &rec.Humidity, &rec.Description,
			&rec.WindSpeedKmh, &rec.PressureHpa, &rec.PrecipMM, &rec.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan weather record row: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
