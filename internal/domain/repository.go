package domain

import (
	"context"
	"time"
)

// DataRepository defines the interface for data persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type DataRepository interface {
	// CreateUser persists a new user account
	CreateUser(ctx context.Context, user User) error

	// GetUserByEmail retrieves a user by email address
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// GetUserByID retrieves a user by primary key
	GetUserByID(ctx context.Context, id string) (User, error)

	// CreateFarm persists a new farm descriptor
	CreateFarm(ctx context.Context, farm Farm) error

	// GetFarm retrieves a farm by primary key
	GetFarm(ctx context.Context, id string) (Farm, error)

	// ListFarmsByOwner retrieves all farms belonging to a user
	ListFarmsByOwner(ctx context.Context, ownerID string) ([]Farm, error)

	// ListFarms retrieves every farm (used by the snapshot scheduler)
	ListFarms(ctx context.Context) ([]Farm, error)

	// CreateExpense persists a new expense entry
	CreateExpense(ctx context.Context, expense Expense) error

	// GetExpense retrieves an expense by primary key
	GetExpense(ctx context.Context, id string) (Expense, error)

	// ListExpenses retrieves expenses matching the filter, newest first
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)

	// UpdateExpense overwrites an existing expense entry
	UpdateExpense(ctx context.Context, expense Expense) error

	// DeleteExpense removes an expense entry
	DeleteExpense(ctx context.Context, id string) error

	// SummarizeExpenses aggregates expenses per category
	SummarizeExpenses(ctx context.Context, filter ExpenseFilter) (ExpenseSummary, error)

	// SaveWeatherRecord persists one weather observation for a farm
	SaveWeatherRecord(ctx context.Context, record WeatherRecord) error

	// GetWeatherHistory retrieves weather observations within a time range
	GetWeatherHistory(ctx context.Context, farmID string, from, to time.Time) ([]WeatherRecord, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}
