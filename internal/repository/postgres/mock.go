package postgres

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/farmsight/backend/internal/domain"
)

// MockRepository implements domain.DataRepository in memory. It backs demo
// mode when PostgreSQL is unreachable and doubles as the repository fake in
// tests.
type MockRepository struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	farms    map[string]domain.Farm
	expenses map[string]domain.Expense
	weather  map[string][]domain.WeatherRecord
}

// NewMockRepository creates a mock repository pre-seeded with the demo account
func NewMockRepository() *MockRepository {
	r := &MockRepository{
		users:    make(map[string]domain.User),
		farms:    make(map[string]domain.Farm),
		expenses: make(map[string]domain.Expense),
		weather:  make(map[string][]domain.WeatherRecord),
	}
	r.seedDemo()
	return r
}

// seedDemo loads the demo account and farm so the app is usable without a
// database. Login: demo@farmsight.io / demo1234.
func (r *MockRepository) seedDemo() {
	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("mock: failed to hash demo password: %v", err)
		return
	}

	now := time.Now()
	demoUser := domain.User{
		ID:           "demo-user",
		Name:         "Demo Farmer",
		Email:        "demo@farmsight.io",
		Phone:        "+91 98765 43210",
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	r.users[demoUser.ID] = demoUser

	demoFarm := domain.Farm{
		ID:             "demo-farm",
		OwnerID:        demoUser.ID,
		Code:           "FARM-DEMO",
		Name:           "Green Valley Farm",
		District:       "Nashik",
		Village:        "Pimpalgaon",
		LandSizeAcres:  4.5,
		SoilType:       domain.SoilBlack,
		IrrigationType: domain.IrrigationDrip,
		Crops:          []string{"grapes", "onion", "tomato"},
		CreatedAt:      now,
	}
	r.farms[demoFarm.ID] = demoFarm
}

// CreateUser stores a user, enforcing email uniqueness
func (r *MockRepository) CreateUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

// GetUserByEmail retrieves a user by email address
func (r *MockRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// GetUserByID retrieves a user by primary key
func (r *MockRepository) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// CreateFarm stores a farm descriptor
func (r *MockRepository) CreateFarm(ctx context.Context, farm domain.Farm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.farms[farm.ID] = farm
	return nil
}

// GetFarm retrieves a farm by primary key
func (r *MockRepository) GetFarm(ctx context.Context, id string) (domain.Farm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.farms[id]
	if !ok {
		return domain.Farm{}, domain.ErrNotFound
	}
	return f, nil
}

// ListFarmsByOwner retrieves all farms belonging to a user, oldest first
func (r *MockRepository) ListFarmsByOwner(ctx context.Context, ownerID string) ([]domain.Farm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var farms []domain.Farm
	for _, f := range r.farms {
		if f.OwnerID == ownerID {
			farms = append(farms, f)
		}
	}
	sortFarms(farms)
	return farms, nil
}

// ListFarms retrieves every farm
func (r *MockRepository) ListFarms(ctx context.Context) ([]domain.Farm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	farms := make([]domain.Farm, 0, len(r.farms))
	for _, f := range r.farms {
		farms = append(farms, f)
	}
	sortFarms(farms)
	return farms, nil
}

// CreateExpense stores an expense entry
func (r *MockRepository) CreateExpense(ctx context.Context, expense domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expenses[expense.ID] = expense
	return nil
}

// GetExpense retrieves an expense by primary key
func (r *MockRepository) GetExpense(ctx context.Context, id string) (domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.expenses[id]
	if !ok {
		return domain.Expense{}, domain.ErrNotFound
	}
	return e, nil
}

// ListExpenses retrieves expenses matching the filter, newest first
func (r *MockRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expenses []domain.Expense
	for _, e := range r.expenses {
		if expenseMatches(e, filter) {
			expenses = append(expenses, e)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].IncurredOn.Equal(expenses[j].IncurredOn) {
			return expenses[i].IncurredOn.After(expenses[j].IncurredOn)
		}
		return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(expenses) {
			return nil, nil
		}
		expenses = expenses[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(expenses) {
		expenses = expenses[:filter.Limit]
	}
	return expenses, nil
}

// UpdateExpense overwrites the mutable fields of an existing expense entry.
// Farm, owner and creation time are immutable, matching the SQL UPDATE.
func (r *MockRepository) UpdateExpense(ctx context.Context, expense domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.expenses[expense.ID]
	if !ok {
		return domain.ErrNotFound
	}
	expense.FarmID = existing.FarmID
	expense.UserID = existing.UserID
	expense.CreatedAt = existing.CreatedAt
	r.expenses[expense.ID] = expense
	return nil
}

// DeleteExpense removes an expense entry
func (r *MockRepository) DeleteExpense(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.expenses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.expenses, id)
	return nil
}

// SummarizeExpenses aggregates expenses per category, largest spend first
func (r *MockRepository) SummarizeExpenses(ctx context.Context, filter domain.ExpenseFilter) (domain.ExpenseSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[string]*domain.CategoryTotal)
	var summary domain.ExpenseSummary
	for _, e := range r.expenses {
		if !expenseMatches(e, filter) {
			continue
		}
		ct, ok := totals[e.Category]
		if !ok {
			ct = &domain.CategoryTotal{Category: e.Category}
			totals[e.Category] = ct
		}
		ct.Count++
		ct.Total += e.Amount
		summary.GrandTotal += e.Amount
		summary.Count++
	}

	for _, ct := range totals {
		summary.Categories = append(summary.Categories, *ct)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Total > summary.Categories[j].Total
	})
	return summary, nil
}

// SaveWeatherRecord appends one weather observation for a farm
func (r *MockRepository) SaveWeatherRecord(ctx context.Context, record domain.WeatherRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.weather[record.FarmID] = append(r.weather[record.FarmID], record)
	return nil
}

// GetWeatherHistory retrieves weather observations within a time range, newest first
func (r *MockRepository) GetWeatherHistory(ctx context.Context, farmID string, from, to time.Time) ([]domain.WeatherRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []domain.WeatherRecord
	for _, rec := range r.weather[farmID] {
		if rec.RecordedAt.Before(from) || rec.RecordedAt.After(to) {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].RecordedAt.After(records[j].RecordedAt)
	})
	return records, nil
}

// Health always succeeds in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

func sortFarms(farms []domain.Farm) {
	sort.Slice(farms, func(i, j int) bool {
		if !farms[i].CreatedAt.Equal(farms[j].CreatedAt) {
			return farms[i].CreatedAt.Before(farms[j].CreatedAt)
		}
		return farms[i].ID < farms[j].ID
	})
}

func expenseMatches(e domain.Expense, f domain.ExpenseFilter) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.FarmID != "" && e.FarmID != f.FarmID {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && e.IncurredOn.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.IncurredOn.After(f.To) {
		return false
	}
	return true
}
