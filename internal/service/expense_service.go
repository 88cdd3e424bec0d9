package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/farmsight/backend/internal/domain"
	"github.com/farmsight/backend/pkg/utils"
)

// ExpenseInput carries the caller-supplied expense fields
type ExpenseInput struct {
	FarmID      string
	Category    string
	Description string
	Quantity    float64
	UnitPrice   float64
	Amount      float64
	IncurredOn  time.Time
	Notes       string
}

// ExpenseService manages expense entries, scoped to their owner
type ExpenseService struct {
	repo DataRepository
}

// NewExpenseService creates a new expense service
func NewExpenseService(repo DataRepository) *ExpenseService {
	return &ExpenseService{repo: repo}
}

// Create records a new expense against one of the caller's farms
func (s *ExpenseService) Create(ctx context.Context, userID string, in ExpenseInput) (domain.Expense, error) {
	farm, err := s.repo.GetFarm(ctx, in.FarmID)
	if err != nil {
		return domain.Expense{}, err
	}
	if farm.OwnerID != userID {
		return domain.Expense{}, domain.ErrForbidden
	}

	now := time.Now()
	expense := domain.Expense{
		ID:          uuid.NewString(),
		FarmID:      in.FarmID,
		UserID:      userID,
		Category:    in.Category,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Amount:      resolveAmount(in),
		IncurredOn:  in.IncurredOn,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return domain.Expense{}, err
	}
	return expense, nil
}

// Get returns an expense after checking the caller owns it
func (s *ExpenseService) Get(ctx context.Context, userID, id string) (domain.Expense, error) {
	expense, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return domain.Expense{}, err
	}
	if expense.UserID != userID {
		return domain.Expense{}, domain.ErrForbidden
	}
	return expense, nil
}

// List returns the caller's expenses matching the filter
func (s *ExpenseService) List(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	filter.UserID = userID
	return s.repo.ListExpenses(ctx, filter)
}

// Update overwrites an expense's mutable fields
func (s *ExpenseService) Update(ctx context.Context, userID, id string, in ExpenseInput) (domain.Expense, error) {
	expense, err := s.Get(ctx, userID, id)
	if err != nil {
		return domain.Expense{}, err
	}

	expense.Category = in.Category
	expense.Description = in.Description
	expense.Quantity = in.Quantity
	expense.UnitPrice = in.UnitPrice
	expense.Amount = resolveAmount(in)
	expense.IncurredOn = in.IncurredOn
	expense.Notes = in.Notes
	expense.UpdatedAt = time.Now()

	if err := s.repo.UpdateExpense(ctx, expense); err != nil {
		return domain.Expense{}, err
	}
	return expense, nil
}

// Delete removes an expense after checking the caller owns it
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteExpense(ctx, id)
}

// Summarize aggregates the caller's expenses per category
func (s *ExpenseService) Summarize(ctx context.Context, userID string, filter domain.ExpenseFilter) (domain.ExpenseSummary, error) {
	filter.UserID = userID
	return s.repo.SummarizeExpenses(ctx, filter)
}

// resolveAmount prefers an explicit amount; otherwise quantity times unit price
func resolveAmount(in ExpenseInput) float64 {
	if in.Amount > 0 {
		return in.Amount
	}
	if in.Quantity > 0 && in.UnitPrice > 0 {
		return utils.RoundTo(in.Quantity*in.UnitPrice, 2)
	}
	return 0
}
