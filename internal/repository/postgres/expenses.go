package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/farmsight/backend/internal/domain"
)

const expenseColumns = `id, farm_id, user_id, category, description, quantity,
	unit_price, amount, incurred_on, notes, created_at, updated_at`

// CreateExpense persists a new expense entry
func (r *PostgresRepository) CreateExpense(ctx context.Context, expense domain.Expense) error {
	query := `
		INSERT INTO expenses (
			id, farm_id, user_id, category, description, quantity,
			unit_price, amount, incurred_on, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		expense.ID, expense.FarmID, expense.UserID, expense.Category, expense.Description,
		expense.Quantity, expense.UnitPrice, expense.Amount, expense.IncurredOn,
		expense.Notes, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to create expense: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by primary key
func (r *PostgresRepository) GetExpense(ctx context.Context, id string) (domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	expense, err := scanExpense(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Expense{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Expense{}, fmt.Errorf("postgres: failed to query expense: %w", err)
	}

	return expense, nil
}

// ListExpenses retrieves expenses matching the filter, newest first
func (r *PostgresRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	where, args := expenseFilterClauses(filter)

	query := `SELECT ` + expenseColumns + ` FROM expenses` + where +
		` ORDER BY incurred_on DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan expense row: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// UpdateExpense overwrites the mutable fields of an existing expense entry
func (r *PostgresRepository) UpdateExpense(ctx context.Context, expense domain.Expense) error {
	query := `
		UPDATE expenses
		SET category = $2, description = $3, quantity = $4, unit_price = $5,
			amount = $6, incurred_on = $7, notes = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		expense.ID, expense.Category, expense.Description, expense.Quantity,
		expense.UnitPrice, expense.Amount, expense.IncurredOn, expense.Notes, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteExpense removes an expense entry
func (r *PostgresRepository) DeleteExpense(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// SummarizeExpenses aggregates expenses per category, largest spend first
func (r *PostgresRepository) SummarizeExpenses(ctx context.Context, filter domain.ExpenseFilter) (domain.ExpenseSummary, error) {
	where, args := expenseFilterClauses(filter)

	query := `
		SELECT category, COUNT(*), COALESCE(SUM(amount), 0)
		FROM expenses` + where + `
		GROUP BY category
		ORDER BY SUM(amount) DESC
	`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return domain.ExpenseSummary{}, fmt.Errorf("postgres: failed to summarize expenses: %w", err)
	}
	defer rows.Close()

	var summary domain.ExpenseSummary
	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Count, &ct.Total); err != nil {
			return domain.ExpenseSummary{}, fmt.Errorf("postgres: failed to scan summary row: %w", err)
		}
		summary.Categories = append(summary.Categories, ct)
		summary.GrandTotal += ct.Total
		summary.Count += ct.Count
	}

	return summary, rows.Err()
}

func scanExpense(row pgx.Row) (domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(
		&e.ID, &e.FarmID, &e.UserID, &e.Category, &e.Description, &e.Quantity,
		&e.UnitPrice, &e.Amount, &e.IncurredOn, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// expenseFilterClauses builds the WHERE clause for the optional filter fields
func expenseFilterClauses(filter domain.ExpenseFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(cond string, val interface{}) {
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.FarmID != "" {
		add("farm_id = $%d", filter.FarmID)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if !filter.From.IsZero() {
		add("incurred_on >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("incurred_on <= $%d", filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
