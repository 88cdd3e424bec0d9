package domain

import "time"

// Expense categories accepted by the tracker
const (
	ExpenseSeeds      = "seeds"
	ExpenseFertilizer = "fertilizer"
	ExpensePesticides = "pesticides"
	ExpenseLabor      = "labor"
	ExpenseEquipment  = "equipment"
	ExpenseIrrigation = "irrigation"
	ExpenseTransport  = "transport"
	ExpenseOther      = "other"
)

// Expense represents one operating expense entry for a farm
type Expense struct {
	ID          string    `json:"id"`
	FarmID      string    `json:"farm_id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity,omitempty"`
	UnitPrice   float64   `json:"unit_price,omitempty"`
	Amount      float64   `json:"amount"`
	IncurredOn  time.Time `json:"incurred_on"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExpenseFilter narrows expense listings
type ExpenseFilter struct {
	UserID   string
	FarmID   string
	Category string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// CategoryTotal is one row of an expense summary
type CategoryTotal struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}

// ExpenseSummary aggregates expenses per category
type ExpenseSummary struct {
	Categories []CategoryTotal `json:"categories"`
	GrandTotal float64         `json:"grand_total"`
	Count      int             `json:"count"`
}
