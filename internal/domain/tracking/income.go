package tracking

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/internal/domain/shared"
)

// BaseCurrency is the single currency every stored amount is expressed in.
const BaseCurrency = "USD"

// IncomeField selects the numeric column SumIncome aggregates.
type IncomeField string

const (
	// IncomeAmount sums the money earned.
	IncomeAmount IncomeField = "amount"
	// IncomeHours sums the effort spent.
	IncomeHours IncomeField = "hours"
)

// Valid reports whether f names a summable column.
func (f IncomeField) Valid() bool {
	return f == IncomeAmount || f == IncomeHours
}

// IncomeEvent is a freelance payment in BaseCurrency. Hours is optional effort
// (0 when not recorded).
type IncomeEvent struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Hours       float64         `json:"hours,omitempty"`
	Platform    string          `json:"platform,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Validate checks the fields a caller supplies on creation.
func (e IncomeEvent) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return shared.ValidationError("income", "Validate", "title", "is required")
	}
	if err := ValidateDate("income", "date", e.Date); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return shared.ValidationError("income", "Validate", "amount", "must be positive")
	}
	if e.Hours < 0 {
		return shared.ValidationError("income", "Validate", "hours", "cannot be negative")
	}
	return nil
}

// HourlyRate returns Amount/Hours, or zero when no hours were recorded.
func (e IncomeEvent) HourlyRate() decimal.Decimal {
	if e.Hours <= 0 {
		return decimal.Zero
	}
	return e.Amount.Div(decimal.NewFromFloat(e.Hours)).Round(2)
}

// NormalizeCurrency upper-cases and trims an ISO 4217 code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCurrency reports whether code is a known ISO 4217 currency.
func ValidCurrency(code string) bool {
	code = NormalizeCurrency(code)
	return code != "" && money.GetCurrency(code) != nil
}

// ToBase converts amount in currency to BaseCurrency using rates, where
// rates[code] is the value of one unit of code in BaseCurrency.
func ToBase(amount decimal.Decimal, currency string, rates map[string]decimal.Decimal) (decimal.Decimal, error) {
	currency = NormalizeCurrency(currency)
	if currency == "" || currency == BaseCurrency {
		return amount, nil
	}
	rate, ok := rates[currency]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, shared.ValidationError("income", "Convert", "currency", "no exchange rate for "+currency)
	}
	return amount.Mul(rate).Round(2), nil
}

// FromBase converts a BaseCurrency amount into currency.
func FromBase(amount decimal.Decimal, currency string, rates map[string]decimal.Decimal) (decimal.Decimal, error) {
	currency = NormalizeCurrency(currency)
	if currency == "" || currency == BaseCurrency {
		return amount, nil
	}
	rate, ok := rates[currency]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, shared.ValidationError("income", "Convert", "currency", "no exchange rate for "+currency)
	}
	return amount.Div(rate).Round(2), nil
}
