package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD INCOME COMMAND
// Stores a freelance payment. Amounts in another currency are converted to
// the base currency with the rates from settings at the time of recording.
// ══════════════════════════════════════════════════════════════════════════════

// RecordIncomeCommand contains the data of an income event.
type RecordIncomeCommand struct {
	Title string

	// Date of the payment. Empty means today.
	Date string

	// Amount in Currency.
	Amount decimal.Decimal

	// Currency is an ISO 4217 code. Empty means the base currency.
	Currency string

	// Hours spent, 0 when not tracked.
	Hours float64

	Platform    string
	Description string
}

// Validate checks the parts that do not depend on settings.
func (c *RecordIncomeCommand) Validate() error {
	c.Currency = tracking.NormalizeCurrency(c.Currency)
	if c.Currency == "" {
		c.Currency = tracking.BaseCurrency
	}
	if !tracking.ValidCurrency(c.Currency) {
		return shared.ValidationError("income", "Record", "currency", "unknown currency code "+c.Currency)
	}
	if !c.Amount.IsPositive() {
		return shared.ValidationError("income", "Record", "amount", "must be positive")
	}
	return nil
}

// RecordIncomeResult is the stored event and what was originally entered.
type RecordIncomeResult struct {
	Event            tracking.IncomeEvent `json:"event"`
	OriginalAmount   decimal.Decimal      `json:"original_amount"`
	OriginalCurrency string               `json:"original_currency"`
}

// RecordIncomeHandler handles RecordIncomeCommand.
type RecordIncomeHandler struct {
	store tracking.Store
	clock timeutil.Clock
}

// NewRecordIncomeHandler creates a new handler.
func NewRecordIncomeHandler(store tracking.Store, clock timeutil.Clock) *RecordIncomeHandler {
	return &RecordIncomeHandler{store: store, clock: clock}
}

// Handle executes the command.
func (h *RecordIncomeHandler) Handle(ctx context.Context, cmd RecordIncomeCommand) (*RecordIncomeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_income: %w", err)
	}

	amount := cmd.Amount
	if cmd.Currency != tracking.BaseCurrency {
		settings, err := h.store.GetSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("record_income: settings: %w", err)
		}
		amount, err = tracking.ToBase(cmd.Amount, cmd.Currency, settings.ExchangeRates)
		if err != nil {
			return nil, fmt.Errorf("record_income: %w", err)
		}
	}

	e := tracking.IncomeEvent{
		Title:       strings.TrimSpace(cmd.Title),
		Date:        defaultDate(cmd.Date, h.clock),
		Amount:      amount,
		Hours:       cmd.Hours,
		Platform:    strings.TrimSpace(cmd.Platform),
		Description: strings.TrimSpace(cmd.Description),
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("record_income: %w", err)
	}

	id, err := h.store.CreateIncome(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("record_income: %w", err)
	}
	e.ID = id

	return &RecordIncomeResult{
		Event:            e,
		OriginalAmount:   cmd.Amount,
		OriginalCurrency: cmd.Currency,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE INCOME COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// DeleteIncomeCommand identifies the event to remove.
type DeleteIncomeCommand struct {
	ID int64
}

// DeleteIncomeHandler handles DeleteIncomeCommand. Unknown ids are a no-op.
type DeleteIncomeHandler struct {
	store tracking.IncomeRepository
}

// NewDeleteIncomeHandler creates a new handler.
func NewDeleteIncomeHandler(store tracking.IncomeRepository) *DeleteIncomeHandler {
	return &DeleteIncomeHandler{store: store}
}

// Handle executes the command.
func (h *DeleteIncomeHandler) Handle(ctx context.Context, cmd DeleteIncomeCommand) error {
	if err := validateID("income", cmd.ID); err != nil {
		return err
	}
	if err := h.store.DeleteIncome(ctx, cmd.ID); err != nil {
		return fmt.Errorf("delete_income: %w", err)
	}
	return nil
}
