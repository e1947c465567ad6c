package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE SETTINGS COMMAND
// Partial merge: only supplied keys change, exchange rates merge per currency.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateSettingsCommand carries the keys to change.
type UpdateSettingsCommand struct {
	Patch tracking.SettingsPatch
}

// UpdateSettingsHandler handles UpdateSettingsCommand.
type UpdateSettingsHandler struct {
	store tracking.SettingsRepository
}

// NewUpdateSettingsHandler creates a new handler.
func NewUpdateSettingsHandler(store tracking.SettingsRepository) *UpdateSettingsHandler {
	return &UpdateSettingsHandler{store: store}
}

// Handle executes the command and returns the record after the merge.
func (h *UpdateSettingsHandler) Handle(ctx context.Context, cmd UpdateSettingsCommand) (*tracking.Settings, error) {
	p := cmd.Patch
	if p.PreferredCurrency != nil {
		code := tracking.NormalizeCurrency(*p.PreferredCurrency)
		p.PreferredCurrency = &code
	}
	if len(p.ExchangeRates) > 0 {
		rates := make(map[string]decimal.Decimal, len(p.ExchangeRates))
		for code, rate := range p.ExchangeRates {
			rates[tracking.NormalizeCurrency(code)] = rate
		}
		p.ExchangeRates = rates
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("update_settings: %w", err)
	}

	if !p.IsEmpty() {
		if err := h.store.MergeSettings(ctx, p); err != nil {
			return nil, fmt.Errorf("update_settings: %w", err)
		}
	}

	s, err := h.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("update_settings: %w", err)
	}
	return &s, nil
}
