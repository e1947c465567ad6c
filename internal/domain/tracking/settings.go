package tracking

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

// Settings is the single process-wide configuration record. Weekly targets
// are in hours for both tracks; money is in BaseCurrency.
type Settings struct {
	TargetDate           string                     `json:"target_date"`
	IncomeTarget         decimal.Decimal            `json:"income_target"`
	LanguageWeeklyTarget float64                    `json:"language_weekly_target"`
	StudyWeeklyTarget    float64                    `json:"study_weekly_target"`
	Savings              decimal.Decimal            `json:"savings"`
	MonthlyBurn          decimal.Decimal            `json:"monthly_burn"`
	PreferredCurrency    string                     `json:"preferred_currency"`
	ExchangeRates        map[string]decimal.Decimal `json:"exchange_rates"`
}

// Settings keys as stored by every backend. Exchange rates are stored one key
// per currency under RateKeyPrefix.
const (
	KeyTargetDate           = "target_date"
	KeyIncomeTarget         = "income_target"
	KeyLanguageWeeklyTarget = "language_weekly_target"
	KeyStudyWeeklyTarget    = "study_weekly_target"
	KeySavings              = "savings"
	KeyMonthlyBurn          = "monthly_burn"
	KeyPreferredCurrency    = "preferred_currency"
	RateKeyPrefix           = "rate:"
)

// DefaultSettings returns the documented defaults used for any key that has
// never been written.
func DefaultSettings() Settings {
	return Settings{
		TargetDate:           "2027-06-30",
		IncomeTarget:         decimal.NewFromInt(2000),
		LanguageWeeklyTarget: 7,
		StudyWeeklyTarget:    10,
		Savings:              decimal.Zero,
		MonthlyBurn:          decimal.NewFromInt(1500),
		PreferredCurrency:    BaseCurrency,
		ExchangeRates: map[string]decimal.Decimal{
			BaseCurrency: decimal.NewFromInt(1),
			"EUR":        decimal.RequireFromString("1.08"),
			"VND":        decimal.RequireFromString("0.000040"),
		},
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.ExchangeRates = make(map[string]decimal.Decimal, len(s.ExchangeRates))
	for k, v := range s.ExchangeRates {
		out.ExchangeRates[k] = v
	}
	return out
}

// SettingsPatch is a partial update. Nil fields are untouched; ExchangeRates
// merges per currency.
type SettingsPatch struct {
	TargetDate           *string                    `json:"target_date,omitempty"`
	IncomeTarget         *decimal.Decimal           `json:"income_target,omitempty"`
	LanguageWeeklyTarget *float64                   `json:"language_weekly_target,omitempty"`
	StudyWeeklyTarget    *float64                   `json:"study_weekly_target,omitempty"`
	Savings              *decimal.Decimal           `json:"savings,omitempty"`
	MonthlyBurn          *decimal.Decimal           `json:"monthly_burn,omitempty"`
	PreferredCurrency    *string                    `json:"preferred_currency,omitempty"`
	ExchangeRates        map[string]decimal.Decimal `json:"exchange_rates,omitempty"`
}

// Validate checks every supplied field.
func (p SettingsPatch) Validate() error {
	const op = "Merge"
	if p.TargetDate != nil {
		if err := ValidateDate("settings", KeyTargetDate, *p.TargetDate); err != nil {
			return err
		}
	}
	for key, v := range map[string]*decimal.Decimal{
		KeyIncomeTarget: p.IncomeTarget,
		KeySavings:      p.Savings,
		KeyMonthlyBurn:  p.MonthlyBurn,
	} {
		if v != nil && v.IsNegative() {
			return shared.ValidationError("settings", op, key, "cannot be negative")
		}
	}
	if p.LanguageWeeklyTarget != nil && *p.LanguageWeeklyTarget < 0 {
		return shared.ValidationError("settings", op, KeyLanguageWeeklyTarget, "cannot be negative")
	}
	if p.StudyWeeklyTarget != nil && *p.StudyWeeklyTarget < 0 {
		return shared.ValidationError("settings", op, KeyStudyWeeklyTarget, "cannot be negative")
	}
	if p.PreferredCurrency != nil && !ValidCurrency(*p.PreferredCurrency) {
		return shared.ValidationError("settings", op, KeyPreferredCurrency, "unknown currency code")
	}
	for code, rate := range p.ExchangeRates {
		if !ValidCurrency(code) {
			return shared.ValidationError("settings", op, "exchange_rates", "unknown currency code "+code)
		}
		if !rate.IsPositive() {
			return shared.ValidationError("settings", op, "exchange_rates", "rate for "+code+" must be positive")
		}
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return len(p.Values()) == 0
}

// Merge returns s with the patch applied. s itself is not modified.
func (s Settings) Merge(p SettingsPatch) Settings {
	out := s.Clone()
	if p.TargetDate != nil {
		out.TargetDate = *p.TargetDate
	}
	if p.IncomeTarget != nil {
		out.IncomeTarget = *p.IncomeTarget
	}
	if p.LanguageWeeklyTarget != nil {
		out.LanguageWeeklyTarget = *p.LanguageWeeklyTarget
	}
	if p.StudyWeeklyTarget != nil {
		out.StudyWeeklyTarget = *p.StudyWeeklyTarget
	}
	if p.Savings != nil {
		out.Savings = *p.Savings
	}
	if p.MonthlyBurn != nil {
		out.MonthlyBurn = *p.MonthlyBurn
	}
	if p.PreferredCurrency != nil {
		out.PreferredCurrency = NormalizeCurrency(*p.PreferredCurrency)
	}
	for code, rate := range p.ExchangeRates {
		out.ExchangeRates[NormalizeCurrency(code)] = rate
	}
	return out
}

// Values flattens the patch into the stored key/value form. Only supplied
// keys appear.
func (p SettingsPatch) Values() map[string]string {
	kv := make(map[string]string)
	if p.TargetDate != nil {
		kv[KeyTargetDate] = *p.TargetDate
	}
	if p.IncomeTarget != nil {
		kv[KeyIncomeTarget] = p.IncomeTarget.String()
	}
	if p.LanguageWeeklyTarget != nil {
		kv[KeyLanguageWeeklyTarget] = formatFloat(*p.LanguageWeeklyTarget)
	}
	if p.StudyWeeklyTarget != nil {
		kv[KeyStudyWeeklyTarget] = formatFloat(*p.StudyWeeklyTarget)
	}
	if p.Savings != nil {
		kv[KeySavings] = p.Savings.String()
	}
	if p.MonthlyBurn != nil {
		kv[KeyMonthlyBurn] = p.MonthlyBurn.String()
	}
	if p.PreferredCurrency != nil {
		kv[KeyPreferredCurrency] = NormalizeCurrency(*p.PreferredCurrency)
	}
	for code, rate := range p.ExchangeRates {
		kv[RateKeyPrefix+NormalizeCurrency(code)] = rate.String()
	}
	return kv
}

// SettingsFromValues rebuilds Settings from stored key/values. Keys that are
// missing or unparsable fall back to DefaultSettings.
func SettingsFromValues(kv map[string]string) Settings {
	s := DefaultSettings()
	if v, ok := kv[KeyTargetDate]; ok && v != "" {
		s.TargetDate = v
	}
	if d, ok := parseDecimal(kv, KeyIncomeTarget); ok {
		s.IncomeTarget = d
	}
	if f, ok := parseFloat(kv, KeyLanguageWeeklyTarget); ok {
		s.LanguageWeeklyTarget = f
	}
	if f, ok := parseFloat(kv, KeyStudyWeeklyTarget); ok {
		s.StudyWeeklyTarget = f
	}
	if d, ok := parseDecimal(kv, KeySavings); ok {
		s.Savings = d
	}
	if d, ok := parseDecimal(kv, KeyMonthlyBurn); ok {
		s.MonthlyBurn = d
	}
	if v, ok := kv[KeyPreferredCurrency]; ok && v != "" {
		s.PreferredCurrency = v
	}
	for key := range kv {
		if code, ok := strings.CutPrefix(key, RateKeyPrefix); ok {
			if d, ok := parseDecimal(kv, key); ok {
				s.ExchangeRates[code] = d
			}
		}
	}
	return s
}

// Currencies returns the exchange-rate codes in sorted order.
func (s Settings) Currencies() []string {
	codes := make([]string, 0, len(s.ExchangeRates))
	for code := range s.ExchangeRates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func parseDecimal(kv map[string]string, key string) (decimal.Decimal, bool) {
	v, ok := kv[key]
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseFloat(kv map[string]string, key string) (float64, bool) {
	v, ok := kv[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
