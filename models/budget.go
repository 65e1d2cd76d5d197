package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spending for one category in one calendar month.
// Month is "YYYY-MM".
type Budget struct {
	ID        string          `json:"id"`
	Category  string          `json:"category"`
	Month     string          `json:"month"`
	Limit     decimal.Decimal `json:"limit"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	SyncMeta
}
