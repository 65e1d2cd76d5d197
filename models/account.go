package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountCash   = "cash"
	AccountBank   = "bank"
	AccountCredit = "credit"
	AccountCrypto = "crypto"
)

// Account is a source or destination of funds.
type Account struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	SyncMeta
}
