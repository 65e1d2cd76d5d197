package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one transaction in the ledger. Amount is signed: negative
// for spending, positive for income, in the entry's currency.
type LedgerEntry struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Memo       string          `json:"memo,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	SyncMeta
}

// LedgerEntryFilter narrows GetAll queries over the entries table. Zero
// fields are ignored.
type LedgerEntryFilter struct {
	AccountID   string
	Category    string
	From        time.Time
	To          time.Time
	PendingOnly bool
}
