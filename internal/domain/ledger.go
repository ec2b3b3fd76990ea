package domain

import "time"

// Ledger reasons
const (
	LedgerReasonDailyRankReward = "daily_rank_reward"
	LedgerReasonShopPurchase    = "shop_purchase"
)

// CoinLedgerEntry is append-only; every balance change writes exactly one.
type CoinLedgerEntry struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Amount    int64                  `db:"amount" json:"amount"`
	Reason    string                 `db:"reason" json:"reason"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}
