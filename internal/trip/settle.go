package trip

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transfer is a single payment that reduces the trip imbalance.
type Transfer struct {
	FromUserID int64           `json:"from_user_id"`
	ToUserID   int64           `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Settle produces the transfers that bring every share's net to zero.
// Greedy largest-debtor-to-largest-creditor matching; ties break on user id
// so the output is deterministic.
func Settle(shares []Share) []Transfer {
	type position struct {
		userID int64
		amount decimal.Decimal
	}

	var debtors, creditors []position
	for _, s := range shares {
		switch {
		case s.Net.IsNegative():
			debtors = append(debtors, position{s.UserID, s.Net.Neg()})
		case s.Net.IsPositive():
			creditors = append(creditors, position{s.UserID, s.Net})
		}
	}

	byAmountDesc := func(ps []position) func(i, j int) bool {
		return func(i, j int) bool {
			if !ps[i].amount.Equal(ps[j].amount) {
				return ps[i].amount.GreaterThan(ps[j].amount)
			}
			return ps[i].userID < ps[j].userID
		}
	}
	sort.Slice(debtors, byAmountDesc(debtors))
	sort.Slice(creditors, byAmountDesc(creditors))

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]
		amount := decimal.Min(d.amount, c.amount)

		if amount.IsPositive() {
			transfers = append(transfers, Transfer{
				FromUserID: d.userID,
				ToUserID:   c.userID,
				Amount:     amount,
			})
		}

		d.amount = d.amount.Sub(amount)
		c.amount = c.amount.Sub(amount)
		if d.amount.IsZero() {
			i++
		}
		if c.amount.IsZero() {
			j++
		}
	}
	return transfers
}
