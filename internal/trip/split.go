// Package trip computes how shared trip expenses split across household
// members and which transfers settle the balance.
package trip

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
)

// Share is one member's position for a trip: what they paid, what their
// portion of the shared costs is, and the difference.
type Share struct {
	UserID int64           `json:"user_id"`
	Paid   decimal.Decimal `json:"paid"`
	Owes   decimal.Decimal `json:"owes"`
	Net    decimal.Decimal `json:"net"`
}

// Balances splits every shared expense equally across members and tallies
// each member's paid/owed totals. Personal expenses are the payer's own and
// are excluded from the split. An expense is credited to its spent_by member
// when set, otherwise to its creator. Cent remainders that do not divide
// evenly go to the lowest member ids, so the split is deterministic and the
// nets always sum to zero.
func Balances(memberIDs []int64, expenses []model.Transaction) []Share {
	if len(memberIDs) == 0 {
		return nil
	}

	ids := make([]int64, len(memberIDs))
	copy(ids, memberIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	paid := make(map[int64]int64, len(ids))
	owes := make(map[int64]int64, len(ids))
	for _, id := range ids {
		paid[id] = 0
		owes[id] = 0
	}

	n := int64(len(ids))
	for _, e := range expenses {
		if e.Kind != model.KindExpense || e.IsPersonal {
			continue
		}
		cents := e.Amount.Mul(decimal.NewFromInt(100)).IntPart()

		payer := e.UserID
		if e.SpentBy != nil {
			payer = *e.SpentBy
		}
		if _, ok := paid[payer]; ok {
			paid[payer] += cents
		}

		base := cents / n
		rem := cents % n
		for i, id := range ids {
			share := base
			if int64(i) < rem {
				share++
			}
			owes[id] += share
		}
	}

	shares := make([]Share, 0, len(ids))
	for _, id := range ids {
		p := decimal.New(paid[id], -2)
		o := decimal.New(owes[id], -2)
		shares = append(shares, Share{
			UserID: id,
			Paid:   p,
			Owes:   o,
			Net:    p.Sub(o),
		})
	}
	return shares
}
