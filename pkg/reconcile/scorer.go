package reconcile

import (
	"sort"

	"github.com/sonaeru/sonaeru/pkg/obligation"
	"github.com/sonaeru/sonaeru/pkg/transaction"
)

const (
	amountWeight = 0.6
	dateWeight   = 0.4
)

// Candidate is one scored ledger transaction for a pending occurrence.
type Candidate struct {
	Transaction transaction.Transaction
	Score       float64
}

// Score rates how well a ledger transaction matches an occurrence. Amount
// proximity compares the transaction's magnitude against the expected amount,
// relative to the expected amount; date proximity decays linearly to zero at
// windowDays, the same setting that bounds the candidate window. Both terms
// are clamped at zero, so the score stays in [0, 1].
func Score(occ obligation.Occurrence, tx transaction.Transaction, windowDays int) float64 {
	amountProximity := 0.0
	if occ.ExpectedAmount.IsPositive() {
		delta := tx.Amount.Abs().Sub(occ.ExpectedAmount).Abs()
		ratio, _ := delta.Div(occ.ExpectedAmount).Float64()
		amountProximity = clampZero(1 - ratio)
	}
	dateProximity := 0.0
	if windowDays > 0 {
		dateProximity = clampZero(1 - float64(daysApart(occ, tx))/float64(windowDays))
	}
	return amountWeight*amountProximity + dateWeight*dateProximity
}

// Rank orders candidates best first. Equal scores are broken by the smaller
// date distance, then by transaction id to keep the order deterministic.
func Rank(occ obligation.Occurrence, transactions []transaction.Transaction, windowDays int) []Candidate {
	candidates := make([]Candidate, 0, len(transactions))
	for _, tx := range transactions {
		candidates = append(candidates, Candidate{Transaction: tx, Score: Score(occ, tx, windowDays)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		di := daysApart(occ, candidates[i].Transaction)
		dj := daysApart(occ, candidates[j].Transaction)
		if di != dj {
			return di < dj
		}
		return candidates[i].Transaction.Id < candidates[j].Transaction.Id
	})
	return candidates
}

func daysApart(occ obligation.Occurrence, tx transaction.Transaction) int {
	days := int(tx.Date.Sub(occ.ScheduledDate).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
