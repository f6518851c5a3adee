package obligation

import (
	"sort"

	"github.com/sonaeru/sonaeru/pkg/schedule"
)

// Diff is the set of persistence decisions produced by one synchronization
// run. The repository applies it in a single transaction: either the whole
// diff commits or none of it does.
type Diff struct {
	Creates []Occurrence
	Updates []Occurrence
	Deletes []int
}

func (d Diff) Empty() bool {
	return len(d.Creates) == 0 && len(d.Updates) == 0 && len(d.Deletes) == 0
}

func (d Diff) Summary() SyncSummary {
	return SyncSummary{
		Created: len(d.Creates),
		Updated: len(d.Updates),
		Removed: len(d.Deletes),
	}
}

type SyncSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// Synchronize diffs the persisted occurrence set of one definition against a
// freshly generated schedule for the recurrence rec.
//
// Completed occurrences are never touched: they are dropped from the pairing
// together with the fresh schedule's leading entry when that entry is their
// baseline slot. The caller anchors generation at the latest completion, so
// when the pattern resolves in the anchor month the first generated entry
// re-projects that completion's own month. When it does not resolve there
// (e.g. no 5th Friday until months later) the generator starts at a later
// step and the leading entry is a genuine projection that must be kept.
// Remaining pending occurrences are paired positionally, by ascending date,
// with the remaining fresh entries: mismatches in date, amount or pending
// status become in-place updates, surplus fresh entries become creates,
// surplus pending occurrences become deletes.
//
// Running the result through persistence and synchronizing again yields an
// empty diff.
func Synchronize(definitionId int, rec schedule.Recurrence, existing []Occurrence, fresh []schedule.Entry) Diff {
	var pending []Occurrence
	completed := 0
	for _, occ := range existing {
		if occ.Completed() {
			completed++
		} else {
			pending = append(pending, occ)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].ScheduledDate.Equal(pending[j].ScheduledDate) {
			return pending[i].Id < pending[j].Id
		}
		return pending[i].ScheduledDate.Before(pending[j].ScheduledDate)
	})
	if completed > 0 && len(fresh) > 0 && rec.ResolvesAnchorMonth() {
		fresh = fresh[1:]
	}

	var diff Diff
	paired := len(pending)
	if len(fresh) < paired {
		paired = len(fresh)
	}
	for i := 0; i < paired; i++ {
		occ := pending[i]
		entry := fresh[i]
		status := statusFor(entry.Saving)
		if occ.ScheduledDate.Equal(entry.Date) && occ.ExpectedAmount.Equal(entry.Amount) && occ.Status == status {
			continue
		}
		occ.ScheduledDate = entry.Date
		occ.ExpectedAmount = entry.Amount
		occ.Status = status
		diff.Updates = append(diff.Updates, occ)
	}
	for _, entry := range fresh[paired:] {
		diff.Creates = append(diff.Creates, Occurrence{
			DefinitionId:   definitionId,
			ScheduledDate:  entry.Date,
			ExpectedAmount: entry.Amount,
			Status:         statusFor(entry.Saving),
		})
	}
	for _, occ := range pending[paired:] {
		diff.Deletes = append(diff.Deletes, occ.Id)
	}
	return diff
}

// recurrenceFor builds the generator input for a definition. When completed
// occurrences exist, the anchor moves to the latest completion's actual date,
// so an early or late payment shifts every subsequent projection by the same
// offset.
func recurrenceFor(def Definition, existing []Occurrence) schedule.Recurrence {
	anchor := def.FirstDueDate
	var latest *Occurrence
	for i := range existing {
		occ := existing[i]
		if !occ.Completed() || occ.ActualDate == nil {
			continue
		}
		if latest == nil || occ.ScheduledDate.After(latest.ScheduledDate) {
			latest = &existing[i]
		}
	}
	if latest != nil {
		anchor = *latest.ActualDate
	}
	return schedule.Recurrence{
		Anchor:         anchor,
		IntervalMonths: def.IntervalMonths,
		LeadTimeMonths: def.LeadTimeMonths,
		Pattern:        def.Pattern,
		Adjustment:     def.Adjustment,
		Amount:         def.Amount,
	}
}
