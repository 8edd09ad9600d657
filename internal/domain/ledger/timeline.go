package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimelineEventKind classifies a row on a payable's reconstructed history
type TimelineEventKind string

const (
	TimelineEventPurchaseLinked TimelineEventKind = "purchase_linked"
	TimelineEventPayment        TimelineEventKind = "payment"
	TimelineEventReversal       TimelineEventKind = "reversal"
)

// TimelineEvent is one step in the payable's history. Delta is the change to
// the remaining amount (positive for links, negative for payments) and
// RunningBalance is the remaining amount after this event.
type TimelineEvent struct {
	OccurredAt     time.Time         `json:"occurred_at"`
	Kind           TimelineEventKind `json:"kind"`
	RefID          uuid.UUID         `json:"ref_id"`
	Description    string            `json:"description,omitempty"`
	Delta          decimal.Decimal   `json:"delta"`
	RunningBalance decimal.Decimal   `json:"running_balance"`
}

// BuildTimeline reconstructs the chronological history of a payable from its
// links and payment records. The final running balance always equals the
// payable's current remaining amount because amounts are only ever changed
// through those two lists.
func BuildTimeline(p *PayableRecord) []TimelineEvent {
	events := make([]TimelineEvent, 0, len(p.Links)+len(p.Payments))

	for _, l := range p.Links {
		events = append(events, TimelineEvent{
			OccurredAt:  l.CreatedAt,
			Kind:        TimelineEventPurchaseLinked,
			RefID:       l.PurchaseEntryID,
			Description: l.OrderNumber,
			Delta:       l.Amount,
		})
	}
	for _, r := range p.Payments {
		kind := TimelineEventPayment
		if r.Kind == PaymentKindReversal {
			kind = TimelineEventReversal
		}
		events = append(events, TimelineEvent{
			OccurredAt:  r.CreatedAt,
			Kind:        kind,
			RefID:       r.ID,
			Description: r.Notes,
			Delta:       r.Amount.Neg(),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})

	balance := decimal.Zero
	for i := range events {
		balance = balance.Add(events[i].Delta)
		events[i].RunningBalance = balance
	}

	return events
}
