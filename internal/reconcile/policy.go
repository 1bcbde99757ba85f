package reconcile

import (
	"errors"
	"fmt"
	"time"

	"github.com/freshlane/wholesale-admin/internal/models"
)

// ErrUnknownStatus marks a record whose status is outside the expected state
// machine. Such records are skipped for the pass and never written.
var ErrUnknownStatus = errors.New("unknown status")

// Rule advances a record to Next once it has stayed in its current status for
// at least After.
type Rule struct {
	Next  models.OrderStatus
	After time.Duration
}

// Policy maps a non-terminal status to its time-based transition. Statuses
// absent from the table are never advanced automatically.
type Policy map[models.OrderStatus]Rule

// DefaultPolicy auto-confirms freshly placed orders after an hour and marks
// out-for-delivery records delivered after two. The durations are deployment
// defaults, not business constants; override them per installation.
func DefaultPolicy() Policy {
	return Policy{
		models.OrderPlaced:         {Next: models.OrderConfirmed, After: time.Hour},
		models.OrderOutForDelivery: {Next: models.OrderDelivered, After: 2 * time.Hour},
	}
}

// Validate rejects tables that could move a record backward, resurrect a
// terminal record, or apply cancellation automatically.
func (p Policy) Validate() error {
	for from, rule := range p {
		if from.Terminal() {
			return fmt.Errorf("policy transitions out of terminal status %q", from)
		}
		if rule.Next == models.OrderCancelled {
			return fmt.Errorf("policy auto-cancels from %q; cancellation is a manual action", from)
		}
		if from.StepIndex() < 0 || rule.Next.StepIndex() < 0 {
			return fmt.Errorf("policy contains unrecognized status %q -> %q", from, rule.Next)
		}
		if rule.Next.StepIndex() <= from.StepIndex() {
			return fmt.Errorf("policy moves %q backward to %q", from, rule.Next)
		}
		if rule.After <= 0 {
			return fmt.Errorf("policy rule for %q has non-positive duration", from)
		}
	}
	return nil
}

// Evaluate returns the status a record should move to given its current
// status and the time it has spent there. ok is false when no transition is
// due. The result depends only on the arguments, so re-evaluating an
// unchanged record is free of side effects.
func (p Policy) Evaluate(status models.OrderStatus, elapsed time.Duration) (next models.OrderStatus, ok bool, err error) {
	if !status.Known() {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	if status.Terminal() {
		return "", false, nil
	}
	rule, found := p[status]
	if !found || elapsed < rule.After {
		return "", false, nil
	}
	return rule.Next, true, nil
}
