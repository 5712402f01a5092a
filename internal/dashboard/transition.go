package dashboard

import (
	"context"
	"strings"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// StatusChangeRequest is the explicit command implied by dropping an item
// onto a board lane. It travels through the same store-mutation path as a
// form edit; there is no second write channel.
type StatusChangeRequest struct {
	ItemID string
	Target string
}

// ResolveLane maps a raw drop-target key to a lane status. The second result
// is false when the key resolves to no lane (a mis-aimed drop).
func ResolveLane(target string) (domain.Status, bool) {
	status := domain.Status(strings.ToLower(strings.TrimSpace(target)))
	if !domain.IsValidStatus(status) {
		return "", false
	}
	return status, true
}

// RequestStatusChange validates the target lane and asks the store to move
// the item. An unresolvable lane key is a user mis-aim, not an error: the
// request is silently dropped with no store mutation. Dependencies are not
// consulted; an item can be completed while items it depends on are open.
// Returns whether a mutation was applied.
func (c *Controller) RequestStatusChange(ctx context.Context, req StatusChangeRequest) (bool, error) {
	itemID := strings.TrimSpace(req.ItemID)
	if itemID == "" {
		return false, nil
	}
	target, ok := ResolveLane(req.Target)
	if !ok {
		return false, nil
	}
	if _, err := c.store.ChangeStatus(ctx, itemID, target); err != nil {
		return false, err
	}
	// Same re-derivation cycle as any other collection change.
	if err := c.Refresh(ctx); err != nil {
		return true, err
	}
	return true, nil
}
