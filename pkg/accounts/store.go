package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account is the slice of a contractor account this subsystem reads.
// The billing subsystem owns the full record; the tier field is read here
// and written elsewhere.
type Account struct {
	ID            uuid.UUID
	Tier          string    // raw stored value, normalize with tiers.Normalize
	BillingAnchor time.Time // anchors the monthly billing period boundary
	CreatedAt     time.Time
}

// Store defines read access to contractor accounts.
type Store interface {
	// Get retrieves an account by contractor ID.
	// Returns ErrContractorNotFound if the contractor does not exist.
	Get(ctx context.Context, contractorID uuid.UUID) (*Account, error)
}
