package ids

import (
	"github.com/google/uuid"

	"github.com/bnema/watchlist-cli/internal/ports"
)

// UUID generates random version 4 identifiers.
type UUID struct{}

var _ ports.IDGenerator = UUID{}

func (UUID) NewID() string {
	return uuid.NewString()
}
