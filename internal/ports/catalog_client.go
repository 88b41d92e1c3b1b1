package ports

import (
	"context"

	"github.com/bnema/watchlist-cli/internal/domain"
)

type CatalogClient interface {
	FetchPopular(ctx context.Context, apiKey string) ([]domain.CatalogEntry, error)
}
