// Package app contains the market data backend use cases.
package app

import (
	"context"

	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
)

// VenueProvider quotes one venue. Symbols use the BASE/QUOTE form.
type VenueProvider interface {
	Name() string
	Kind() marketDomain.VenueKind
	Quote(ctx context.Context, symbol string) (marketDomain.VenueQuote, error)
}
