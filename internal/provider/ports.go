package provider

import (
	"context"
	"errors"

	"github.com/OzanA78/doviz-hesaplama/internal/engine"
)

// ErrNoRows means the backing source holds no price rows at all.
// The HTTP layer maps it to 404.
var ErrNoRows = errors.New("no price rows available")

// PriceSource is the outbound port every price backend implements.
// It satisfies both engine reader interfaces.
type PriceSource interface {
	// HistoricalPrices returns all month prices sorted ascending by date.
	HistoricalPrices(ctx context.Context) ([]engine.PricePoint, error)

	// CurrentPrice returns the present-day gram-gold price.
	CurrentPrice(ctx context.Context) (engine.CurrentPrice, error)
}
