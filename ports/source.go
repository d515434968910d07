package ports

import (
	"context"

	"cmegrid/domain/cme"
)

// LoadRequest selects the input to load
type LoadRequest struct {
	Path  string
	Sheet string // empty selects the first sheet
	// StrictColumns makes an absent required column fatal
	StrictColumns bool
}

// RecordSource loads CME records with the two measurements coerced
type RecordSource interface {
	Load(ctx context.Context, req LoadRequest) (*cme.Dataset, error)
}
