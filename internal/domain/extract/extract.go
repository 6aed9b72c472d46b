// Package extract turns nested inventory records into raw low-stock entries.
package extract

import (
	"github.com/okian/stockwatch/internal/domain/model"
)

// DefaultThreshold is the stock level at or below which an option alerts.
const DefaultThreshold = 50

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithSponsorRules replaces the sub-product denylist.
func WithSponsorRules(terms []string) Option {
	return func(e *Extractor) {
		if terms != nil {
			e.sponsor = NewRules(terms...)
		}
	}
}

// WithItemRules replaces the kit item denylist.
func WithItemRules(terms []string) Option {
	return func(e *Extractor) {
		if terms != nil {
			e.item = NewRules(terms...)
		}
	}
}

// Extractor walks inventory records applying the exclusion rules.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	sponsor Rules
	item    Rules
}

// New constructs an Extractor with the default denylists.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		sponsor: NewRules(DefaultSponsorRules...),
		item:    NewRules(DefaultItemRules...),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns every option of rec whose quantity is at or below threshold,
// in input order. Missing branches yield nothing.
func (e *Extractor) Extract(rec *model.InventoryRecord, threshold int) []model.RawAlertEntry {
	if rec == nil || len(rec.Related) == 0 {
		return nil
	}

	var out []model.RawAlertEntry
	for _, product := range rec.Related {
		if product == nil || e.sponsor.Match(product.Name) {
			continue
		}
		for _, item := range product.Items {
			if item == nil || e.item.Match(item.Title) {
				continue
			}
			for _, opt := range item.Options {
				if opt == nil || opt.Quantity > threshold {
					continue
				}
				out = append(out, model.RawAlertEntry{
					ProductName:     product.Name,
					ItemLabel:       opt.Label,
					Quantity:        opt.Quantity,
					SourceEventName: rec.EventName,
				})
			}
		}
	}
	return out
}

// SponsorRules returns the active sub-product denylist.
func (e *Extractor) SponsorRules() Rules { return e.sponsor }

// ItemRules returns the active kit item denylist.
func (e *Extractor) ItemRules() Rules { return e.item }
