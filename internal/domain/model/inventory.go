// Package model contains domain models passed between layers.
package model

// Identifier names one monitored event in the catalog (its url key).
type Identifier string

// InventoryRecord is the nested result of one catalog lookup.
// Any nested slice may be nil when the catalog omits that branch.
type InventoryRecord struct {
	EventName string        // name of the monitored event product
	URLKey    string        // catalog url key the record was fetched by
	Related   []*SubProduct // related sub-products (bundles, kits, sponsor items)
}

// SubProduct is one related product of an event, usually a bundle of kit items.
type SubProduct struct {
	Name  string
	SKU   string
	Items []*KitItem
}

// KitItem groups the labeled options of a bundle, e.g. "Camiseta".
type KitItem struct {
	Title   string
	Options []*Option
}

// Option is one selectable variant of a kit item with its remaining quantity.
type Option struct {
	Label    string
	Quantity int
}

// RawAlertEntry is a single low-stock hit emitted by the extractor.
type RawAlertEntry struct {
	ProductName     string
	ItemLabel       string
	Quantity        int
	SourceEventName string
}

// AlertEntry is a deduplicated alert line inside an AlertGroup.
type AlertEntry struct {
	Label    string `json:"label"`
	Quantity int    `json:"quantity"`
}

// AlertGroup collects the alerts raised for one event.
type AlertGroup struct {
	EventName string       `json:"event_name"`
	Entries   []AlertEntry `json:"entries"`
}
