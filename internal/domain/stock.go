package domain

// StockItem is the authoritative stock record for one sellable item.
type StockItem struct {
	ID       string  `bson:"_id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
	IsActive bool    `bson:"is_active" json:"is_active"`
}

type ConflictReason string

const (
	ConflictInsufficientStock ConflictReason = "insufficient_stock"
	ConflictItemInactive      ConflictReason = "item_inactive"
	ConflictItemGone          ConflictReason = "item_gone"
)

// AvailabilityConflict describes one cart line that cannot be fulfilled at
// current stock levels. All conflicts for a cart are surfaced together so the
// buyer can resolve everything in one round trip.
type AvailabilityConflict struct {
	ItemID    string         `json:"item_id"`
	Name      string         `json:"name"`
	Requested int            `json:"requested"`
	Available int            `json:"available"`
	Reason    ConflictReason `json:"reason"`
}

// StockUpdate reports the effect of one committed decrement.
type StockUpdate struct {
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
	Remaining int    `json:"remaining"`
}
