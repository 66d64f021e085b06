package stockledger

import (
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// AdjustInput changes an item's warehouse quantity by a signed delta.
type AdjustInput struct {
	ItemID      int64
	WarehouseID int64
	Delta       int
	ActorID     int64
	ActorRole   enums.UserRole
}

// SetLocationInput sets an item's quantity at a location to an absolute value.
type SetLocationInput struct {
	ItemID     int64
	LocationID int64
	Quantity   int
	ActorID    int64
	ActorRole  enums.UserRole
}

// TransferInput moves quantity between locations. FromLocationID nil means an
// inbound receipt with no source decrement.
type TransferInput struct {
	ItemID         int64
	FromLocationID *int64
	ToLocationID   int64
	Quantity       int
	Notes          *string
	ActorID        int64
	ActorRole      enums.UserRole
}

// ListTransfersInput filters the transfer record page.
type ListTransfersInput struct {
	ItemID     *int64
	LocationID *int64
	Limit      int
	Offset     int
}

func (in *ListTransfersInput) normalize() {
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	if in.Limit > maxPageSize {
		in.Limit = maxPageSize
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
}

// TransferList is one page of transfer records plus the filtered total.
type TransferList struct {
	Transfers []models.StockTransfer `json:"transfers"`
	Total     int64                  `json:"total"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
}
