package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventSaleRecorded    SSEEvent = "SaleRecorded"
	SSEEventProductSaved    SSEEvent = "ProductSaved"
	SSEEventProductDeleted  SSEEvent = "ProductDeleted"
	SSEEventStockLow        SSEEvent = "StockLow"
	SSEEventImportCompleted SSEEvent = "ImportCompleted"
	SSEEventStoreUpdated    SSEEvent = "StoreUpdated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// StoreChannel is the channel every member of a store listens on.
func StoreChannel(storeID uuid.UUID) string {
	return "store:" + storeID.String()
}
