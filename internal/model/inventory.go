package model

import "github.com/shopspring/decimal"

// ZoneInventory totals the active objects held in one zone.
type ZoneInventory struct {
	ZoneID        int64           `json:"zone_id"`
	ZoneName      string          `json:"zone_name"`
	Objects       int             `json:"objects"`
	TotalQuantity int             `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}
