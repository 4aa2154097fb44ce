package store

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/erazemk/inventar/internal/model"
)

// ListInventory returns per-zone totals of active objects for every active
// zone, empty zones included.
func ListInventory(ctx context.Context, db *sql.DB) ([]model.ZoneInventory, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT z.id, z.name, o.price, o.quantity
		 FROM zones z
		 LEFT JOIN objects o ON o.zone_id = z.id AND o.deletion_date IS NULL
		 WHERE z.deletion_date IS NULL
		 ORDER BY z.id, o.id`,
	)
	if err != nil {
		return nil, storageError("listing inventory", err)
	}
	defer rows.Close()

	var zones []model.ZoneInventory
	for rows.Next() {
		var zoneID int64
		var zoneName string
		var price decimal.NullDecimal
		var quantity sql.NullInt64
		if err := rows.Scan(&zoneID, &zoneName, &price, &quantity); err != nil {
			return nil, storageError("scanning inventory", err)
		}

		if len(zones) == 0 || zones[len(zones)-1].ZoneID != zoneID {
			zones = append(zones, model.ZoneInventory{ZoneID: zoneID, ZoneName: zoneName, TotalValue: decimal.Zero})
		}
		if !quantity.Valid {
			continue
		}

		inv := &zones[len(zones)-1]
		inv.Objects++
		inv.TotalQuantity += int(quantity.Int64)
		inv.TotalValue = inv.TotalValue.Add(price.Decimal.Mul(decimal.NewFromInt(quantity.Int64)))
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating inventory", err)
	}
	return zones, nil
}

// AdjustQuantity changes an object's quantity by delta (for corrections and
// losses). The result may not drop below zero. The current quantity is read
// inside the write transaction.
func AdjustQuantity(ctx context.Context, db *sql.DB, id int64, delta int, user, comment string) error {
	if delta == 0 {
		return validationf("delta must be non-zero")
	}

	return updateObject(ctx, db, id, user, func(cur *model.Object) (model.ObjectUpdate, error) {
		quantity := cur.Quantity + delta
		if quantity < 0 {
			return model.ObjectUpdate{}, validationf("adjustment would result in negative quantity: %d + %d = %d", cur.Quantity, delta, quantity)
		}
		return model.ObjectUpdate{Quantity: &quantity, Comment: comment}, nil
	})
}
