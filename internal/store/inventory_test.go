package store

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
)

func TestListInventory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	createObject(t, database, drill()) // 3 x 8
	chair := drill()
	chair.Name = "Chair"
	chair.Price = decimal.RequireFromString("12.50")
	chair.Quantity = 2
	createObject(t, database, chair)

	inv, err := ListInventory(ctx, database)
	if err != nil {
		t.Fatalf("ListInventory: %v", err)
	}
	if len(inv) != 3 {
		t.Fatalf("expected 3 zones, got %d", len(inv))
	}

	storage := inv[1]
	if storage.ZoneName != "Storage" {
		t.Fatalf("expected Storage second, got %q", storage.ZoneName)
	}
	if storage.Objects != 2 || storage.TotalQuantity != 5 {
		t.Errorf("expected 2 objects and 5 units, got %d and %d", storage.Objects, storage.TotalQuantity)
	}
	if !storage.TotalValue.Equal(decimal.NewFromInt(49)) {
		t.Errorf("expected total value 49, got %s", storage.TotalValue)
	}
	if inv[0].Objects != 0 || !inv[0].TotalValue.IsZero() {
		t.Errorf("expected empty default zone, got %+v", inv[0])
	}
}

func TestAdjustQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	obj := createObject(t, database, drill())

	if err := AdjustQuantity(ctx, database, obj.ID, -2, "alice", "two broken"); err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	got, _ := GetObject(ctx, database, obj.ID)
	if got.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", got.Quantity)
	}

	entries, _ := QueryHistory(ctx, database, model.HistoryFilter{ObjectID: obj.ID, ActionType: model.ActionUpdate})
	if len(entries) != 1 || entries[0].Comment != "two broken" {
		t.Errorf("expected one commented update entry, got %+v", entries)
	}

	if err := AdjustQuantity(ctx, database, obj.ID, -5, "alice", ""); err == nil {
		t.Error("expected error for negative result")
	}
	if err := AdjustQuantity(ctx, database, obj.ID, 0, "alice", ""); err == nil {
		t.Error("expected error for zero delta")
	}
}

func TestAdjustQuantityConcurrent(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "inventar.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()
	ctx := context.Background()
	if err := db.Init(ctx, database); err != nil {
		t.Fatalf("Init: %v", err)
	}

	in := drill()
	in.Quantity = 0
	obj := createObject(t, database, in)

	const workers = 50
	var ok atomic.Int64
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := AdjustQuantity(ctx, database, obj.ID, 1, "alice", ""); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	if ok.Load() == 0 {
		t.Fatal("expected at least one adjustment to succeed")
	}
	got, err := GetObject(ctx, database, obj.ID)
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if int64(got.Quantity) != ok.Load() {
		t.Errorf("expected quantity %d after %d successful adjustments, got %d", ok.Load(), ok.Load(), got.Quantity)
	}

	entries, err := QueryHistory(ctx, database, model.HistoryFilter{ObjectID: obj.ID, ActionType: model.ActionUpdate})
	if err != nil {
		t.Fatalf("QueryHistory: %v", err)
	}
	if int64(len(entries)) != ok.Load() {
		t.Errorf("expected %d update entries, got %d", ok.Load(), len(entries))
	}
}
