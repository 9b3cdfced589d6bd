package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dantechat/internal/model"
)

func newTestStore(t *testing.T, limit int) *PropertyStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "propiedades.db")
	store, err := NewPropertyStore("sqlite3", dsn, 4, 2, limit)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func loadTestFeed(t *testing.T, store *PropertyStore, props []model.Property) {
	t.Helper()
	data, err := json.Marshal(props)
	if err != nil {
		t.Fatalf("failed to marshal feed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "properties.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write feed: %v", err)
	}
	count, err := store.LoadFeed(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to load feed: %v", err)
	}
	if count != len(props) {
		t.Fatalf("loaded %d properties, want %d", count, len(props))
	}
}

func testFeed() []model.Property {
	return []model.Property{
		{Title: "Depto en Palermo", Neighborhood: "Palermo", Price: 120000, Rooms: 2, Sqm: 45, Operacion: "venta", Tipo: "departamento"},
		{Title: "PH en Palermo Soho", Neighborhood: "Palermo", Price: 185000, Rooms: 3, Sqm: 72, Operacion: "venta", Tipo: "ph"},
		{Title: "Casa en Recoleta", Neighborhood: "Recoleta", Price: 350000, Rooms: 4, Sqm: 140, Operacion: "venta", Tipo: "casa"},
		{Title: "Monoambiente en Belgrano", Neighborhood: "Belgrano", Price: 80000, Rooms: 1, Sqm: 30, Operacion: "alquiler", Tipo: "departamento"},
	}
}

func TestPropertyStore_SearchOrderedAndFiltered(t *testing.T) {
	store := newTestStore(t, 50)
	loadTestFeed(t, store, testFeed())
	ctx := context.Background()

	t.Run("empty filters match everything ascending by price", func(t *testing.T) {
		results, err := store.Search(ctx, &model.Filters{})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(results) != 4 {
			t.Fatalf("expected 4 results, got %d", len(results))
		}
		for i := 1; i < len(results); i++ {
			if results[i].Price < results[i-1].Price {
				t.Errorf("results out of order: %v before %v", results[i-1].Price, results[i].Price)
			}
		}
	})

	t.Run("nil filters behave like empty", func(t *testing.T) {
		results, err := store.Search(ctx, nil)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(results) != 4 {
			t.Errorf("expected 4 results, got %d", len(results))
		}
	})

	t.Run("neighborhood matches case-insensitively", func(t *testing.T) {
		hood := "palermo"
		results, err := store.Search(ctx, &model.Filters{Neighborhood: &hood})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results in Palermo, got %d", len(results))
		}
		if results[0].Title != "Depto en Palermo" {
			t.Errorf("cheapest listing must come first, got %q", results[0].Title)
		}
	})

	t.Run("price range and rooms floor combine", func(t *testing.T) {
		min, max := 100000.0, 200000.0
		rooms := 3
		results, err := store.Search(ctx, &model.Filters{MinPrice: &min, MaxPrice: &max, MinRooms: &rooms})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(results) != 1 || results[0].Title != "PH en Palermo Soho" {
			t.Errorf("expected only the PH, got %+v", results)
		}
	})

	t.Run("sqm range", func(t *testing.T) {
		minSqm, maxSqm := 40.0, 80.0
		results, err := store.Search(ctx, &model.Filters{MinSqm: &minSqm, MaxSqm: &maxSqm})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(results) != 2 {
			t.Errorf("expected 2 results between 40 and 80 m2, got %d", len(results))
		}
	})

	t.Run("no rows is an empty slice, not an error", func(t *testing.T) {
		hood := "marte"
		results, err := store.Search(ctx, &model.Filters{Neighborhood: &hood})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	})
}

func TestPropertyStore_SearchCappedAtLimit(t *testing.T) {
	store := newTestStore(t, 2)
	loadTestFeed(t, store, testFeed())

	results, err := store.Search(context.Background(), &model.Filters{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected the row cap to apply, got %d results", len(results))
	}
	// The cap keeps the cheapest rows.
	if results[0].Title != "Monoambiente en Belgrano" || results[1].Title != "Depto en Palermo" {
		t.Errorf("unexpected capped set: %q, %q", results[0].Title, results[1].Title)
	}
}

func TestPropertyStore_LoadFeedReplaces(t *testing.T) {
	store := newTestStore(t, 50)
	loadTestFeed(t, store, testFeed())

	loadTestFeed(t, store, []model.Property{
		{Title: "Terreno en Caballito", Neighborhood: "Caballito", Price: 95000, Operacion: "venta", Tipo: "terreno"},
	})

	results, err := store.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Terreno en Caballito" {
		t.Errorf("reload must replace previous rows, got %+v", results)
	}
}

func TestPropertyStore_GetByID(t *testing.T) {
	store := newTestStore(t, 50)
	loadTestFeed(t, store, testFeed())
	ctx := context.Background()

	all, err := store.Search(ctx, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	p, err := store.GetByID(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if p == nil || p.Title != all[0].Title {
		t.Errorf("expected %q, got %+v", all[0].Title, p)
	}

	missing, err := store.GetByID(ctx, 99999)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for an unknown id, got %+v", missing)
	}
}

func TestPropertyStore_FindByTitle(t *testing.T) {
	store := newTestStore(t, 50)
	loadTestFeed(t, store, testFeed())
	ctx := context.Background()

	p, err := store.FindByTitle(ctx, "palermo soho")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if p == nil || p.Title != "PH en Palermo Soho" {
		t.Errorf("fragment lookup must be case-insensitive, got %+v", p)
	}

	missing, err := store.FindByTitle(ctx, "castillo en la luna")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for an unknown title, got %+v", missing)
	}
}

func TestPropertyStore_DistinctValues(t *testing.T) {
	store := newTestStore(t, 50)
	loadTestFeed(t, store, testFeed())
	ctx := context.Background()

	hoods, err := store.DistinctNeighborhoods(ctx)
	if err != nil {
		t.Fatalf("distinct failed: %v", err)
	}
	wantHoods := []string{"belgrano", "palermo", "recoleta"}
	if len(hoods) != len(wantHoods) {
		t.Fatalf("expected %v, got %v", wantHoods, hoods)
	}
	for i, want := range wantHoods {
		if hoods[i] != want {
			t.Errorf("neighborhood %d: expected %q, got %q", i, want, hoods[i])
		}
	}

	ops, err := store.DistinctOperaciones(ctx)
	if err != nil {
		t.Fatalf("distinct failed: %v", err)
	}
	if len(ops) != 2 || ops[0] != "alquiler" || ops[1] != "venta" {
		t.Errorf("unexpected operations: %v", ops)
	}

	titles, err := store.Titles(ctx)
	if err != nil {
		t.Fatalf("titles failed: %v", err)
	}
	if len(titles) != 4 {
		t.Errorf("expected 4 titles, got %v", titles)
	}
}
