package repository

import (
	"context"
	"errors"
	"testing"

	"ginutri/internal/catalog"
)

func TestAssembleCatalog_OverridesMenuAndShopping(t *testing.T) {
	base := catalog.MustLoad()

	var dishes []menuDishRow
	for _, day := range catalog.Week {
		for _, slot := range catalog.MenuSlots {
			dishes = append(dishes, menuDishRow{Day: string(day), Slot: string(slot), Accessible: "Prato " + string(slot)})
		}
	}
	dishes[0].Premium = "Prato premium"
	items := []catalog.ShoppingTemplate{{Aisle: "Mercearia", Name: "Aveia", Quantity: "500g"}}

	got, err := assembleCatalog(base, dishes, items)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	menu, _ := got.MenuFor(catalog.Monday, true)
	if menu[0].Description != "Prato premium" || menu[1].Description != "Prato lunch" {
		t.Fatalf("unexpected menu: %+v", menu)
	}
	if len(got.Shopping) != 1 || got.Shopping[0].Name != "Aveia" {
		t.Fatalf("unexpected shopping: %+v", got.Shopping)
	}
	if len(base.Shopping) != 10 {
		t.Fatalf("expected base catalog untouched, got %d items", len(base.Shopping))
	}
	if got.Water.GoalMl != base.Water.GoalMl {
		t.Fatalf("expected water settings from base")
	}
}

func TestAssembleCatalog_EmptyTablesKeepBase(t *testing.T) {
	base := catalog.MustLoad()
	got, err := assembleCatalog(base, nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got.Shopping) != len(base.Shopping) || len(got.Menu) != len(base.Menu) {
		t.Fatalf("expected base content")
	}
}

func TestAssembleCatalog_RejectsPartialMenu(t *testing.T) {
	base := catalog.MustLoad()
	dishes := []menuDishRow{{Day: "monday", Slot: "breakfast", Accessible: "Pão"}}
	if _, err := assembleCatalog(base, dishes, nil); !errors.Is(err, catalog.ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}
}

func TestStaticCatalogRepository(t *testing.T) {
	c := catalog.MustLoad()
	got, err := NewStaticCatalogRepository(c).Load(context.Background())
	if err != nil || got != c {
		t.Fatalf("expected same catalog, got %p err=%v", got, err)
	}
}
