package draft

import (
	"testing"

	"restaurant-terminal/internal/api"
)

var menu = []api.Dish{
	{ID: 1, Name: "Margherita", Price: 9.5, Available: true},
	{ID: 2, Name: "Carbonara", Price: 12, Available: true},
	{ID: 3, Name: "Tiramisu", Price: 6, Available: false},
}

func TestSelectDishAggregatesQuantity(t *testing.T) {
	d := NewOrder()
	d.SelectDish(menu, 1)
	d.SelectDish(menu, 1)

	lines := d.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", lines[0].Quantity)
	}
}

func TestSelectDishKeepsInsertionOrder(t *testing.T) {
	d := NewOrder()
	d.SelectDish(menu, 2)
	d.SelectDish(menu, 1)
	d.SelectDish(menu, 2)

	lines := d.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].DishID != 2 || lines[1].DishID != 1 {
		t.Fatalf("unexpected line order: %+v", lines)
	}
}

func TestSelectDishUnknownIDIsIgnored(t *testing.T) {
	d := NewOrder()
	d.SelectDish(menu, 99)
	if !d.Empty() {
		t.Fatalf("expected empty draft after selecting unknown dish")
	}
}

func TestRemoveItem(t *testing.T) {
	d := NewOrder()
	d.SelectDish(menu, 1)
	d.SelectDish(menu, 2)

	d.RemoveItem(0)
	lines := d.Lines()
	if len(lines) != 1 || lines[0].DishID != 2 {
		t.Fatalf("expected only dish 2 left, got %+v", lines)
	}

	d.RemoveItem(5)
	if len(d.Lines()) != 1 {
		t.Fatalf("out-of-range removal must be a no-op")
	}
}

func TestItemsAndTotal(t *testing.T) {
	d := NewOrder()
	d.SelectDish(menu, 1)
	d.SelectDish(menu, 1)
	d.SelectDish(menu, 2)

	items := d.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].DishID != 1 || items[0].Quantity != 2 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}

	if got, want := d.Total(), 9.5*2+12; got != want {
		t.Fatalf("expected total %.2f, got %.2f", want, got)
	}
}

func TestClear(t *testing.T) {
	d := NewOrder()
	d.SelectDish(menu, 1)
	d.Clear()
	if !d.Empty() {
		t.Fatalf("expected empty draft after clear")
	}
}
