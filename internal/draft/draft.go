// Package draft holds the client-local, unsaved order state: the item
// list being assembled for a new order and the item list of an edit in
// progress. Both are plain reducers with no I/O.
package draft

import "restaurant-terminal/internal/api"

// Line is one entry in a new-order draft. A dish id appears at most once;
// repeats aggregate into the quantity.
type Line struct {
	DishID   int64
	Quantity int
	Dish     api.Dish
}

type Order struct {
	lines []Line
}

func NewOrder() *Order {
	return &Order{}
}

// SelectDish adds the dish to the draft, incrementing the quantity when it
// is already present. Unknown dish ids are ignored.
func (d *Order) SelectDish(dishes []api.Dish, dishID int64) {
	dish, ok := findDish(dishes, dishID)
	if !ok {
		return
	}
	for i := range d.lines {
		if d.lines[i].DishID == dishID {
			d.lines[i].Quantity++
			return
		}
	}
	d.lines = append(d.lines, Line{DishID: dishID, Quantity: 1, Dish: dish})
}

// RemoveItem drops the line at index. The index comes from the rendered
// list, which mirrors the draft; out-of-range indexes are ignored.
func (d *Order) RemoveItem(index int) {
	if index < 0 || index >= len(d.lines) {
		return
	}
	d.lines = append(d.lines[:index], d.lines[index+1:]...)
}

func (d *Order) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *Order) Empty() bool {
	return len(d.lines) == 0
}

func (d *Order) Clear() {
	d.lines = nil
}

// Items converts the draft to the order-creation payload.
func (d *Order) Items() []api.OrderItemCreate {
	items := make([]api.OrderItemCreate, 0, len(d.lines))
	for _, line := range d.lines {
		items = append(items, api.OrderItemCreate{DishID: line.DishID, Quantity: line.Quantity})
	}
	return items
}

// Total is the draft's running price.
func (d *Order) Total() float64 {
	var total float64
	for _, line := range d.lines {
		total += line.Dish.Price * float64(line.Quantity)
	}
	return total
}

func findDish(dishes []api.Dish, dishID int64) (api.Dish, bool) {
	for _, dish := range dishes {
		if dish.ID == dishID {
			return dish, true
		}
	}
	return api.Dish{}, false
}
