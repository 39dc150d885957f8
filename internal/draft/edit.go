package draft

import "restaurant-terminal/internal/api"

// Edit is the unsaved working copy of an existing order. Saving sends the
// whole item list back as a full replacement, last write wins.
type Edit struct {
	orderID     int64
	orderLabel  string
	tableNumber int
	status      api.OrderStatus
	items       []api.OrderItem
}

// NewEdit seeds an edit draft from a fetched order. Only one edit is
// meaningful at a time; callers replace any prior draft with the new one,
// discarding unsaved changes.
func NewEdit(order api.Order) *Edit {
	items := make([]api.OrderItem, len(order.Items))
	copy(items, order.Items)
	return &Edit{
		orderID:     order.ID,
		orderLabel:  order.Label(),
		tableNumber: order.TableNumber,
		status:      order.Status,
		items:       items,
	}
}

func (e *Edit) OrderID() int64     { return e.orderID }
func (e *Edit) OrderLabel() string { return e.orderLabel }

func (e *Edit) TableNumber() int {
	return e.tableNumber
}

func (e *Edit) SetTableNumber(number int) {
	e.tableNumber = number
}

func (e *Edit) Status() api.OrderStatus {
	return e.status
}

func (e *Edit) SetStatus(status api.OrderStatus) {
	if status.Valid() {
		e.status = status
	}
}

// AddDish follows the same dedup rule as a new-order draft: an existing
// line gains quantity, a new dish appends a line carrying its display data.
func (e *Edit) AddDish(dishes []api.Dish, dishID int64) {
	dish, ok := findDish(dishes, dishID)
	if !ok {
		return
	}
	for i := range e.items {
		if e.items[i].DishID == dishID {
			e.items[i].Quantity++
			return
		}
	}
	e.items = append(e.items, api.OrderItem{
		DishID:    dishID,
		Quantity:  1,
		DishName:  dish.Name,
		DishPrice: dish.Price,
	})
}

func (e *Edit) IncreaseQuantity(index int) {
	if index < 0 || index >= len(e.items) {
		return
	}
	e.items[index].Quantity++
}

// DecreaseQuantity floors at 1. Dropping a line is an explicit RemoveItem,
// never a side effect of decrementing.
func (e *Edit) DecreaseQuantity(index int) {
	if index < 0 || index >= len(e.items) {
		return
	}
	if e.items[index].Quantity > 1 {
		e.items[index].Quantity--
	}
}

func (e *Edit) RemoveItem(index int) {
	if index < 0 || index >= len(e.items) {
		return
	}
	e.items = append(e.items[:index], e.items[index+1:]...)
}

func (e *Edit) Items() []api.OrderItem {
	out := make([]api.OrderItem, len(e.items))
	copy(out, e.items)
	return out
}

// Update builds the full-replacement payload for saving.
func (e *Edit) Update() api.OrderUpdate {
	return api.OrderUpdate{
		TableNumber: e.tableNumber,
		Status:      e.status,
		Items:       e.Items(),
	}
}
