package api

import (
	"strconv"

	"restaurant-terminal/internal/auth"
)

type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
}

type Dish struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
}

type DishCreate struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type Table struct {
	Number         int    `json:"number"`
	IsAvailable    bool   `json:"is_available"`
	CurrentOrderID *int64 `json:"current_order_id"`
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted:
		return true
	}
	return false
}

// DisplayName is the user-facing label for a status. Unknown values pass
// through unchanged.
func (s OrderStatus) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPreparing:
		return "Preparing"
	case StatusReady:
		return "Ready"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

type OrderItem struct {
	DishID    int64   `json:"dish_id"`
	Quantity  int     `json:"quantity"`
	DishName  string  `json:"dish_name,omitempty"`
	DishPrice float64 `json:"dish_price,omitempty"`
}

type Order struct {
	ID          int64       `json:"id"`
	Code        string      `json:"code,omitempty"`
	TableNumber int         `json:"table_number"`
	Status      OrderStatus `json:"status"`
	WaiterID    int64       `json:"waiter_id"`
	WaiterName  string      `json:"waiter_name"`
	Items       []OrderItem `json:"items"`
	// Serialized as the server sends it; the backend emits naive local
	// timestamps that time.Time refuses to parse.
	CreatedAt string `json:"created_at"`
}

// Label is the order's human identifier: the short code when the server
// assigned one, otherwise the numeric id.
func (o Order) Label() string {
	if o.Code != "" {
		return o.Code
	}
	return strconv.FormatInt(o.ID, 10)
}

type OrderItemCreate struct {
	DishID   int64 `json:"dish_id"`
	Quantity int   `json:"quantity"`
}

type OrderCreate struct {
	TableNumber int               `json:"table_number"`
	Items       []OrderItemCreate `json:"items"`
}

// OrderUpdate is a full replacement: the server applies table, status and
// the complete item list in one write.
type OrderUpdate struct {
	TableNumber int         `json:"table_number"`
	Status      OrderStatus `json:"status"`
	Items       []OrderItem `json:"items"`
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type RegisterRequest struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}
