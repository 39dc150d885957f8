// Package app ties the API client, session, persisted state and drafts
// into the operations a terminal screen invokes: refresh the lists, build
// and submit orders, edit, transfer, and administer dishes, tables and
// users. Mutating operations go through the in-flight guard so a double
// trigger cannot fire a duplicate request.
package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"restaurant-terminal/internal/api"
	"restaurant-terminal/internal/auth"
	"restaurant-terminal/internal/draft"
	"restaurant-terminal/internal/guard"
	"restaurant-terminal/internal/session"
	"restaurant-terminal/internal/state"
)

var (
	ErrOrderIncomplete        = errors.New("select a table and add at least one dish")
	ErrTableRequired          = errors.New("select a table")
	ErrNoEditInProgress       = errors.New("no order edit in progress")
	ErrNoTransferInProgress   = errors.New("no transfer in progress")
	ErrTransferTargetRequired = errors.New("select a waiter to transfer the order to")
	ErrTotalTablesRequired    = errors.New("enter the number of tables")
)

// Snapshot is one consistent copy of the lists a refresh produced. Screens
// render from a snapshot, never from in-flight partial state.
type Snapshot struct {
	Dishes []api.Dish
	Tables []api.Table
	Users  []api.User
	Orders []api.Order
}

// Transfer is the state of an open transfer dialog: the order being handed
// over and the waiters it may go to.
type Transfer struct {
	Order      api.Order
	Candidates []api.User
	TargetID   int64
}

type App struct {
	api     *api.Client
	session *session.Manager
	store   *state.Store
	guard   *guard.Guard
	log     *zap.Logger

	mu       sync.Mutex
	snapshot Snapshot
	draft    *draft.Order
	edit     *draft.Edit
	transfer *Transfer
}

func New(client *api.Client, sess *session.Manager, store *state.Store, log *zap.Logger) *App {
	return &App{
		api:     client,
		session: sess,
		store:   store,
		guard:   guard.New(),
		log:     log,
		draft:   draft.NewOrder(),
	}
}

func (a *App) Session() *session.Manager { return a.session }

// Snapshot returns the most recent refresh result.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}

// Refresh re-fetches every list the current role can see and swaps the
// snapshot in one step. Admins get users as well; waiters see the tables,
// the menu and their own orders.
func (a *App) Refresh(ctx context.Context) error {
	user, ok := a.session.CurrentUser()
	if !ok {
		return session.ErrNotAuthenticated
	}

	dishes, err := a.api.Dishes(ctx)
	if err != nil {
		return err
	}
	tables, err := a.api.Tables(ctx)
	if err != nil {
		return err
	}
	var users []api.User
	if user.Role == auth.RoleAdmin {
		if users, err = a.api.Users(ctx); err != nil {
			return err
		}
	}
	orders, err := a.api.Orders(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.snapshot = Snapshot{Dishes: dishes, Tables: tables, Users: users, Orders: orders}
	a.mu.Unlock()
	return nil
}

// refreshOrdersAndTables is the partial reload run after an order
// mutation. Errors are logged, not surfaced: the mutation itself already
// succeeded and the next full refresh will converge.
func (a *App) refreshOrdersAndTables(ctx context.Context) {
	orders, err := a.api.Orders(ctx)
	if err != nil {
		a.log.Warn("order list reload failed", zap.Error(err))
		return
	}
	tables, err := a.api.Tables(ctx)
	if err != nil {
		a.log.Warn("table list reload failed", zap.Error(err))
		return
	}
	a.mu.Lock()
	a.snapshot.Orders = orders
	a.snapshot.Tables = tables
	a.mu.Unlock()
}

func (a *App) refreshDishes(ctx context.Context) {
	dishes, err := a.api.Dishes(ctx)
	if err != nil {
		a.log.Warn("dish list reload failed", zap.Error(err))
		return
	}
	a.mu.Lock()
	a.snapshot.Dishes = dishes
	a.mu.Unlock()
}

// AvailableDishes is the menu a waiter can order from.
func (a *App) AvailableDishes() []api.Dish {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]api.Dish, 0, len(a.snapshot.Dishes))
	for _, dish := range a.snapshot.Dishes {
		if dish.Available {
			out = append(out, dish)
		}
	}
	return out
}

// Table selection is sticky: it survives restarts and stays set after an
// order is submitted, until explicitly changed or cleared.

func (a *App) SelectTable(number int) {
	if err := a.store.SetSelectedTable(number); err != nil {
		a.log.Warn("persisting table selection failed", zap.Error(err))
	}
}

func (a *App) SelectedTable() int {
	return a.store.SelectedTable()
}

func (a *App) ClearTableSelection() {
	if err := a.store.ClearSelectedTable(); err != nil {
		a.log.Warn("clearing table selection failed", zap.Error(err))
	}
}

// New-order draft.

func (a *App) SelectDish(dishID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draft.SelectDish(a.snapshot.Dishes, dishID)
}

func (a *App) RemoveDraftItem(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draft.RemoveItem(index)
}

func (a *App) DraftLines() []draft.Line {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draft.Lines()
}

func (a *App) ClearDraft() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draft.Clear()
}

// SubmitOrder validates locally first: a missing table or an empty draft
// is rejected before any network call. On success the draft is cleared,
// the table selection stays sticky, and tables plus orders reload.
func (a *App) SubmitOrder(ctx context.Context) (api.Order, error) {
	table := a.store.SelectedTable()
	a.mu.Lock()
	empty := a.draft.Empty()
	items := a.draft.Items()
	a.mu.Unlock()

	if table == 0 || empty {
		return api.Order{}, ErrOrderIncomplete
	}

	var order api.Order
	err := a.guard.Do("submit-order", func() error {
		var err error
		order, err = a.api.CreateOrder(ctx, api.OrderCreate{TableNumber: table, Items: items})
		return err
	})
	if err != nil {
		return api.Order{}, err
	}

	a.mu.Lock()
	a.draft.Clear()
	a.mu.Unlock()
	a.log.Info("order created", zap.String("order", order.Label()), zap.Int("table", table))
	a.refreshOrdersAndTables(ctx)
	return order, nil
}

// Edit draft.

// EditContext is what the edit screen needs up front: the draft itself and
// the tables it may move the order to (free tables plus the order's own).
type EditContext struct {
	Edit         *draft.Edit
	TableChoices []api.Table
}

// StartEdit fetches the order and seeds a fresh edit draft, discarding any
// unsaved one.
func (a *App) StartEdit(ctx context.Context, orderID int64) (EditContext, error) {
	order, err := a.api.Order(ctx, orderID)
	if err != nil {
		return EditContext{}, err
	}

	available, err := a.api.AvailableTables(ctx)
	if err != nil {
		return EditContext{}, err
	}
	all, err := a.api.Tables(ctx)
	if err != nil {
		return EditContext{}, err
	}
	choices := available
	for _, t := range all {
		if t.Number == order.TableNumber && !containsTable(choices, t.Number) {
			choices = append(choices, t)
		}
	}

	edit := draft.NewEdit(order)
	a.mu.Lock()
	a.edit = edit
	a.mu.Unlock()
	return EditContext{Edit: edit, TableChoices: choices}, nil
}

func (a *App) Edit() *draft.Edit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.edit
}

func (a *App) DiscardEdit() {
	a.mu.Lock()
	a.edit = nil
	a.mu.Unlock()
}

// SaveEdit sends the draft as a full replacement and drops it on success.
func (a *App) SaveEdit(ctx context.Context) (api.Order, error) {
	a.mu.Lock()
	edit := a.edit
	a.mu.Unlock()

	if edit == nil {
		return api.Order{}, ErrNoEditInProgress
	}
	if edit.TableNumber() == 0 {
		return api.Order{}, ErrTableRequired
	}

	var order api.Order
	err := a.guard.Do("save-edit", func() error {
		var err error
		order, err = a.api.UpdateOrder(ctx, edit.OrderID(), edit.Update())
		return err
	})
	if err != nil {
		return api.Order{}, err
	}

	a.mu.Lock()
	a.edit = nil
	a.mu.Unlock()
	a.log.Info("order updated", zap.String("order", order.Label()))
	a.refreshOrdersAndTables(ctx)
	return order, nil
}

// Transfer flow.

// OpenTransfer loads the order and the waiters it could go to, excluding
// its current holder.
func (a *App) OpenTransfer(ctx context.Context, orderID, currentWaiterID int64) (Transfer, error) {
	order, err := a.api.Order(ctx, orderID)
	if err != nil {
		return Transfer{}, err
	}
	users, err := a.api.Users(ctx)
	if err != nil {
		return Transfer{}, err
	}

	candidates := make([]api.User, 0, len(users))
	for _, u := range users {
		if u.Role == auth.RoleWaiter && u.ID != currentWaiterID {
			candidates = append(candidates, u)
		}
	}

	transfer := Transfer{Order: order, Candidates: candidates}
	a.mu.Lock()
	a.transfer = &transfer
	a.mu.Unlock()
	return transfer, nil
}

func (a *App) SelectTransferTarget(waiterID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.transfer == nil {
		return ErrNoTransferInProgress
	}
	a.transfer.TargetID = waiterID
	return nil
}

func (a *App) CancelTransfer() {
	a.mu.Lock()
	a.transfer = nil
	a.mu.Unlock()
}

// ConfirmTransfer hands the order to the chosen waiter and reloads the
// order list, which covers both the admin view and the acting waiter's own
// list.
func (a *App) ConfirmTransfer(ctx context.Context) error {
	a.mu.Lock()
	transfer := a.transfer
	a.mu.Unlock()

	if transfer == nil {
		return ErrNoTransferInProgress
	}
	if transfer.TargetID == 0 {
		return ErrTransferTargetRequired
	}

	err := a.guard.Do("transfer-order", func() error {
		return a.api.TransferOrder(ctx, transfer.Order.ID, transfer.TargetID)
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.transfer = nil
	a.mu.Unlock()
	a.log.Info("order transferred",
		zap.String("order", transfer.Order.Label()), zap.Int64("newWaiterID", transfer.TargetID))
	a.refreshOrdersAndTables(ctx)
	return nil
}

// Order lifecycle.

func (a *App) UpdateOrderStatus(ctx context.Context, orderID int64, status api.OrderStatus) error {
	err := a.guard.Do("update-status", func() error {
		return a.api.UpdateOrderStatus(ctx, orderID, status)
	})
	if err != nil {
		return err
	}
	a.refreshOrdersAndTables(ctx)
	return nil
}

// CancelOrder deletes the order, freeing its table server-side.
func (a *App) CancelOrder(ctx context.Context, orderID int64) error {
	err := a.guard.Do("cancel-order", func() error {
		return a.api.DeleteOrder(ctx, orderID)
	})
	if err != nil {
		return err
	}
	a.log.Info("order cancelled", zap.Int64("orderID", orderID))
	a.refreshOrdersAndTables(ctx)
	return nil
}

// Dish administration. Every mutation invalidates the cached menu and
// refetches it.

func (a *App) CreateDish(ctx context.Context, req api.DishCreate) (api.Dish, error) {
	var dish api.Dish
	err := a.guard.Do("create-dish", func() error {
		var err error
		dish, err = a.api.CreateDish(ctx, req)
		return err
	})
	if err != nil {
		return api.Dish{}, err
	}
	a.refreshDishes(ctx)
	return dish, nil
}

func (a *App) UpdateDish(ctx context.Context, dishID int64, req api.DishCreate) (api.Dish, error) {
	var dish api.Dish
	err := a.guard.Do("update-dish", func() error {
		var err error
		dish, err = a.api.UpdateDish(ctx, dishID, req)
		return err
	})
	if err != nil {
		return api.Dish{}, err
	}
	a.refreshDishes(ctx)
	return dish, nil
}

func (a *App) DeleteDish(ctx context.Context, dishID int64) error {
	err := a.guard.Do("delete-dish", func() error {
		return a.api.DeleteDish(ctx, dishID)
	})
	if err != nil {
		return err
	}
	a.refreshDishes(ctx)
	return nil
}

// User and restaurant administration.

// DeleteUser runs with the extended timeout inside the client; the guard
// keeps the trigger disabled for the whole wait and re-enables it on any
// outcome.
func (a *App) DeleteUser(ctx context.Context, userID int64) error {
	err := a.guard.Do("delete-user", func() error {
		return a.api.DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}
	if err := a.Refresh(ctx); err != nil {
		a.log.Warn("refresh after user deletion failed", zap.Error(err))
	}
	return nil
}

func (a *App) DeleteAccount(ctx context.Context) error {
	return a.guard.Do("delete-account", func() error {
		return a.session.DeleteAccount(ctx)
	})
}

func (a *App) SetTotalTables(ctx context.Context, total int) error {
	if total <= 0 {
		return ErrTotalTablesRequired
	}
	err := a.guard.Do("set-total-tables", func() error {
		return a.api.SetTotalTables(ctx, total)
	})
	if err != nil {
		return err
	}
	tables, err := a.api.Tables(ctx)
	if err != nil {
		a.log.Warn("table list reload failed", zap.Error(err))
		return nil
	}
	a.mu.Lock()
	a.snapshot.Tables = tables
	a.mu.Unlock()
	return nil
}

func containsTable(tables []api.Table, number int) bool {
	for _, t := range tables {
		if t.Number == number {
			return true
		}
	}
	return false
}
