package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const badCredentialsDetail = "Incorrect username or password"

// Client is the single chokepoint for all server communication. Every
// request carries the held bearer token, is bounded by a timeout, and has
// its response classified the same way.
type Client struct {
	baseURL            string
	httpc              *http.Client
	log                *zap.Logger
	requestTimeout     time.Duration
	destructiveTimeout time.Duration

	mu        sync.RWMutex
	token     string
	onExpired func()
}

func New(baseURL string, requestTimeout, destructiveTimeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// Per-call deadlines come from the context; the transport itself
		// stays unbounded so the 45s destructive bound is honored.
		httpc:              &http.Client{},
		log:                log,
		requestTimeout:     requestTimeout,
		destructiveTimeout: destructiveTimeout,
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// OnSessionExpired registers the hook run when a 401 arrives on a call
// made with a token. The hook must tolerate being called from any request
// goroutine.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

func (c *Client) expire() {
	c.mu.Lock()
	c.token = ""
	fn := c.onExpired
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Client) call(ctx context.Context, method, path string, body, out any, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	token := c.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("api request", zap.String("method", method), zap.String("path", path))

	res, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			c.log.Warn("api request timed out",
				zap.String("method", method), zap.String("path", path), zap.Duration("timeout", timeout))
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.log.Debug("api response", zap.String("method", method), zap.String("path", path), zap.Int("status", res.StatusCode))

	switch {
	case res.StatusCode == http.StatusUnprocessableEntity:
		return &ValidationError{Msg: firstValidationMessage(raw)}

	case res.StatusCode == http.StatusUnauthorized:
		msg := extractMessage(raw)
		if msg == "" {
			msg = "Not authenticated"
		}
		// A 401 while a token is held means the session died. A 401 on
		// the login attempt itself is just bad credentials; it must not
		// touch any held session.
		if token != "" && msg != badCredentialsDetail {
			c.log.Info("session expired", zap.String("path", path))
			c.expire()
			return ErrSessionExpired
		}
		return &StatusError{Status: res.StatusCode, Msg: msg}

	case res.StatusCode < 200 || res.StatusCode > 299:
		msg := extractMessage(raw)
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &StatusError{Status: res.StatusCode, Msg: msg}
	}

	// DELETE responses and 204s are a bare success; the body, if any, is
	// not part of the contract.
	if res.StatusCode == http.StatusNoContent || method == http.MethodDelete || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, out, c.requestTimeout)
}

// Authentication.

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var result LoginResult
	body := map[string]string{"username": username, "password": password}
	err := c.call(ctx, http.MethodPost, "/login", body, &result, c.requestTimeout)
	return result, err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	var user User
	err := c.call(ctx, http.MethodPost, "/register", req, &user, c.requestTimeout)
	return user, err
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.get(ctx, "/me", &user)
	return user, err
}

// DeleteMe removes the caller's own account. The server may cascade:
// reassign a waiter's open orders or refuse to drop the last admin. Hence
// the extended bound.
func (c *Client) DeleteMe(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/me", nil, nil, c.destructiveTimeout)
}

// Dishes.

func (c *Client) Dishes(ctx context.Context) ([]Dish, error) {
	var dishes []Dish
	err := c.get(ctx, "/dishes", &dishes)
	return dishes, err
}

func (c *Client) CreateDish(ctx context.Context, req DishCreate) (Dish, error) {
	var dish Dish
	err := c.call(ctx, http.MethodPost, "/dishes", req, &dish, c.requestTimeout)
	return dish, err
}

func (c *Client) UpdateDish(ctx context.Context, dishID int64, req DishCreate) (Dish, error) {
	var dish Dish
	err := c.call(ctx, http.MethodPut, fmt.Sprintf("/dishes/%d", dishID), req, &dish, c.requestTimeout)
	return dish, err
}

func (c *Client) DeleteDish(ctx context.Context, dishID int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/dishes/%d", dishID), nil, nil, c.requestTimeout)
}

// Tables.

func (c *Client) Tables(ctx context.Context) ([]Table, error) {
	var tables []Table
	err := c.get(ctx, "/tables", &tables)
	return tables, err
}

func (c *Client) AvailableTables(ctx context.Context) ([]Table, error) {
	var tables []Table
	err := c.get(ctx, "/tables/available", &tables)
	return tables, err
}

func (c *Client) SetTotalTables(ctx context.Context, total int) error {
	body := map[string]int{"total_tables": total}
	return c.call(ctx, http.MethodPut, "/restaurant/config", body, nil, c.requestTimeout)
}

// Users.

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	err := c.get(ctx, "/users", &users)
	return users, err
}

// DeleteUser cascades server-side the same way DeleteMe does.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", userID), nil, nil, c.destructiveTimeout)
}

func (c *Client) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	body := map[string]string{"new_password": newPassword}
	return c.call(ctx, http.MethodPut, fmt.Sprintf("/users/%d/password", userID), body, nil, c.requestTimeout)
}

// Orders.

func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := c.get(ctx, "/orders", &orders)
	return orders, err
}

func (c *Client) Order(ctx context.Context, orderID int64) (Order, error) {
	var order Order
	err := c.get(ctx, fmt.Sprintf("/orders/%d", orderID), &order)
	return order, err
}

func (c *Client) CreateOrder(ctx context.Context, req OrderCreate) (Order, error) {
	var order Order
	err := c.call(ctx, http.MethodPost, "/orders", req, &order, c.requestTimeout)
	return order, err
}

func (c *Client) UpdateOrder(ctx context.Context, orderID int64, req OrderUpdate) (Order, error) {
	var order Order
	err := c.call(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", orderID), req, &order, c.requestTimeout)
	return order, err
}

func (c *Client) DeleteOrder(ctx context.Context, orderID int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), nil, nil, c.requestTimeout)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) error {
	path := fmt.Sprintf("/orders/%d/status?status=%s", orderID, url.QueryEscape(string(status)))
	return c.call(ctx, http.MethodPut, path, nil, nil, c.requestTimeout)
}

func (c *Client) TransferOrder(ctx context.Context, orderID, newWaiterID int64) error {
	path := fmt.Sprintf("/orders/%d/transfer?new_waiter_id=%d", orderID, newWaiterID)
	return c.call(ctx, http.MethodPut, path, nil, nil, c.requestTimeout)
}
