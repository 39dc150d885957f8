// Package messages maps the server's fixed error strings to user-facing
// text. The catalog is localization data, not logic: a pure string lookup
// with a raw-message fallback.
package messages

import (
	"errors"
	"strings"

	"restaurant-terminal/internal/api"
)

const (
	SessionExpired = "Your session has expired. Please sign in again."
	Timeout        = "The request timed out. The operation may still be processing on the server; check its state before retrying."
	Unreachable    = "Could not reach the server. Check your connection and try again."
	Unknown        = "An unknown error occurred."
)

var catalog = map[string]string{
	"Session expired":                "Your session has expired. Please sign in again.",
	"Incorrect username or password": "Incorrect username or password.",
	"Username already registered":    "A user with that name already exists.",
	"Not authenticated":              "You need to sign in first.",
	"Invalid token":                  "Your session is no longer valid. Please sign in again.",

	"Password must be at least 4 characters":  "The password must be at least 4 characters long.",
	"Password cannot be empty":                "The password cannot be empty.",
	"Username must be at least 3 characters":  "The username must be at least 3 characters long.",
	"Username cannot exceed 50 characters":    "The username cannot exceed 50 characters.",
	"Username cannot be empty":                "The username cannot be empty.",
	"Role must be either 'admin' or 'waiter'": "The role must be either admin or waiter.",
	"Dish name cannot be empty":               "The dish name cannot be empty.",
	"Dish name cannot exceed 100 characters":  "The dish name cannot exceed 100 characters.",
	"Price must be greater than 0":            "The price must be greater than zero.",
	"Price is too high":                       "The price is too high.",
	"Quantity must be greater than 0":         "The quantity must be greater than zero.",
	"Quantity cannot exceed 100":              "The quantity cannot exceed 100.",
	"Total tables must be between 1 and 100":  "The number of tables must be between 1 and 100.",

	"Only administrators can view users":               "Only administrators can view users.",
	"Only administrators can delete users":             "Only administrators can delete users.",
	"Only administrators can transfer orders":          "Only administrators can transfer orders.",
	"Only administrators can update restaurant config": "Only administrators can change the restaurant configuration.",
	"Only administrators can create dishes":            "Only administrators can add dishes.",
	"Only administrators can update dishes":            "Only administrators can edit dishes.",
	"Only administrators can delete dishes":            "Only administrators can delete dishes.",
	"Only administrators can delete orders":            "Only administrators can cancel orders.",
	"Only waiters can create orders":                   "Only waiters can create orders.",
	"You can only view your own orders":                "You can only view your own orders.",
	"You can only update your own orders":              "You can only update your own orders.",
	"You can only change your own password":            "You can only change your own password.",

	"Cannot delete your own account":                   "You cannot delete your own account here.",
	"Cannot delete the last administrator account":     "The last administrator account cannot be deleted.",
	"Cannot delete admin account with assigned orders": "An administrator account with assigned orders cannot be deleted.",

	"User not found":         "User not found.",
	"New waiter not found":   "The selected waiter no longer exists.",
	"Order not found":        "Order not found.",
	"Dish not found":         "Dish not found.",
	"Table not found":        "Table not found.",
	"Table is not available": "That table is occupied.",
	"Invalid waiter ID":      "Invalid waiter selection.",

	"Internal Server Error": "Internal server error. Try again later.",
}

// valueErrorPrefix is what pydantic prepends to custom validator messages.
const valueErrorPrefix = "Value error, "

// Lookup resolves one server message to display text, falling back to the
// raw message when no mapping exists.
func Lookup(serverMsg string) string {
	if text, ok := catalog[serverMsg]; ok {
		return text
	}
	if trimmed, found := strings.CutPrefix(serverMsg, valueErrorPrefix); found {
		if text, ok := catalog[trimmed]; ok {
			return text
		}
	}
	return serverMsg
}

// Humanize is the single presentation point for every failure the client
// surfaces.
func Humanize(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, api.ErrTimeout):
		return Timeout
	case errors.Is(err, api.ErrSessionExpired):
		return SessionExpired
	}

	var vErr *api.ValidationError
	if errors.As(err, &vErr) {
		return Lookup(vErr.Msg)
	}
	var sErr *api.StatusError
	if errors.As(err, &sErr) {
		return Lookup(sErr.Error())
	}

	msg := err.Error()
	if msg == "" {
		return Unknown
	}
	return Lookup(msg)
}
