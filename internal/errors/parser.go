package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code/message pair safe to return to clients.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns a store error into a client-safe ErrorInfo. Driver
// details never leave the server; context names the entity involved
// ("shop", "menu", ...) and picks the message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: notFoundMessage(context)}
	}

	lower := strings.ToLower(err.Error())

	// postgres 23505 / sqlite "UNIQUE constraint failed"
	if strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint") {
		if strings.Contains(lower, "owner_id") {
			return ErrorInfo{Code: ShopAlreadyExists, Message: "This account already has a shop"}
		}
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "The " + entity(context) + " already exists"}
	}

	if strings.Contains(lower, "foreign key constraint") {
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
	}

	if strings.Contains(lower, "not-null constraint") || strings.Contains(lower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(lower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidRange, Message: "A value is out of range"}
	}

	if strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "The data store is unreachable. Please try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "Failed to process the " + entity(context)}
}

func entity(context string) string {
	if context == "" {
		return "request"
	}
	return context
}

func notFoundCode(context string) string {
	switch context {
	case "shop":
		return ShopNotFound
	case "menu":
		return MenuNotFound
	case "reservation":
		return ReservationNotFound
	default:
		return ResourceNotFound
	}
}

func notFoundMessage(context string) string {
	switch context {
	case "shop":
		return "Shop not found"
	case "menu":
		return "Menu not found"
	case "reservation":
		return "Reservation session not found or expired"
	default:
		return "Resource not found"
	}
}
