package app

import "net/http"

// Error is a failure with a status and message meant for the client.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrUserExists         = &Error{Status: http.StatusConflict, Message: "User already exists"}
	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	ErrAuthRequired       = &Error{Status: http.StatusUnauthorized, Message: "Authentication required"}
	ErrInvalidToken       = &Error{Status: http.StatusUnauthorized, Message: "Invalid or expired token"}
	ErrUserGone           = &Error{Status: http.StatusUnauthorized, Message: "User no longer exists"}
	ErrUserNotFound       = &Error{Status: http.StatusNotFound, Message: "User not found"}
	ErrTodoNotFound       = &Error{Status: http.StatusNotFound, Message: "Todo not found"}
)
