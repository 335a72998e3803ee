package api

import (
	"log/slog"

	"github.com/KirkDiggler/dicetray/internal/services/roller"
)

// Config holds configuration for the HTTP API
type Config struct {
	// Service performs rolls and history reads
	Service roller.Service

	// Optional logger
	Logger *slog.Logger

	// FeedBuffer is how many rolls a websocket client may lag behind
	FeedBuffer int
}

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	UserName string `json:"user_name"`
}

// UserResponse describes a created user
type UserResponse struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
}

// RenameUserRequest is the body of PATCH /api/users/{id}
type RenameUserRequest struct {
	UserName string `json:"user_name"`
}

// CreateRollRequest is the body of POST /api/rolls
type CreateRollRequest struct {
	UserID string `json:"user_id"`
	Sides  int    `json:"sides"`
	Count  int    `json:"count"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
}
