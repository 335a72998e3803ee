// Package api serves the roller over HTTP with a websocket change feed.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KirkDiggler/dicetray/internal/common/profile"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/repositories/history"
	"github.com/KirkDiggler/dicetray/internal/services/roller"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	defaultFeedBuffer = 32
	writeTimeout      = 10 * time.Second
)

// Handler serves the JSON API
type Handler struct {
	service    roller.Service
	logger     *slog.Logger
	feedBuffer int
	upgrader   websocket.Upgrader
}

// New creates a new API handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Service == nil {
		return nil, errors.New("roller service cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	feedBuffer := cfg.FeedBuffer
	if feedBuffer <= 0 {
		feedBuffer = defaultFeedBuffer
	}

	return &Handler{
		service:    cfg.Service,
		logger:     logger,
		feedBuffer: feedBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}, nil
}

// Router returns the routes with request logging applied
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.Methods(http.MethodGet).Path("/livez").HandlerFunc(h.livez)
	r.Methods(http.MethodPost).Path("/api/users").HandlerFunc(h.createUser)
	r.Methods(http.MethodPatch).Path("/api/users/{id}").HandlerFunc(h.renameUser)
	r.Methods(http.MethodPost).Path("/api/rolls").HandlerFunc(h.createRoll)
	r.Methods(http.MethodGet).Path("/api/rolls").HandlerFunc(h.listRolls)
	r.Methods(http.MethodGet).Path("/api/rolls/feed").HandlerFunc(h.feed)

	return r
}

// Serve listens on addr until ctx is cancelled
func (h *Handler) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("http server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()
		return err
	}
	return nil
}

func (h *Handler) logRequests(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		m := httpsnoop.CaptureMetrics(handler, writer, request)
		h.logger.Info("handled", "method", request.Method, "url", request.URL, "duration", m.Duration, "status", m.Code)
	})
}

func (h *Handler) livez(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "text/plain")
	_, _ = writer.Write([]byte("ok"))
}

func (h *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var body CreateUserRequest
	if !h.decode(writer, request, &body) {
		return
	}

	// Every request is a fresh client, so nothing is cached between calls
	output, err := h.service.EnsureUser(request.Context(), &roller.EnsureUserInput{
		Profile:  profile.NewMemory(),
		UserName: body.UserName,
	})
	if err != nil {
		h.fail(writer, err)
		return
	}

	h.respond(writer, http.StatusCreated, &UserResponse{
		ID:       output.UserID,
		UserName: models.DisplayName(strings.TrimSpace(body.UserName)),
	})
}

func (h *Handler) renameUser(writer http.ResponseWriter, request *http.Request) {
	var body RenameUserRequest
	if !h.decode(writer, request, &body) {
		return
	}

	_, err := h.service.RenameUser(request.Context(), &roller.RenameUserInput{
		UserID:   mux.Vars(request)["id"],
		UserName: body.UserName,
	})
	if err != nil {
		h.fail(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createRoll(writer http.ResponseWriter, request *http.Request) {
	var body CreateRollRequest
	if !h.decode(writer, request, &body) {
		return
	}

	if body.UserID == "" {
		h.fail(writer, roller.ErrMissingUserID)
		return
	}

	rolled, err := h.service.RollDice(request.Context(), &roller.RollDiceInput{
		Sides: body.Sides,
		Count: body.Count,
	})
	if err != nil {
		h.fail(writer, err)
		return
	}

	saved, err := h.service.SaveRoll(request.Context(), &roller.SaveRollInput{
		UserID: body.UserID,
		Roll:   rolled.Roll,
	})
	if err != nil {
		h.fail(writer, err)
		return
	}

	h.respond(writer, http.StatusCreated, saved.Roll)
}

func (h *Handler) listRolls(writer http.ResponseWriter, request *http.Request) {
	output, err := h.service.GetHistory(request.Context(), &roller.GetHistoryInput{
		UserID: request.URL.Query().Get("user_id"),
	})
	if err != nil {
		h.fail(writer, err)
		return
	}

	h.respond(writer, http.StatusOK, output.Rolls)
}

// feed streams every stored roll to a websocket client as one JSON message
func (h *Handler) feed(writer http.ResponseWriter, request *http.Request) {
	rolls := make(chan *models.Roll, h.feedBuffer)

	// Subscribe before upgrading so nothing stored after the handshake is missed
	watch, err := h.service.WatchRolls(request.Context(), &roller.WatchRollsInput{
		OnRoll: func(roll *models.Roll) {
			select {
			case rolls <- roll:
			default:
				h.logger.Warn("dropping roll for slow feed client", "roll_id", roll.ID)
			}
		},
	})
	if err != nil {
		h.fail(writer, err)
		return
	}
	defer func() {
		if err := watch.Subscription.Unsubscribe(); err != nil {
			h.logger.Warn("failed to unsubscribe feed", "err", err)
		}
	}()

	conn, err := h.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade", "err", err)
		return
	}
	defer conn.Close()

	// Reads only detect the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case roll := <-rolls:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(roll); err != nil {
				h.logger.Warn("failed to write feed message", "err", err)
				return
			}
		case <-closed:
			return
		case <-request.Context().Done():
			return
		}
	}
}

func (h *Handler) decode(writer http.ResponseWriter, request *http.Request, body any) bool {
	if err := json.NewDecoder(request.Body).Decode(body); err != nil {
		h.respond(writer, http.StatusBadRequest, &ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) respond(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		h.logger.Error("failed to write out", "err", err)
	}
}

// fail maps service errors to status codes
func (h *Handler) fail(writer http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, history.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, roller.ErrUnsupportedDie),
		errors.Is(err, roller.ErrMissingUserID),
		errors.Is(err, history.ErrInvalidRoll):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err)
	}

	h.respond(writer, status, &ErrorResponse{Error: err.Error()})
}
