package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/menucart/internal/cart"
	"github.com/andreasstove999/menucart/internal/checkout"
	"github.com/andreasstove999/menucart/internal/store"
	cartsync "github.com/andreasstove999/menucart/internal/sync"
)

// CartHandler is the boundary adapter over the sync engine. One engine (and
// its session monitor) per user, created lazily and kept for the life of the
// process. All invariants live in the engine and coordinator; handlers only
// translate HTTP.
//
// The engine does not serialize overlapping mutations on one cart; that is
// the client's obligation (disable the button while a request is in flight).
type CartHandler struct {
	store   store.Store
	pub     checkout.Publisher
	logger  *log.Logger
	timeout time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	engine      *cartsync.Engine
	monitor     *cartsync.Monitor
	coordinator *checkout.Coordinator
}

func NewCartHandler(st store.Store, pub checkout.Publisher, logger *log.Logger, timeout time.Duration) *CartHandler {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &CartHandler{
		store:    st,
		pub:      pub,
		logger:   logger,
		timeout:  timeout,
		sessions: make(map[string]*session),
	}
}

func (h *CartHandler) session(ctx context.Context, userID string) *session {
	h.mu.Lock()
	s, ok := h.sessions[userID]
	if !ok {
		engine := cartsync.NewEngine(h.store, h.logger)
		s = &session{
			engine:      engine,
			monitor:     cartsync.NewMonitor(engine),
			coordinator: checkout.NewCoordinator(h.store, engine, h.pub, h.logger),
		}
		h.sessions[userID] = s
	}
	h.mu.Unlock()

	// The gateway resolved the identity before routing here.
	s.monitor.Observe(ctx, cartsync.Identity{UserID: userID, Resolved: true})
	return s
}

type cartView struct {
	UserID      string      `json:"userId"`
	Items       []cart.Item `json:"items"`
	CartCount   int         `json:"cartCount"`
	TotalAmount float64     `json:"totalAmount"`
}

func viewOf(userID string, e *cartsync.Engine) cartView {
	return cartView{
		UserID:      userID,
		Items:       e.Items(),
		CartCount:   e.Count(),
		TotalAmount: e.Total(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.session(ctx, userID)
	writeJSON(w, http.StatusOK, viewOf(userID, s.engine))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	var body struct {
		MenuItemID string  `json:"menuItemId"`
		Name       string  `json:"name"`
		Price      float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.MenuItemID == "" || body.Price < 0 {
		writeError(w, http.StatusBadRequest, "invalid menu item")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.session(ctx, userID)
	if err := s.engine.AddItem(ctx, cart.Item{
		MenuItemID: body.MenuItemID,
		Name:       body.Name,
		Price:      body.Price,
	}); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(userID, s.engine))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	itemID := chi.URLParam(r, "itemId")
	if userID == "" || itemID == "" {
		writeError(w, http.StatusBadRequest, "missing userId or itemId")
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.session(ctx, userID)
	if err := s.engine.UpdateQuantity(ctx, itemID, body.Quantity); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(userID, s.engine))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	itemID := chi.URLParam(r, "itemId")
	if userID == "" || itemID == "" {
		writeError(w, http.StatusBadRequest, "missing userId or itemId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.session(ctx, userID)
	if err := s.engine.RemoveItem(ctx, itemID); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(userID, s.engine))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.session(ctx, userID)
	if err := s.engine.ClearCart(ctx); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(userID, s.engine))
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	// Checkout is a double round trip plus a per-row clear; give it more
	// room than a single mutation.
	ctx, cancel := context.WithTimeout(r.Context(), 3*h.timeout)
	defer cancel()

	s := h.session(ctx, userID)
	o, err := s.coordinator.Checkout(ctx, userID, s.engine.Items())
	if err != nil {
		if o != nil {
			// Order committed, cart clear failed. The caller retries the
			// clear; the order must not be resubmitted.
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error":   "order created but cart clear failed",
				"orderId": o.ID,
			})
			return
		}
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

// Logout is the identity-absent transition: the monitor drops the local
// cart without any store calls.
func (h *CartHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	h.mu.Lock()
	s, ok := h.sessions[userID]
	h.mu.Unlock()
	if ok {
		s.monitor.Observe(r.Context(), cartsync.Identity{Resolved: true})
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeEngineError(w http.ResponseWriter, err error) {
	var storeErr *cart.StoreError
	switch {
	case errors.Is(err, cart.ErrAuthenticationRequired):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, cart.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &storeErr):
		writeError(w, http.StatusBadGateway, "store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
