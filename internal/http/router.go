package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *CartHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/{userId}", h.GetCart)
		r.Delete("/{userId}", h.ClearCart)
		r.Post("/{userId}/items", h.AddItem)
		r.Put("/{userId}/items/{itemId}", h.UpdateQuantity)
		r.Delete("/{userId}/items/{itemId}", h.RemoveItem)
		r.Post("/{userId}/checkout", h.Checkout)
	})

	r.Delete("/api/session/{userId}", h.Logout)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "service": "menucart"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
