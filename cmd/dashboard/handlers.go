package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/freshlane/wholesale-admin/internal/lowstock"
	"github.com/freshlane/wholesale-admin/internal/models"
	"github.com/freshlane/wholesale-admin/internal/services"
	"github.com/freshlane/wholesale-admin/internal/store"
)

// maxImageBytes caps slider uploads at 8 MiB.
const maxImageBytes = 8 << 20

type server struct {
	catalog  *services.CatalogService
	orders   *services.OrdersService
	couriers *services.CouriersService
	sliders  *services.SlidersService
	monitor  *lowstock.Monitor
}

// routes builds the mux. Everything under /api/ sits behind the auth gate;
// the health probe does not.
func (s *server) routes(guard func(http.Handler) http.Handler) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/lowstock/stream", s.handleLowStockStream)

	api.HandleFunc("GET /api/products", s.handleListProducts)
	api.HandleFunc("POST /api/products", s.handleCreateProduct)
	api.HandleFunc("GET /api/products/{id}", s.handleGetProduct)
	api.HandleFunc("PATCH /api/products/{id}", s.handleUpdateProduct)
	api.HandleFunc("DELETE /api/products/{id}", s.handleDeleteProduct)
	api.HandleFunc("POST /api/products/{id}/stock", s.handleAdjustStock)

	api.HandleFunc("GET /api/orders", s.handleListOrders)
	api.HandleFunc("POST /api/orders/{id}/status", s.handleOrderStatus)

	api.HandleFunc("GET /api/couriers", s.handleListCouriers)
	api.HandleFunc("POST /api/couriers/{id}/review", s.handleCourierReview)

	api.HandleFunc("GET /api/sliders", s.handleListSliders)
	api.HandleFunc("POST /api/sliders", s.handleUploadSlider)
	api.HandleFunc("POST /api/sliders/{id}/active", s.handleSliderActive)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	root.Handle("/api/", guard(api))
	return root
}

// handleLowStockStream serves the derived low-stock view as a server-sent
// event stream. Each upstream snapshot produces one complete view; the client
// replaces, never merges. The subscription ends with the request.
func (s *server) handleLowStockStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	for ev := range s.monitor.Watch(r.Context()) {
		if ev.Err != nil {
			fmt.Fprintf(w, "event: unavailable\ndata: %q\n\n", ev.Err.Error())
			flusher.Flush()
			return
		}
		data, err := json.Marshal(ev.Low)
		if err != nil {
			slog.Error("Failed to encode low-stock view.", "error", err)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

func (s *server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	id, err := s.catalog.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.IDResponse{ID: id})
}

func (s *server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if err := s.catalog.Update(r.Context(), r.PathValue("id"), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "updated"})
}

func (s *server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "deleted"})
}

func (s *server) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req models.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if err := s.catalog.AdjustStock(r.Context(), r.PathValue("id"), req.Delta); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "adjusted"})
}

func (s *server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	orders, err := s.orders.List(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req models.OrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if err := s.orders.Transition(r.Context(), r.PathValue("id"), req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: string(req.Status)})
}

func (s *server) handleListCouriers(w http.ResponseWriter, r *http.Request) {
	state := models.ReviewState(r.URL.Query().Get("state"))
	couriers, err := s.couriers.List(r.Context(), state)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, couriers)
}

func (s *server) handleCourierReview(w http.ResponseWriter, r *http.Request) {
	var req models.CourierReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if err := s.couriers.Review(r.Context(), r.PathValue("id"), req.State); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: string(req.State)})
}

func (s *server) handleListSliders(w http.ResponseWriter, r *http.Request) {
	sliders, err := s.sliders.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sliders)
}

func (s *server) handleUploadSlider(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		http.Error(w, "Bad Request: could not parse form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Bad Request: missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		http.Error(w, "Bad Request: could not read image", http.StatusBadRequest)
		return
	}
	id, err := s.sliders.Upload(r.Context(), r.FormValue("title"), header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.IDResponse{ID: id})
}

func (s *server) handleSliderActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if err := s.sliders.SetActive(r.Context(), r.PathValue("id"), req.Active); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "updated"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response.", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognized is
// logged and reported as a 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyName),
		errors.Is(err, services.ErrNegativeValue),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidReview),
		errors.Is(err, services.ErrUnsupportedImage):
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrTerminalRecord),
		errors.Is(err, services.ErrBackwardMovement),
		errors.Is(err, store.ErrInsufficientStock):
		http.Error(w, "Conflict: "+err.Error(), http.StatusConflict)
	default:
		slog.Error("Request failed.", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
