package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/niksmo/farmstore/internal/adapter/catalog"
	"github.com/niksmo/farmstore/internal/core/port"
)

// POST v1/admin/login JSON {"username", "password"} (200 OK, 401 Unauthorized)
// POST v1/admin/products JSON Headers Authorization Bearer (201 Created, 400 Bad request, 401 Unauthorized)
// DELETE v1/admin/products/{id} Headers Authorization Bearer (204 No content, 401 Unauthorized)

type AdminHandler struct {
	catalog port.CatalogEditor
}

func RegisterAdmin(mux *http.ServeMux, catalog port.CatalogEditor) {
	h := AdminHandler{catalog}
	mux.HandleFunc("POST /v1/admin/login", h.PostLogin)
	mux.HandleFunc("POST /v1/admin/products", h.PostProduct)
	mux.HandleFunc("DELETE /v1/admin/products/{id}", h.DeleteProduct)
}

func (h AdminHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.PostLogin"
	log := slog.With("op", op)

	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err, log)
		return
	}

	token, err := h.catalog.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeUpstreamError(w, err, log)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token}, log)
}

func (h AdminHandler) PostProduct(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.PostProduct"
	log := slog.With("op", op)

	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token", log)
		return
	}

	var req CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err, log)
		return
	}
	np, err := req.toDomain()
	if err != nil {
		writeBadRequest(w, err, log)
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), token, np)
	if err != nil {
		writeUpstreamError(w, err, log)
		return
	}
	log.Info("product created", "productID", p.ID)
	writeJSON(w, http.StatusCreated, fromProduct(p), log)
}

func (h AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.DeleteProduct"
	log := slog.With("op", op)

	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token", log)
		return
	}

	id := r.PathValue("id")
	if err := h.catalog.DeleteProduct(r.Context(), token, id); err != nil {
		writeUpstreamError(w, err, log)
		return
	}
	log.Info("product deleted", "productID", id)
	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

func writeUpstreamError(w http.ResponseWriter, err error, log *slog.Logger) {
	if errors.Is(err, catalog.ErrUnauthorized) {
		log.Warn("unauthorized", "err", err)
		writeError(w, http.StatusUnauthorized, "unauthorized", log)
		return
	}
	log.Error("catalog api failed", "err", err)
	writeError(w, http.StatusBadGateway, "catalog unavailable", log)
}
