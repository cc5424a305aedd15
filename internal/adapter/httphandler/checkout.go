package httphandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/ordermsg"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/niksmo/farmstore/internal/core/service"
)

// Checkout routes use the basket session of the basket routes.
//
// POST v1/checkout JSON {"name", "phone", "notes"} (200 OK, 400 Bad request, 422 Unprocessable entity, 502 Bad gateway)
// POST v1/checkout/preview JSON {"name", "phone", "notes"} (200 OK, 400 Bad request)

type CheckoutHandler struct {
	sessions port.BasketSessions
}

func RegisterCheckout(mux *http.ServeMux, sessions port.BasketSessions) {
	h := CheckoutHandler{sessions}
	mux.HandleFunc("POST /v1/checkout", h.PostCheckout)
	mux.HandleFunc("POST /v1/checkout/preview", h.PostPreview)
}

func (h CheckoutHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostCheckout"
	log := slog.With("op", op)

	var req CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err, log)
		return
	}

	checkout, ok := resolveSession(w, r, h.sessions, log)
	if !ok {
		return
	}

	receipt, err := checkout.Dispatch(r.Context(), req.toDomain())
	if err != nil {
		if details := checkoutRejections(err); len(details) != 0 {
			log.Info("checkout rejected", "err", err)
			writeError(w, http.StatusUnprocessableEntity,
				"checkout rejected", log, details...)
			return
		}
		if errors.Is(err, service.ErrHandoff) {
			log.Error("failed to hand off checkout", "err", err)
			writeError(w, http.StatusBadGateway, "failed to hand off order", log)
			return
		}
		log.Error("failed to dispatch checkout", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error", log)
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{
		OrderID: receipt.OrderID,
		Link:    receipt.Link,
		Total:   ordermsg.Amount(receipt.Subtotal),
	}, log)
}

func (h CheckoutHandler) PostPreview(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostPreview"
	log := slog.With("op", op)

	var req CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err, log)
		return
	}

	checkout, ok := resolveSession(w, r, h.sessions, log)
	if !ok {
		return
	}

	link := checkout.Preview(req.toDomain())
	writeJSON(w, http.StatusOK, PreviewResponse{Link: link}, log)
}

func checkoutRejections(err error) []string {
	var details []string
	for _, target := range []error{
		domain.ErrEmptyBasket,
		domain.ErrNameRequired,
		domain.ErrPhoneRequired,
	} {
		if errors.Is(err, target) {
			details = append(details, target.Error())
		}
	}
	return details
}
