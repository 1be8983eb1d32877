package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"modena-payment-service/internal/domain"
	"modena-payment-service/internal/domain/model"
	"modena-payment-service/internal/infra/logging"
	"modena-payment-service/internal/usecase"
)

type handlers struct {
	checkout usecase.CheckoutUseCase
	bucket   string
	log      *zerolog.Logger
}

// initiateRequest is the merchant store's payload when a shopper picks a
// Modena payment method at checkout.
type initiateRequest struct {
	OrderID        int64  `json:"order_id"`
	SelectedOption string `json:"selected_option"`
}

// initiate mirrors the store's process_payment step: mark the order pending
// and hand back the same-origin redirect URL.
func (h *handlers) initiate(v model.GatewayVariant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req initiateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.OrderID <= 0 {
			http.Error(w, "order_id is required", http.StatusBadRequest)
			return
		}

		redirect, err := h.checkout.Initiate(ctx, v, req.OrderID, req.SelectedOption)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrOrderNotFound):
				http.Error(w, "Order not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrOrderNotPayable):
				http.Error(w, "Order does not need payment", http.StatusConflict)
			default:
				logging.With(ctx, h.log).Error().Err(err).Int64("order_id", req.OrderID).Str("gateway", v.ID).
					Msg("initiate payment failed")
				http.Error(w, "Failed to initiate payment", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(struct {
			Result   string `json:"result"`
			Redirect string `json:"redirect"`
		}{Result: "success", Redirect: redirect})
	}
}

// redirectToModena is the same-origin hop: only once the shopper lands here
// is order and customer data gathered and sent to the processor.
func (h *handlers) redirectToModena(v model.GatewayVariant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		orderID, err := strconv.ParseInt(q.Get("id"), 10, 64)
		if err != nil || orderID <= 0 {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}
		maturity := v.MaturityInMonths
		if raw := q.Get("maturityInMonths"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				maturity = parsed
			}
		}

		ctx := logging.WithGatewayID(r.Context(), v.ID)
		out := h.checkout.SubmitApplication(ctx, v, orderID, maturity,
			q.Get("selectedOption"), q.Get("paymentType"))
		h.redirect(w, r, out)
	}
}

// syncReturn settles the browser return from the processor.
func (h *handlers) syncReturn(v model.GatewayVariant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		out := h.checkout.HandleSyncReturn(logging.WithGatewayID(r.Context(), v.ID), v, body)
		h.redirect(w, r, out)
	}
}

// asyncNotification settles the server-to-server webhook. The caller is not
// a browser; acknowledge with an empty response on every path.
func (h *handlers) asyncNotification(v model.GatewayVariant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		h.checkout.HandleAsyncNotification(logging.WithGatewayID(r.Context(), v.ID), v, body)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *handlers) cancel(v model.GatewayVariant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		out := h.checkout.HandleCancel(logging.WithGatewayID(r.Context(), v.ID), v, body)
		h.redirect(w, r, out)
	}
}

// listGateways returns the enabled variants with their localized checkout
// copy, for the storefront to render payment buttons.
func (h *handlers) listGateways(variants []model.GatewayVariant) http.HandlerFunc {
	type gatewayView struct {
		ID               string `json:"id"`
		MaturityInMonths int    `json:"maturity_in_months"`
		Title            string `json:"title"`
		Description      string `json:"description"`
		Image            string `json:"image"`
		IconAlt          string `json:"icon_alt"`
		ButtonMaxHeight  int    `json:"button_max_height"`
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		views := make([]gatewayView, 0, len(variants))
		for _, v := range variants {
			if !v.Enabled {
				continue
			}
			text := v.TextFor(h.bucket)
			views = append(views, gatewayView{
				ID:               v.ID,
				MaturityInMonths: v.MaturityInMonths,
				Title:            text.Title,
				Description:      text.Description,
				Image:            text.Image,
				IconAlt:          text.IconAlt,
				ButtonMaxHeight:  v.ButtonMaxHeight,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(struct {
			Data []gatewayView `json:"data"`
		}{Data: views})
	}
}

// redirect sends the shopper to the outcome URL, attaching the localized
// notice as a query parameter for the storefront to render.
func (h *handlers) redirect(w http.ResponseWriter, r *http.Request, out usecase.Outcome) {
	target := out.RedirectURL
	if out.Notice != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "mdn_notice=" + url.QueryEscape(out.Notice)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
