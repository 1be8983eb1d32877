package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"modena-payment-service/internal/domain"
	"modena-payment-service/internal/domain/model"
	"modena-payment-service/internal/domain/ports/adapter"
	"modena-payment-service/internal/domain/ports/repository"
	"modena-payment-service/internal/infra/metrics"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// Translator resolves localized strings by key. Satisfied by i18n.Translator.
type Translator interface {
	T(key string, args ...interface{}) string
}

// Outcome tells the HTTP layer where to send the shopper and which localized
// notice (if any) to attach. Async webhook handling produces no Outcome.
type Outcome struct {
	RedirectURL string
	Notice      string
}

// StoreURLs are the merchant store locations the engine redirects to.
type StoreURLs struct {
	// Site is the recovery target for every error path: the store checkout
	// page when configured, the home page otherwise.
	Site string
	Cart string
	// ThankYou is a format string taking the order id.
	ThankYou string
	// Public is the externally reachable base URL of this service; the
	// same-origin redirect hop and all callback URLs hang off it.
	Public string
}

type CheckoutUseCase interface {
	// Initiate marks the order payment-pending and returns the same-origin
	// redirect URL. It never contacts the processor.
	Initiate(ctx context.Context, v model.GatewayVariant, orderID int64, selectedOption string) (string, error)
	// SubmitApplication builds and submits the financing application, then
	// points the shopper at the processor, or back at the store on failure.
	SubmitApplication(ctx context.Context, v model.GatewayVariant, orderID int64, maturityInMonths int, selectedOption, paymentType string) Outcome
	// HandleSyncReturn settles the browser return from the processor.
	HandleSyncReturn(ctx context.Context, v model.GatewayVariant, rawBody []byte) Outcome
	// HandleAsyncNotification settles the server-to-server webhook. It may be
	// delivered zero, one or many times and may race HandleSyncReturn.
	HandleAsyncNotification(ctx context.Context, v model.GatewayVariant, rawBody []byte)
	// HandleCancel settles a canceled application and restores the cart.
	HandleCancel(ctx context.Context, v model.GatewayVariant, rawBody []byte) Outcome
}

type checkoutUC struct {
	orders repository.OrderRepository
	carts  repository.CartRepository
	proc   adapter.ProcessorClient
	tr     Translator
	bucket string // locale bucket: et, en or ru
	urls   StoreURLs
	log    *zerolog.Logger
	now    func() time.Time
}

func NewCheckoutUseCase(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	proc adapter.ProcessorClient,
	tr Translator,
	bucket string,
	urls StoreURLs,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		orders: orders,
		carts:  carts,
		proc:   proc,
		tr:     tr,
		bucket: bucket,
		urls:   urls,
		log:    logger,
		now:    time.Now,
	}
}

func (u *checkoutUC) Initiate(ctx context.Context, v model.GatewayVariant, orderID int64, selectedOption string) (string, error) {
	order, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("initiate order %d: %w", orderID, err)
	}
	if !order.NeedsPayment {
		return "", domain.ErrOrderNotPayable
	}

	note := u.tr.T("note.payment_pending", v.TextFor(u.bucket).Title)
	if err := u.orders.MarkPending(ctx, orderID, note); err != nil {
		return "", fmt.Errorf("mark order %d pending: %w", orderID, err)
	}

	return fmt.Sprintf("%s/wc-api/redirect_to_%s?id=%d&maturityInMonths=%d&selectedOption=%s",
		u.urls.Public, v.ID, orderID, v.MaturityInMonths, url.QueryEscape(selectedOption)), nil
}

func (u *checkoutUC) SubmitApplication(ctx context.Context, v model.GatewayVariant, orderID int64, maturityInMonths int, selectedOption, paymentType string) Outcome {
	order, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		u.log.Error().Err(err).Int64("order_id", orderID).Str("gateway", v.ID).
			Msg("redirect to modena: order load failed")
		return Outcome{RedirectURL: u.urls.Site}
	}

	req := u.buildRequest(v, order, maturityInMonths, selectedOption)

	result, err := u.proc.SubmitApplication(ctx, v.Endpoint, req)
	if err == nil && result.ApplicationID == "" {
		err = domain.ErrNoApplicationID
	}
	if err != nil {
		// Recoverable for the shopper: send them back to checkout to retry.
		u.log.Error().Err(err).
			Int64("order_id", orderID).
			Str("gateway", v.ID).
			Str("payment_type", paymentType).
			Msg("exception occurred when redirecting to modena")
		metrics.IncPayment(v.ID, "submit_failed")
		return Outcome{RedirectURL: u.urls.Site}
	}

	label := u.SelectedMethodLabel(v, selectedOption)
	if err := u.orders.SaveApplicationMeta(ctx, orderID, result.ApplicationID, label); err != nil {
		u.log.Error().Err(err).Int64("order_id", orderID).
			Str("application_id", result.ApplicationID).
			Msg("persisting application metadata failed")
		return Outcome{RedirectURL: u.urls.Site}
	}

	metrics.IncPayment(v.ID, "submitted")
	return Outcome{RedirectURL: result.RedirectLocation}
}

// buildRequest assembles the immutable application for one redirect attempt.
// One line item per product, fee and shipping row, amounts tax-inclusive.
func (u *checkoutUC) buildRequest(v model.GatewayVariant, order *model.Order, maturityInMonths int, selectedOption string) *model.ProcessorRequest {
	items := make([]model.OrderLineItem, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, model.OrderLineItem{
			Name:     line.Name,
			Amount:   line.GrossAmount(),
			Quantity: line.Quantity,
			Currency: order.Currency,
		})
	}

	customer := model.Customer{
		FirstName: order.Billing.FirstName,
		LastName:  order.Billing.LastName,
		Email:     order.Billing.Email,
		Phone:     order.Billing.Phone,
		Address:   order.Billing.JoinedAddress(),
	}

	return &model.ProcessorRequest{
		Application: model.Application{
			MaturityInMonths: maturityInMonths,
			SelectedOption:   selectedOption,
			OrderReference:   strconv.FormatInt(order.ID, 10),
			TotalAmount:      order.Total,
			Items:            items,
			Customer:         customer,
			Timestamp:        model.ApplicationTimestamp(u.now()),
			Currency:         order.Currency,
		},
		SuccessCallbackURL: fmt.Sprintf("%s/wc-api/modena_response_%s", u.urls.Public, v.ID),
		CancelCallbackURL:  fmt.Sprintf("%s/wc-api/modena_cancel_%s", u.urls.Public, v.ID),
		AsyncCallbackURL:   fmt.Sprintf("%s/wc-api/modena_async_response_%s", u.urls.Public, v.ID),
	}
}

func (u *checkoutUC) HandleSyncReturn(ctx context.Context, v model.GatewayVariant, rawBody []byte) Outcome {
	order, err := u.settle(ctx, v, rawBody)
	if err != nil {
		metrics.IncCallback("sync", "rejected")
		if errors.Is(err, domain.ErrMethodMismatch) {
			// A browser is waiting on this response; never leave it hanging.
			return Outcome{RedirectURL: u.urls.Site, Notice: u.tr.T("notice.generic_error")}
		}
		return Outcome{RedirectURL: u.urls.Site, Notice: u.tr.T("notice.payment_failed")}
	}
	metrics.IncCallback("sync", "ok")
	return Outcome{RedirectURL: fmt.Sprintf(u.urls.ThankYou, order.ID)}
}

func (u *checkoutUC) HandleAsyncNotification(ctx context.Context, v model.GatewayVariant, rawBody []byte) {
	if _, err := u.settle(ctx, v, rawBody); err != nil {
		metrics.IncCallback("async", "rejected")
		return
	}
	metrics.IncCallback("async", "ok")
}

// settle is the shared success path behind the sync return and the async
// notification. Safe under at-least-twice delivery: the only mutation is
// gated on the order's persisted needs-payment flag.
func (u *checkoutUC) settle(ctx context.Context, v model.GatewayVariant, rawBody []byte) (*model.Order, error) {
	resp, err := u.proc.ParseCallback(rawBody)
	if err != nil {
		u.log.Error().Err(err).Str("gateway", v.ID).Msg("modena response could not be parsed")
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCallback, err)
	}

	status, err := u.proc.ApplicationStatus(ctx, resp.ApplicationID)
	if err != nil {
		u.log.Error().Err(err).
			Str("order_id", resp.OrderID).
			Str("application_id", resp.ApplicationID).
			Msg("exception occurred in payment response")
		return nil, fmt.Errorf("application status query: %w", err)
	}

	order, ok := u.trustedOrder(ctx, resp)
	if status != model.ApplicationStatusSuccess || !ok {
		u.log.Error().
			Str("order_id", resp.OrderID).
			Str("application_id", resp.ApplicationID).
			Str("status", string(status)).
			Msg("invalid application status, expected: SUCCESS, or modena response is invalid")
		if status != model.ApplicationStatusSuccess {
			return nil, domain.ErrUnexpectedStatus
		}
		return nil, domain.ErrInvalidCallback
	}

	if order.PaymentMethod != v.ID {
		u.log.Error().
			Int64("order_id", order.ID).
			Str("gateway", v.ID).
			Str("payment_method", order.PaymentMethod).
			Msg("payment confirmed for an order owned by another gateway")
		return nil, domain.ErrMethodMismatch
	}

	note := u.tr.T("note.order_paid", v.TextFor(u.bucket).Title)
	paid, err := u.orders.MarkPaid(ctx, order.ID, note)
	if err != nil {
		u.log.Error().Err(err).Int64("order_id", order.ID).Msg("marking order paid failed")
		return nil, fmt.Errorf("mark order %d paid: %w", order.ID, err)
	}
	if paid {
		if order.CartSession != "" {
			if err := u.carts.Empty(ctx, order.CartSession); err != nil {
				u.log.Warn().Err(err).Int64("order_id", order.ID).Msg("emptying cart failed")
			}
		}
		metrics.IncPayment(v.ID, "paid")
	}
	return order, nil
}

func (u *checkoutUC) HandleCancel(ctx context.Context, v model.GatewayVariant, rawBody []byte) Outcome {
	resp, err := u.proc.ParseCallback(rawBody)
	if err != nil {
		u.log.Error().Err(err).Str("gateway", v.ID).Msg("modena cancel response could not be parsed")
		metrics.IncCallback("cancel", "rejected")
		return Outcome{RedirectURL: u.urls.Site}
	}

	order, ok := u.trustedOrder(ctx, resp)
	if !ok {
		u.log.Error().
			Str("order_id", resp.OrderID).
			Str("application_id", resp.ApplicationID).
			Msg("modena cancel response is invalid")
		metrics.IncCallback("cancel", "rejected")
		return Outcome{RedirectURL: u.urls.Site}
	}

	status, err := u.proc.ApplicationStatus(ctx, resp.ApplicationID)
	if err != nil {
		u.log.Error().Err(err).
			Int64("order_id", order.ID).
			Str("application_id", resp.ApplicationID).
			Msg("exception occurred in payment cancel function")
		metrics.IncCallback("cancel", "rejected")
		return Outcome{RedirectURL: u.urls.Site, Notice: u.tr.T("notice.payment_failed")}
	}
	if status != model.ApplicationStatusFailed {
		u.log.Error().
			Int64("order_id", order.ID).
			Str("status", string(status)).
			Msg("invalid application status, expected: FAILED or REJECTED")
		metrics.IncCallback("cancel", "rejected")
		return Outcome{RedirectURL: u.urls.Site, Notice: u.tr.T("notice.payment_failed")}
	}

	if order.CartSession != "" {
		if err := u.carts.Empty(ctx, order.CartSession); err != nil {
			u.log.Warn().Err(err).Int64("order_id", order.ID).Msg("emptying cart failed")
		}
	}

	if order.PaymentMethod != v.ID {
		// Not ours: never re-add items, that would double-reserve inventory.
		u.log.Error().
			Int64("order_id", order.ID).
			Str("gateway", v.ID).
			Str("payment_method", order.PaymentMethod).
			Bool("needs_payment", order.NeedsPayment).
			Msg("payment canceled, but the order not found or payment method mismatch or order already paid")
		metrics.IncCallback("cancel", "rejected")
		return Outcome{RedirectURL: u.urls.Site, Notice: u.tr.T("notice.generic_error")}
	}

	for _, line := range order.Lines {
		if line.Kind != model.LineKindProduct {
			continue
		}
		item := repository.CartItem{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			VariationID: line.VariationID,
		}
		if err := u.carts.Add(ctx, order.CartSession, item); err != nil {
			u.log.Warn().Err(err).Int64("order_id", order.ID).
				Int64("product_id", line.ProductID).
				Msg("restoring cart item failed")
		}
	}

	metrics.IncCallback("cancel", "ok")
	metrics.IncPayment(v.ID, "canceled")
	return Outcome{RedirectURL: u.urls.Cart, Notice: u.tr.T("notice.payment_canceled")}
}

// trustedOrder loads the order a callback claims to reference and checks the
// single authorization invariant: the claimed application id must exactly
// equal the order's stored modena-application-id metadata.
func (u *checkoutUC) trustedOrder(ctx context.Context, resp *model.ProcessorResponse) (*model.Order, bool) {
	if resp.OrderID == "" || resp.ApplicationID == "" {
		return nil, false
	}
	orderID, err := strconv.ParseInt(resp.OrderID, 10, 64)
	if err != nil {
		return nil, false
	}
	order, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, false
	}
	if order.ApplicationID != resp.ApplicationID {
		return nil, false
	}
	return order, true
}
