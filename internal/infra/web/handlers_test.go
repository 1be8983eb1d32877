//go:build !integration

package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"modena-payment-service/internal/domain"
	"modena-payment-service/internal/domain/model"
	"modena-payment-service/internal/infra/web"
	"modena-payment-service/internal/usecase"
)

// MockCheckout lets each test script the engine's answers.
type MockCheckout struct {
	InitiateFunc                func(ctx context.Context, v model.GatewayVariant, orderID int64, selectedOption string) (string, error)
	SubmitApplicationFunc       func(ctx context.Context, v model.GatewayVariant, orderID int64, maturityInMonths int, selectedOption, paymentType string) usecase.Outcome
	HandleSyncReturnFunc        func(ctx context.Context, v model.GatewayVariant, rawBody []byte) usecase.Outcome
	HandleAsyncNotificationFunc func(ctx context.Context, v model.GatewayVariant, rawBody []byte)
	HandleCancelFunc            func(ctx context.Context, v model.GatewayVariant, rawBody []byte) usecase.Outcome
}

var _ usecase.CheckoutUseCase = (*MockCheckout)(nil)

func (m *MockCheckout) Initiate(ctx context.Context, v model.GatewayVariant, orderID int64, selectedOption string) (string, error) {
	if m.InitiateFunc != nil {
		return m.InitiateFunc(ctx, v, orderID, selectedOption)
	}
	return "https://pay.shop.example/wc-api/redirect_to_" + v.ID, nil
}

func (m *MockCheckout) SubmitApplication(ctx context.Context, v model.GatewayVariant, orderID int64, maturityInMonths int, selectedOption, paymentType string) usecase.Outcome {
	if m.SubmitApplicationFunc != nil {
		return m.SubmitApplicationFunc(ctx, v, orderID, maturityInMonths, selectedOption, paymentType)
	}
	return usecase.Outcome{RedirectURL: "https://processor.example/apply/APP-1"}
}

func (m *MockCheckout) HandleSyncReturn(ctx context.Context, v model.GatewayVariant, rawBody []byte) usecase.Outcome {
	if m.HandleSyncReturnFunc != nil {
		return m.HandleSyncReturnFunc(ctx, v, rawBody)
	}
	return usecase.Outcome{RedirectURL: "https://shop.example/checkout/order-received/500"}
}

func (m *MockCheckout) HandleAsyncNotification(ctx context.Context, v model.GatewayVariant, rawBody []byte) {
	if m.HandleAsyncNotificationFunc != nil {
		m.HandleAsyncNotificationFunc(ctx, v, rawBody)
	}
}

func (m *MockCheckout) HandleCancel(ctx context.Context, v model.GatewayVariant, rawBody []byte) usecase.Outcome {
	if m.HandleCancelFunc != nil {
		return m.HandleCancelFunc(ctx, v, rawBody)
	}
	return usecase.Outcome{RedirectURL: "https://shop.example/cart", Notice: "Payment canceled."}
}

func testVariants() []model.GatewayVariant {
	return []model.GatewayVariant{
		{
			ID: "modena_credit", Kind: model.GatewayCredit, MaturityInMonths: 36,
			Endpoint: model.EndpointCredit, Enabled: true, ButtonMaxHeight: 30,
			Text: map[string]model.GatewayText{"en": {Title: "Modena Credit", Description: "Pay over time."}},
		},
		{
			ID: "modena_click", Kind: model.GatewayClick,
			Endpoint: model.EndpointClick, Enabled: false,
			Text: map[string]model.GatewayText{"en": {Title: "Modena Click"}},
		},
	}
}

func newTestRouter(mock *MockCheckout) (http.Handler, *web.AuthManager) {
	logger := zerolog.Nop()
	auth := web.NewAuthManager("test-secret", time.Minute)
	srv := web.NewServer(mock, testVariants(), "en", auth, &logger)
	return srv.Router(), auth
}

func TestRouter_RedirectToModena(t *testing.T) {
	t.Run("should pass the query parameters through to the engine", func(t *testing.T) {
		mock := &MockCheckout{}
		var gotOrderID int64
		var gotMaturity int
		var gotOption string
		mock.SubmitApplicationFunc = func(_ context.Context, v model.GatewayVariant, orderID int64, maturityInMonths int, selectedOption, paymentType string) usecase.Outcome {
			gotOrderID, gotMaturity, gotOption = orderID, maturityInMonths, selectedOption
			return usecase.Outcome{RedirectURL: "https://processor.example/apply/APP-1"}
		}
		router, _ := newTestRouter(mock)

		req := httptest.NewRequest(http.MethodGet, "/wc-api/redirect_to_modena_credit?id=500&maturityInMonths=12&selectedOption=HABAEE2X", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status: got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "https://processor.example/apply/APP-1" {
			t.Errorf("location: got %s", loc)
		}
		if gotOrderID != 500 || gotMaturity != 12 || gotOption != "HABAEE2X" {
			t.Errorf("engine call: got (%d, %d, %q)", gotOrderID, gotMaturity, gotOption)
		}
	})

	t.Run("should default the maturity to the variant's", func(t *testing.T) {
		mock := &MockCheckout{}
		var gotMaturity int
		mock.SubmitApplicationFunc = func(_ context.Context, _ model.GatewayVariant, _ int64, maturityInMonths int, _, _ string) usecase.Outcome {
			gotMaturity = maturityInMonths
			return usecase.Outcome{RedirectURL: "https://processor.example/apply/APP-1"}
		}
		router, _ := newTestRouter(mock)

		req := httptest.NewRequest(http.MethodGet, "/wc-api/redirect_to_modena_credit?id=500", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if gotMaturity != 36 {
			t.Errorf("maturity: got %d, want the variant default", gotMaturity)
		}
	})

	t.Run("should reject a missing order id", func(t *testing.T) {
		router, _ := newTestRouter(&MockCheckout{})

		req := httptest.NewRequest(http.MethodGet, "/wc-api/redirect_to_modena_credit", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status: got %d", rec.Code)
		}
	})

	t.Run("should not route disabled variants", func(t *testing.T) {
		router, _ := newTestRouter(&MockCheckout{})

		req := httptest.NewRequest(http.MethodGet, "/wc-api/redirect_to_modena_click?id=500", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rec.Code)
		}
	})
}

func TestRouter_SyncReturn(t *testing.T) {
	t.Run("should attach the notice to the redirect", func(t *testing.T) {
		mock := &MockCheckout{}
		mock.HandleSyncReturnFunc = func(_ context.Context, _ model.GatewayVariant, rawBody []byte) usecase.Outcome {
			if string(rawBody) != "applicationId=APP-1&orderId=500" {
				t.Errorf("raw body: got %q", rawBody)
			}
			return usecase.Outcome{RedirectURL: "https://shop.example/checkout", Notice: "Something went wrong, please try again later."}
		}
		router, _ := newTestRouter(mock)

		req := httptest.NewRequest(http.MethodPost, "/wc-api/modena_response_modena_credit",
			strings.NewReader("applicationId=APP-1&orderId=500"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status: got %d", rec.Code)
		}
		loc, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("location: %v", err)
		}
		if got := loc.Query().Get("mdn_notice"); got != "Something went wrong, please try again later." {
			t.Errorf("notice: got %q", got)
		}
	})

	t.Run("should redirect cleanly without a notice", func(t *testing.T) {
		router, _ := newTestRouter(&MockCheckout{})

		req := httptest.NewRequest(http.MethodPost, "/wc-api/modena_response_modena_credit",
			strings.NewReader("applicationId=APP-1&orderId=500"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if loc := rec.Header().Get("Location"); loc != "https://shop.example/checkout/order-received/500" {
			t.Errorf("location: got %s", loc)
		}
	})
}

func TestRouter_AsyncNotification(t *testing.T) {
	t.Run("should acknowledge with an empty 200", func(t *testing.T) {
		mock := &MockCheckout{}
		called := false
		mock.HandleAsyncNotificationFunc = func(_ context.Context, _ model.GatewayVariant, rawBody []byte) {
			called = true
		}
		router, _ := newTestRouter(mock)

		req := httptest.NewRequest(http.MethodPost, "/wc-api/modena_async_response_modena_credit",
			strings.NewReader("applicationId=APP-1&orderId=500"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status: got %d", rec.Code)
		}
		if !called {
			t.Error("engine was not invoked")
		}
		if rec.Body.Len() != 0 {
			t.Errorf("expected an empty body, got %q", rec.Body.String())
		}
	})
}

func TestRouter_Cancel(t *testing.T) {
	router, _ := newTestRouter(&MockCheckout{})

	req := httptest.NewRequest(http.MethodPost, "/wc-api/modena_cancel_modena_credit",
		strings.NewReader("applicationId=APP-1&orderId=500"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.Path != "/cart" {
		t.Errorf("path: got %s", loc.Path)
	}
	if got := loc.Query().Get("mdn_notice"); got != "Payment canceled." {
		t.Errorf("notice: got %q", got)
	}
}

func TestRouter_Initiate(t *testing.T) {
	t.Run("should require a bearer token", func(t *testing.T) {
		router, _ := newTestRouter(&MockCheckout{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/modena_credit/initiate",
			strings.NewReader(`{"order_id":500}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rec.Code)
		}
	})

	t.Run("should answer with the redirect URL", func(t *testing.T) {
		router, auth := newTestRouter(&MockCheckout{})
		token, err := auth.Mint("store-1")
		if err != nil {
			t.Fatalf("mint: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/modena_credit/initiate",
			strings.NewReader(`{"order_id":500,"selected_option":"HABAEE2X"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Result   string `json:"result"`
			Redirect string `json:"redirect"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Result != "success" || resp.Redirect == "" {
			t.Errorf("response: %+v", resp)
		}
	})

	t.Run("should map engine errors to HTTP statuses", func(t *testing.T) {
		cases := []struct {
			name string
			err  error
			want int
		}{
			{"unknown order", domain.ErrOrderNotFound, http.StatusNotFound},
			{"already paid", domain.ErrOrderNotPayable, http.StatusConflict},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				mock := &MockCheckout{}
				mock.InitiateFunc = func(context.Context, model.GatewayVariant, int64, string) (string, error) {
					return "", tc.err
				}
				router, auth := newTestRouter(mock)
				token, _ := auth.Mint("store-1")

				req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/modena_credit/initiate",
					strings.NewReader(`{"order_id":500}`))
				req.Header.Set("Authorization", "Bearer "+token)
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)

				if rec.Code != tc.want {
					t.Errorf("status: got %d, want %d", rec.Code, tc.want)
				}
			})
		}
	})

	t.Run("should reject a malformed body", func(t *testing.T) {
		router, auth := newTestRouter(&MockCheckout{})
		token, _ := auth.Mint("store-1")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/modena_credit/initiate",
			strings.NewReader(`{`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status: got %d", rec.Code)
		}
	})
}

func TestRouter_ListGateways(t *testing.T) {
	router, auth := newTestRouter(&MockCheckout{})
	token, _ := auth.Mint("store-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gateways", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp struct {
		Data []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected only the enabled variant, got %d", len(resp.Data))
	}
	if resp.Data[0].ID != "modena_credit" || resp.Data[0].Title != "Modena Credit" {
		t.Errorf("gateway view: %+v", resp.Data[0])
	}
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(&MockCheckout{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestRouter_TraceHeader(t *testing.T) {
	router, _ := newTestRouter(&MockCheckout{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Trace-ID") == "" {
		t.Error("expected a generated trace id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Trace-ID"); got != "trace-123" {
		t.Errorf("expected the inbound trace id echoed, got %q", got)
	}
}
