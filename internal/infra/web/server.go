package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"modena-payment-service/internal/domain/model"
	"modena-payment-service/internal/infra/logging"
	"modena-payment-service/internal/usecase"
)

// Server exposes the per-variant callback routes and the merchant API.
type Server struct {
	checkout usecase.CheckoutUseCase
	variants []model.GatewayVariant
	bucket   string
	auth     *AuthManager
	log      *zerolog.Logger
}

func NewServer(
	checkout usecase.CheckoutUseCase,
	variants []model.GatewayVariant,
	bucket string,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		checkout: checkout,
		variants: variants,
		bucket:   bucket,
		auth:     auth,
		log:      logger,
	}
}

// Router builds the chi router. Each enabled gateway variant gets its
// callback route triplet plus the same-origin redirect hop, registered
// explicitly against the variant's stable id.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)

	h := &handlers{checkout: s.checkout, bucket: s.bucket, log: s.log}

	for _, v := range s.variants {
		if !v.Enabled {
			continue
		}
		r.Get("/wc-api/redirect_to_"+v.ID, h.redirectToModena(v))
		r.Post("/wc-api/modena_response_"+v.ID, h.syncReturn(v))
		r.Post("/wc-api/modena_async_response_"+v.ID, h.asyncNotification(v))
		r.Post("/wc-api/modena_cancel_"+v.ID, h.cancel(v))

		r.With(s.auth.Middleware).Post("/api/v1/payments/"+v.ID+"/initiate", h.initiate(v))
	}

	r.With(s.auth.Middleware).Get("/api/v1/gateways", h.listGateways(s.variants))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// traceMiddleware tags every request with a trace id for log correlation.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set("X-Trace-ID", traceID)
		ctx := logging.WithTraceID(r.Context(), traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
