package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/solscore-labs/solscore-ledger/internal/config"
	"github.com/solscore-labs/solscore-ledger/internal/observability/tracing"
	"github.com/solscore-labs/solscore-ledger/internal/services"
)

type Server struct {
	svc        *services.Service
	auth       *authenticator
	router     *chi.Mux
	httpServer *http.Server
}

func New(cfg *config.ServerConfig, svc *services.Service) *Server {
	s := &Server{
		svc:    svc,
		auth:   newAuthenticator(svc.Clock(), cfg.SignatureWindow),
		router: chi.NewRouter(),
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(tracing.Middleware)
	s.router.Use(requestLogger)

	s.router.Get("/healthcheck", s.healthcheck)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/global-config", s.getGlobalConfig)
		r.Get("/stakes/{address}", s.getStake)
		r.Get("/stakes/{address}/rewards", s.previewRewards)
		r.Get("/owners/{owner}/stakes", s.listStakes)
		r.Get("/owners/{owner}/user", s.getUser)
		r.Get("/reward-pool", s.getRewardPool)
		r.Get("/treasury", s.getTreasury)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.middleware)

			r.Post("/global-config", s.createGlobalConfig)
			r.Post("/users", s.registerUser)
			r.Post("/stake-config", s.createStakeConfig)
			r.Post("/stakes", s.stake)
			r.Post("/stakes/{address}/unstake", s.unstake)
			r.Post("/stakes/{address}/claim", s.claimRewards)
			r.Post("/reward-config", s.createRewardConfig)
			r.Post("/reward-pool", s.createRewardPool)
			r.Post("/reward-pool/fund", s.fundRewardPool)
			r.Post("/treasury", s.createTreasury)
			r.Post("/treasury/deposit", s.depositTreasury)
			r.Post("/treasury/withdraw", s.withdrawTreasury)
			r.Patch("/treasury/config", s.updateTreasuryConfig)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving requests until the server is shut down.
func (s *Server) Start() error {
	log.Info().Msgf("Starting ledger API on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startTime := time.Now()
		next.ServeHTTP(ww, r)

		log.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(startTime)).
			Msg("request served")
	})
}
