package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadscout/emailscout/internal/model"
	"github.com/leadscout/emailscout/internal/pipeline"
	"github.com/leadscout/emailscout/internal/store"
	"github.com/leadscout/emailscout/internal/validate"
	"github.com/leadscout/emailscout/pkg/serpapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for scout requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		serpClient := serpapi.NewClient(cfg.SerpAPI.Key,
			serpapi.WithBaseURL(cfg.SerpAPI.BaseURL),
			serpapi.WithRateLimit(cfg.SerpAPI.RateLimit),
		)
		scout := pipeline.NewScout(cfg, st, serpClient, validate.NewNetResolver(), nil)

		r := buildRouter(ctx, st, scout, cfg.Convention.Separator)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildRouter assembles the HTTP API. Scout runs kicked off by the
// webhook inherit ctx so server shutdown cancels them.
func buildRouter(ctx context.Context, st store.Store, scout *pipeline.Scout, defaultSeparator string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), store.RunFilter{
			Status:  model.RunStatus(req.URL.Query().Get("status")),
			Company: req.URL.Query().Get("company"),
		})
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Post("/webhook/scout", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Company   string `json:"company"`
			Location  string `json:"location"`
			Suffix    string `json:"suffix"`
			Separator string `json:"separator"`
			Pages     int    `json:"pages"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.Company == "" || body.Location == "" || body.Suffix == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company, location and suffix are required"})
			return
		}

		target := model.Target{
			Company:  body.Company,
			Location: body.Location,
			Pages:    body.Pages,
			Convention: model.NamingConvention{
				Separator:    body.Separator,
				DomainSuffix: body.Suffix,
			},
		}
		if target.Convention.Separator == "" {
			target.Convention.Separator = defaultSeparator
		}

		// Run the scout asynchronously; the server context keeps it
		// cancellable on shutdown.
		go func() {
			if scout == nil {
				return
			}
			run, rows, err := scout.Run(ctx, target)
			if err != nil {
				zap.L().Error("webhook scout failed",
					zap.String("company", target.Company),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("webhook scout complete",
				zap.String("run_id", run.ID),
				zap.Int("emails_generated", len(rows)),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":  "accepted",
			"company": body.Company,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
