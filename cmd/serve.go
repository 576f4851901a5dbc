package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-research/internal/model"
)

var servePort int

// researcher is the agent surface the HTTP handlers need. Narrowed so
// handler tests can stub it.
type researcher interface {
	Research(ctx context.Context, domain, query string) model.ResearchResult
	ResearchFullPage(ctx context.Context, domain, query, format string) model.ResearchResult
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the research HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		agent, err := initAgent(true)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(agent),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the service's route table.
func newRouter(agent researcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", handleHealth)
	r.Post("/research", handleResearch(agent))
	r.Post("/batch", handleBatch(agent))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type researchRequest struct {
	Domain       string `json:"domain"`
	Query        string `json:"query"`
	OutputFormat string `json:"output_format,omitempty"`
}

type researchResponse struct {
	Success         bool   `json:"success"`
	Answer          any    `json:"answer,omitempty"`
	Confidence      string `json:"confidence,omitempty"`
	Evidence        string `json:"evidence,omitempty"`
	Found           bool   `json:"found"`
	SectionSearched string `json:"section_searched,omitempty"`
	Error           string `json:"error,omitempty"`
}

// toResponse flattens a pipeline result into the wire shape. Confidence
// always carries a value on success so clients never branch on absence.
func toResponse(res model.ResearchResult) researchResponse {
	out := researchResponse{
		Success:         res.Success,
		SectionSearched: res.SectionSearched,
		Error:           res.Error,
	}
	if res.Result != nil {
		out.Answer = res.Result.Answer
		if out.Answer == nil && res.Result.RawAnswer != "" {
			out.Answer = res.Result.RawAnswer
		}
		out.Confidence = res.Result.Confidence
		out.Evidence = res.Result.Evidence
		out.Found = res.Result.Found
	}
	if res.Success && out.Confidence == "" {
		out.Confidence = "unknown"
	}
	return out
}

func handleResearch(agent researcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req researchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Domain == "" || req.Query == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "domain and query are required"})
			return
		}

		var res model.ResearchResult
		if req.OutputFormat != "" {
			res = agent.ResearchFullPage(r.Context(), req.Domain, req.Query, req.OutputFormat)
		} else {
			res = agent.Research(r.Context(), req.Domain, req.Query)
		}

		writeJSON(w, http.StatusOK, toResponse(res))
	}
}

type batchRequest struct {
	Domain  string   `json:"domain"`
	Queries []string `json:"queries"`
}

type batchItemResponse struct {
	Query      string `json:"query"`
	Success    bool   `json:"success"`
	Answer     any    `json:"answer,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Error      string `json:"error,omitempty"`
}

func handleBatch(agent researcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Domain == "" || len(req.Queries) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "domain and queries are required"})
			return
		}

		items := make([]batchItemResponse, 0, len(req.Queries))
		for _, query := range req.Queries {
			res := agent.Research(r.Context(), req.Domain, query)
			resp := toResponse(res)
			items = append(items, batchItemResponse{
				Query:      query,
				Success:    resp.Success,
				Answer:     resp.Answer,
				Confidence: resp.Confidence,
				Error:      resp.Error,
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"domain":  req.Domain,
			"results": items,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}
