package main

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/parcours/dbopen"
	"github.com/hazyhaar/parcours/shield"
	"github.com/hazyhaar/parcours/tracker"
	"github.com/hazyhaar/parcours/internal/importer"
)

//go:embed static
var staticFS embed.FS

func main() {
	port := env("PORT", "8086")
	dbPath := env("DB_PATH", "data/parcours.db")
	configPath := env("CONFIG", "")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")
	authPassword := os.Getenv("AUTH_PASSWORD")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Config: YAML file when given, env fallbacks otherwise.
	cfg := tracker.DefaultConfig()
	if configPath != "" {
		fc, err := tracker.LoadConfigFile(configPath)
		if err != nil {
			slog.Error("load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = fc.TrackerConfig()
		if fc.DBPath != "" {
			dbPath = fc.DBPath
		}
	}
	if v := os.Getenv("DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.Delay = time.Duration(ms) * time.Millisecond
		}
	}

	// Database.
	db, err := dbopen.Open(dbPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open db", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Tracker service.
	svc, err := tracker.New(db, cfg, logger)
	if err != nil {
		slog.Error("tracker service", "error", err)
		os.Exit(1)
	}

	// Bulk importer.
	imp := importer.New(func(ctx context.Context, rawURL string) error {
		p, err := svc.AddFromURL(ctx, rawURL)
		if err != nil {
			return err
		}
		logger.Info("imported", "person_id", p.ID, "name", p.Name)
		return nil
	}, importer.Config{}, logger)
	go imp.Run(ctx)

	// Optional MCP over stdio.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "parcours",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		go func() {
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				slog.Error("mcp stdio", "error", err)
			}
		}()
	}

	// Basic auth: bcrypt hash of AUTH_PASSWORD, computed once at start.
	var passwordHash []byte
	if authPassword != "" {
		passwordHash, err = bcrypt.GenerateFromPassword([]byte(authPassword), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("hash password", "error", err)
			os.Exit(1)
		}
	}

	// Router.
	r := chi.NewRouter()
	for _, mw := range shield.DefaultStack() {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("static/index.html")
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(passwordHash))

		r.Get("/api/people", func(w http.ResponseWriter, r *http.Request) {
			people, err := svc.People(r.Context(), r.URL.Query().Get("firm"))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			if people == nil {
				people = []*tracker.Person{}
			}
			writeJSON(w, 200, people)
		})

		r.Post("/api/people", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Name string `json:"name"`
				Firm string `json:"firm"`
				URL  string `json:"url"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			var p *tracker.Person
			var err error
			if req.Name == "" {
				p, err = svc.AddFromURL(r.Context(), req.URL)
			} else {
				p, err = svc.AddPerson(r.Context(), req.Name, req.Firm, req.URL)
			}
			if err != nil {
				writeError(w, 400, err)
				return
			}
			writeJSON(w, 201, p)
		})

		r.Post("/api/people/{id}/firm", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Firm string `json:"firm"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			if err := svc.SetFirmByID(r.Context(), chi.URLParam(r, "id"), req.Firm); err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, 200, map[string]string{"status": "ok"})
		})

		r.Post("/api/people/{id}/check", func(w http.ResponseWriter, r *http.Request) {
			line, err := svc.CheckPerson(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, 200, map[string]string{"result": line})
		})

		r.Get("/api/people/{id}/history", func(w http.ResponseWriter, r *http.Request) {
			hist, err := svc.History(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			if hist == nil {
				hist = []*tracker.ChangeRecord{}
			}
			writeJSON(w, 200, hist)
		})

		r.Post("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Firm string `json:"firm"`
			}
			if r.ContentLength > 0 {
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					writeError(w, 400, err)
					return
				}
			}
			sum, err := svc.Refresh(r.Context(), req.Firm)
			if err != nil {
				writeError(w, 500, err)
				return
			}
			shield.GetLogger(r.Context()).Info("refresh run",
				"checked", sum.Checked, "changed", sum.Changed, "skipped", sum.Skipped)
			writeJSON(w, 200, map[string]any{
				"summary": sum.String(),
				"lines":   sum.Lines,
				"checked": sum.Checked,
				"changed": sum.Changed,
			})
		})

		r.Post("/api/import", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				URLs []string `json:"urls"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			queued := 0
			for _, u := range req.URLs {
				if err := imp.Enqueue(u); err != nil {
					writeJSON(w, 503, map[string]any{"queued": queued, "error": "queue full"})
					return
				}
				queued++
			}
			writeJSON(w, 202, map[string]any{"queued": queued})
		})

		r.Get("/api/history.csv", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
			if err := svc.ExportHistoryCSV(r.Context(), w); err != nil {
				shield.GetLogger(r.Context()).Error("export csv", "error", err)
			}
		})
	})

	// HTTP server.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// requireAuth gates API routes behind HTTP Basic auth when a password
// is configured. An empty hash leaves the API open (local use).
func requireAuth(passwordHash []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(passwordHash) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			user, pass, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(user), []byte("admin")) != 1 ||
				bcrypt.CompareHashAndPassword(passwordHash, []byte(pass)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="parcours"`)
				writeJSON(w, 401, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, tracker.ErrNotFound):
		return 404
	case errors.Is(err, tracker.ErrInvalidInput):
		return 400
	default:
		return 500
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
