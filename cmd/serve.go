package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odens-ab/pricing-cli/internal/artifacts"
	"github.com/odens-ab/pricing-cli/internal/auth"
	"github.com/odens-ab/pricing-cli/internal/config"
	"github.com/odens-ab/pricing-cli/internal/feature"
	"github.com/odens-ab/pricing-cli/internal/model"
	"github.com/odens-ab/pricing-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pricing API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		mux, err := buildMux(cfg, st, artifactStore())
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
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

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildMux wires all routes. Signup and login share a per-IP rate limiter;
// every /user and /predict route requires a bearer token.
func buildMux(cfg *config.Config, st store.Store, as *artifacts.Store) (*http.ServeMux, error) {
	mgr, err := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenExpireHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	limiter := auth.NewIPRateLimiter(cfg.Server.AuthRateLimit, cfg.Server.AuthRateBurst)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "pricing API"})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Backend is running"})
	})

	mux.Handle("POST /auth/signup", limiter.Middleware(signupHandler(st, mgr)))
	mux.Handle("POST /auth/login", limiter.Middleware(loginHandler(st, mgr)))

	mux.Handle("GET /user/me", mgr.Middleware(meHandler(st)))
	mux.Handle("POST /predict/model_latest", mgr.Middleware(predictHandler(as)))
	mux.Handle("POST /predict/save_quote", mgr.Middleware(saveQuoteHandler(as)))

	return mux, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func signupHandler(st store.Store, mgr *auth.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			zap.L().Error("signup: hash password", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		user := model.User{
			ID:           uuid.NewString(),
			Email:        req.Email,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if err := st.CreateUser(r.Context(), user); err != nil {
			if errors.Is(err, store.ErrUserExists) {
				writeError(w, http.StatusBadRequest, "user already exists")
				return
			}
			zap.L().Error("signup: create user", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		token, err := mgr.IssueToken(user.Email)
		if err != nil {
			zap.L().Error("signup: issue token", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"access_token": token,
			"token_type":   "bearer",
		})
	})
}

func loginHandler(st store.Store, mgr *auth.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := st.GetUser(r.Context(), req.Email)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			zap.L().Error("login: get user", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := mgr.IssueToken(user.Email)
		if err != nil {
			zap.L().Error("login: issue token", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": token,
			"token_type":   "bearer",
		})
	})
}

func meHandler(st store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, _ := auth.EmailFromContext(r.Context())
		user, err := st.GetUser(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"id":    user.ID,
			"email": user.Email,
		})
	})
}

// predictRequest carries the seven predictive fields of a quote.
type predictRequest struct {
	ProfileRef            string  `json:"profile_ref"`
	WeightKgM             float64 `json:"weight_kg_m"`
	LengthM               float64 `json:"length_m"`
	Quantity              int     `json:"quantity"`
	SurfaceTreatment      string  `json:"surface_treatment"`
	Alloy                 string  `json:"alloy"`
	RawMaterialPriceEURKg float64 `json:"raw_material_price_eur_kg"`
}

func predictHandler(as *artifacts.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, _ := auth.EmailFromContext(r.Context())

		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ProfileRef == "" || req.Alloy == "" || req.SurfaceTreatment == "" ||
			req.WeightKgM <= 0 || req.LengthM <= 0 || req.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "missing or non-positive quote fields")
			return
		}

		reg, md, err := as.LoadModel(email)
		if err != nil {
			if errors.Is(err, artifacts.ErrModelNotFound) {
				writeError(w, http.StatusNotFound, "no trained model for this user")
				return
			}
			zap.L().Error("predict: load model", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		row := model.FeatureRow{
			WeightKgM:             req.WeightKgM,
			LengthM:               req.LengthM,
			Quantity:              req.Quantity,
			RawMaterialPriceEURKg: req.RawMaterialPriceEURKg,
			SurfaceTreatment:      req.SurfaceTreatment,
			Alloy:                 req.Alloy,
			ProfileRef:            req.ProfileRef,
		}
		m, err := feature.Apply([]model.FeatureRow{row}, md.FeaturesUsed)
		if err != nil {
			zap.L().Error("predict: encode", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		pred, err := reg.Predict(m.Rows[0])
		if err != nil {
			zap.L().Error("predict: model", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"predicted_price_sek": math.Round(pred*100) / 100,
			"model_version":       md.Version,
			"trained_on":          md.TrainedOn,
		})
	})
}

func saveQuoteHandler(as *artifacts.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, _ := auth.EmailFromContext(r.Context())

		var q model.Quote
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		q.UserID = email
		if q.QuoteID == "" {
			q.QuoteID = uuid.NewString()
		}
		q.Normalize()
		if err := q.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		row, ok := model.FeatureRowFromQuote(&q)
		if !ok {
			writeError(w, http.StatusBadRequest, "quote is missing predictive fields")
			return
		}
		path := as.DataPath(email, artifacts.SubmittedFile)
		if err := feature.AppendQuoteCSV(path, row); err != nil {
			zap.L().Error("save_quote: append", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{
			"status":   "saved",
			"quote_id": q.QuoteID,
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
