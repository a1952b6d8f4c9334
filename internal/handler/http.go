// Package handler exposes the companion over HTTP and a WebSocket stream.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/easeaico/project-pet/internal/companion"
	"github.com/easeaico/project-pet/internal/types"
	"github.com/easeaico/project-pet/internal/visual"
	"github.com/easeaico/project-pet/internal/vitals"
)

// UserHeader carries the caller's user id. Authentication happens upstream.
const UserHeader = "X-User-ID"

const (
	defaultSVGSize = 256
	maxSVGSize     = 2048
	maxBodyBytes   = 4 << 10
	walletTimeout  = 5 * time.Second
)

var tracer = otel.Tracer("github.com/easeaico/project-pet/internal/handler")

// Companions resolves the live companion of a user. Acquire pins it loaded
// until release is called.
type Companions interface {
	Get(ctx context.Context, userID string) (*companion.Companion, error)
	Acquire(ctx context.Context, userID string) (c *companion.Companion, release func(), err error)
}

// Handler serves the pet API.
type Handler struct {
	companions Companions
	ledger     companion.Ledger
}

type errorResponse struct {
	Error string `json:"error"`
}

type generateRequest struct {
	Method companion.Method `json:"method"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type activityRequest struct {
	Kind   vitals.ActivityKind `json:"kind"`
	Detail string              `json:"detail"`
}

type miniGameRequest struct {
	Kind vitals.MiniGameKind `json:"kind"`
}

type styleRequest struct {
	Trait types.Trait `json:"trait"`
}

// New returns a Handler.
func New(companions Companions, ledger companion.Ledger) *Handler {
	return &Handler{companions: companions, ledger: ledger}
}

// RegisterRoutes mounts the API on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /api/pet", h.withCompanion(h.handleState))
	mux.HandleFunc("GET /api/pet/scene", h.withCompanion(h.handleScene))
	mux.HandleFunc("GET /api/pet/svg", h.withCompanion(h.handleSVG))
	mux.HandleFunc("GET /api/pet/stream", h.handleStream)
	mux.HandleFunc("POST /api/pet/generate", h.withCompanion(h.handleGenerate))
	mux.HandleFunc("POST /api/pet/dismantle", h.withCompanion(h.handleDismantle))
	mux.HandleFunc("POST /api/pet/rename", h.withCompanion(h.handleRename))
	mux.HandleFunc("POST /api/pet/activity", h.withCompanion(h.handleActivity))
	mux.HandleFunc("POST /api/pet/interaction", h.withCompanion(h.handleInteraction))
	mux.HandleFunc("POST /api/pet/minigame", h.withCompanion(h.handleMiniGame))
	mux.HandleFunc("POST /api/pet/style", h.withCompanion(h.handleStyle))
	mux.HandleFunc("GET /api/wallet", h.handleWallet)
}

type companionHandler func(w http.ResponseWriter, r *http.Request, c *companion.Companion)

func (h *Handler) withCompanion(next companionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFrom(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing user id")
			return
		}
		c, err := h.companions.Get(r.Context(), userID)
		if err != nil {
			slog.Error("failed to load companion", "user_id", userID, "error", err.Error())
			writeError(w, http.StatusInternalServerError, "failed to load pet")
			return
		}
		next(w, r, c)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	writeJSON(w, http.StatusOK, c.State())
}

func (h *Handler) handleScene(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	writeJSON(w, http.StatusOK, visual.Compose(c.State().Pet))
}

func (h *Handler) handleSVG(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	size := defaultSVGSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxSVGSize {
			writeError(w, http.StatusBadRequest, "invalid size")
			return
		}
		size = parsed
	}
	out, err := visual.RenderSVG(visual.Compose(c.State().Pet), size)
	if err != nil {
		slog.Error("failed to render pet", "user_id", c.UserID(), "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to render pet")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Method == "" {
		req.Method = companion.MethodTokens
	}

	ctx, span := tracer.Start(r.Context(), "handler.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("pet.method", string(req.Method)))

	if err := c.Generate(ctx, req.Method); err != nil {
		span.RecordError(err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

func (h *Handler) handleDismantle(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	if err := c.Dismantle(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	var req renameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := c.Rename(r.Context(), req.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	var req activityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := c.NotifyActivity(req.Kind, req.Detail); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

func (h *Handler) handleInteraction(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	if err := c.RecordInteraction(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

func (h *Handler) handleMiniGame(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	var req miniGameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := c.RecordMiniGameWin(req.Kind); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

func (h *Handler) handleStyle(w http.ResponseWriter, r *http.Request, c *companion.Companion) {
	var req styleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := c.ApplyStyleChoice(req.Trait); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

func (h *Handler) handleWallet(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user id")
		return
	}
	if h.ledger == nil {
		writeError(w, http.StatusServiceUnavailable, "ledger not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), walletTimeout)
	defer cancel()
	balance, err := h.ledger.Balance(ctx, userID)
	if err != nil {
		slog.Error("failed to read balance", "user_id", userID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to read balance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"tokens": balance})
}

func userIDFrom(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(UserHeader)); id != "" {
		return id
	}
	// Browsers cannot set headers on WebSocket upgrades.
	return strings.TrimSpace(r.URL.Query().Get("user"))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// statusFor maps domain error kinds to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, types.ErrInvalidOperation):
		return http.StatusConflict
	case errors.Is(err, types.ErrNarrativeTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrNarrativeFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err.Error())
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
