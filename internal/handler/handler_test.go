package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/easeaico/project-pet/internal/companion"
	"github.com/easeaico/project-pet/internal/generator"
	"github.com/easeaico/project-pet/internal/narrative"
	"github.com/easeaico/project-pet/internal/storage"
	"github.com/easeaico/project-pet/internal/types"
)

func newTestServer(t *testing.T, startingTokens int) (*http.ServeMux, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore(startingTokens)
	reg := companion.NewRegistry(context.Background(), store, store, generator.NewEngine(narrative.Static{}), companion.Options{
		WriteDebounce: time.Hour,
		Seed:          func(string, time.Time) uint32 { return 1 },
	})
	t.Cleanup(func() { _ = reg.Close(context.Background()) })

	mux := http.NewServeMux()
	New(reg, store).RegisterRoutes(mux)
	return mux, store
}

func do(t *testing.T, mux http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) companion.Snapshot {
	t.Helper()
	var snap companion.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode state: %v (%s)", err, rec.Body.String())
	}
	return snap
}

func TestHealth(t *testing.T) {
	mux, _ := newTestServer(t, 100)
	if rec := do(t, mux, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMissingUser(t *testing.T) {
	mux, _ := newTestServer(t, 100)
	for _, path := range []string{"/api/pet", "/api/wallet"} {
		if rec := do(t, mux, http.MethodGet, path, "", ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestGenerateAndDismantleFlow(t *testing.T) {
	mux, _ := newTestServer(t, 100)

	rec := do(t, mux, http.MethodGet, "/api/pet", "u1", "")
	if rec.Code != http.StatusOK || decodeState(t, rec).Pet.Stage != types.StageDormant {
		t.Fatalf("expected dormant pet, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, mux, http.MethodPost, "/api/pet/generate", "u1", `{"method":"tokens"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	snap := decodeState(t, rec)
	if snap.Pet.Stage != types.StageActive || snap.Pet.Name != "Gentle Moss Mite" || snap.Pet.Narrative == "" {
		t.Fatalf("unexpected generated pet: %#v", snap.Pet)
	}

	rec = do(t, mux, http.MethodGet, "/api/wallet", "u1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"tokens":50`) {
		t.Fatalf("expected 50 tokens, got %d %s", rec.Code, rec.Body.String())
	}

	if rec = do(t, mux, http.MethodPost, "/api/pet/generate", "u1", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second generation, got %d", rec.Code)
	}

	rec = do(t, mux, http.MethodPost, "/api/pet/dismantle", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	snap = decodeState(t, rec)
	if snap.Pet.Stage != types.StageDormant || snap.Fragments != companion.DismantleReward || snap.PityCounter != 1 {
		t.Fatalf("unexpected state after dismantle: %#v", snap)
	}
}

func TestGenerateInsufficientFunds(t *testing.T) {
	mux, _ := newTestServer(t, 40)
	rec := do(t, mux, http.MethodPost, "/api/pet/generate", "u1", `{"method":"tokens"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, mux, http.MethodPost, "/api/pet/generate", "u1", `{"method":"fragments"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 for fragments, got %d", rec.Code)
	}
}

func TestCareEndpoints(t *testing.T) {
	mux, _ := newTestServer(t, 100)
	do(t, mux, http.MethodPost, "/api/pet/generate", "u1", `{"method":"tokens"}`)

	rec := do(t, mux, http.MethodPost, "/api/pet/activity", "u1", `{"kind":"research","detail":"market scan"}`)
	if rec.Code != http.StatusOK || decodeState(t, rec).Pet.Stats.Intelligence != 50.3 {
		t.Fatalf("unexpected activity response: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, mux, http.MethodPost, "/api/pet/minigame", "u1", `{"kind":"rhythm"}`)
	if rec.Code != http.StatusOK || decodeState(t, rec).Pet.Stats.Creativity != 65 {
		t.Fatalf("unexpected minigame response: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, mux, http.MethodPost, "/api/pet/interaction", "u1", "")
	if rec.Code != http.StatusOK || !decodeState(t, rec).Visible {
		t.Fatalf("unexpected interaction response: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, mux, http.MethodPost, "/api/pet/style", "u1", `{"trait":"bold"}`)
	if rec.Code != http.StatusOK || decodeState(t, rec).Pet.Personality.Bold != 3 {
		t.Fatalf("unexpected style response: %d %s", rec.Code, rec.Body.String())
	}

	if rec = do(t, mux, http.MethodPost, "/api/pet/activity", "u1", `{"kind":"juggling"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for unknown activity, got %d", rec.Code)
	}
	if rec = do(t, mux, http.MethodPost, "/api/pet/minigame", "u1", `not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", rec.Code)
	}
}

func TestRename(t *testing.T) {
	mux, _ := newTestServer(t, 100)

	rec := do(t, mux, http.MethodPost, "/api/pet/rename", "u1", `{"name":"Biscuit"}`)
	if rec.Code != http.StatusOK || decodeState(t, rec).Pet.Name != "Biscuit" {
		t.Fatalf("unexpected rename response: %d %s", rec.Code, rec.Body.String())
	}
	if rec = do(t, mux, http.MethodPost, "/api/pet/rename", "u1", `{"name":"   "}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for blank name, got %d", rec.Code)
	}
}

func TestSceneAndSVG(t *testing.T) {
	mux, _ := newTestServer(t, 100)
	do(t, mux, http.MethodPost, "/api/pet/generate", "u1", `{"method":"tokens"}`)

	rec := do(t, mux, http.MethodGet, "/api/pet/scene", "u1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"archetype":"mystic"`) {
		t.Fatalf("unexpected scene: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, mux, http.MethodGet, "/api/pet/svg?size=128", "u1", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("unexpected svg response: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") || !strings.Contains(rec.Body.String(), `width="128"`) {
		t.Fatalf("unexpected svg body: %s", rec.Body.String())
	}

	if rec = do(t, mux, http.MethodGet, "/api/pet/svg?size=-1", "u1", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad size, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrInsufficientFunds, http.StatusPaymentRequired},
		{types.InvalidOperation("nope"), http.StatusConflict},
		{types.ErrNarrativeTimeout, http.StatusGatewayTimeout},
		{types.ErrNarrativeFailure, http.StatusBadGateway},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestStream(t *testing.T) {
	mux, _ := newTestServer(t, 100)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/pet/stream?user=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first StreamMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("failed to read initial state: %v", err)
	}
	if first.Type != "state" || first.State.Pet.Stage != types.StageDormant || len(first.Scene.Layers) != 1 {
		t.Fatalf("unexpected initial message: %#v", first)
	}

	if rec := do(t, mux, http.MethodPost, "/api/pet/rename", "u1", `{"name":"Sprout"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var next StreamMessage
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("failed to read update: %v", err)
	}
	if next.State.Pet.Name != "Sprout" {
		t.Fatalf("expected renamed pet in stream, got %q", next.State.Pet.Name)
	}
}

func TestStreamReleasesCompanionOnDisconnect(t *testing.T) {
	store := storage.NewMemoryStore(100)
	reg := companion.NewRegistry(context.Background(), store, store, generator.NewEngine(narrative.Static{}), companion.Options{
		WriteDebounce: time.Hour,
		IdleTTL:       time.Minute,
	})
	t.Cleanup(func() { _ = reg.Close(context.Background()) })
	mux := http.NewServeMux()
	New(reg, store).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/pet/stream?user=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var first StreamMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("failed to read initial state: %v", err)
	}

	later := time.Now().Add(time.Hour)
	if n := reg.Sweep(context.Background(), later); n != 0 || reg.Len() != 1 {
		t.Fatalf("expected open stream to keep the pet loaded, swept %d", n)
	}

	_ = conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for reg.Len() != 0 && time.Now().Before(deadline) {
		reg.Sweep(context.Background(), later)
		time.Sleep(10 * time.Millisecond)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected companion unloaded after the stream closed, live %d", reg.Len())
	}
}
