// Package api serves the world state over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (host control plane) and are how the
// inbox layer feeds action events and market listings into the engine.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/sparkworld/internal/economy"
	"github.com/talgya/sparkworld/internal/engine"
)

// Server serves the engine state over HTTP. Mu is shared with the tick loop:
// the engine itself is single-writer and lock-free, so every access from a
// handler must hold the same mutex the driver wraps around Tick.
type Server struct {
	State    *engine.State
	Mu       *sync.Mutex
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Ingest rate limiting.
	IngestLimiter *RateLimiter
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/economy", s.handleEconomy)
	mux.HandleFunc("/api/v1/ledger", s.handleLedger)
	mux.HandleFunc("/api/v1/structures", s.handleStructures)
	mux.HandleFunc("/api/v1/balance/", s.handleBalance)

	// Ingest endpoints (POST, require bearer token).
	ingest := s.IngestLimiter
	if ingest == nil {
		ingest = NewRateLimiter(120, time.Minute)
	}
	mux.HandleFunc("/api/v1/actions", s.adminOnly(RateLimitMiddleware(ingest, s.handleActions)))
	mux.HandleFunc("/api/v1/market/list", s.adminOnly(s.handleMarketList))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// adminOnly guards POST endpoints with a bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "ingest disabled", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response", "error", err)
	}
}

// handleStatus returns the derived clock fields and headline economy numbers.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	st := s.State
	writeJSON(w, http.StatusOK, map[string]any{
		"worldTime":        st.WorldTime,
		"gameDay":          st.GameDay(),
		"lastProcessedDay": st.LastProcessedDay,
		"dayPhase":         st.DayPhase,
		"weather":          st.Weather,
		"season":           st.Season,
		"citizens":         len(st.Economy.Citizens()),
		"structures":       len(st.Structures),
		"listings":         len(st.Listings),
	})
}

// handleEconomy returns balances and treasury/sink totals.
func (s *Server) handleEconomy(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	eco := s.State.Economy
	citizens := eco.Citizens()

	var totalCirculating int64
	balances := make(map[string]int64, len(citizens))
	for _, id := range citizens {
		balances[id] = eco.Balance(id)
		totalCirculating += eco.Balance(id)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"treasury":         eco.Balance(economy.TreasuryID),
		"destroyed":        eco.TotalDestroyed(),
		"totalCirculating": totalCirculating,
		"balances":         balances,
		"ledgerEntries":    eco.Ledger.Len(),
		"integrityOK":      eco.CheckIntegrity(),
	})
}

// handleLedger returns recent ledger entries, newest last. ?limit=N caps the
// count (default 100).
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	s.Mu.Lock()
	entries := s.State.Economy.Ledger.Recent(limit)
	s.Mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// handleStructures returns the structure set with missed-payment counters.
func (s *Server) handleStructures(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	out := make([]*economy.Structure, 0, len(s.State.Structures))
	for _, st := range s.State.Structures {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"structures": out})
}

// handleBalance returns one account's balance: GET /api/v1/balance/:id.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/balance/")
	if id == "" {
		http.Error(w, "missing account id", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	balance := s.State.Economy.Balance(id)
	s.Mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"account": id, "balance": balance})
}

// handleActions ingests a batch of action events into the earnings processor.
// Body: {"events": [{"type": "build", "from": "alice", "ts": 0}, ...]}
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Events []economy.ActionEvent `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	before := s.State.Economy.Ledger.Len()
	s.State.Economy.ProcessEarnings(body.Events, time.Now())
	appended := s.State.Economy.Ledger.Len() - before
	s.Mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"processed":     len(body.Events),
		"ledgerEntries": appended,
	})
}

// handleMarketList charges the listing fee and records the listing.
// Body: {"seller": "alice", "item": "carved bench", "price": 100}
func (s *Server) handleMarketList(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Seller string `json:"seller"`
		Item   string `json:"item"`
		Price  int64  `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Seller == "" || body.Price < 0 {
		http.Error(w, "seller required, price must be >= 0", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	now := time.Now()
	fee, err := s.State.Economy.ChargeListingFee(body.Seller, body.Price, now)
	if err != nil {
		if errors.Is(err, economy.ErrInsufficientBalance) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"success": false,
				"error":   "insufficient_balance",
				"fee":     fee,
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	listing := &engine.Listing{
		ID:       uuid.NewString(),
		Seller:   body.Seller,
		Item:     body.Item,
		Price:    body.Price,
		ListedAt: now.Unix(),
	}
	s.State.Listings = append(s.State.Listings, listing)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"fee":       fee,
		"listingId": listing.ID,
	})
}
