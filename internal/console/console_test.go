package console

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chapak/internal/api"
	"chapak/internal/auth"
	"chapak/internal/config"
	"chapak/internal/repository"
	"chapak/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendState struct {
	loginCalls    int
	pricingCalls  int
	createCalls   int
	paymentCalls  int
	validateCalls int
	failedCalls   int
}

func newBackend(t *testing.T) (*httptest.Server, *backendState) {
	t.Helper()
	state := &backendState{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		state.loginCalls++
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			writeJSON(w, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, map[string]interface{}{
			"token": "test-token",
			"user":  map[string]interface{}{"id": "u1", "email": creds["email"], "role": "admin"},
		})
	})
	mux.HandleFunc("/api/bookings/calculate", func(w http.ResponseWriter, r *http.Request) {
		state.pricingCalls++
		var req struct {
			Adults int `json:"adults"`
			Kids   int `json:"kids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		final := int64(req.Adults)*800 + int64(req.Kids)*500
		writeJSON(w, map[string]interface{}{
			"baseAmount":  final,
			"discount":    0,
			"finalAmount": final,
			"pricing":     map[string]interface{}{"adultPrice": 800, "kidsPrice": 500, "type": "weekday"},
		})
	})
	mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, map[string]interface{}{"bookings": []interface{}{}})
			return
		}
		state.createCalls++
		writeJSON(w, map[string]interface{}{
			"bookingId": "CHPK-9001",
			"tickets":   map[string]int{"adult": 2, "kids": 1},
			"pricing":   map[string]interface{}{"finalAmount": 2100},
			"payment":   map[string]string{"status": "PENDING"},
		})
	})
	mux.HandleFunc("/api/bookings/CHPK-9001/payment-success", func(w http.ResponseWriter, r *http.Request) {
		state.paymentCalls++
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		writeJSON(w, map[string]interface{}{
			"bookingId": "CHPK-9001",
			"payment":   map[string]string{"status": "PAID"},
		})
	})
	mux.HandleFunc("/api/bookings/CHPK-9001/payment-failed", func(w http.ResponseWriter, r *http.Request) {
		state.failedCalls++
		writeJSON(w, map[string]string{"message": "noted"})
	})
	mux.HandleFunc("/api/validation/validate", func(w http.ResponseWriter, r *http.Request) {
		state.validateCalls++
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		valid := req["bookingId"] == "CHPK-9001"
		msg := "Ticket validated successfully"
		if !valid {
			msg = "Booking not found"
		}
		writeJSON(w, map[string]interface{}{"valid": valid, "message": msg})
	})
	mux.HandleFunc("/api/validation/today", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int{"total": 3, "verified": 1, "pending": 2})
	})
	mux.HandleFunc("/api/bookings/stats/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"today": map[string]interface{}{"bookings": 4, "tickets": 9, "verified": 2, "revenue": 7200},
			"month": map[string]interface{}{"bookings": 60, "revenue": 120000},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, state
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestConsole(t *testing.T, baseURL, script string) (*Console, *strings.Builder) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	tokens := auth.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	client := api.NewClient(baseURL+"/api", tokens, 5*time.Second)
	states := service.NewStateService(repository.NewMemoryStateRepository(time.Hour), &logger)

	cfg := &config.Config{}
	cfg.Exports.Path = t.TempDir()

	out := &strings.Builder{}
	c := New(cfg, client, tokens, states, nil, nil, nil, &logger, strings.NewReader(script), out)
	return c, out
}

func TestRunBookingEndToEnd(t *testing.T) {
	server, state := newBackend(t)

	futureDate := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	script := strings.Join([]string{
		"admin@park.test", // login
		"secret",
		"1", // new booking
		"d " + futureDate,
		"a 2",
		"k 1",
		"next",
		"Ravi", // customer
		"ravi@example.test",
		"9991234567",
		"y", // pay
		"q",
	}, "\n") + "\n"

	c, out := newTestConsole(t, server.URL, script)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 1, state.loginCalls)
	assert.Equal(t, 3, state.pricingCalls) // date, adults, kids
	assert.Equal(t, 1, state.createCalls)
	assert.Equal(t, 1, state.paymentCalls)

	output := out.String()
	assert.Contains(t, output, "Booking confirmed: CHPK-9001")
	assert.Contains(t, output, "Payment received")
}

func TestRunBookingAbortedPayment(t *testing.T) {
	server, state := newBackend(t)

	futureDate := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	script := strings.Join([]string{
		"admin@park.test",
		"secret",
		"1",
		"d " + futureDate,
		"a 1",
		"next",
		"Ravi",
		"",
		"9991234567",
		"n", // abort payment
		"q",
	}, "\n") + "\n"

	c, out := newTestConsole(t, server.URL, script)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 1, state.createCalls)
	assert.Zero(t, state.paymentCalls)
	assert.Equal(t, 1, state.failedCalls)
	assert.Contains(t, out.String(), "stays pending")
}

func TestRunValidationSession(t *testing.T) {
	server, state := newBackend(t)

	script := strings.Join([]string{
		"admin@park.test",
		"secret",
		"2",          // check-in
		"CHPK-9001",  // valid
		"CHPK-0000",  // invalid
		"q",          // leave check-in; Run ends via EOF afterwards
	}, "\n") + "\n"

	c, out := newTestConsole(t, server.URL, script)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 2, state.validateCalls)
	output := out.String()
	assert.Contains(t, output, "Ticket validated successfully")
	assert.Contains(t, output, "Booking not found")
	assert.Contains(t, output, "Today: 3 total / 1 checked in / 2 pending")
}

func TestLoginRetriesOnRejection(t *testing.T) {
	server, state := newBackend(t)

	script := strings.Join([]string{
		"admin@park.test",
		"wrong",
		"admin@park.test",
		"secret",
		"3", // dashboard
		"q",
	}, "\n") + "\n"

	c, out := newTestConsole(t, server.URL, script)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 2, state.loginCalls)
	output := out.String()
	assert.Contains(t, output, "Login failed: Invalid credentials")
	assert.Contains(t, output, "Bookings: 4  Tickets: 9  Checked in: 2  Revenue: 7200")
}

func TestSavedSessionSkipsLogin(t *testing.T) {
	server, state := newBackend(t)

	logger := zerolog.New(io.Discard)
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	tokens := auth.NewTokenStore(tokenPath)
	require.NoError(t, tokens.Save("test-token", nil))

	client := api.NewClient(server.URL+"/api", tokens, 5*time.Second)
	states := service.NewStateService(repository.NewMemoryStateRepository(time.Hour), &logger)
	cfg := &config.Config{}

	out := &strings.Builder{}
	c := New(cfg, client, tokens, states, nil, nil, nil, &logger, strings.NewReader("q\n"), out)

	require.NoError(t, c.Run(context.Background()))
	assert.Zero(t, state.loginCalls)
}
