package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chapak/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// TokenProvider supplies the bearer token for authenticated endpoints.
// An empty string means "no session"; the request goes out unauthenticated.
type TokenProvider interface {
	Token() string
}

// DomainError carries a message the backend reported in a response body
// (booking not found, already verified, closed date), whatever the HTTP
// status. It is user-facing and distinct from transport failures.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Client is an HTTP client for the ticketing backend.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration

	// pricingLimiter coalesces keystroke-speed repricing calls.
	pricingLimiter *rate.Limiter
}

// NewClient constructs a client for the given API base URL, e.g.
// "https://host/api". Token provider may be nil for anonymous use.
func NewClient(baseURL string, tokens TokenProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UsePricingLimiter throttles pricing calculations to rps/burst.
func (c *Client) UsePricingLimiter(rps float64, burst int) {
	if burst <= 0 {
		burst = 1
	}
	c.pricingLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}

type LoginResponse struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Message string       `json:"message"`
}

// Login exchanges credentials for a bearer token. A response without a token
// is a collaborator-reported rejection, not a transport failure.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.doPost(ctx, c.baseURL+"/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "invalid credentials"
		}
		return nil, &DomainError{Message: msg}
	}
	return &resp, nil
}

type CreateBookingRequest struct {
	VisitDate string          `json:"visitDate"`
	Adults    int             `json:"adults"`
	Kids      int             `json:"kids"`
	Customer  models.Customer `json:"customer"`
}

type bookingResponse struct {
	models.Booking
	Message string `json:"message"`
}

// CreateBooking submits the finished draft. Presence of bookingId in the
// response signals success.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	var resp bookingResponse
	if err := c.doPost(ctx, c.baseURL+"/bookings", req, &resp); err != nil {
		return nil, err
	}
	if resp.BookingID == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Failed to create booking"
		}
		return nil, &DomainError{Message: msg}
	}
	return &resp.Booking, nil
}

// GetBooking looks up a confirmed booking by its public identifier.
func (c *Client) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings/%s", c.baseURL, url.PathEscape(bookingID))
	var resp bookingResponse
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.BookingID == "" {
		return nil, &DomainError{Message: "Booking not found"}
	}
	return &resp.Booking, nil
}

// PaymentReference is the client-generated transaction/payment pair sent with
// a payment confirmation.
type PaymentReference struct {
	TransactionID string `json:"transactionId"`
	PaymentID     string `json:"paymentId"`
}

// ConfirmPayment reports a successful payment. The updated booking is
// authoritative; payment.status PAID signals success to the caller.
func (c *Client) ConfirmPayment(ctx context.Context, bookingID string, ref PaymentReference) (*models.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings/%s/payment-success", c.baseURL, url.PathEscape(bookingID))
	var resp bookingResponse
	if err := c.doPost(ctx, endpoint, ref, &resp); err != nil {
		return nil, err
	}
	return &resp.Booking, nil
}

// ReportPaymentFailed tells the backend a payment attempt failed.
func (c *Client) ReportPaymentFailed(ctx context.Context, bookingID string) error {
	endpoint := fmt.Sprintf("%s/bookings/%s/payment-failed", c.baseURL, url.PathEscape(bookingID))
	return c.doPost(ctx, endpoint, struct{}{}, nil)
}

// ValidateTicket submits a booking identifier for check-in.
func (c *Client) ValidateTicket(ctx context.Context, bookingID string) (*models.ValidationResult, error) {
	body := map[string]string{"bookingId": bookingID}
	var resp models.ValidationResult
	if err := c.doPost(ctx, c.baseURL+"/validation/validate", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TodayStats fetches the running validation counters.
func (c *Client) TodayStats(ctx context.Context) (*models.TodayStats, error) {
	var resp models.TodayStats
	if err := c.doGet(ctx, c.baseURL+"/validation/today", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DashboardStats fetches the admin dashboard summary.
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var resp models.DashboardStats
	if err := c.doGet(ctx, c.baseURL+"/bookings/stats/dashboard", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBookings returns the admin bookings list, optionally filtered.
func (c *Client) ListBookings(ctx context.Context, params map[string]string) ([]models.Booking, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	endpoint := c.baseURL + "/bookings"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	var resp struct {
		Bookings []models.Booking `json:"bookings"`
	}
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}

// ActiveOffers returns currently active discount offers.
func (c *Client) ActiveOffers(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	if c.readCache(ctx, "offers:active", &offers) {
		return offers, nil
	}
	if err := c.doGet(ctx, c.baseURL+"/offers/active", &offers); err != nil {
		return nil, err
	}
	c.writeCache(ctx, "offers:active", offers)
	return offers, nil
}

// PriceTable returns the park's price tiers.
func (c *Client) PriceTable(ctx context.Context) ([]models.PriceTier, error) {
	var tiers []models.PriceTier
	if c.readCache(ctx, "pricing:all", &tiers) {
		return tiers, nil
	}
	if err := c.doGet(ctx, c.baseURL+"/pricing", &tiers); err != nil {
		return nil, err
	}
	c.writeCache(ctx, "pricing:all", tiers)
	return tiers, nil
}

// SpecialDates returns the closed and special-price calendar entries.
func (c *Client) SpecialDates(ctx context.Context) ([]models.SpecialDate, error) {
	var dates []models.SpecialDate
	if c.readCache(ctx, "settings:special-dates", &dates) {
		return dates, nil
	}
	if err := c.doGet(ctx, c.baseURL+"/settings/special-dates", &dates); err != nil {
		return nil, err
	}
	c.writeCache(ctx, "settings:special-dates", dates)
	return dates, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) doPost(ctx context.Context, endpoint string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// The backend reports domain outcomes (closed dates, input
		// rejections) with 4xx statuses and the same JSON shapes as 2xx.
		// Decode the body when it parses; callers classify the message.
		// Anything without a JSON body stays a transport error.
		if out != nil {
			if data, readErr := io.ReadAll(resp.Body); readErr == nil {
				if json.Unmarshal(data, out) == nil {
					return nil
				}
			}
		}
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}

func (c *Client) addHeaders(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
