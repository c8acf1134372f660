package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/marketplace-service/internal/config"
	"github.com/princekumarofficial/marketplace-service/internal/ratelimit"
	"github.com/princekumarofficial/marketplace-service/internal/utils/response"
)

// Rate limited actions.
const (
	ActionTickets   = "tickets"
	ActionItems     = "items"
	ActionDonations = "donations"

	// ActionTicketsByAddr caps tickets per client address whatever userId is sent.
	ActionTicketsByAddr = "tickets_addr"
)

// ErrRateLimited is returned in the 429 body.
var ErrRateLimited = errors.New("rate limit exceeded")

// SubjectFunc picks the rate limit subject for a request.
type SubjectFunc func(r *http.Request) (string, bool)

// AuthenticatedUser keys the bucket by the user set by AuthMiddleware.
func AuthenticatedUser(r *http.Request) (string, bool) {
	return GetUserIDFromContext(r.Context())
}

// QueryParam keys the bucket by a query parameter, falling back to the client address.
func QueryParam(name string) SubjectFunc {
	return func(r *http.Request) (string, bool) {
		if v := r.URL.Query().Get(name); v != "" {
			return v, true
		}
		return ClientAddr(r)
	}
}

// ClientAddr keys the bucket by the remote host.
func ClientAddr(r *http.Request) (string, bool) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host, host != ""
}

type RateLimitConfig struct {
	limiters map[string]*ratelimit.TokenBucket
	// Rejected is called once per denied request. May be nil.
	Rejected func(action string)
}

func NewRateLimitConfig(redisClient *redis.Client, cfg config.RateLimit) *RateLimitConfig {
	rlc := &RateLimitConfig{
		limiters: make(map[string]*ratelimit.TokenBucket),
	}

	// GET /get-presigned-url: per uploading user
	rlc.limiters[ActionTickets] = ratelimit.NewTokenBucket(redisClient, cfg.TicketCapacity, cfg.TicketRefill)
	// Same endpoint per client address; zero capacity disables it.
	if cfg.TicketAddrCapacity > 0 {
		rlc.limiters[ActionTicketsByAddr] = ratelimit.NewTokenBucket(redisClient, cfg.TicketAddrCapacity, cfg.TicketAddrRefill)
	}

	// POST /items: 20/min per user
	rlc.limiters[ActionItems] = ratelimit.NewTokenBucket(redisClient, 20, 20)

	// POST /campaigns/{id}/donations: 30/min per user
	rlc.limiters[ActionDonations] = ratelimit.NewTokenBucket(redisClient, 30, 30)

	return rlc
}

func (rlc *RateLimitConfig) RateLimitMiddleware(action string, subject SubjectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter, exists := rlc.limiters[action]
			if !exists {
				next.ServeHTTP(w, r)
				return
			}

			key, ok := subject(r)
			if !ok {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("user not authenticated")))
				return
			}

			decision, err := limiter.Take(r.Context(), key, action)
			if err != nil {
				slog.Error("Rate limit check failed",
					slog.String("action", action),
					slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					fmt.Errorf("rate limit check failed: %w", err)))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(limiter.Window().Seconds())))

			if !decision.Allowed {
				if rlc.Rejected != nil {
					rlc.Rejected(action)
				}
				response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(ErrRateLimited))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitedHandler wraps a handler with rate limiting for a specific action
func (rlc *RateLimitConfig) RateLimitedHandler(action string, subject SubjectFunc, handler http.HandlerFunc) http.Handler {
	return rlc.RateLimitMiddleware(action, subject)(handler)
}

// TicketHandler limits ticket requests per client address first and then per
// userId, so rotating userId does not reset the caller's budget.
func (rlc *RateLimitConfig) TicketHandler(handler http.HandlerFunc) http.Handler {
	perUser := rlc.RateLimitMiddleware(ActionTickets, QueryParam("userId"))(handler)
	return rlc.RateLimitMiddleware(ActionTicketsByAddr, ClientAddr)(perUser)
}
