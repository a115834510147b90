// Copyright (c) 2026 CoPla. All rights reserved.

package middleware

import (
	"context"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/respond"
)

// Limit is a token bucket applied per client IP.
type Limit struct {
	RPS   float64
	Burst int
}

var (
	// DefaultLimit guards the whole API.
	DefaultLimit = Limit{RPS: constants.DefaultRateLimitRPS, Burst: constants.DefaultRateLimitBurst}

	// AuthLimit guards login and registration against credential stuffing.
	AuthLimit = Limit{RPS: constants.AuthRateLimitRPS, Burst: constants.AuthRateLimitBurst}
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitors is the set of buckets of one [RateLimit] instance.
type visitors struct {
	limit Limit

	mu      sync.Mutex
	clients map[string]*visitor
}

// reserve takes a token for ip. It returns how long the caller must wait when
// the bucket is empty, or zero when the request may proceed.
func (set *visitors) reserve(ip string, now time.Time) time.Duration {
	set.mu.Lock()
	defer set.mu.Unlock()

	client, ok := set.clients[ip]
	if !ok {
		client = &visitor{limiter: rate.NewLimiter(rate.Limit(set.limit.RPS), set.limit.Burst)}
		set.clients[ip] = client
	}
	client.lastSeen = now

	reservation := client.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return time.Second
	}
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
	}
	return delay
}

func (set *visitors) sweep(now time.Time) {
	set.mu.Lock()
	defer set.mu.Unlock()

	for ip, client := range set.clients {
		if now.Sub(client.lastSeen) > constants.RateLimitClientTTL {
			delete(set.clients, ip)
		}
	}
}

// RateLimit throttles each client IP to limit and answers 429 with a
// Retry-After header once the bucket is empty.
//
// Idle buckets are swept in the background until context is cancelled.
func RateLimit(context context.Context, limit Limit) func(http.Handler) http.Handler {
	set := &visitors{limit: limit, clients: make(map[string]*visitor)}

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				set.sweep(now)
			case <-context.Done():
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if wait := set.reserve(RealIP(request), time.Now()); wait > 0 {
				respond.Error(writer, request, apperr.RateLimited(int(math.Ceil(wait.Seconds()))))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
