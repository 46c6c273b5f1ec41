package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// limiters hands out one token bucket per client IP.
// A non-positive rps disables limiting.
type limiters struct {
	mu    sync.Mutex
	byKey map[string]*rate.Limiter
	rps   int
	burst int
}

func newLimiters(rps, burst int) *limiters {
	if burst <= 0 {
		burst = rps
	}
	return &limiters{byKey: make(map[string]*rate.Limiter), rps: rps, burst: burst}
}

// get returns the limiter for key, creating it on first use.
func (l *limiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.byKey[key]; ok {
		return lim
	}
	if key == "" {
		log.Warn().Msg("rate limiter key is empty")
	}
	lim := rate.NewLimiter(rate.Every(time.Second/time.Duration(l.rps)), l.burst)
	l.byKey[key] = lim
	return lim
}

func (l *limiters) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.rps <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		if !l.get(clientIP(r)).Allow() {
			writeDetail(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr (already rewritten by RealIP).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
