package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorTTL controls how long an idle client keeps its limiter before the
// sweep drops it.
const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitorTable struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

func newVisitorTable(rps float64, burst int) *visitorTable {
	vt := &visitorTable{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	go vt.sweep()
	return vt
}

func (vt *visitorTable) allow(ip string) bool {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	v, ok := vt.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(vt.rps, vt.burst)}
		vt.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (vt *visitorTable) sweep() {
	for {
		time.Sleep(visitorTTL)
		vt.mu.Lock()
		for ip, v := range vt.visitors {
			if time.Since(v.lastSeen) > visitorTTL {
				delete(vt.visitors, ip)
			}
		}
		vt.mu.Unlock()
	}
}

// RateLimit returns middleware enforcing a per-IP token bucket. It guards
// the auth endpoints against credential stuffing; rps is the sustained rate,
// burst the allowance for short spikes.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	table := newVisitorTable(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !table.allow(ip) {
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
