package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ReadinessReporter interface {
	Readiness() (ready bool, partitions []int32)
}

// Checks lists the optional dependencies readiness depends on. Nil fields
// are skipped.
type Checks struct {
	Cache    Pinger
	Consumer ReadinessReporter
	Timeout  time.Duration
}

func Readiness(c Checks) http.HandlerFunc {
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		type resp struct {
			Status     string  `json:"status"`
			Cache      string  `json:"cache,omitempty"`
			Partitions []int32 `json:"partitions,omitempty"`
		}
		out := resp{Status: "ready"}
		ready := true

		if c.Cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), c.Timeout)
			err := c.Cache.Ping(ctx)
			cancel()
			if err != nil {
				ready = false
				out.Cache = "unreachable"
			} else {
				out.Cache = "ok"
			}
		}
		if c.Consumer != nil {
			ok, parts := c.Consumer.Readiness()
			if !ok {
				ready = false
			}
			out.Partitions = parts
		}

		w.Header().Set("Content-Type", "application/json")
		if !ready {
			out.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
