package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks the protocol counters exported to Prometheus.
type Metrics struct {
	cyclesDistributed prometheus.Counter
	roundsStarted     prometheus.Counter
	allocationVotes   prometheus.Counter
	governanceVotes   prometheus.Counter
	claims            *prometheus.CounterVec
	rpcRequests       *prometheus.CounterVec
	rpcLatency        *prometheus.HistogramVec
}

var (
	metricsOnce sync.Once
	registry    *Metrics
)

// Protocol returns the process-wide metrics registry, registering the
// collectors on first use.
func Protocol() *Metrics {
	metricsOnce.Do(func() {
		registry = &Metrics{
			cyclesDistributed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "vebetterdao",
				Subsystem: "emissions",
				Name:      "cycles_distributed_total",
				Help:      "Count of emission cycles distributed.",
			}),
			roundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "vebetterdao",
				Subsystem: "allocation",
				Name:      "rounds_started_total",
				Help:      "Count of allocation voting rounds opened.",
			}),
			allocationVotes: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "vebetterdao",
				Subsystem: "allocation",
				Name:      "votes_total",
				Help:      "Count of allocation ballots cast.",
			}),
			governanceVotes: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "vebetterdao",
				Subsystem: "governance",
				Name:      "votes_total",
				Help:      "Count of governor votes cast.",
			}),
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "vebetterdao",
				Subsystem: "rewards",
				Name:      "claims_total",
				Help:      "Count of reward claims segmented by kind.",
			}, []string{"kind"}),
			rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "vebetterdao",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Count of JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "vebetterdao",
				Subsystem: "rpc",
				Name:      "request_seconds",
				Help:      "JSON-RPC request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			registry.cyclesDistributed,
			registry.roundsStarted,
			registry.allocationVotes,
			registry.governanceVotes,
			registry.claims,
			registry.rpcRequests,
			registry.rpcLatency,
		)
	})
	return registry
}

// RecordCycleDistributed increments the distributed-cycle counter.
func (m *Metrics) RecordCycleDistributed() {
	if m == nil {
		return
	}
	m.cyclesDistributed.Inc()
}

// RecordRoundStarted increments the round counter.
func (m *Metrics) RecordRoundStarted() {
	if m == nil {
		return
	}
	m.roundsStarted.Inc()
}

// RecordAllocationVote increments the allocation ballot counter.
func (m *Metrics) RecordAllocationVote() {
	if m == nil {
		return
	}
	m.allocationVotes.Inc()
}

// RecordGovernanceVote increments the governor vote counter.
func (m *Metrics) RecordGovernanceVote() {
	if m == nil {
		return
	}
	m.governanceVotes.Inc()
}

// RecordClaim increments the claim counter for the supplied kind
// (app_earnings, voter_reward, deposit_withdrawal).
func (m *Metrics) RecordClaim(kind string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(kind).Inc()
}

// RecordRPC observes one JSON-RPC request.
func (m *Metrics) RecordRPC(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
	m.rpcLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}
