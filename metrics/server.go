package metrics

import (
	"expvar"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Expvar metrics (legacy)
	EmptyLLMResponseCount  = expvar.NewInt("empty_llm_response_count")
	SuccessfulLLMGenCount  = expvar.NewInt("successful_llm_gen_count")
	FailedLLMGenCount      = expvar.NewInt("failed_llm_gen_count")
	DiscordMessageReceived = expvar.NewInt("discord_message_received")
	DiscordMessageSent     = expvar.NewInt("discord_message_sent")

	// Prometheus metrics with labels
	DiscordCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_command_total",
			Help: "Total number of Discord commands invoked by command type",
		},
		[]string{"command"},
	)

	DiscordCommandErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_command_errors",
			Help: "Total number of Discord command errors by command type",
		},
		[]string{"command"},
	)

	DiscordCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discord_command_duration_seconds",
			Help:    "Duration of Discord command execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// Daily problem metrics
	DailyProblemsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "daily_problems_sent_total",
			Help: "Total number of daily problems posted",
		},
	)

	DailyProblemFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_problem_failures_total",
			Help: "Failed daily problem operations by stage (generate, publish, store, react, fetch, summary)",
		},
		[]string{"stage"},
	)

	VoteSummaries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_vote_summaries_total",
			Help: "Midnight vote summaries by outcome (summary, no_votes, skipped)",
		},
		[]string{"outcome"},
	)

	ScheduledJobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduled_job_duration_seconds",
			Help:    "Duration of cron jobs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	StatusError = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "status_error_flag",
			Help: "1 while the shared error flag is raised",
		},
	)
)

type Server struct {
	*http.Server
}

// SetupServer exposes /metrics and /healthz on addr.
func SetupServer(addr string) *Server {
	if addr == "" {
		addr = ":6060"
	}

	// pprof is setup by importing the net/http/pprof package
	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// setup expvar cache
	EmptyLLMResponseCount.Set(0)
	SuccessfulLLMGenCount.Set(0)
	FailedLLMGenCount.Set(0)
	DiscordMessageReceived.Set(0)
	DiscordMessageSent.Set(0)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewExpvarCollector(
			map[string]*prometheus.Desc{
				"discord_message_received": prometheus.NewDesc("discord_message_received", "number of times discord received a message", nil, nil),
				"discord_message_sent":     prometheus.NewDesc("discord_message_sent", "number of times discord sent a message", nil, nil),
				"empty_llm_response_count": prometheus.NewDesc("empty_llm_response_count", "number of times llm responded with and empty string ", nil, nil),
				"successful_llm_gen_count": prometheus.NewDesc("successful_llm_gen_count", "number of times llm generated a valid response", nil, nil),
				"failed_llm_gen_count":     prometheus.NewDesc("failed_llm_gen_count", "number of times errors occured in llm generation", nil, nil),
			},
		),
		DiscordCommandTotal,
		DiscordCommandErrors,
		DiscordCommandDuration,
		DailyProblemsSent,
		DailyProblemFailures,
		VoteSummaries,
		ScheduledJobDuration,
		StatusError,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", healthzHandler)
	mux.Handle("/debug/", http.DefaultServeMux)
	server.Handler = mux
	return &Server{server}
}

// healthzHandler returns a simple health check response
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) Run() {
	_ = s.ListenAndServe()
}
