package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roofline"

// PrometheusRecorder implements Recorder on a private registry.
type PrometheusRecorder struct {
	reg              *prom.Registry
	callDuration     *prom.HistogramVec
	calls            *prom.CounterVec
	stageDuration    *prom.HistogramVec
	stageResults     *prom.CounterVec
	stageConcurrency *prom.GaugeVec
}

func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		callDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "design_call_duration_seconds",
			Help:      "Duration of design service calls",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
		calls: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "design_calls_total",
			Help:      "Design service calls by route and HTTP status (0 when no response)",
		}, []string{"route", "status"}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of submission pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Submission pipeline stage results",
		}, []string{"stage", "result"}),
		stageConcurrency: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_concurrency",
			Help:      "Concurrent submissions used by the last run of a stage",
		}, []string{"stage"}),
	}
	reg.MustRegister(pr.callDuration, pr.calls, pr.stageDuration, pr.stageResults, pr.stageConcurrency)
	return pr
}

func (p *PrometheusRecorder) ObserveCall(route string, d time.Duration, status int) {
	if p == nil {
		return
	}
	p.callDuration.WithLabelValues(route).Observe(d.Seconds())
	p.calls.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) ObserveStage(stage string, d time.Duration, result Result) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) SetStageConcurrency(stage string, n int) {
	if p == nil {
		return
	}
	p.stageConcurrency.WithLabelValues(stage).Set(float64(n))
}

// Handler serves the recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return HTTPHandler(p.reg)
}

// HTTPHandler serves reg in the Prometheus exposition format.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
