package runtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records renderer activity. A nil *Metrics records nothing.
type Metrics struct {
	renders        *prometheus.CounterVec
	renderErrors   *prometheus.CounterVec
	renderDuration prometheus.Histogram
	domOps         *prometheus.CounterVec
	handlers       *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	dropped        prometheus.Counter
}

// NewMetrics creates the renderer metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lazydom_renders_total",
			Help: "Completed component renders",
		}, []string{"component"}),
		renderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lazydom_render_errors_total",
			Help: "Component renders that failed and kept their previous output",
		}, []string{"component"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lazydom_render_duration_seconds",
			Help:    "Duration of component renders including reconciliation",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		domOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lazydom_dom_operations_total",
			Help: "Host tree operations issued by the renderer",
		}, []string{"op"}),
		handlers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lazydom_handler_invocations_total",
			Help: "Event handler invocations",
		}, []string{"result"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lazydom_resolutions_total",
			Help: "Handler reference resolutions",
		}, []string{"result"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lazydom_dropped_rerenders_total",
			Help: "Queued re-renders dropped because the instance was re-rendered or unmounted first",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.renders, m.renderErrors, m.renderDuration, m.domOps, m.handlers, m.resolutions, m.dropped)
	}
	return m
}

func (m *Metrics) rendered(component string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(component).Inc()
	m.renderDuration.Observe(d.Seconds())
}

func (m *Metrics) renderFailed(component string) {
	if m == nil {
		return
	}
	m.renderErrors.WithLabelValues(component).Inc()
}

func (m *Metrics) domOp(op string) {
	if m == nil {
		return
	}
	m.domOps.WithLabelValues(op).Inc()
}

func (m *Metrics) handled(result string) {
	if m == nil {
		return
	}
	m.handlers.WithLabelValues(result).Inc()
}

func (m *Metrics) resolved(result string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(result).Inc()
}

func (m *Metrics) dropRender() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}
