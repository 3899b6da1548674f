// Package observe holds the OpenTelemetry instruments and providers used by
// wayfarer. Metrics are exported through a Prometheus bridge and scraped from
// the gateway's /metrics endpoint.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/soyeahso/wayfarer"

// Metrics holds every instrument the service records.
type Metrics struct {
	TurnDuration        metric.Float64Histogram
	LLMDuration         metric.Float64Histogram
	ToolDuration        metric.Float64Histogram
	HTTPRequestDuration metric.Float64Histogram

	// Turns counts conversation turns by agent and status.
	Turns metric.Int64Counter
	// ToolCalls counts tool invocations by tool and status.
	ToolCalls metric.Int64Counter
	// RoutingDecisions counts supervisor decisions by target label.
	RoutingDecisions metric.Int64Counter
	RoutingErrors    metric.Int64Counter
	HopLimitHits     metric.Int64Counter
	EmptyResponses   metric.Int64Counter
	ThreadsEvicted   metric.Int64Counter

	ActiveTurns metric.Int64UpDownCounter
}

// Turn latencies are dominated by LLM round trips, so buckets reach a minute.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60,
}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&met.TurnDuration, "wayfarer.turn.duration", "Latency of a full conversation turn."},
		{&met.LLMDuration, "wayfarer.llm.duration", "Latency of a single LLM completion."},
		{&met.ToolDuration, "wayfarer.tool.duration", "Latency of a single tool invocation."},
		{&met.HTTPRequestDuration, "wayfarer.http.request.duration", "HTTP request latency by method and path."},
	}
	for _, h := range histograms {
		if *h.dst, err = m.Float64Histogram(h.name,
			metric.WithDescription(h.desc),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(latencyBuckets...),
		); err != nil {
			return nil, err
		}
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&met.Turns, "wayfarer.turns", "Conversation turns by agent and status."},
		{&met.ToolCalls, "wayfarer.tool.calls", "Tool invocations by tool name and status."},
		{&met.RoutingDecisions, "wayfarer.routing.decisions", "Supervisor routing decisions by target."},
		{&met.RoutingErrors, "wayfarer.routing.errors", "Supervisor replies that failed validation."},
		{&met.HopLimitHits, "wayfarer.routing.hop_limit", "Turns terminated by the hop limit."},
		{&met.EmptyResponses, "wayfarer.llm.empty_responses", "Responders that exhausted their retry budget."},
		{&met.ThreadsEvicted, "wayfarer.threads.evicted", "Threads removed by idle eviction."},
	}
	for _, c := range counters {
		if *c.dst, err = m.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	if met.ActiveTurns, err = m.Int64UpDownCounter("wayfarer.turns.active",
		metric.WithDescription("Turns currently in progress."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a process-wide Metrics bound to the global provider.
// Tests should build their own with NewMetrics.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is shorthand for attribute.String.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordTurn records a finished turn.
func (m *Metrics) RecordTurn(ctx context.Context, agent, status string, d time.Duration) {
	attrs := metric.WithAttributes(Attr("agent", agent), Attr("status", status))
	m.Turns.Add(ctx, 1, attrs)
	m.TurnDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordLLM records one completion round trip.
func (m *Metrics) RecordLLM(ctx context.Context, agent, model string, d time.Duration) {
	m.LLMDuration.Record(ctx, d.Seconds(), metric.WithAttributes(Attr("agent", agent), Attr("model", model)))
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string, d time.Duration) {
	m.ToolCalls.Add(ctx, 1, metric.WithAttributes(Attr("tool", tool), Attr("status", status)))
	m.ToolDuration.Record(ctx, d.Seconds(), metric.WithAttributes(Attr("tool", tool)))
}

// RecordRouting records a supervisor decision.
func (m *Metrics) RecordRouting(ctx context.Context, next string) {
	m.RoutingDecisions.Add(ctx, 1, metric.WithAttributes(Attr("next", next)))
}
