package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var entitiesDesc = prometheus.NewDesc(
	prometheus.BuildFQName(namespace, "", "entities"),
	"Number of stored documents by entity kind",
	[]string{"entity"}, nil,
)

// entityCollector queries the store on every scrape.
type entityCollector struct {
	counts  CountsFunc
	timeout time.Duration
}

func newEntityCollector(counts CountsFunc, timeout time.Duration) *entityCollector {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &entityCollector{counts: counts, timeout: timeout}
}

func (c *entityCollector) Describe(ch chan<- *prometheus.Desc) { ch <- entitiesDesc }

func (c *entityCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n := c.counts(ctx)
	for _, e := range []struct {
		label string
		v     int64
	}{
		{"users", n.Users},
		{"portfolios", n.Portfolios},
		{"published_portfolios", n.PublishedPortfolios},
		{"templates", n.Templates},
		{"active_templates", n.ActiveTemplates},
		{"contacts", n.Contacts},
		{"views", n.Views},
	} {
		ch <- prometheus.MustNewConstMetric(entitiesDesc, prometheus.GaugeValue, float64(e.v), e.label)
	}
}
