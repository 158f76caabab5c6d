package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes a Registry's aggregate state as Prometheus metrics.
// Shaped after the teacher's PebbleCollector: a handful of Desc fields
// built once in the constructor, and Describe/Collect pulling live values
// out of the thing being observed on each scrape.
type Collector struct {
	registry *Registry

	readersOpen  *prometheus.Desc
	writersOpen  *prometheus.Desc
	bytesRead    *prometheus.Desc
	bytesWritten *prometheus.Desc
	entriesTotal *prometheus.Desc
	parseErrors  *prometheus.Desc
}

// NewCollector builds a Collector over registry. registry may be nil, in
// which case every metric reports zero.
func NewCollector(registry *Registry) *Collector {
	return &Collector{
		registry: registry,

		readersOpen: prometheus.NewDesc(
			"geodiff_changeset_readers_open",
			"Number of changeset readers currently open",
			nil, nil,
		),
		writersOpen: prometheus.NewDesc(
			"geodiff_changeset_writers_open",
			"Number of changeset writers currently open",
			nil, nil,
		),
		bytesRead: prometheus.NewDesc(
			"geodiff_changeset_bytes_read_total",
			"Total bytes consumed by all changeset readers",
			nil, nil,
		),
		bytesWritten: prometheus.NewDesc(
			"geodiff_changeset_bytes_written_total",
			"Total bytes emitted by all changeset writers",
			nil, nil,
		),
		entriesTotal: prometheus.NewDesc(
			"geodiff_changeset_entries_total",
			"Total row records read or written, by operation",
			[]string{"op"}, nil,
		),
		parseErrors: prometheus.NewDesc(
			"geodiff_changeset_parse_errors_total",
			"Total parse errors encountered by all changeset readers",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.readersOpen
	ch <- c.writersOpen
	ch <- c.bytesRead
	ch <- c.bytesWritten
	ch <- c.entriesTotal
	ch <- c.parseErrors
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	totals := c.registry.snapshot()

	ch <- prometheus.MustNewConstMetric(c.readersOpen, prometheus.GaugeValue, float64(totals.readersOpen))
	ch <- prometheus.MustNewConstMetric(c.writersOpen, prometheus.GaugeValue, float64(totals.writersOpen))
	ch <- prometheus.MustNewConstMetric(c.bytesRead, prometheus.CounterValue, float64(totals.bytesRead))
	ch <- prometheus.MustNewConstMetric(c.bytesWritten, prometheus.CounterValue, float64(totals.bytesWritten))
	ch <- prometheus.MustNewConstMetric(c.parseErrors, prometheus.CounterValue, float64(totals.parseErrors))

	ops := [3]string{"insert", "update", "delete"}
	for i, op := range ops {
		ch <- prometheus.MustNewConstMetric(c.entriesTotal, prometheus.CounterValue, float64(totals.entries[i]), op)
	}
}
