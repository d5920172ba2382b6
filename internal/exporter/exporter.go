// Package exporter renders the entity graph of one or more PDUs as
// Prometheus metric families. Sensors are grouped by their derived metric
// name, so all sensors measuring the same thing end up as labeled samples
// of a single family regardless of which connector or PDU produced them.
package exporter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rackprobe/raritan-pdu-exporter/pkg/raritan"
)

var sensorLabels = []string{"pdu", "connector", "type", "socket"}

// Collector implements prometheus.Collector over the sensor graphs of the
// given PDUs. Scrapes may run concurrently with poll cycles: sensor
// readings are swapped atomically, so a scrape sees either the previous
// or the current cycle's pair.
type Collector struct {
	pdus []*raritan.PDU

	scrapesTotal prometheus.Counter
}

func NewCollector(pdus ...*raritan.PDU) *Collector {
	return &Collector{
		pdus: pdus,
		scrapesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raritan_exporter_scrapes_total",
			Help: "Number of scrapes served by the exporter",
		}),
	}
}

// Describe implements prometheus.Collector. The set of metric families
// depends on what discovery found, so descriptors are derived from a
// collect pass.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.scrapesTotal.Inc()
	ch <- c.scrapesTotal

	var sensors []*raritan.Sensor
	for _, pdu := range c.pdus {
		sensors = append(sensors, pdu.Sensors...)
	}

	metrics := raritan.GroupSensors(sensors)
	for _, name := range raritan.SortedMetricNames(metrics) {
		m := metrics[name]
		desc := prometheus.NewDesc(m.Name, m.Description, sensorLabels, nil)
		for _, sensor := range m.Sensors {
			reading := sensor.Reading()
			if reading == nil || reading.Value == nil {
				// null or not-yet-read sensors are absent, not zero
				continue
			}
			ch <- prometheus.MustNewConstMetric(
				desc, prometheus.GaugeValue, *reading.Value,
				pduName(sensor),
				sensor.Parent.ExportLabel(),
				sensor.Parent.ParentType(),
				socketType(sensor),
			)
		}
	}
}

func pduName(s *raritan.Sensor) string {
	switch parent := s.Parent.(type) {
	case *raritan.Connector:
		return parent.PDU.Name
	case *raritan.Pole:
		return parent.PDU.Name
	}
	return ""
}

func socketType(s *raritan.Sensor) string {
	switch parent := s.Parent.(type) {
	case *raritan.Connector:
		return parent.Socket
	case *raritan.Pole:
		return parent.Inlet.Socket
	}
	return ""
}
