package raritan

import "sort"

// Metric groups every sensor that represents the same measurement,
// regardless of which connector or PDU produced it. The grouping key is
// the first member's Longname; all members share the same unit and
// interface by construction, since the longname encodes the unit.
type Metric struct {
	Name        string
	Interface   string
	Unit        string
	Description string
	Sensors     []*Sensor
}

// NewMetric starts a metric group from its first sensor.
func NewMetric(sensor *Sensor) *Metric {
	m := &Metric{Description: "none"}
	m.Add(sensor)
	return m
}

// Add absorbs a sensor into the group. Shared fields are fixed from the
// first member.
func (m *Metric) Add(sensor *Sensor) {
	if m.Name == "" {
		m.Name = sensor.Longname
		m.Unit = sensor.Unit
		m.Interface = sensor.Interface
		m.Description = MetricDescription(sensor.Longname)
	}
	m.Sensors = append(m.Sensors, sensor)
}

// GroupSensors reshapes sensors into metric groups keyed by Longname.
// Sensors whose metadata never resolved have no Longname and are skipped;
// they must not be exported.
func GroupSensors(sensors []*Sensor) map[string]*Metric {
	metrics := make(map[string]*Metric)
	for _, sensor := range sensors {
		if sensor.Longname == "" {
			continue
		}
		if m, ok := metrics[sensor.Longname]; ok {
			m.Add(sensor)
		} else {
			metrics[sensor.Longname] = NewMetric(sensor)
		}
	}
	return metrics
}

// SortedMetricNames returns the group keys in a stable order for export
// and display.
func SortedMetricNames(metrics map[string]*Metric) []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
