package raritan

import (
	"regexp"
	"strings"
	"sync/atomic"
)

// SensorParent is the entity a sensor is attached to: a Connector or a
// Pole, exactly one. The back-reference is a non-owning lookup link.
type SensorParent interface {
	// ParentLabel is the vendor label, used by the null-sensor diagnostics.
	ParentLabel() string
	// ExportLabel is the operator-facing label used on exported samples.
	ExportLabel() string
	// ParentType is inlet, outlet, device, or pole.
	ParentType() string
}

// Reading is one sensor measurement. Value is nil when the PDU returned no
// value (a "null" reading, normal for unused metric slots). Timestamp is
// unix seconds; after a clear it records the clear instant instead.
type Reading struct {
	Value     *float64
	Timestamp float64
}

// Sensor is one physical measurement point on a connector or pole. The
// reading is swapped atomically as a single pair so a concurrent exporter
// scrape sees either the previous or the new value/timestamp, never a torn
// mix of two cycles.
type Sensor struct {
	RID       string
	Interface string
	Parent    SensorParent
	Name      string
	Metric    string
	Unit      string
	Longname  string

	reading atomic.Pointer[Reading]
}

func newSensor(rid, iface string, parent SensorParent, name string) *Sensor {
	return &Sensor{
		RID:       rid,
		Interface: iface,
		Parent:    parent,
		Name:      name,
		Metric:    DefaultMetric,
		Unit:      DefaultUnit,
	}
}

// Reading returns the latest reading, or nil before the first clear.
func (s *Sensor) Reading() *Reading {
	return s.reading.Load()
}

// SetReading replaces the sensor's reading.
func (s *Sensor) SetReading(value *float64, timestamp float64) {
	s.reading.Store(&Reading{Value: value, Timestamp: timestamp})
}

// IsNull reports whether the last read returned no value. This is distinct
// from "not queried" (unrecognized interface) and from a valid zero.
func (s *Sensor) IsNull() bool {
	r := s.reading.Load()
	return r != nil && r.Value == nil
}

type sensorMetadata struct {
	Type struct {
		Type int `json:"type"`
		Unit int `json:"unit"`
	} `json:"type"`
}

// applyMetadata decodes the metric and unit codes, defaults the sensor
// name to its metric, and derives the globally-unique export name. The
// Longname is undefined until this has run and must not be exported
// before then.
func (s *Sensor) applyMetadata(md sensorMetadata) {
	s.Metric = sensorTypeName(md.Type.Type)
	s.Unit = sensorUnitName(md.Type.Unit)

	if s.Name == "" {
		s.Name = s.Metric
	}

	s.Longname = "raritan_sensors_" + camelToSnake(s.Name)
	if s.Unit != "" && s.Unit != DefaultUnit {
		s.Longname += "_in_" + camelToSnake(s.Unit)
	}
}

var (
	camelBoundary = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerToUpper  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// camelToSnake converts camelCase identifiers from the vendor API into the
// snake_case used in exported metric names.
func camelToSnake(label string) string {
	label = camelBoundary.ReplaceAllString(label, "${1}_${2}")
	label = lowerToUpper.ReplaceAllString(label, "${1}_${2}")
	return strings.ToLower(label)
}
