package raritan

import "testing"

func TestCamelToSnake(t *testing.T) {
	cases := map[string]string{
		"activePower":       "active_power",
		"voltage":           "voltage",
		"lineFrequency":     "line_frequency",
		"unbalancedCurrent": "unbalanced_current",
		"degreeC":           "degree_c",
		"i1":                "i1",
	}
	for in, want := range cases {
		if got := camelToSnake(in); got != want {
			t.Errorf("camelToSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSensorMetadataLongname(t *testing.T) {
	s := newSensor("/rid", "sensors.NumericSensor:4.0.3", nil, "activePower")

	if s.Longname != "" {
		t.Fatalf("expected no longname before metadata, got %q", s.Longname)
	}

	var md sensorMetadata
	md.Type.Type = 12 // activePower
	md.Type.Unit = 3  // watt
	s.applyMetadata(md)

	if s.Metric != "activePower" {
		t.Errorf("expected metric activePower, got %q", s.Metric)
	}
	if s.Unit != "watt" {
		t.Errorf("expected unit watt, got %q", s.Unit)
	}
	if s.Longname != "raritan_sensors_active_power_in_watt" {
		t.Errorf("unexpected longname: %q", s.Longname)
	}
}

func TestSensorMetadataNoUnitSuffix(t *testing.T) {
	s := newSensor("/rid", "sensors.NumericSensor:4.0.3", nil, "powerFactor")

	var md sensorMetadata
	md.Type.Type = 5 // powerFactor
	md.Type.Unit = 0 // none
	s.applyMetadata(md)

	if s.Longname != "raritan_sensors_power_factor" {
		t.Errorf("expected no unit suffix, got %q", s.Longname)
	}
}

func TestSensorMetadataDefaultsName(t *testing.T) {
	// device slot sensors are created without a name
	s := newSensor("/rid", "sensors.NumericSensor:4.0.3", nil, "")

	var md sensorMetadata
	md.Type.Type = 8 // temperature
	md.Type.Unit = 7 // degreeC
	s.applyMetadata(md)

	if s.Name != "temperature" {
		t.Errorf("expected name to default to metric, got %q", s.Name)
	}
	if s.Longname != "raritan_sensors_temperature_in_degree_c" {
		t.Errorf("unexpected longname: %q", s.Longname)
	}
}

func TestSensorMetadataUnknownCodes(t *testing.T) {
	s := newSensor("/rid", "sensors.NumericSensor:4.0.3", nil, "mystery")

	var md sensorMetadata
	md.Type.Type = 9999
	md.Type.Unit = 9999
	s.applyMetadata(md)

	if s.Metric != DefaultMetric {
		t.Errorf("expected default metric for unknown code, got %q", s.Metric)
	}
	if s.Unit != DefaultUnit {
		t.Errorf("expected default unit for unknown code, got %q", s.Unit)
	}
}

func TestSensorReadingNullness(t *testing.T) {
	s := newSensor("/rid", "sensors.NumericSensor:4.0.3", nil, "current")

	if s.IsNull() {
		t.Error("sensor without a reading must not count as null")
	}

	value := 0.0
	s.SetReading(&value, 1000)
	if s.IsNull() {
		t.Error("a valid zero reading must not count as null")
	}

	s.SetReading(nil, 1001)
	if !s.IsNull() {
		t.Error("a cleared reading must count as null")
	}
}

func TestClearSensorsIdempotent(t *testing.T) {
	p := &PDU{Name: "test"}
	for i := 0; i < 3; i++ {
		p.Sensors = append(p.Sensors, newSensor("/rid", "sensors.NumericSensor:4.0.3", nil, "current"))
	}
	value := 12.5
	p.Sensors[0].SetReading(&value, 1000)

	p.ClearSensors()
	p.ClearSensors()

	for i, s := range p.Sensors {
		r := s.Reading()
		if r == nil {
			t.Fatalf("sensor %d has no reading after clear", i)
		}
		if r.Value != nil {
			t.Errorf("sensor %d still has value %v after clear", i, *r.Value)
		}
		if r.Timestamp == 0 {
			t.Errorf("sensor %d clear did not record the clear instant", i)
		}
	}
}
