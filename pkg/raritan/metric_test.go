package raritan

import "testing"

func metadataSensor(name string, typ, unit int) *Sensor {
	s := newSensor("/rid/"+name, "sensors.NumericSensor:4.0.3", nil, name)
	var md sensorMetadata
	md.Type.Type = typ
	md.Type.Unit = unit
	s.applyMetadata(md)
	return s
}

func TestGroupSensors(t *testing.T) {
	sensors := []*Sensor{
		metadataSensor("voltage", 1, 1),
		metadataSensor("voltage", 1, 1),
		metadataSensor("activePower", 12, 3),
		// metadata never resolved, must be excluded from export
		newSensor("/rid/state", "sensors.StateSensor:4.0.5", nil, "outletState"),
	}

	metrics := GroupSensors(sensors)
	if len(metrics) != 2 {
		t.Fatalf("expected 2 metric groups, got %d: %v", len(metrics), SortedMetricNames(metrics))
	}

	voltage, ok := metrics["raritan_sensors_voltage_in_volt"]
	if !ok {
		t.Fatal("missing voltage group")
	}
	if len(voltage.Sensors) != 2 {
		t.Errorf("expected 2 voltage sensors, got %d", len(voltage.Sensors))
	}
	if voltage.Unit != "volt" {
		t.Errorf("expected unit volt, got %q", voltage.Unit)
	}
	if voltage.Description != MetricDescription("raritan_sensors_voltage_in_volt") {
		t.Errorf("unexpected description %q", voltage.Description)
	}

	names := SortedMetricNames(metrics)
	want := []string{"raritan_sensors_active_power_in_watt", "raritan_sensors_voltage_in_volt"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected sorted names %v, got %v", want, names)
		}
	}
}
