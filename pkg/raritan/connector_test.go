package raritan

import "testing"

func TestConnectorLabelPrecedence(t *testing.T) {
	c := newConnector("/model/pdu/0/outlet/0", ConnectorTypeOutlet, nil)
	if c.Label != "0" || c.CustomLabel != "0" {
		t.Fatalf("expected labels to default to the RID tail, got %q/%q", c.Label, c.CustomLabel)
	}

	// vendor label overwrites both while never customized
	c.applyMetadata(connectorMetadata{Label: "Outlet 1", ReceptacleType: "C13"})
	if c.Label != "Outlet 1" {
		t.Errorf("expected label Outlet 1, got %q", c.Label)
	}
	if c.CustomLabel != "Outlet 1" {
		t.Errorf("expected custom label to follow vendor label, got %q", c.CustomLabel)
	}
	if c.Socket != "C13" {
		t.Errorf("expected receptacle socket, got %q", c.Socket)
	}

	// empty-string sentinel means "unset, keep default"
	c.applySettings(connectorSettings{Name: unsetLabel})
	if c.CustomLabel != "Outlet 1" {
		t.Errorf("sentinel name must not overwrite custom label, got %q", c.CustomLabel)
	}

	// a real user-assigned name always wins
	c.applySettings(connectorSettings{Name: "Server Rack A"})
	if c.CustomLabel != "Server Rack A" {
		t.Errorf("expected Server Rack A, got %q", c.CustomLabel)
	}

	// later vendor label changes no longer touch the customized label
	c.applyMetadata(connectorMetadata{Label: "Outlet One"})
	if c.CustomLabel != "Server Rack A" {
		t.Errorf("customized label must survive metadata updates, got %q", c.CustomLabel)
	}
	if c.Label != "Outlet One" {
		t.Errorf("expected vendor label update, got %q", c.Label)
	}
}

func TestConnectorSocketByType(t *testing.T) {
	inlet := newConnector("/model/pdu/0/inlet/I1", ConnectorTypeInlet, nil)
	inlet.applyMetadata(connectorMetadata{PlugType: "IEC 60309 32A", ReceptacleType: "ignored"})
	if inlet.Socket != "IEC 60309 32A" {
		t.Errorf("inlets take the plug type, got %q", inlet.Socket)
	}

	device := newConnector("/model/peripheraldevicemanager/device/0", ConnectorTypeDevice, nil)
	device.applyMetadata(connectorMetadata{PlugType: "x", ReceptacleType: "y"})
	if device.Socket != "" {
		t.Errorf("device slots have no socket, got %q", device.Socket)
	}
}

func TestConnectorSensorMethod(t *testing.T) {
	cases := map[ConnectorType]string{
		ConnectorTypeInlet:  "getSensors",
		ConnectorTypeOutlet: "getSensors",
		ConnectorTypeDevice: "getDevice",
	}
	for typ, want := range cases {
		c := newConnector("/rid", typ, nil)
		if got := c.sensorMethod(); got != want {
			t.Errorf("sensorMethod(%s) = %q, want %q", typ, got, want)
		}
	}
}

func TestPoleFallbackNaming(t *testing.T) {
	inlet := newConnector("/model/pdu/0/inlet/I1", ConnectorTypeInlet, nil)

	labeled := newPole("L1", 0, 1, inlet, nil)
	if labeled.CustomLabel != "L1" {
		t.Errorf("expected vendor pole label, got %q", labeled.CustomLabel)
	}

	unlabeled := newPole("", 2, 5, inlet, nil)
	if unlabeled.CustomLabel != "L3" {
		t.Errorf("expected synthesized L3 for line=2, got %q", unlabeled.CustomLabel)
	}

	sentinel := newPole(unsetLabel, 1, 3, inlet, nil)
	if sentinel.CustomLabel != "L2" {
		t.Errorf("expected synthesized L2 for sentinel label, got %q", sentinel.CustomLabel)
	}

	if labeled.Label != inlet.Label {
		t.Errorf("pole label must derive from its inlet, got %q", labeled.Label)
	}
}
