package raritan

import "strings"

// ConnectorType identifies which class of PDU connector an entity is.
type ConnectorType string

const (
	ConnectorTypeInlet  ConnectorType = "inlet"
	ConnectorTypeOutlet ConnectorType = "outlet"
	ConnectorTypeDevice ConnectorType = "device"
)

// unsetLabel is the sentinel the bulk API returns for labels that were
// never customized by the operator.
const unsetLabel = "''"

// Connector is an inlet, outlet, or peripheral device slot on the PDU. It
// is created once during discovery and only mutated by metadata and
// settings updates; connectors are never deleted for the lifetime of the
// owning PDU.
type Connector struct {
	RID         string
	Type        ConnectorType
	Label       string
	CustomLabel string
	Socket      string
	PDU         *PDU
}

func newConnector(rid string, typ ConnectorType, pdu *PDU) *Connector {
	// default labels to the last RID path segment until metadata arrives
	label := rid[strings.LastIndex(rid, "/")+1:]
	return &Connector{
		RID:         rid,
		Type:        typ,
		Label:       label,
		CustomLabel: label,
		PDU:         pdu,
	}
}

// sensorMethod returns the bulk method that enumerates this connector's
// sensors.
func (c *Connector) sensorMethod() string {
	if c.Type == ConnectorTypeDevice {
		return "getDevice"
	}
	return "getSensors"
}

type connectorMetadata struct {
	Label          string `json:"label"`
	PlugType       string `json:"plugType"`
	ReceptacleType string `json:"receptacleType"`
}

// applyMetadata folds a getMetaData response into the connector. The
// vendor label overwrites Label; CustomLabel follows it only when it was
// never customized (i.e. still equal to the old Label).
func (c *Connector) applyMetadata(md connectorMetadata) {
	if md.Label != "" {
		if c.CustomLabel == c.Label {
			c.CustomLabel = md.Label
		}
		c.Label = md.Label
	}

	switch c.Type {
	case ConnectorTypeOutlet:
		c.Socket = md.ReceptacleType
	case ConnectorTypeInlet:
		c.Socket = md.PlugType
	}
}

type connectorSettings struct {
	Name string `json:"name"`
}

// applySettings folds a getSettings response into the connector. A
// user-assigned name always wins over the vendor label, unless it is the
// unset sentinel.
func (c *Connector) applySettings(s connectorSettings) {
	if s.Name != "" && s.Name != unsetLabel {
		c.CustomLabel = s.Name
	}
}

// ParentLabel implements SensorParent.
func (c *Connector) ParentLabel() string { return c.Label }

// ExportLabel implements SensorParent.
func (c *Connector) ExportLabel() string { return c.CustomLabel }

// ParentType implements SensorParent.
func (c *Connector) ParentType() string { return string(c.Type) }
