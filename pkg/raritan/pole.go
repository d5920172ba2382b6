package raritan

import "fmt"

// Pole is one electrical phase of a multi-phase inlet. Poles have no RID
// of their own; they are addressed only through their inlet and exist to
// own the per-phase sensors.
type Pole struct {
	Label       string
	CustomLabel string
	Line        int
	NodeID      int
	Inlet       *Connector
	PDU         *PDU
}

func newPole(label string, line, nodeID int, inlet *Connector, pdu *PDU) *Pole {
	custom := label
	if custom == "" || custom == unsetLabel {
		// phase lines are zero-based, labels are not
		custom = fmt.Sprintf("L%d", line+1)
	}
	return &Pole{
		Label:       inlet.Label,
		CustomLabel: custom,
		Line:        line,
		NodeID:      nodeID,
		Inlet:       inlet,
		PDU:         pdu,
	}
}

// ParentLabel implements SensorParent.
func (p *Pole) ParentLabel() string { return p.Label }

// ExportLabel implements SensorParent.
func (p *Pole) ExportLabel() string { return p.CustomLabel }

// ParentType implements SensorParent.
func (p *Pole) ParentType() string { return "pole" }
