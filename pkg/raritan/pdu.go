package raritan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the construction inputs for a single PDU.
type Config struct {
	Location string // scheme://host; scheme defaults to http
	Name     string // display name, defaults to the host
	Username string
	Password string
	Insecure bool // skip certificate validation
}

// PDU is the aggregate root for one power distribution unit. It owns the
// bulk client and the lifetime of every connector, pole, and sensor it
// discovers. Crawl must run to completion before the first ReadSensors;
// re-crawling is not supported, construct a fresh PDU instead.
//
// The sequence position of a connector or sensor doubles as its RPC
// correlation id, so the sequences are never reordered once built.
type PDU struct {
	Location   string
	Name       string
	Connectors []*Connector
	Poles      []*Pole
	Sensors    []*Sensor

	client   *Client
	nullPrev *NullSensorSnapshot
}

// Object classes enumerated during connector discovery, tagged with the
// connector type used as the correlation id.
var modelRequests = []struct {
	RID    string
	Method string
	Type   ConnectorType
}{
	{"/model/pdu/0", "getInlets", ConnectorTypeInlet},
	{"/model/pdu/0", "getOutlets", ConnectorTypeOutlet},
	{"/model/peripheraldevicemanager", "getDeviceSlots", ConnectorTypeDevice},
}

// New sets up a connection to the bulk JSON-RPC interface of a Raritan
// PDU. Call Crawl to discover the electrical topology before reading
// sensors.
func New(cfg Config) (*PDU, error) {
	loc, err := url.Parse(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDU location %q: %w", cfg.Location, err)
	}
	if loc.Scheme == "" {
		// re-parse so the host is not mistaken for a path
		loc, err = url.Parse("http://" + cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PDU location %q: %w", cfg.Location, err)
		}
	}

	name := cfg.Name
	if name == "" {
		name = loc.Host
	}

	p := &PDU{
		Location: loc.String(),
		Name:     name,
		client:   NewBulkClient(loc.String(), cfg.Username, cfg.Password, cfg.Insecure),
	}
	if diagnosticsEnabled() {
		p.nullPrev = NewNullSensorSnapshot()
	}
	log.Info().Msgf("(%s) polling at %s", p.Name, p.Location)
	return p, nil
}

func (p *PDU) String() string {
	var nInlets, nOutlets, nDevices int
	for _, c := range p.Connectors {
		switch c.Type {
		case ConnectorTypeInlet:
			nInlets++
		case ConnectorTypeOutlet:
			nOutlets++
		case ConnectorTypeDevice:
			nDevices++
		}
	}
	return fmt.Sprintf(
		"PDU(name=%s, location=%s, connectors=(n_inlets=%d, n_outlets=%d, n_devices=%d), n_poles=%d, n_sensors=%d)",
		p.Name, p.Location, nInlets, nOutlets, nDevices, len(p.Poles), len(p.Sensors))
}

// Crawl discovers all connectors, poles, and sensors on the PDU. A
// transport failure here is fatal to startup: no partial entity graph is
// guaranteed, so callers must discard the PDU on error.
func (p *PDU) Crawl(ctx context.Context) error {
	if err := p.getConnectors(ctx); err != nil {
		return err
	}
	if err := p.getPoles(ctx); err != nil {
		return err
	}
	if err := p.getSensors(ctx); err != nil {
		return err
	}
	log.Info().Msg(p.String())
	return nil
}

// sensorDescriptor is the embedded reference to a sensor object inside a
// connector or pole record.
type sensorDescriptor struct {
	RID  string `json:"rid"`
	Type string `json:"type"`
}

// getConnectors enumerates all connectors and retrieves their metadata
// and settings.
func (p *PDU) getConnectors(ctx context.Context) error {
	reqs := make([]Request, 0, len(modelRequests))
	for _, m := range modelRequests {
		reqs = append(reqs, Request{RID: m.RID, Method: m.Method, ID: string(m.Type)})
	}
	responses, err := p.client.PerformBulk(ctx, reqs)
	if err != nil {
		return fmt.Errorf("failed to enumerate connectors: %w", err)
	}

	for i := range responses {
		typ, err := responses[i].StringID()
		if err != nil {
			log.Warn().Msgf("(%s) dropping connector response: %v", p.Name, err)
			continue
		}
		var rids []struct {
			RID string `json:"rid"`
		}
		if err := json.Unmarshal(responses[i].Result, &rids); err != nil {
			return fmt.Errorf("failed to decode %s list: %w", typ, err)
		}
		for _, r := range rids {
			p.Connectors = append(p.Connectors, newConnector(r.RID, ConnectorType(typ), p))
		}
	}

	// devices have no metadata
	reqs = reqs[:0]
	for i, c := range p.Connectors {
		if c.Type != ConnectorTypeDevice {
			reqs = append(reqs, Request{RID: c.RID, Method: "getMetaData", ID: i})
		}
	}
	responses, err = p.client.PerformBulk(ctx, reqs)
	if err != nil {
		return fmt.Errorf("failed to get connector metadata: %w", err)
	}
	for i := range responses {
		c, ok := p.connectorByID(&responses[i])
		if !ok {
			continue
		}
		var md connectorMetadata
		if err := json.Unmarshal(responses[i].Result, &md); err != nil {
			return fmt.Errorf("failed to decode connector metadata: %w", err)
		}
		c.applyMetadata(md)
	}

	reqs = reqs[:0]
	for i, c := range p.Connectors {
		reqs = append(reqs, Request{RID: c.RID, Method: "getSettings", ID: i})
	}
	responses, err = p.client.PerformBulk(ctx, reqs)
	if err != nil {
		return fmt.Errorf("failed to get connector settings: %w", err)
	}
	for i := range responses {
		c, ok := p.connectorByID(&responses[i])
		if !ok {
			continue
		}
		var settings connectorSettings
		if err := json.Unmarshal(responses[i].Result, &settings); err != nil {
			return fmt.Errorf("failed to decode connector settings: %w", err)
		}
		c.applySettings(settings)
	}
	return nil
}

// getPoles discovers the per-phase poles of each inlet and the sensors
// embedded in their records. Pole records carry fixed fields plus a
// variable set of sensor descriptors keyed by metric name.
func (p *PDU) getPoles(ctx context.Context) error {
	var inlets []*Connector
	for _, c := range p.Connectors {
		if c.Type == ConnectorTypeInlet {
			inlets = append(inlets, c)
		}
	}

	reqs := make([]Request, 0, len(inlets))
	for i, c := range inlets {
		reqs = append(reqs, Request{RID: c.RID, Method: "getPoles", ID: i})
	}
	responses, err := p.client.PerformBulk(ctx, reqs)
	if err != nil {
		return fmt.Errorf("failed to get inlet poles: %w", err)
	}

	for i := range responses {
		id, err := responses[i].IntID()
		if err != nil || id < 0 || id >= len(inlets) {
			log.Warn().Msgf("(%s) dropping pole response with bad correlation id: %v", p.Name, err)
			continue
		}
		inlet := inlets[id]

		var records []map[string]json.RawMessage
		if err := json.Unmarshal(responses[i].Result, &records); err != nil {
			return fmt.Errorf("failed to decode poles of %s: %w", inlet.Label, err)
		}
		for _, record := range records {
			var (
				label  string
				line   int
				nodeID int
			)
			if raw, ok := record["label"]; ok {
				if err := json.Unmarshal(raw, &label); err != nil {
					return fmt.Errorf("failed to decode pole label: %w", err)
				}
			}
			if raw, ok := record["line"]; ok {
				if err := json.Unmarshal(raw, &line); err != nil {
					return fmt.Errorf("failed to decode pole line: %w", err)
				}
			}
			if raw, ok := record["nodeId"]; ok {
				if err := json.Unmarshal(raw, &nodeID); err != nil {
					return fmt.Errorf("failed to decode pole nodeId: %w", err)
				}
			}
			pole := newPole(label, line, nodeID, inlet, p)
			p.Poles = append(p.Poles, pole)

			// remaining keys are embedded sensor descriptors; null
			// descriptors mark unused metric slots
			for _, metric := range sortedKeys(record) {
				switch metric {
				case "label", "line", "nodeId":
					continue
				}
				var desc *sensorDescriptor
				if err := json.Unmarshal(record[metric], &desc); err != nil {
					return fmt.Errorf("failed to decode pole sensor %s: %w", metric, err)
				}
				if desc == nil {
					continue
				}
				p.Sensors = append(p.Sensors, newSensor(desc.RID, desc.Type, pole, metric))
			}
		}
	}
	return nil
}

// getSensors enumerates each connector's sensors and resolves their
// metadata.
func (p *PDU) getSensors(ctx context.Context) error {
	reqs := make([]Request, 0, len(p.Connectors))
	for i, c := range p.Connectors {
		reqs = append(reqs, Request{RID: c.RID, Method: c.sensorMethod(), ID: i})
	}
	responses, err := p.client.PerformBulk(ctx, reqs)
	if err != nil {
		return fmt.Errorf("failed to enumerate sensors: %w", err)
	}

	for i := range responses {
		c, ok := p.connectorByID(&responses[i])
		if !ok {
			continue
		}

		if c.Type == ConnectorTypeDevice {
			// unused device slots legitimately return no data
			if len(responses[i].Result) == 0 {
				continue
			}
			var ret *struct {
				Value struct {
					Device sensorDescriptor `json:"device"`
				} `json:"value"`
			}
			if err := json.Unmarshal(responses[i].Result, &ret); err != nil {
				return fmt.Errorf("failed to decode device slot %s: %w", c.Label, err)
			}
			if ret == nil {
				continue
			}
			p.Sensors = append(p.Sensors, newSensor(ret.Value.Device.RID, ret.Value.Device.Type, c, ""))
			continue
		}

		var descriptors map[string]*sensorDescriptor
		if err := json.Unmarshal(responses[i].Result, &descriptors); err != nil {
			return fmt.Errorf("failed to decode sensors of %s: %w", c.Label, err)
		}
		for _, metric := range sortedKeys(descriptors) {
			desc := descriptors[metric]
			if desc == nil {
				continue
			}
			p.Sensors = append(p.Sensors, newSensor(desc.RID, desc.Type, c, metric))
		}
	}

	// state sensors expose no metadata
	reqs = reqs[:0]
	for i, s := range p.Sensors {
		if !IsStateInterface(s.Interface) {
			reqs = append(reqs, Request{RID: s.RID, Method: "getMetaData", ID: i})
		}
	}
	responses, err = p.client.PerformBulk(ctx, reqs)
	if err != nil {
		return fmt.Errorf("failed to get sensor metadata: %w", err)
	}
	for i := range responses {
		s, ok := p.sensorByID(&responses[i])
		if !ok {
			continue
		}
		var md sensorMetadata
		if err := json.Unmarshal(responses[i].Result, &md); err != nil {
			return fmt.Errorf("failed to decode sensor metadata: %w", err)
		}
		s.applyMetadata(md)
	}
	return nil
}

// ClearSensors resets every sensor to an unknown value, stamping the
// clear instant.
func (p *PDU) ClearSensors() {
	log.Debug().Msgf("(%s) clearing sensor values", p.Name)
	now := unixNow()
	for _, s := range p.Sensors {
		s.SetReading(nil, now)
	}
}

// ReadSensors issues one batched read covering every known sensor and
// writes the results back by correlation id. A transport failure is
// recovered locally: values stay cleared for this cycle and the next
// scheduled poll retries naturally. ReadSensors must not be invoked
// concurrently for the same PDU.
func (p *PDU) ReadSensors(ctx context.Context) {
	p.ClearSensors()

	reqs := make([]Request, 0, len(p.Sensors))
	for i, s := range p.Sensors {
		var method string
		switch {
		case IsNumericInterface(s.Interface):
			method = "getReading"
		case IsStateInterface(s.Interface):
			method = "getState"
		default:
			// unlisted interface
			continue
		}
		reqs = append(reqs, Request{RID: s.RID, Method: method, ID: i})
	}

	responses, err := p.client.PerformBulk(ctx, reqs)
	if err != nil {
		log.Warn().Msgf("(%s) RequestError: %v", p.Name, err)
		return
	}

	var nullNow *NullSensorSnapshot
	if p.nullPrev != nil {
		nullNow = NewNullSensorSnapshot()
		nullNow.Responses = len(responses)
	}

	for i := range responses {
		s, ok := p.sensorByID(&responses[i])
		if !ok {
			continue
		}
		var reading struct {
			Value     json.RawMessage `json:"value"`
			Timestamp float64         `json:"timestamp"`
		}
		if err := json.Unmarshal(responses[i].Result, &reading); err != nil {
			log.Warn().Msgf("(%s) dropping unreadable reading for %s: %v", p.Name, s.RID, err)
			continue
		}
		s.SetReading(numericValue(reading.Value), reading.Timestamp)

		if nullNow != nil && s.IsNull() {
			nullNow.Add(s)
		}
	}

	if nullNow != nil {
		p.reportNullSensors(nullNow)
	}
}

// reportNullSensors diffs this cycle's null-sensor snapshot against the
// previous one and logs sensors that newly went silent. One-step lag
// comparator, no full history.
func (p *PDU) reportNullSensors(nullNow *NullSensorSnapshot) {
	if nullNow.Responses < p.nullPrev.Responses {
		log.Debug().Msgf(
			"(%s) API request returned fewer sensors than expected. Returned %d, expected %d",
			p.Name, nullNow.Responses, p.nullPrev.Responses)
	}

	diffs := p.nullPrev.Diff(nullNow)
	if len(diffs) > 0 {
		log.Debug().Msgf("(%s) NullSensorWarning: %d sensor(s) returned 'null' as value (%d out of %d total)",
			p.Name, len(diffs), nullNow.Len(), nullNow.Responses)
		for _, diff := range diffs {
			log.Debug().Msgf("(%s) NullSensor: %s@%s = %s",
				p.Name, diff.Connector, diff.Sensor, diff.Value)
		}
	}
	p.nullPrev = nullNow
}

// connectorByID resolves a sub-response to its connector by correlation
// id. Malformed or out-of-range ids are a data-integrity error: logged,
// dropped, never allowed to crash the cycle.
func (p *PDU) connectorByID(resp *Response) (*Connector, bool) {
	id, err := resp.IntID()
	if err != nil || id < 0 || id >= len(p.Connectors) {
		log.Warn().Msgf("(%s) dropping response with unknown connector id: %v", p.Name, err)
		return nil, false
	}
	return p.Connectors[id], true
}

func (p *PDU) sensorByID(resp *Response) (*Sensor, bool) {
	id, err := resp.IntID()
	if err != nil || id < 0 || id >= len(p.Sensors) {
		log.Warn().Msgf("(%s) dropping response with unknown sensor id: %v", p.Name, err)
		return nil, false
	}
	return p.Sensors[id], true
}

// numericValue decodes a reading value, mapping anything that is not a
// number to nil (a null reading).
func numericValue(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func unixNow() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func diagnosticsEnabled() bool {
	return zerolog.GlobalLevel() <= zerolog.DebugLevel
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
