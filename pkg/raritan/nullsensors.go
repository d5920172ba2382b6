package raritan

import "sort"

// NullSensorEntry identifies one sensor that returned no value in a poll
// cycle.
type NullSensorEntry struct {
	Connector string
	Sensor    string
	Value     string
}

// NullSensorSnapshot records which sensors came back null in one poll
// cycle, plus the total number of sub-responses received. Snapshots are
// ephemeral: each cycle builds a fresh one and compares it against the
// immediately preceding snapshot only.
type NullSensorSnapshot struct {
	Responses int

	sensors map[NullSensorEntry]struct{}
}

// NewNullSensorSnapshot creates an empty snapshot.
func NewNullSensorSnapshot() *NullSensorSnapshot {
	return &NullSensorSnapshot{sensors: make(map[NullSensorEntry]struct{})}
}

// Add records a null sensor in the snapshot.
func (s *NullSensorSnapshot) Add(sensor *Sensor) {
	s.sensors[NullSensorEntry{
		Connector: sensor.Parent.ParentLabel(),
		Sensor:    sensor.Name,
		Value:     "null",
	}] = struct{}{}
}

// Len returns the number of null sensors recorded.
func (s *NullSensorSnapshot) Len() int {
	return len(s.sensors)
}

// Diff returns the entries present in next but absent from this snapshot:
// the sensors that newly went silent. The result is sorted for stable log
// output.
func (s *NullSensorSnapshot) Diff(next *NullSensorSnapshot) []NullSensorEntry {
	var entries []NullSensorEntry
	for entry := range next.sensors {
		if _, ok := s.sensors[entry]; !ok {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Connector != entries[j].Connector {
			return entries[i].Connector < entries[j].Connector
		}
		return entries[i].Sensor < entries[j].Sensor
	})
	return entries
}
