package opts

import "encoding/json"

// Trace captures, for one key, what every layer of a merged store held.
type Trace struct {
	Key    string       `json:"key"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how a specific scope contributed to a traced key.
type Provenance struct {
	Scope      Scope   `json:"scope"`
	SnapshotID string  `json:"snapshot_id,omitempty"`
	Key        string  `json:"key"`
	Value      *string `json:"value,omitempty"`
	Found      bool    `json:"found"`
}

// Trace reports, strongest layer first, which layers hold key. Aliases are
// resolved per layer. Stores not produced by Stack.Merge yield a trace with no
// layers.
func (s *Store) Trace(key string) Trace {
	trace := Trace{Key: key}
	if s == nil {
		return trace
	}
	trace.Layers = make([]Provenance, 0, len(s.layers))
	for _, layer := range s.layers {
		value, found := layer.Store.Raw(key)
		trace.Layers = append(trace.Layers, Provenance{
			Scope:      layer.Scope.clone(),
			SnapshotID: layer.SnapshotID,
			Key:        key,
			Value:      value,
			Found:      found,
		})
	}
	return trace
}

// Winner returns the strongest layer holding the key.
func (t Trace) Winner() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
