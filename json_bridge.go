package edn

import "encoding/json"

// MarshalJSON encodes the value through the sentinel encoding, so JSON
// consumers see plain scalars, arrays and objects while variant-specific
// data survives under "__edn_" keys.
func (v *Value) MarshalJSON() ([]byte, error) {
	data, err := toSentinel(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

// UnmarshalJSON decodes JSON produced by MarshalJSON, or any plain JSON
// document, back into a value. Objects without "__edn_" keys become
// string-keyed maps.
func (v *Value) UnmarshalJSON(b []byte) error {
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	decoded, err := fromSentinel(data)
	if err != nil {
		return err
	}
	*v = *decoded
	return nil
}
