package edn

import "github.com/fxamacker/cbor/v2"

// MarshalCBOR encodes the value through the same sentinel encoding the
// JSON bridge uses, giving a compact binary form that interoperates with
// any CBOR consumer.
func (v *Value) MarshalCBOR() ([]byte, error) {
	data, err := toSentinel(v)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(data)
}

// UnmarshalCBOR decodes CBOR back into a value. Integers of either sign,
// byte strings and maps keyed by any decoded type are normalized into
// the data model.
func (v *Value) UnmarshalCBOR(b []byte) error {
	var data any
	if err := cbor.Unmarshal(b, &data); err != nil {
		return err
	}
	decoded, err := fromSentinel(data)
	if err != nil {
		return err
	}
	*v = *decoded
	return nil
}
