package model

import (
	"encoding/binary"
	"fmt"
)

// PatchLambda0 returns a copy of data with the Q8.8 lambda0 field replaced
// by q. Every byte outside the two-byte field at offset 32 is preserved, so
// a trained model can be re-tuned without decoding the rest of its layout.
//
// q is validated against the signed 16-bit storage width before anything is
// written; the effective value is q/256.
func PatchLambda0(data []byte, q int) ([]byte, error) {
	if q < -32768 || q > 32767 {
		return nil, fmt.Errorf("%w: lambda0 %d outside int16", ErrOutOfRange, q)
	}
	if len(data) < offLambda0+2 {
		return nil, fmt.Errorf("%w: %d bytes is too short to hold lambda0",
			ErrCorruptModel, len(data))
	}
	out := make([]byte, len(data))
	copy(out, data)
	binary.LittleEndian.PutUint16(out[offLambda0:], uint16(int16(q)))
	return out, nil
}

// ReadLambda0 returns the stored Q8.8 lambda0 field from raw model bytes
// without parsing the rest of the model.
func ReadLambda0(data []byte) (int16, error) {
	if len(data) < offLambda0+2 {
		return 0, fmt.Errorf("%w: %d bytes is too short to hold lambda0",
			ErrCorruptModel, len(data))
	}
	return int16(binary.LittleEndian.Uint16(data[offLambda0:])), nil
}
