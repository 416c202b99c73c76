package assessment

import (
	"encoding/binary"
	"math"
)

// vectorToBytes encodes v as little-endian FLOAT32 for the hash field.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
