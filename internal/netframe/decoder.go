package netframe

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/banshee-data/occugrid/internal/geom"
)

// pointStride is the wire size of one point: three big-endian float32s.
const pointStride = 12

// XYZDecoder decodes the raw point cloud payload format: a flat array of
// big-endian float32 (x, y, z) triplets, 12 bytes per point. Devices that
// ship depth images instead provide their own CloudDecoder.
type XYZDecoder struct{}

// Decode parses payload into a point cloud. The payload length must be a
// multiple of the point stride.
func (XYZDecoder) Decode(payload []byte) ([]geom.Point, error) {
	if len(payload)%pointStride != 0 {
		return nil, fmt.Errorf("payload length %d is not a multiple of point stride %d", len(payload), pointStride)
	}

	pts := make([]geom.Point, 0, len(payload)/pointStride)
	for off := 0; off < len(payload); off += pointStride {
		x := math.Float32frombits(binary.BigEndian.Uint32(payload[off:]))
		y := math.Float32frombits(binary.BigEndian.Uint32(payload[off+4:]))
		z := math.Float32frombits(binary.BigEndian.Uint32(payload[off+8:]))
		pts = append(pts, geom.Point{X: float64(x), Y: float64(y), Z: float64(z)})
	}
	return pts, nil
}

// EncodeCloud serializes a point cloud into the XYZDecoder wire format.
// Used by replay tooling and tests.
func EncodeCloud(pts []geom.Point) []byte {
	buf := make([]byte, len(pts)*pointStride)
	for i, p := range pts {
		off := i * pointStride
		binary.BigEndian.PutUint32(buf[off:], math.Float32bits(float32(p.X)))
		binary.BigEndian.PutUint32(buf[off+4:], math.Float32bits(float32(p.Y)))
		binary.BigEndian.PutUint32(buf[off+8:], math.Float32bits(float32(p.Z)))
	}
	return buf
}
