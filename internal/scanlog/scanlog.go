// Package scanlog reads and writes recorded scan sessions as JSON lines,
// one scan per line, so captured runs can be replayed through the mapper
// without a live sensor.
package scanlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/occugrid/internal/geom"
)

// Record is one recorded scan: the sensor origin and the raw point cloud.
type Record struct {
	Seq             uint32       `json:"seq"`
	TimestampMicros int64        `json:"ts_us"`
	SensorX         float64      `json:"sensor_x"`
	SensorY         float64      `json:"sensor_y"`
	Points          [][3]float64 `json:"points"`
}

// Cloud converts the record's points into the mapper's point type.
func (r Record) Cloud() []geom.Point {
	pts := make([]geom.Point, len(r.Points))
	for i, p := range r.Points {
		pts[i] = geom.Point{X: p[0], Y: p[1], Z: p[2]}
	}
	return pts
}

// FromCloud builds a record from a point cloud.
func FromCloud(seq uint32, tsMicros int64, sensorX, sensorY float64, cloud []geom.Point) Record {
	pts := make([][3]float64, len(cloud))
	for i, p := range cloud {
		pts[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return Record{
		Seq:             seq,
		TimestampMicros: tsMicros,
		SensorX:         sensorX,
		SensorY:         sensorY,
		Points:          pts,
	}
}

// Reader streams records from a scan log.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader wraps an io.Reader holding JSON-lines scan records. Lines up
// to 64MB are accepted to accommodate dense clouds.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 1<<20), 64<<20)
	return &Reader{scanner: s}
}

// Next returns the next record, or io.EOF when the log is exhausted.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		raw := r.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return Record{}, fmt.Errorf("scan log line %d: %w", r.line, err)
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// Write appends one record as a JSON line.
func Write(w io.Writer, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal scan record %d: %w", rec.Seq, err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write scan record %d: %w", rec.Seq, err)
	}
	return nil
}
