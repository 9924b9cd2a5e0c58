// Package netframe implements the wire boundary between a remote sensing
// device and the fusion host: length-prefixed binary frame records on a TCP
// stream, with a parallel newline-terminated UTF-8 command channel used to
// gate capture. Payload decoding (image codecs, depth reconstruction) stays
// outside this package behind the CloudDecoder interface.
package netframe

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Frame header layout, all big-endian:
//
//	bytes 0-3   frame sequence number (uint32)
//	bytes 4-11  capture timestamp, microseconds (int64)
//	bytes 12-15 payload length (uint32)
const HeaderSize = 16

// DefaultMaxPayload bounds a single frame payload. Frames above this are a
// protocol violation and close the connection.
const DefaultMaxPayload = 16 << 20

// Header is the fixed preamble of one frame record.
type Header struct {
	Seq             uint32
	TimestampMicros int64
	PayloadLen      uint32
}

// Frame is one decoded wire record.
type Frame struct {
	Header
	Payload []byte
}

// ParseHeader decodes a 16-byte header.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("short header: %d bytes, need %d", len(buf), HeaderSize)
	}
	return Header{
		Seq:             binary.BigEndian.Uint32(buf[0:4]),
		TimestampMicros: int64(binary.BigEndian.Uint64(buf[4:12])),
		PayloadLen:      binary.BigEndian.Uint32(buf[12:16]),
	}, nil
}

// AppendHeader encodes the header onto buf and returns the extended slice.
func AppendHeader(buf []byte, h Header) []byte {
	var scratch [HeaderSize]byte
	binary.BigEndian.PutUint32(scratch[0:4], h.Seq)
	binary.BigEndian.PutUint64(scratch[4:12], uint64(h.TimestampMicros))
	binary.BigEndian.PutUint32(scratch[12:16], h.PayloadLen)
	return append(buf, scratch[:]...)
}

// WriteFrame writes one complete frame record.
func WriteFrame(w io.Writer, f Frame) error {
	f.PayloadLen = uint32(len(f.Payload))
	if _, err := w.Write(AppendHeader(nil, f.Header)); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(f.Payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one complete frame record. maxPayload of 0 applies
// DefaultMaxPayload. Errors are fatal to the stream: after a failed read
// the reader's position is undefined.
func ReadFrame(r io.Reader, maxPayload uint32) (Frame, error) {
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayload
	}
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}
	h, err := ParseHeader(hdr[:])
	if err != nil {
		return Frame{}, err
	}
	if h.PayloadLen > maxPayload {
		return Frame{}, fmt.Errorf("frame %d payload %d exceeds limit %d", h.Seq, h.PayloadLen, maxPayload)
	}
	payload := make([]byte, h.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, fmt.Errorf("frame %d payload: %w", h.Seq, err)
	}
	return Frame{Header: h, Payload: payload}, nil
}

// Command is a capture-gating instruction carried on the text channel.
type Command string

const (
	CommandPause  Command = "pause"
	CommandResume Command = "resume"
	CommandStop   Command = "stop"
)

// ParseCommand validates one newline-terminated command line.
func ParseCommand(line string) (Command, error) {
	switch c := Command(strings.TrimSpace(strings.ToLower(line))); c {
	case CommandPause, CommandResume, CommandStop:
		return c, nil
	default:
		return "", fmt.Errorf("unknown command %q", strings.TrimSpace(line))
	}
}

// WriteCommand sends one command, newline-terminated, to the peer.
func WriteCommand(w io.Writer, cmd Command) error {
	if _, err := io.WriteString(w, string(cmd)+"\n"); err != nil {
		return fmt.Errorf("write command %q: %w", cmd, err)
	}
	return nil
}

// ReadCommand reads one newline-terminated command from a buffered reader.
func ReadCommand(r *bufio.Reader) (Command, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return ParseCommand(line)
}
