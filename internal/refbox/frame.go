package refbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// protobuf_comm framing constants.
const (
	FrameVersion      = 2
	FrameHeaderSize   = 8
	MessageHeaderSize = 4

	// MaxPayloadSize bounds inbound frames so a corrupt header cannot make
	// the reader allocate arbitrary amounts of memory.
	MaxPayloadSize = 4 << 20
)

// Framing errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported frame version")
	ErrEncryptedFrame     = errors.New("encrypted frames are not supported")
	ErrFrameTooLarge      = errors.New("frame exceeds maximum payload size")
	ErrShortFrame         = errors.New("frame shorter than message header")
)

// Frame is a single protobuf_comm message.
type Frame struct {
	ComponentID uint16
	MsgType     uint16
	Payload     []byte // Serialized protobuf message
}

// EncodeFrame builds an unencrypted v2 frame for the given message.
func EncodeFrame(componentID, msgType uint16, payload []byte) []byte {
	buf := make([]byte, FrameHeaderSize+MessageHeaderSize+len(payload))

	buf[0] = FrameVersion
	buf[1] = 0 // cipher: none
	binary.BigEndian.PutUint32(buf[4:8], uint32(MessageHeaderSize+len(payload)))
	binary.BigEndian.PutUint16(buf[8:10], componentID)
	binary.BigEndian.PutUint16(buf[10:12], msgType)
	copy(buf[12:], payload)

	return buf
}

// ReadFrame reads one frame from r.
// io.EOF is returned unwrapped when r is exhausted before a new frame starts.
func ReadFrame(r io.Reader) (Frame, error) {
	var hdr [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}

	if hdr[0] != FrameVersion {
		return Frame{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr[0])
	}
	if hdr[1] != 0 {
		return Frame{}, fmt.Errorf("%w: cipher %d", ErrEncryptedFrame, hdr[1])
	}

	size := binary.BigEndian.Uint32(hdr[4:8])
	if size < MessageHeaderSize {
		return Frame{}, fmt.Errorf("%w: payload_size %d", ErrShortFrame, size)
	}
	if size > MaxPayloadSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, fmt.Errorf("read frame body: %w", err)
	}

	return Frame{
		ComponentID: binary.BigEndian.Uint16(body[0:2]),
		MsgType:     binary.BigEndian.Uint16(body[2:4]),
		Payload:     body[MessageHeaderSize:],
	}, nil
}

// DecodeFrame parses a single complete frame held in data, as delivered by
// message-oriented transports. Trailing bytes are an error.
func DecodeFrame(data []byte) (Frame, error) {
	r := bytes.NewReader(data)
	f, err := ReadFrame(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}
	if r.Len() != 0 {
		return Frame{}, fmt.Errorf("%d trailing bytes after frame", r.Len())
	}
	return f, nil
}
