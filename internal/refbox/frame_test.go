package refbox

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestEncodeFrameLayout(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC}
	got := EncodeFrame(2000, 41, payload)

	want := []byte{
		0x02, 0x00, 0x00, 0x00, // version, cipher, reserved
		0x00, 0x00, 0x00, 0x07, // payload_size = 4 + 3
		0x07, 0xD0, // component_id = 2000
		0x00, 0x29, // msg_type = 41
		0xAA, 0xBB, 0xCC,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeFrame() = % x\nwant          % x", got, want)
	}
}

func TestReadFrameSequence(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(EncodeFrame(2000, 41, []byte("first")))
	buf.Write(EncodeFrame(2000, 1, nil))

	f, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if f.ComponentID != 2000 || f.MsgType != 41 || string(f.Payload) != "first" {
		t.Errorf("first frame = %+v", f)
	}

	f, err = ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if f.MsgType != 1 || len(f.Payload) != 0 {
		t.Errorf("second frame = %+v", f)
	}

	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Errorf("ReadFrame at end = %v, want io.EOF", err)
	}
}

func TestReadFrameErrors(t *testing.T) {
	valid := EncodeFrame(2000, 41, []byte("abc"))

	badVersion := append([]byte(nil), valid...)
	badVersion[0] = 1

	encrypted := append([]byte(nil), valid...)
	encrypted[1] = 2

	huge := append([]byte(nil), valid[:FrameHeaderSize]...)
	huge[4] = 0x7F

	short := append([]byte(nil), valid[:FrameHeaderSize]...)
	short[7] = 2

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad version", badVersion, ErrUnsupportedVersion},
		{"encrypted", encrypted, ErrEncryptedFrame},
		{"too large", huge, ErrFrameTooLarge},
		{"short", short, ErrShortFrame},
		{"truncated body", valid[:len(valid)-1], io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	data := EncodeFrame(2000, 41, []byte("x"))

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if string(f.Payload) != "x" {
		t.Errorf("Payload = %q, want %q", f.Payload, "x")
	}

	if _, err := DecodeFrame(append(data, 0x00)); err == nil {
		t.Error("expected error for trailing bytes")
	}
	if _, err := DecodeFrame(data[:3]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}
