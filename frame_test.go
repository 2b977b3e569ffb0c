package wsclient

import (
	"bytes"
	"testing"
)

// TestFrameRoundTrip checks that encoding then decoding a frame
// through a byte buffer yields an equal tuple, across the boundary
// payload sizes where the length encoding changes.
func TestFrameRoundTrip(t *testing.T) {
	payloads := []int{0, 1, 125, 126, 200, 65535, 65536 + 10}
	for _, masked := range []bool{true, false} {
		for _, n := range payloads {
			payload := make([]byte, n)
			for i := range payload {
				payload[i] = byte(i)
			}
			f := Frame{Final: true, Opcode: OpcodeBinary, Masked: masked, Payload: payload}

			var buf bytes.Buffer
			if err := WriteFrame(&buf, f); err != nil {
				t.Fatalf("WriteFrame: %v", err)
			}

			got, err := ReadFrame(&buf)
			if err != nil {
				t.Fatalf("ReadFrame: %v", err)
			}
			if got.Final != f.Final || got.Opcode != f.Opcode || got.Masked != f.Masked {
				t.Fatalf("n=%d masked=%t: got %+v, want final/opcode/masked from %+v", n, masked, got, f)
			}
			if !bytes.Equal(got.Payload, payload) {
				t.Fatalf("n=%d masked=%t: payload mismatch after round trip", n, masked)
			}
		}
	}
}

// TestLengthIndicatorSelection checks the 7-bit/16-bit/64-bit length
// indicator selection thresholds of RFC 6455 Section 5.2.
func TestLengthIndicatorSelection(t *testing.T) {
	testCases := []struct {
		length    int
		indicator byte
	}{
		{0, 0},
		{125, 125},
		{126, len16Indicator},
		{65535, len16Indicator},
		{65536, len64Indicator},
		{70000, len64Indicator},
	}
	for _, tc := range testCases {
		f := Frame{Final: true, Opcode: OpcodeBinary, Payload: make([]byte, tc.length)}
		var buf bytes.Buffer
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
		second := buf.Bytes()[1] &^ maskBit
		if second != tc.indicator {
			t.Errorf("length=%d: indicator = %d, want %d", tc.length, second, tc.indicator)
		}
	}
}

// TestSendHello checks the exact wire bytes of a short masked Text
// frame against RFC 6455 Section 5.2's header layout.
func TestSendHello(t *testing.T) {
	var buf bytes.Buffer
	f := Frame{Final: true, Opcode: OpcodeText, Masked: true, Payload: []byte("Hello")}
	if err := WriteFrame(&buf, f); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	b := buf.Bytes()
	if len(b) != 11 {
		t.Fatalf("len(b) = %d, want 11", len(b))
	}
	if b[0] != 0x81 || b[1] != 0x85 {
		t.Errorf("header = %#x %#x, want 0x81 0x85", b[0], b[1])
	}
	var key maskKey
	copy(key[:], b[2:6])
	got := append([]byte{}, b[6:11]...)
	key.transform(got)
	if string(got) != "Hello" {
		t.Errorf("unmasked payload = %q, want %q", got, "Hello")
	}
}

// TestSendLongText checks that a 200-byte payload selects the 16-bit
// length indicator.
func TestSendLongText(t *testing.T) {
	payload := bytes.Repeat([]byte("A"), 200)
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Frame{Final: true, Opcode: OpcodeText, Masked: true, Payload: payload}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	b := buf.Bytes()
	if b[0] != 0x81 {
		t.Errorf("byte1 = %#x, want 0x81", b[0])
	}
	if b[1]&^maskBit != 0xFE&^maskBit && b[1] != 0xFE {
		t.Errorf("byte2 = %#x, want 0xFE", b[1])
	}
	length := int(b[2])<<8 | int(b[3])
	if length != 200 {
		t.Errorf("length = %d, want 200", length)
	}
}

// TestSendHugeBinary checks that a 70000-byte payload selects the
// 64-bit length indicator.
func TestSendHugeBinary(t *testing.T) {
	payload := bytes.Repeat([]byte{0x58}, 70000)
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Frame{Final: true, Opcode: OpcodeBinary, Masked: true, Payload: payload}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	b := buf.Bytes()
	if b[0] != 0x82 {
		t.Errorf("byte1 = %#x, want 0x82", b[0])
	}
	if b[1] != 0xFF {
		t.Errorf("byte2 = %#x, want 0xFF", b[1])
	}
	var length uint64
	for i := 0; i < 8; i++ {
		length = length<<8 | uint64(b[2+i])
	}
	if length != 70000 {
		t.Errorf("length = %d, want 70000", length)
	}
}

func TestReadFrameRejectsInvalidOpcode(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x83, 0x00}) // FIN=1, opcode=0x3 (reserved)
	if _, err := ReadFrame(buf); err != ErrInvalidOpcode {
		t.Errorf("err = %v, want %v", err, ErrInvalidOpcode)
	}
}

func TestReadFrameRejectsFragmentedControl(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x09, 0x00}) // FIN=0, opcode=ping
	if _, err := ReadFrame(buf); err != ErrFragmentedControl {
		t.Errorf("err = %v, want %v", err, ErrFragmentedControl)
	}
}

func TestReadFrameRejectsOversizedControl(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x89, 0x7E, 0x00, 0xFF}) // FIN=1, ping, len16=255
	if _, err := ReadFrame(buf); err != ErrControlTooLarge {
		t.Errorf("err = %v, want %v", err, ErrControlTooLarge)
	}
}
