package wsclient

import "testing"

func TestOpcodeIsValid(t *testing.T) {
	testCases := []struct {
		opcode Opcode
		valid  bool
	}{
		{OpcodeContinuation, true},
		{OpcodeText, true},
		{OpcodeBinary, true},
		{OpcodeClose, true},
		{OpcodePing, true},
		{OpcodePong, true},
		{0x3, false},
		{0x7, false},
		{0xB, false},
		{0xF, false},
	}
	for _, tc := range testCases {
		if want, got := tc.valid, tc.opcode.IsValid(); want != got {
			t.Errorf("Opcode(%#x).IsValid() = %t, want %t", uint8(tc.opcode), got, want)
		}
	}
}

func TestOpcodeIsControl(t *testing.T) {
	testCases := []struct {
		opcode  Opcode
		control bool
	}{
		{OpcodeContinuation, false},
		{OpcodeText, false},
		{OpcodeBinary, false},
		{OpcodeClose, true},
		{OpcodePing, true},
		{OpcodePong, true},
	}
	for _, tc := range testCases {
		if want, got := tc.control, tc.opcode.IsControl(); want != got {
			t.Errorf("Opcode(%#x).IsControl() = %t, want %t", uint8(tc.opcode), got, want)
		}
	}
}

func TestOpcodeString(t *testing.T) {
	if want, got := "text", OpcodeText.String(); want != got {
		t.Errorf("want %s, got %s", want, got)
	}
	if want, got := "reserved", Opcode(0x5).String(); want != got {
		t.Errorf("want %s, got %s", want, got)
	}
}
