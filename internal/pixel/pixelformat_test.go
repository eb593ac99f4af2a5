package pixel

import "testing"

func TestPackUnpackRoundTrip32(t *testing.T) {
	pf := NewTrueColor32()
	colors := []Color{
		{R: 0, G: 0, B: 0},
		{R: 255, G: 255, B: 255},
		{R: 10, G: 200, B: 77},
		{R: 1, G: 2, B: 3},
	}
	for _, c := range colors {
		got := pf.Unpack(pf.Pack(c))
		if !got.Equal(c) {
			t.Errorf("round trip %+v -> %+v", c, got)
		}
	}
}

func TestPackUnpackRoundTripRescaled(t *testing.T) {
	// 16-bit 565-style format: R(5) G(6) B(5).
	pf := PixelFormat{
		BitsPerPixel: 16,
		Depth:        16,
		TrueColor:    true,
		RedMax:       31,
		GreenMax:     63,
		BlueMax:      31,
		RedShift:     11,
		GreenShift:   5,
		BlueShift:    0,
	}
	if err := pf.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	c := Color{R: 247, G: 251, B: 247} // exactly representable at this depth
	v := pf.Pack(c)
	got := pf.Unpack(v)
	if got.R != c.R || got.B != c.B {
		t.Errorf("round trip %+v -> %+v", c, got)
	}
}

func TestValidateDetectsOverlap(t *testing.T) {
	pf := PixelFormat{
		BitsPerPixel: 16,
		RedMax:       255,
		RedShift:     0,
		GreenMax:     255,
		GreenShift:   4, // overlaps red
	}
	if err := pf.Validate(); err == nil {
		t.Fatal("expected overlap error")
	}
}

func TestConvertFromIdentity(t *testing.T) {
	pf := NewTrueColor32()
	if got := pf.ConvertFrom(pf, 0x112233); got != 0x112233 {
		t.Errorf("identity convert changed value: %x", got)
	}
}
