package wlrlayershell

import "testing"

func TestBuilderStringPadding(t *testing.T) {
	msg := NewBuilder().PutString("ab").Build(5, 2)

	obj, op, size, err := decodeHeader(msg)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if obj != 5 || op != 2 {
		t.Fatalf("header = (%d, %d), want (5, 2)", obj, op)
	}
	if size != len(msg) {
		t.Fatalf("encoded size %d does not match message length %d", size, len(msg))
	}
	// "ab\0" is 3 bytes, padded to the next multiple of 4 (4 bytes),
	// plus the 4-byte length prefix.
	wantArgsLen := 4 + 4
	if got := len(msg) - 8; got != wantArgsLen {
		t.Fatalf("args length = %d, want %d", got, wantArgsLen)
	}
}

func TestDecoderRoundTripsString(t *testing.T) {
	msg := NewBuilder().PutUint32(42).PutString("overlay").Build(1, 0)

	d := NewDecoder(msg[8:])
	n, err := d.Uint32()
	if err != nil || n != 42 {
		t.Fatalf("Uint32() = (%d, %v), want (42, nil)", n, err)
	}
	s, err := d.String()
	if err != nil || s != "overlay" {
		t.Fatalf("String() = (%q, %v), want (\"overlay\", nil)", s, err)
	}
}

func TestBuildGetLayerSurfaceEncodesArguments(t *testing.T) {
	msg := BuildGetLayerSurface(10, 11, 12, NullID, "keyviz", LayerOverlay)

	d := NewDecoder(msg[8:])
	newID, _ := d.Object()
	surface, _ := d.Object()
	output, _ := d.Object()
	layer, _ := d.Uint32()
	namespace, _ := d.String()

	if newID != 11 || surface != 12 || output != NullID {
		t.Fatalf("unexpected object ids: newID=%d surface=%d output=%d", newID, surface, output)
	}
	if Layer(layer) != LayerOverlay {
		t.Fatalf("layer = %d, want %d", layer, LayerOverlay)
	}
	if namespace != "keyviz" {
		t.Fatalf("namespace = %q, want %q", namespace, "keyviz")
	}
}

func TestDecodeConfigure(t *testing.T) {
	msg := NewBuilder().PutUint32(7).PutUint32(640).PutUint32(48).Build(20, LayerSurfaceEventConfigure)

	ev, err := DecodeConfigure(msg[8:])
	if err != nil {
		t.Fatalf("DecodeConfigure: %v", err)
	}
	if ev.Serial != 7 || ev.Width != 640 || ev.Height != 48 {
		t.Fatalf("DecodeConfigure = %+v, want {7 640 48}", ev)
	}
}
