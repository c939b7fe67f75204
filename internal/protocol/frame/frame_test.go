package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/andres-sumihe/swift-generator/internal/testutil/testlog"
)

func TestBuildPadsToWholeSectors(t *testing.T) {
	testlog.Start(t)
	payload := bytes.Repeat([]byte("A"), 598)
	out, err := Build(payload, DefaultLayout())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(out) != 1024 {
		t.Fatalf("expected 1024 bytes, got %d", len(out))
	}
	if out[0] != DefaultStartMarker || out[599] != DefaultEndMarker {
		t.Fatalf("markers misplaced: start=0x%02X end=0x%02X", out[0], out[599])
	}
	for i := 600; i < len(out); i++ {
		if out[i] != DefaultPadByte {
			t.Fatalf("unexpected pad byte at %d: 0x%02X", i, out[i])
		}
	}
}

func TestBuildExactSectorNeedsNoPadding(t *testing.T) {
	testlog.Start(t)
	l := Layout{SectorSize: 8, StartMarker: 0x02, EndMarker: 0x04, PadByte: 0x20}
	out, err := Build([]byte("ABCDEF"), l)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.Equal(out, []byte{0x02, 'A', 'B', 'C', 'D', 'E', 'F', 0x04}) {
		t.Fatalf("unexpected frame: %v", out)
	}
	out, _ = Build([]byte("ABC"), l)
	if !bytes.Equal(out, []byte{0x02, 'A', 'B', 'C', 0x04, 0x20, 0x20, 0x20}) {
		t.Fatalf("unexpected padded frame: %v", out)
	}
}

func TestLayoutValidateIsDeterministic(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		layout Layout
		want   error
	}{
		{Layout{SectorSize: 0, StartMarker: 1, EndMarker: 3}, ErrSectorSize},
		{Layout{SectorSize: MaxSectorSize + 1, StartMarker: 1, EndMarker: 3}, ErrSectorSize},
		{Layout{SectorSize: 512, StartMarker: -1, EndMarker: 3}, ErrMarkerRange},
		{Layout{SectorSize: 512, StartMarker: 1, EndMarker: 256}, ErrMarkerRange},
		{Layout{SectorSize: 512, StartMarker: 7, EndMarker: 7}, ErrMarkerCollision},
		{Layout{SectorSize: 512, StartMarker: 1, EndMarker: 3, PadByte: 300}, ErrPadRange},
	}
	for _, tc := range cases {
		if err := tc.layout.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("layout %+v: expected %v, got %v", tc.layout, tc.want, err)
		}
	}
	if err := (Layout{SectorSize: MaxSectorSize, StartMarker: 0, EndMarker: 255}).Validate(); err != nil {
		t.Fatalf("boundary layout rejected: %v", err)
	}
}

func TestBuildRejectsMarkerInPayload(t *testing.T) {
	testlog.Start(t)
	_, err := Build([]byte("AB\x03CD"), DefaultLayout())
	if !errors.Is(err, ErrMarkerInPayload) {
		t.Fatalf("expected ErrMarkerInPayload, got %v", err)
	}
}

func TestAlignAndScanRoundTrip(t *testing.T) {
	testlog.Start(t)
	l := Layout{SectorSize: 16, StartMarker: 1, EndMarker: 3}
	var buf bytes.Buffer
	for _, p := range []string{"first", "a-much-longer-second-payload", "x"} {
		Align(&buf, l)
		f, err := Build([]byte(p), l)
		if err != nil {
			t.Fatalf("build %q: %v", p, err)
		}
		buf.Write(f)
	}
	if buf.Len()%16 != 0 {
		t.Fatalf("batch not aligned: %d", buf.Len())
	}
	got := Scan(buf.Bytes(), l, DefaultLookAheadSectors)
	if len(got) != 3 || string(got[1]) != "a-much-longer-second-payload" || string(got[2]) != "x" {
		t.Fatalf("unexpected scan: %q", got)
	}
}

func TestScanHonorsLookAhead(t *testing.T) {
	testlog.Start(t)
	l := Layout{SectorSize: 4, StartMarker: 1, EndMarker: 3}
	data := append([]byte{1}, bytes.Repeat([]byte("Z"), 12)...)
	data = append(data, 3)
	if got := Scan(data, l, 2); len(got) != 0 {
		t.Fatalf("expected no frames inside a 2-sector window, got %q", got)
	}
	if got := Scan(data, l, 4); len(got) != 1 {
		t.Fatalf("expected 1 frame inside a 4-sector window, got %q", got)
	}
}

func TestPaddingHelpers(t *testing.T) {
	testlog.Start(t)
	if Sectors(600, 512) != 2 || Sectors(512, 512) != 1 || Sectors(0, 512) != 0 {
		t.Fatalf("unexpected sector counts")
	}
	if PaddingFor(600, 512) != 424 || PaddingFor(1024, 512) != 0 {
		t.Fatalf("unexpected padding")
	}
}
