package image

import (
	"image/color"
	"testing"

	"civic-eye-server-go/internal/platform/errors"
	platformtesting "civic-eye-server-go/internal/platform/testing"
)

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	cfg := platformtesting.SetupTestConfig(t)
	return NewDecoder(cfg.Engine, platformtesting.SetupTestLogger(t))
}

func TestDecodePNG(t *testing.T) {
	decoder := newTestDecoder(t)
	raw := platformtesting.EncodePNG(t, platformtesting.FlatImage(16, 12, color.RGBA{R: 120, G: 130, B: 140, A: 255}))

	decoded, err := decoder.Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if decoded.Width != 16 || decoded.Height != 12 {
		t.Fatalf("unexpected dimensions: %dx%d", decoded.Width, decoded.Height)
	}
	if decoded.Format != "png" {
		t.Errorf("unexpected format: %s", decoded.Format)
	}

	r, g, b := decoded.RGBAt(5, 5)
	if r != 120 || g != 130 || b != 140 {
		t.Errorf("unexpected pixel: %d %d %d", r, g, b)
	}

	// PNG encoding carries no EXIF; absence is modeled, not an error.
	if decoded.Metadata() != nil {
		t.Error("expected nil metadata view for PNG upload")
	}
}

func TestDecodeJPEG(t *testing.T) {
	decoder := newTestDecoder(t)
	raw := platformtesting.EncodeJPEG(t, platformtesting.CheckerImage(32, 32, 8), 90)

	decoded, err := decoder.Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if decoded.Format != "jpeg" {
		t.Errorf("unexpected format: %s", decoded.Format)
	}
	if decoded.Pixels() != 32*32 {
		t.Errorf("unexpected pixel count: %d", decoded.Pixels())
	}
}

func TestDecodeLumaMatchesWeights(t *testing.T) {
	decoder := newTestDecoder(t)
	raw := platformtesting.EncodePNG(t, platformtesting.FlatImage(4, 4, color.RGBA{R: 200, G: 100, B: 50, A: 255}))

	decoded, err := decoder.Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	want := uint8((299*200 + 587*100 + 114*50) / 1000)
	if got := decoded.LumaAt(2, 2); got != want {
		t.Errorf("LumaAt = %d, expected %d", got, want)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	decoder := newTestDecoder(t)

	_, err := decoder.Decode([]byte("definitely not an image"))
	if err == nil {
		t.Fatal("expected error for undecodable bytes")
	}
	if !errors.IsDecode(err) {
		t.Errorf("expected decode kind, got: %v", err)
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	decoder := newTestDecoder(t)

	if _, err := decoder.Decode(nil); !errors.IsDecode(err) {
		t.Errorf("expected decode kind for empty payload, got: %v", err)
	}
}

func TestDecodeEnforcesDimensionLimits(t *testing.T) {
	cfg := platformtesting.SetupTestConfig(t)
	cfg.Engine.MaxWidth = 8
	cfg.Engine.MaxHeight = 8
	decoder := NewDecoder(cfg.Engine, platformtesting.SetupTestLogger(t))

	raw := platformtesting.EncodePNG(t, platformtesting.FlatImage(32, 32, color.RGBA{A: 255}))
	if _, err := decoder.Decode(raw); !errors.IsDecode(err) {
		t.Errorf("expected decode kind for oversized dimensions, got: %v", err)
	}
}

func TestMetadataSoftwareFields(t *testing.T) {
	meta := NewMetadata(map[string]string{
		"Software":           "Adobe Photoshop CC",
		"ProcessingSoftware": "GIMP 2.10",
		"Make":               "Canon",
	})

	fields := meta.SoftwareFields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 software fields, got %v", fields)
	}
	if meta.Empty() {
		t.Error("metadata with fields must not read as empty")
	}

	var nilMeta *Metadata
	if !nilMeta.Empty() {
		t.Error("nil metadata must read as empty")
	}
}
