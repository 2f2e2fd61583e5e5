package forensics

import (
	"context"
	"testing"

	domainimage "civic-eye-server-go/internal/domain/image"
	platformtesting "civic-eye-server-go/internal/platform/testing"
)

func TestMetadataScore(t *testing.T) {
	analyzer := NewMetadataAnalyzer(DefaultConfig())

	tests := []struct {
		name   string
		fields map[string]string
		want   float64
	}{
		{
			name:   "no metadata",
			fields: nil,
			want:   60,
		},
		{
			name:   "camera only",
			fields: map[string]string{"Make": "Canon", "Model": "EOS R5"},
			want:   100,
		},
		{
			name:   "single editor trace",
			fields: map[string]string{"Software": "Adobe Photoshop 2024"},
			want:   75,
		},
		{
			name: "multiple editor traces floor at fifty",
			fields: map[string]string{
				"Software":           "GIMP 2.10",
				"ProcessingSoftware": "paint.net",
			},
			want: 50,
		},
		{
			name:   "case insensitive match",
			fields: map[string]string{"Software": "PHOTOSHOP CC"},
			want:   75,
		},
		{
			name:   "benign software untouched",
			fields: map[string]string{"Software": "iOS 17.2"},
			want:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta *domainimage.Metadata
			if tt.fields != nil {
				meta = domainimage.NewMetadata(tt.fields)
			}
			got := analyzer.score(meta)
			if got.Value != tt.want {
				t.Errorf("score = %.2f, expected %.2f", got.Value, tt.want)
			}
		})
	}
}

func TestMetadataAbsentForPNGUpload(t *testing.T) {
	img := decodeForTest(t, platformtesting.EncodePNG(t, platformtesting.CheckerImage(8, 8, 2)))

	got := NewMetadataAnalyzer(DefaultConfig()).Analyze(context.Background(), img)
	if got.Value != 60 {
		t.Errorf("PNG without EXIF = %.2f, expected 60", got.Value)
	}
}
