package forensics

import (
	"context"

	domainimage "civic-eye-server-go/internal/domain/image"
	"civic-eye-server-go/internal/platform/errors"
)

// ShadowAnalyzer checks edge and shadow coherence. Spliced content tends to
// disturb the natural distribution of edges: either the scene carries too few
// distinct contours to judge, or the edge density falls outside the band an
// unedited outdoor photo exhibits.
type ShadowAnalyzer struct {
	cfg Config
}

func NewShadowAnalyzer(cfg Config) *ShadowAnalyzer {
	return &ShadowAnalyzer{cfg: cfg}
}

func (a *ShadowAnalyzer) Name() string { return NameShadow }

func (a *ShadowAnalyzer) Analyze(_ context.Context, img *domainimage.DecodedImage) SubScore {
	value, diag, err := a.compute(img)
	if err != nil {
		return SubScore{Name: NameShadow, Value: a.cfg.ShadowFallback}
	}
	return SubScore{Name: NameShadow, Value: value, Diagnostics: diag}
}

func (a *ShadowAnalyzer) compute(img *domainimage.DecodedImage) (float64, map[string]float64, error) {
	if img == nil || img.Width < 3 || img.Height < 3 {
		return 0, nil, errors.New(errors.KindForensics, "shadow.compute", "image too small for gradient analysis")
	}

	edges := a.edgeMap(img)
	contours := countContours(edges, img.Width, img.Height)

	edgePixels := 0
	for _, e := range edges {
		if e {
			edgePixels++
		}
	}
	density := float64(edgePixels) / float64(img.Pixels())

	diag := map[string]float64{
		"contours":     float64(contours),
		"edge_density": density,
	}

	if contours < a.cfg.ShadowMinContours {
		return a.cfg.ShadowSparse, diag, nil
	}

	score := a.cfg.ShadowBase
	if density < a.cfg.ShadowDensityMin || density > a.cfg.ShadowDensityMax {
		score -= a.cfg.ShadowDensityCut
	}
	if score < a.cfg.ShadowFloor {
		score = a.cfg.ShadowFloor
	}
	return score, diag, nil
}

// edgeMap runs a Sobel gradient pass followed by dual-threshold hysteresis:
// pixels above the high threshold seed edges, pixels above the low threshold
// join an edge only when 8-connected to a seed.
func (a *ShadowAnalyzer) edgeMap(img *domainimage.DecodedImage) []bool {
	w, h := img.Width, img.Height
	magnitude := make([]float64, w*h)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -float64(img.LumaAt(x-1, y-1)) + float64(img.LumaAt(x+1, y-1)) +
				-2*float64(img.LumaAt(x-1, y)) + 2*float64(img.LumaAt(x+1, y)) +
				-float64(img.LumaAt(x-1, y+1)) + float64(img.LumaAt(x+1, y+1))
			gy := -float64(img.LumaAt(x-1, y-1)) - 2*float64(img.LumaAt(x, y-1)) - float64(img.LumaAt(x+1, y-1)) +
				float64(img.LumaAt(x-1, y+1)) + 2*float64(img.LumaAt(x, y+1)) + float64(img.LumaAt(x+1, y+1))

			g := gx
			if g < 0 {
				g = -g
			}
			if gy < 0 {
				gy = -gy
			}
			magnitude[y*w+x] = g + gy
		}
	}

	edges := make([]bool, w*h)
	weak := make([]bool, w*h)
	var seeds []int
	for i, m := range magnitude {
		switch {
		case m >= a.cfg.EdgeHighThreshold:
			edges[i] = true
			seeds = append(seeds, i)
		case m >= a.cfg.EdgeLowThreshold:
			weak[i] = true
		}
	}

	// BFS from strong seeds through weak neighbors.
	for len(seeds) > 0 {
		i := seeds[len(seeds)-1]
		seeds = seeds[:len(seeds)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if weak[j] && !edges[j] {
					edges[j] = true
					seeds = append(seeds, j)
				}
			}
		}
	}
	return edges
}

// countContours labels 8-connected components of the edge map.
func countContours(edges []bool, w, h int) int {
	visited := make([]bool, len(edges))
	count := 0
	var stack []int

	for start := range edges {
		if !edges[start] || visited[start] {
			continue
		}
		count++
		visited[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					j := ny*w + nx
					if edges[j] && !visited[j] {
						visited[j] = true
						stack = append(stack, j)
					}
				}
			}
		}
	}
	return count
}
