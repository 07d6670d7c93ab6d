// Package localgen is the zero-dependency generation tier: a procedural SVG
// image generator, text-to-document packagers, and the runner for external
// python generator scripts. Everything here must keep working when no
// provider credential is configured.
package localgen

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
)

var (
	styleCartoon = regexp.MustCompile(`(?i)cartoon|kartun|kartunis`)
	styleMinimal = regexp.MustCompile(`(?i)minimal|flat|vaporwave|isometric`)
	styleRetro   = regexp.MustCompile(`(?i)retro|vintage|film|analog`)
	stylePhoto   = regexp.MustCompile(`(?i)3d|photoreal|photo|realistic`)

	paletteWarm = regexp.MustCompile(`(?i)sun|sunset|orange|warm|desert`)
	paletteCool = regexp.MustCompile(`(?i)ocean|sea|water|blue|cool`)
	paletteMono = regexp.MustCompile(`(?i)night|dark|mono|black`)
	paletteNeon = regexp.MustCompile(`(?i)neon|cyber|synth|retrofutur`)
)

var palettes = map[string][]string{
	"warm":   {"#ff7a59", "#ffd166", "#ffb4a2"},
	"cool":   {"#60a5fa", "#7c3aed", "#34d399"},
	"mono":   {"#111827", "#374151", "#9ca3af"},
	"pastel": {"#fce7f3", "#e0f2fe", "#fef3c7"},
	"neon":   {"#06b6d4", "#8b5cf6", "#fb7185"},
}

// subjectGlyphs maps subject keywords to the glyph drawn at the center.
var subjectGlyphs = []struct {
	word  string
	glyph string
}{
	{"cat", "\U0001F63A"},
	{"dog", "\U0001F436"},
	{"tree", "\U0001F333"},
	{"car", "\U0001F697"},
	{"rocket", "\U0001F680"},
	{"flower", "\U0001F338"},
	{"beach", "\U0001F3D6"},
}

// GenerateSVG renders a stylized vector image from prompt heuristics: style
// selection, palette selection and a subject glyph, with shape jitter seeded
// from the prompt so identical prompts reproduce identical images. Returns a
// URI-encoded SVG data URI.
func GenerateSVG(prompt string, width, height int) (string, error) {
	w, h := clampDims(width, height)
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("invalid dimensions %dx%d", width, height)
	}

	seed := fnv.New64a()
	seed.Write([]byte(prompt))
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	style := "abstract"
	switch {
	case styleCartoon.MatchString(prompt):
		style = "cartoon"
	case styleMinimal.MatchString(prompt):
		style = "minimal"
	case styleRetro.MatchString(prompt):
		style = "retro"
	case stylePhoto.MatchString(prompt):
		style = "photo"
	}

	palette := palettes["pastel"]
	switch {
	case paletteWarm.MatchString(prompt):
		palette = palettes["warm"]
	case paletteCool.MatchString(prompt):
		palette = palettes["cool"]
	case paletteMono.MatchString(prompt):
		palette = palettes["mono"]
	case paletteNeon.MatchString(prompt):
		palette = palettes["neon"]
	}

	glyph := "\U0001F3A8"
	lower := strings.ToLower(prompt)
	for _, s := range subjectGlyphs {
		if regexp.MustCompile(`\b` + s.word + `\b`).MatchString(lower) {
			glyph = s.glyph
			break
		}
	}

	gradID := fmt.Sprintf("g%d", rng.Intn(1_000_000_000))
	var stops strings.Builder
	for i, c := range palette {
		offset := i * 100 / (len(palette) - 1)
		fmt.Fprintf(&stops, `<stop offset="%d%%" stop-color="%s"/>`, offset, c)
	}

	shapes := buildShapes(style, palette, w, h, rng)

	title := escapeXML(truncateRunes(prompt, 120))
	fontSize := max(12, minInt(w, h)*4/100)
	glyphSize := minInt(w, h) * 20 / 100

	svg := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
  <defs>
    <linearGradient id="%s" x1="0" y1="0" x2="1" y2="1">%s</linearGradient>
  </defs>
  <rect width="100%%" height="100%%" fill="url(#%s)"/>
  <g opacity="0.85">%s</g>
  <g font-family="Inter, system-ui, -apple-system, Segoe UI, Roboto, Arial" fill="#ffffff">
    <text x="50%%" y="50%%" font-size="%d" text-anchor="middle" dominant-baseline="central">%s</text>
    <text x="50%%" y="%d" font-size="%d" text-anchor="middle" opacity="0.95">%s</text>
  </g>
</svg>`, w, h, w, h, gradID, stops.String(), gradID, strings.Join(shapes, "\n    "), glyphSize, glyph, h*88/100, fontSize, title)

	return "data:image/svg+xml;charset=utf-8," + url.PathEscape(svg), nil
}

// PlainSVG is the simple placeholder variant used by the never-fails last
// resort: gradient background, a glyph and the prompt as caption.
func PlainSVG(prompt string, width, height int) string {
	w, h := clampDims(width, height)
	glyph := "\U0001F3A8"
	if regexp.MustCompile(`(?i)kucing|cat|kitty|meong`).MatchString(prompt) {
		glyph = "\U0001F63A"
	}
	title := escapeXML(truncateRunes(prompt, 80))
	svg := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
  <defs>
    <linearGradient id="g" x1="0" y1="0" x2="1" y2="1">
      <stop offset="0%%" stop-color="#60a5fa"/>
      <stop offset="50%%" stop-color="#a78bfa"/>
      <stop offset="100%%" stop-color="#f472b6"/>
    </linearGradient>
  </defs>
  <rect width="100%%" height="100%%" fill="url(#g)"/>
  <g font-family="Inter, system-ui, -apple-system, Segoe UI, Roboto, Arial" fill="#ffffff">
    <text x="50%%" y="48%%" font-size="%d" text-anchor="middle" dominant-baseline="central">%s</text>
    <text x="50%%" y="80%%" font-size="%d" text-anchor="middle" opacity="0.9">%s</text>
  </g>
</svg>`, w, h, w, h, minInt(w, h)*28/100, glyph, minInt(w, h)*6/100, title)
	return "data:image/svg+xml;charset=utf-8," + url.PathEscape(svg)
}

func buildShapes(style string, palette []string, w, h int, rng *rand.Rand) []string {
	var shapes []string
	switch style {
	case "minimal":
		shapes = append(shapes,
			fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="%d" fill="rgba(255,255,255,0.06)"/>`,
				w*5/100, h*20/100, w*90/100, h*60/100, minInt(w, h)*6/100),
			fmt.Sprintf(`<circle cx="%d" cy="%d" r="%d" fill="rgba(255,255,255,0.08)"/>`,
				w*80/100, h*30/100, minInt(w, h)*12/100),
		)
	case "cartoon":
		shapes = append(shapes, fmt.Sprintf(`<ellipse cx="%d" cy="%d" rx="%d" ry="%d" fill="rgba(255,255,255,0.06)"/>`,
			w/2, h*55/100, w*42/100, h*30/100))
		for i := 0; i < 6; i++ {
			cx := int((rng.Float64()*0.8 + 0.1) * float64(w))
			cy := int((rng.Float64()*0.6 + 0.2) * float64(h))
			r := int((rng.Float64()*0.06 + 0.03) * float64(minInt(w, h)))
			shapes = append(shapes, fmt.Sprintf(`<circle cx="%d" cy="%d" r="%d" fill="%s" opacity="0.9"/>`,
				cx, cy, r, palette[i%len(palette)]))
		}
	case "retro":
		shapes = append(shapes, fmt.Sprintf(`<rect x="0" y="%d" width="%d" height="%d" fill="rgba(0,0,0,0.06)"/>`,
			h*60/100, w, h*40/100))
		var bands strings.Builder
		for i, c := range palette {
			fmt.Fprintf(&bands, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`,
				i*w/len(palette), h*60/100+i*6, (w+len(palette)-1)/len(palette), h*8/100, c)
		}
		shapes = append(shapes, `<g fill-opacity="0.85">`+bands.String()+`</g>`)
	default: // abstract, photo
		for i := 0; i < 5; i++ {
			cx := int((rng.Float64()*0.9 + 0.05) * float64(w))
			cy := int((rng.Float64()*0.9 + 0.05) * float64(h))
			rx := int((rng.Float64()*0.2 + 0.05) * float64(w))
			ry := int((rng.Float64()*0.2 + 0.05) * float64(h))
			shapes = append(shapes, fmt.Sprintf(`<ellipse cx="%d" cy="%d" rx="%d" ry="%d" fill="%s" opacity="0.7"/>`,
				cx, cy, rx, ry, palette[i%len(palette)]))
		}
	}
	return shapes
}

func clampDims(w, h int) (int, int) {
	clamp := func(v int) int {
		if v < 100 {
			return 100
		}
		if v > 4096 {
			return 4096
		}
		return v
	}
	return clamp(w), clamp(h)
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
