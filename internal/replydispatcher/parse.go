package replydispatcher

import (
	"unicode/utf8"

	"github.com/jopamo/hxm/internal/bucketer"
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/xproto"
)

const maxTitleBytes = 4096

// words reinterprets data as a sequence of big-endian uint32 values,
// truncating any trailing partial word.
func words(data []byte) []uint32 {
	n := len(data) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		o := i * 4
		out[i] = uint32(data[o])<<24 | uint32(data[o+1])<<16 | uint32(data[o+2])<<8 | uint32(data[o+3])
	}
	return out
}

// ParseWMClass splits the two NUL-delimited strings WM_CLASS carries:
// instance first, class second. Returns ok=false if either delimiter
// is missing.
func ParseWMClass(data []byte) (instance, class string, ok bool) {
	nul1 := indexByte(data, 0)
	if nul1 < 0 {
		return "", "", false
	}
	rest := data[nul1+1:]
	nul2 := indexByte(rest, 0)
	if nul2 < 0 {
		return "", "", false
	}
	return string(data[:nul1]), string(rest[:nul2]), true
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// ParseTitle validates and truncates an 8-bit title string per the
// UTF-8 well-formedness rules titles must satisfy: no overlong
// encodings, no surrogate halves, nothing above U+10FFFF. Returns
// ok=false for an empty or invalid string, signaling the caller
// should fall back to the ICCCM name.
func ParseTitle(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	if len(data) > maxTitleBytes {
		data = data[:maxTitleBytes]
	}
	if !validUTF8Strict(data) {
		return "", false
	}
	return string(data), true
}

// validUTF8Strict is utf8.Valid plus rejection of encoded surrogate
// halves (U+D800-U+DFFF), which Go's decoder already refuses, and
// explicit rejection of code points beyond U+10FFFF — utf8.Valid
// already enforces both, but this wrapper documents the rule close to
// the call site used by the property parser.
func validUTF8Strict(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			return false
		}
		if r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
			return false
		}
		data = data[size:]
	}
	return true
}

const (
	maxIconPixelsTotal = 4 * 1024 * 1024
	maxIconsPerProperty = 16
	maxIconDimension    = 1024
)

var iconTargetSizes = []uint32{16, 24, 32, 48, 64}

// ParseNetWMIcon decodes the (w, h, w*h ARGB pixels) triple sequence
// _NET_WM_ICON carries, enforcing per-icon, per-dimension, and
// aggregate pixel caps, and premultiplying alpha into each pixel.
func ParseNetWMIcon(data []byte) []clientstore.IconCandidate {
	w := words(data)
	var out []clientstore.IconCandidate
	total := 0
	for i := 0; i+2 <= len(w) && len(out) < maxIconsPerProperty; {
		width, height := w[i], w[i+1]
		i += 2
		if width == 0 || height == 0 || width > maxIconDimension || height > maxIconDimension {
			break // malformed triple; stop rather than misinterpret the rest of the stream
		}
		n := int(width) * int(height)
		if i+n > len(w) {
			break
		}
		total += n
		if total > maxIconPixelsTotal {
			break
		}
		pixels := make([]uint32, n)
		for j := 0; j < n; j++ {
			pixels[j] = premultiplyAlpha(w[i+j])
		}
		out = append(out, clientstore.IconCandidate{W: width, H: height, Pixels: pixels})
		i += n
	}
	return out
}

func premultiplyAlpha(argb uint32) uint32 {
	a := (argb >> 24) & 0xff
	r := (argb >> 16) & 0xff
	g := (argb >> 8) & 0xff
	b := argb & 0xff
	r = r * a / 255
	g = g * a / 255
	b = b * a / 255
	return a<<24 | r<<16 | g<<8 | b
}

// SelectIconForTarget picks the candidate minimizing |Δw|+|Δh|
// relative to target as given; it does not round target to one of
// {16,24,32,48,64} (NearestStandardSize does that). Returns ok=false
// if candidates is empty.
func SelectIconForTarget(candidates []clientstore.IconCandidate, target uint32) (clientstore.IconCandidate, bool) {
	if len(candidates) == 0 {
		return clientstore.IconCandidate{}, false
	}
	best := candidates[0]
	bestDelta := delta(best.W, target) + delta(best.H, target)
	for _, c := range candidates[1:] {
		d := delta(c.W, target) + delta(c.H, target)
		if d < bestDelta {
			best, bestDelta = c, d
		}
	}
	return best, true
}

func delta(v, target uint32) uint32 {
	if v > target {
		return v - target
	}
	return target - v
}

// NearestStandardSize returns the entry in {16,24,32,48,64} closest to
// want, used by callers that need to pick a target before selecting
// an icon candidate.
func NearestStandardSize(want uint32) uint32 {
	best := iconTargetSizes[0]
	bestDelta := delta(best, want)
	for _, s := range iconTargetSizes[1:] {
		if d := delta(s, want); d < bestDelta {
			best, bestDelta = s, d
		}
	}
	return best
}

// ParseSizeHints decodes the ICCCM WM_NORMAL_HINTS wire layout: a
// flags word followed by the fields it selects, in a fixed order. The
// real property is fixed-width with placeholders for obsolete fields;
// this keeps only the fields the placement/geometry code consumes.
func ParseSizeHints(data []byte) clientstore.SizeHints {
	w := words(data)
	var h clientstore.SizeHints
	if len(w) < 1 {
		return h
	}
	flags := w[0]
	const (
		hintUSPosition = 1 << 0
		hintUSSize     = 1 << 1
		hintPPosition  = 1 << 2
		hintPSize      = 1 << 3
		hintPMinSize   = 1 << 4
		hintPMaxSize   = 1 << 5
		hintPResizeInc = 1 << 6
		hintPAspect    = 1 << 7
		hintPBaseSize  = 1 << 8
	)
	h.UserPosition = flags&hintUSPosition != 0
	h.ProgramPosition = flags&hintPPosition != 0

	idx := 1 + 4 // skip x, y, width, height fields the wire layout reserves
	read := func() int32 {
		if idx >= len(w) {
			return 0
		}
		v := int32(w[idx])
		idx++
		return v
	}
	if flags&hintPMinSize != 0 {
		h.MinW, h.MinH = read(), read()
		h.HasMin = true
	}
	if flags&hintPMaxSize != 0 {
		h.MaxW, h.MaxH = read(), read()
		h.HasMax = true
	}
	if flags&hintPResizeInc != 0 {
		h.IncW, h.IncH = read(), read()
		h.HasInc = true
	}
	if flags&hintPAspect != 0 {
		minN, minD := read(), read()
		maxN, maxD := read(), read()
		if minD != 0 && maxD != 0 {
			h.MinAspect = float64(minN) / float64(minD)
			h.MaxAspect = float64(maxN) / float64(maxD)
			h.HasAspect = true
		}
	}
	if flags&hintPBaseSize != 0 {
		h.BaseW, h.BaseH = read(), read()
		h.HasBase = true
	}
	_ = hintUSSize
	_ = hintPSize
	return h
}

// ConstrainToHints clamps (w, h) into [min, max], snaps to the resize
// increment relative to base (falling back to min when base is
// absent), and enforces the min/max aspect ratio.
func ConstrainToHints(w, h int32, hints clientstore.SizeHints) (int32, int32) {
	if hints.HasMin {
		if w < hints.MinW {
			w = hints.MinW
		}
		if h < hints.MinH {
			h = hints.MinH
		}
	}
	if hints.HasMax {
		if hints.MaxW > 0 && w > hints.MaxW {
			w = hints.MaxW
		}
		if hints.MaxH > 0 && h > hints.MaxH {
			h = hints.MaxH
		}
	}
	if hints.HasInc && hints.IncW > 0 && hints.IncH > 0 {
		base := hints.BaseW
		baseH := hints.BaseH
		if !hints.HasBase {
			base, baseH = hints.MinW, hints.MinH
		}
		if w > base {
			w = base + ((w-base)/hints.IncW)*hints.IncW
		}
		if h > baseH {
			h = baseH + ((h-baseH)/hints.IncH)*hints.IncH
		}
	}
	if hints.HasAspect && hints.MinAspect > 0 && hints.MaxAspect > 0 && h > 0 {
		ratio := float64(w) / float64(h)
		if ratio < hints.MinAspect {
			h = int32(float64(w) / hints.MinAspect)
		} else if ratio > hints.MaxAspect {
			w = int32(float64(h) * hints.MaxAspect)
		}
	}
	return w, h
}

// ParseStrut decodes the legacy 4-field _NET_WM_STRUT: left, right, top, bottom.
func ParseStrut(data []byte) ([4]int32, bool) {
	w := words(data)
	if len(w) < 4 {
		return [4]int32{}, false
	}
	return [4]int32{int32(w[0]), int32(w[1]), int32(w[2]), int32(w[3])}, true
}

// ParseConfigureRequest decodes a ConfigureRequest event body into the
// overlay shape the bucketer coalesces: an 8-word big-endian payload of
// mask, x, y, width, height, border-width, sibling, stack-mode.
func ParseConfigureRequest(data []byte) bucketer.ConfigureRequestData {
	w := words(data)
	if len(w) < 8 {
		return bucketer.ConfigureRequestData{}
	}
	return bucketer.ConfigureRequestData{
		Mask:        bucketer.ConfigValueMask(w[0]),
		X:           int32(w[1]),
		Y:           int32(w[2]),
		Width:       int32(w[3]),
		Height:      int32(w[4]),
		BorderWidth: int32(w[5]),
		Sibling:     xproto.WindowID(w[6]),
		StackMode:   uint8(w[7]),
	}
}

// ParsePropertyAtom decodes a PropertyNotify event body's leading word,
// the changed property's atom id.
func ParsePropertyAtom(data []byte) xproto.Atom {
	w := words(data)
	if len(w) < 1 {
		return 0
	}
	return xproto.Atom(w[0])
}

// ParseStrutPartial decodes the 12-field _NET_WM_STRUT_PARTIAL.
func ParseStrutPartial(data []byte) ([12]int32, bool) {
	w := words(data)
	if len(w) < 12 {
		return [12]int32{}, false
	}
	var out [12]int32
	for i := 0; i < 12; i++ {
		out[i] = int32(w[i])
	}
	return out, true
}
