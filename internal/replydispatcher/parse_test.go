package replydispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopamo/hxm/internal/clientstore"
)

func TestParseWMClassSplitsInstanceAndClass(t *testing.T) {
	data := append([]byte("xterm"), 0)
	data = append(data, []byte("XTerm")...)
	data = append(data, 0)

	instance, class, ok := ParseWMClass(data)
	require.True(t, ok)
	assert.Equal(t, "xterm", instance)
	assert.Equal(t, "XTerm", class)
}

func TestParseWMClassMissingDelimiterIsIgnored(t *testing.T) {
	_, _, ok := ParseWMClass([]byte("noterminator"))
	assert.False(t, ok)
}

func TestParseTitleRejectsOverlongAndSurrogates(t *testing.T) {
	_, ok := ParseTitle([]byte{0xC0, 0x80}) // overlong encoding of NUL
	assert.False(t, ok)

	_, ok = ParseTitle([]byte{0xED, 0xA0, 0x80}) // encoded surrogate half
	assert.False(t, ok)
}

func TestParseTitleTruncatesTo4096Bytes(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	title, ok := ParseTitle(long)
	require.True(t, ok)
	assert.Len(t, title, maxTitleBytes)
}

func TestParseTitleEmptyIsInvalid(t *testing.T) {
	_, ok := ParseTitle(nil)
	assert.False(t, ok)
}

func TestSelectIconForTargetPicksMinimalDelta(t *testing.T) {
	candidates := []clientstore.IconCandidate{
		{W: 16, H: 16},
		{W: 48, H: 48},
		{W: 32, H: 32},
	}
	best, ok := SelectIconForTarget(candidates, 32)
	require.True(t, ok)
	assert.Equal(t, uint32(32), best.W)
}

func TestParseNetWMIconPremultipliesAlpha(t *testing.T) {
	w := []uint32{1, 1, 0x80FFFFFF} // 1x1 icon, half alpha, white
	data := wordsToBytes(w)

	candidates := ParseNetWMIcon(data)
	require.Len(t, candidates, 1)
	px := candidates[0].Pixels[0]
	assert.Equal(t, uint32(0x80), px>>24)
	assert.Less(t, (px>>16)&0xff, uint32(0xff), "premultiplied channel must shrink toward zero with partial alpha")
}

func TestConstrainToHintsClampsToMinMax(t *testing.T) {
	hints := clientstore.SizeHints{HasMin: true, MinW: 100, MinH: 100, HasMax: true, MaxW: 800, MaxH: 600}
	w, h := ConstrainToHints(50, 50, hints)
	assert.Equal(t, int32(100), w)
	assert.Equal(t, int32(100), h)

	w, h = ConstrainToHints(1000, 1000, hints)
	assert.Equal(t, int32(800), w)
	assert.Equal(t, int32(600), h)
}

func TestConstrainToHintsSnapsToIncrement(t *testing.T) {
	hints := clientstore.SizeHints{HasBase: true, BaseW: 10, BaseH: 10, HasInc: true, IncW: 8, IncH: 8}
	w, h := ConstrainToHints(53, 53, hints) // 43px past base, not a multiple of 8
	assert.Equal(t, int32(50), w, "must snap down to the nearest increment above base")
	assert.Equal(t, int32(50), h)
}

func TestParseStrutPartialSupersedesLegacy(t *testing.T) {
	partial := make([]uint32, 12)
	partial[2] = 30 // top
	data := wordsToBytes(partial)

	got, ok := ParseStrutPartial(data)
	require.True(t, ok)
	assert.Equal(t, int32(30), got[2])
}

func wordsToBytes(w []uint32) []byte {
	out := make([]byte, len(w)*4)
	for i, v := range w {
		o := i * 4
		out[o] = byte(v >> 24)
		out[o+1] = byte(v >> 16)
		out[o+2] = byte(v >> 8)
		out[o+3] = byte(v)
	}
	return out
}
