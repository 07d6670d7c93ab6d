package explain

import (
	"strings"
	"testing"

	"github.com/fashbot/fashbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(turns ...string) []models.ConversationMessage {
	msgs := make([]models.ConversationMessage, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, models.ConversationMessage{Role: models.RoleUser, Content: t})
	}
	return msgs
}

func TestSegments_FixedShape(t *testing.T) {
	segs := Segments(history("halo"), "Jawaban pertama.\n\nLangkah kedua.")
	require.Len(t, segs, 3)

	assert.Equal(t, "context", segs[0].ID)
	assert.Equal(t, "Kontekstualisasi", segs[0].Label)
	assert.InDelta(t, 0.82, segs[0].Confidence, 1e-9)

	assert.Equal(t, "analysis", segs[1].ID)
	assert.Equal(t, "Analisis Strategis", segs[1].Label)
	assert.InDelta(t, 0.87, segs[1].Confidence, 1e-9)

	assert.Equal(t, "delivery", segs[2].ID)
	assert.Equal(t, "Rencana Eksekusi", segs[2].Label)
	assert.InDelta(t, 0.90, segs[2].Confidence, 1e-9)
}

func TestSegments_Deterministic(t *testing.T) {
	h := history("satu", "dua", "tiga")
	a := Segments(h, "Blok satu.\n\nBlok dua.")
	b := Segments(h, "Blok satu.\n\nBlok dua.")
	assert.Equal(t, a, b)
}

func TestSegments_UsesLastTwoUserTurns(t *testing.T) {
	segs := Segments(history("lama", "kedua", "terbaru"), "jawaban")
	assert.Contains(t, segs[0].Detail, "kedua • terbaru")
	assert.NotContains(t, segs[0].Detail, "lama")
}

func TestSegments_AnswerBlocksFeedAnalysisAndDelivery(t *testing.T) {
	segs := Segments(history("halo"), "Analisis di sini.\n\nRencana di sini.")
	assert.Equal(t, "Analisis di sini.", segs[1].Detail)
	assert.Equal(t, "Rencana di sini.", segs[2].Detail)
}

func TestSegments_FallbackPhrases(t *testing.T) {
	segs := Segments(nil, "")
	assert.Equal(t, "Menyiapkan konteks percakapan awal.", segs[0].Detail)
	assert.Equal(t, "Mengurai permintaan menjadi sub-tugas terukur.", segs[1].Detail)
	assert.Equal(t, "Menghasilkan output terstruktur beserta langkah tindak lanjut.", segs[2].Detail)
}

func TestSegments_TruncatesLongExcerpts(t *testing.T) {
	long := strings.Repeat("a", 500)
	segs := Segments(history(long), long)
	assert.True(t, strings.HasSuffix(segs[0].Detail, "…"))
	assert.True(t, strings.HasSuffix(segs[1].Detail, "…"))
	assert.LessOrEqual(t, len([]rune(segs[1].Detail)), 140)
}
