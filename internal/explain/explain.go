// Package explain derives the reasoning trace shown next to a chat answer.
// It is a pure function of the conversation tail and the produced text: no
// provider call, always three segments, identical output for identical input.
package explain

import (
	"regexp"
	"strings"

	"github.com/fashbot/fashbot/pkg/models"
)

var blankLines = regexp.MustCompile(`\n{2,}`)

// Segments builds the three-part explanation: a summary of the last user
// turns, the first paragraph of the answer as analysis, and the second as
// the execution plan. Empty excerpts fall back to generic phrasing.
func Segments(history []models.ConversationMessage, answer string) []models.ExplanationSegment {
	var userTail []string
	for _, m := range history {
		if m.Role == models.RoleUser {
			userTail = append(userTail, m.Content)
		}
	}
	if len(userTail) > 2 {
		userTail = userTail[len(userTail)-2:]
	}
	contextPreview := strings.Join(userTail, " • ")

	blocks := blankLines.Split(answer, -1)

	contextDetail := "Menyiapkan konteks percakapan awal."
	if contextPreview != "" {
		contextDetail = "Menafsirkan konteks terbaru: " + truncate(contextPreview, 120)
	}

	analysisDetail := "Mengurai permintaan menjadi sub-tugas terukur."
	if len(blocks) > 0 && strings.TrimSpace(blocks[0]) != "" {
		analysisDetail = truncate(blocks[0], 140)
	}

	deliveryDetail := "Menghasilkan output terstruktur beserta langkah tindak lanjut."
	if len(blocks) > 1 && strings.TrimSpace(blocks[1]) != "" {
		deliveryDetail = truncate(blocks[1], 140)
	}

	return []models.ExplanationSegment{
		{ID: "context", Label: "Kontekstualisasi", Detail: contextDetail, Confidence: 0.82},
		{ID: "analysis", Label: "Analisis Strategis", Detail: analysisDetail, Confidence: 0.87},
		{ID: "delivery", Label: "Rencana Eksekusi", Detail: deliveryDetail, Confidence: 0.90},
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
