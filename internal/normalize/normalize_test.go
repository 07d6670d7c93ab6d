package normalize

import (
	"testing"

	"github.com/fashbot/fashbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionText_KnownShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"openai chat", `{"choices":[{"message":{"content":"halo"}}]}`, "halo"},
		{"legacy completions", `{"choices":[{"text":"halo"}]}`, "halo"},
		{"anthropic complete", `{"completion":" halo "}`, "halo"},
		{"bare text", `{"text":"halo"}`, "halo"},
		{"result field", `{"result":"halo"}`, "halo"},
		{"fal output text", `{"output":[{"text":"halo"}]}`, "halo"},
		{"fal output url", `{"output":[{"url":"https://cdn.example.com/a.png"}]}`, "https://cdn.example.com/a.png"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := CompletionText([]byte(c.body))
			require.True(t, ok)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestCompletionText_NoContent(t *testing.T) {
	for _, body := range []string{`{}`, `{"choices":[]}`, `{"text":"   "}`, `not json`} {
		_, ok := CompletionText([]byte(body))
		assert.False(t, ok, "body %q", body)
	}
}

func TestGeminiText_JoinsParts(t *testing.T) {
	body := `{"candidates":[{"content":{"parts":[{"text":"satu"},{"text":"dua"}]}}]}`
	got, ok := GeminiText([]byte(body))
	require.True(t, ok)
	assert.Equal(t, "satu\ndua", got)
}

func TestGeminiText_EmptyCandidates(t *testing.T) {
	_, ok := GeminiText([]byte(`{"candidates":[]}`))
	assert.False(t, ok)
}

func TestFirstGeminiPart_InlineData(t *testing.T) {
	body := `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"Zm9v"}}]}}]}`
	part, ok := FirstGeminiPart([]byte(body))
	require.True(t, ok)
	require.NotNil(t, part.InlineData)
	assert.Equal(t, "image/png", part.InlineData.MimeType)
	assert.Equal(t, "Zm9v", part.InlineData.Data)
}

func TestIsImagePayload(t *testing.T) {
	assert.True(t, IsImagePayload("data:image/png;base64,Zm9v"))
	assert.True(t, IsImagePayload("https://images.example.com/cat.PNG"))
	assert.True(t, IsImagePayload("  https://x.example/a.webp?sig=1  "))
	assert.False(t, IsImagePayload("Maaf, saya tidak bisa membuat gambar."))
	assert.False(t, IsImagePayload("https://example.com/page.html"))
	assert.False(t, IsImagePayload(""))
}

func TestIsVideoPayload(t *testing.T) {
	assert.True(t, IsVideoPayload("data:video/mp4;base64,Zm9v"))
	assert.True(t, IsVideoPayload("https://cdn.example.com/clip.mp4"))
	assert.False(t, IsVideoPayload("https://cdn.example.com/a.png"))
}

func TestIsBareBase64(t *testing.T) {
	assert.True(t, IsBareBase64("aGVsbG8="))
	assert.False(t, IsBareBase64("data:image/png;base64,aGVsbG8="))
	assert.False(t, IsBareBase64("hello world"))
	assert.False(t, IsBareBase64(""))
}

func TestCanonicalResultConstructors(t *testing.T) {
	text := TextResult("  jawaban  ")
	assert.Equal(t, models.KindText, text.Kind)
	assert.Equal(t, "jawaban", text.Value)

	img := ImageResult("data:image/png;base64,Zm9v", "image/png")
	assert.Equal(t, models.KindImageDataURI, img.Kind)
	assert.Equal(t, "image/png", img.MimeType)

	vid := VideoResult("https://cdn.example.com/clip.mp4")
	assert.Equal(t, models.KindVideoURI, vid.Kind)
	assert.Equal(t, "https://cdn.example.com/clip.mp4", vid.Value)
}

func TestDataURI_Base64RoundTrip(t *testing.T) {
	original := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff}
	uri := BuildDataURI("image/png", original)

	d, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", d.MimeType)
	assert.True(t, d.Base64)

	raw, err := d.Bytes()
	require.NoError(t, err)
	assert.Equal(t, original, raw, "decoded bytes must match the encoded input exactly")
}

func TestDataURI_URIEncodedPayload(t *testing.T) {
	d, err := ParseDataURI("data:image/svg+xml;charset=utf-8,%3Csvg%3E%3C%2Fsvg%3E")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", d.MimeType)
	assert.False(t, d.Base64)

	raw, err := d.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "<svg></svg>", string(raw))
}

func TestParseDataURI_Malformed(t *testing.T) {
	_, err := ParseDataURI("https://example.com/a.png")
	assert.Error(t, err)
	_, err = ParseDataURI("data:image/png")
	assert.Error(t, err)
}
