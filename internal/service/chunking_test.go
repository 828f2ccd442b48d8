package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stroytech/stroybot/internal/domain"
)

func TestChunkConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ChunkConfig
		wantErr bool
	}{
		{name: "default is valid", cfg: DefaultChunkConfig(), wantErr: false},
		{name: "zero size", cfg: ChunkConfig{Size: 0, Overlap: 0}, wantErr: true},
		{name: "negative overlap", cfg: ChunkConfig{Size: 100, Overlap: -1}, wantErr: true},
		{name: "overlap half of size", cfg: ChunkConfig{Size: 100, Overlap: 50}, wantErr: true},
		{name: "overlap just under half", cfg: ChunkConfig{Size: 100, Overlap: 49}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitTextEmpty(t *testing.T) {
	assert.Nil(t, SplitText("", DefaultChunkConfig()))
	assert.Nil(t, SplitText("   \n\t  ", DefaultChunkConfig()))
}

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("  Бетон М300 с доставкой.  ", DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "Бетон М300 с доставкой.", chunks[0])
}

func TestSplitTextPrefersParagraphBreak(t *testing.T) {
	first := strings.Repeat("а", 60) + "."
	second := strings.Repeat("б", 100)
	text := first + "\n\n" + second

	chunks := SplitText(text, ChunkConfig{Size: 80, Overlap: 10})

	require.GreaterOrEqual(t, len(chunks), 2)
	// The cut lands on the paragraph break even though a later sentence
	// boundary would fill the window more tightly.
	assert.Equal(t, first+"\n\n", chunks[0])
}

func TestSplitTextPrefersSentenceOverWord(t *testing.T) {
	text := "Первое предложение про цемент. Второе предложение про щебень и песок для фундамента"

	chunks := SplitText(text, ChunkConfig{Size: 50, Overlap: 5})

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], "цемент."),
		"first chunk should end at the sentence boundary, got %q", chunks[0])
}

func TestSplitTextHardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 250)

	chunks := SplitText(text, ChunkConfig{Size: 100, Overlap: 10})

	require.Len(t, chunks, 3)
	assert.Equal(t, 100, len([]rune(chunks[0])))
	assert.Equal(t, 100, len([]rune(chunks[1])))
}

func TestSplitTextOverlapReconstructsInput(t *testing.T) {
	text := "Бетон товарный М300 применяется для фундаментов и перекрытий. " +
		"Щебень гранитный фракции 5-20 используется в производстве бетона. " +
		"Песок речной подходит для кладочных растворов и стяжки пола. " +
		"Гравий применяется при устройстве дренажных систем и отсыпке дорог. " +
		"Цемент М500 поставляется в мешках по 50 килограммов."
	cfg := ChunkConfig{Size: 80, Overlap: 15}

	chunks := SplitText(text, cfg)
	require.GreaterOrEqual(t, len(chunks), 3)

	// Every chunk after the first starts with the tail of its predecessor;
	// dropping that shared prefix rebuilds the original text exactly.
	var b strings.Builder
	b.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		require.GreaterOrEqual(t, len(cur), cfg.Overlap)
		assert.Equal(t, string(prev[len(prev)-cfg.Overlap:]), string(cur[:cfg.Overlap]))
		b.WriteString(string(cur[cfg.Overlap:]))
	}
	assert.Equal(t, text, b.String())
}

func TestSplitTextDeterministic(t *testing.T) {
	text := strings.Repeat("Доставка бетона по Москве и области. ", 40)
	cfg := DefaultChunkConfig()

	first := SplitText(text, cfg)
	second := SplitText(text, cfg)

	assert.Equal(t, first, second)
}

func TestSplitTextRespectsSizeLimit(t *testing.T) {
	text := strings.Repeat("Песок щебень гравий бетон цемент керамзит. ", 60)
	cfg := ChunkConfig{Size: 120, Overlap: 20}

	for _, chunk := range SplitText(text, cfg) {
		assert.LessOrEqual(t, len([]rune(chunk)), cfg.Size)
	}
}
