package processor_test

import (
	"strings"
	"testing"

	"github.com/arvandy/skillpipe/internal/errs"
	"github.com/arvandy/skillpipe/pkg/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{"short text single chunk", "hello world", 100, 10},
		{"exact multiple of step", strings.Repeat("abcdefgh", 8), 16, 4},
		{"uneven final chunk", strings.Repeat("x y z ", 40), 25, 7},
		{"no overlap", "the quick brown fox jumps over the lazy dog", 10, 0},
		{"unicode text", strings.Repeat("héllo wörld ", 20), 17, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := processor.NewWithConfig(processor.ProcessorConfig{
				ChunkSize:    tt.size,
				ChunkOverlap: tt.overlap,
			})
			require.NoError(t, err)

			chunks := p.Chunk(tt.text)
			require.NotEmpty(t, chunks)

			// Dropping each successor's overlapping prefix must rebuild the
			// original text exactly.
			var rebuilt strings.Builder
			rebuilt.WriteString(chunks[0])
			for _, chunk := range chunks[1:] {
				runes := []rune(chunk)
				if len(runes) > tt.overlap {
					rebuilt.WriteString(string(runes[tt.overlap:]))
				}
			}
			assert.Equal(t, tt.text, rebuilt.String())
		})
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	p, err := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 10, ChunkOverlap: 2})
	require.NoError(t, err)

	assert.Empty(t, p.Chunk(""))
}

func TestChunk_ChunkBounds(t *testing.T) {
	p, err := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 10, ChunkOverlap: 3})
	require.NoError(t, err)

	text := strings.Repeat("a", 35)
	chunks := p.Chunk(text)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 10)
	}
	assert.Equal(t, "aaaaaaaaaa", chunks[0])
}

func TestChunk_WordUnit(t *testing.T) {
	p, err := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    4,
		ChunkOverlap: 1,
		Unit:         processor.UnitWord,
	})
	require.NoError(t, err)

	chunks := p.Chunk("one two three four five six seven")
	require.Len(t, chunks, 2)
	assert.Equal(t, "one two three four", chunks[0])
	assert.Equal(t, "four five six seven", chunks[1])
}

func TestNewWithConfig_InvalidOverlap(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 15},
		{"negative overlap", 10, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := processor.NewWithConfig(processor.ProcessorConfig{
				ChunkSize:    tt.size,
				ChunkOverlap: tt.overlap,
			})
			require.Error(t, err)

			var cfgErr *errs.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestNewWithConfig_InvalidUnit(t *testing.T) {
	_, err := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize: 10,
		Unit:      "sentence",
	})

	var cfgErr *errs.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCleanText(t *testing.T) {
	p, err := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 100, ChunkOverlap: 0})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"image comments removed", "before <!-- image --> after", "before after"},
		{"bullets normalized", "• Python\n• Go", "- Python\n- Go"},
		{"spaces collapsed", "too    many     spaces", "too many spaces"},
		{"blank lines collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing space before newline", "line   \nnext", "line\nnext"},
		{"html stripped", "<p>Hello <b>world</b></p>", "Hello world"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CleanText(tt.in))
		})
	}
}

func TestProcess_CleansAndChunks(t *testing.T) {
	p, err := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 20, ChunkOverlap: 5})
	require.NoError(t, err)

	chunks := p.Process("some   text <!-- image --> with  artifacts that is long enough to chunk")
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.NotContains(t, chunk, "<!--")
		assert.NotContains(t, chunk, "  ")
	}
}
