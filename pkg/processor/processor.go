package processor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/arvandy/skillpipe/internal/errs"
)

// UnitChar and UnitWord select the chunk window unit.
const (
	UnitChar = "char"
	UnitWord = "word"
)

type ProcessorConfig struct {
	ChunkSize    int
	ChunkOverlap int
	Unit         string
}

// Processor cleans extracted document text and splits it into overlapping
// fixed-size windows. It is a pure transformation: the same input and config
// always produce the same chunk sequence.
type Processor struct {
	config ProcessorConfig
}

var (
	imageCommentRe  = regexp.MustCompile(`(?i)<!--\s*image\s*-->`)
	nonPrintableRe  = regexp.MustCompile("[^\x09\x0A\x0D\x20-\x7E]")
	multiSpaceRe    = regexp.MustCompile(`[ ]{2,}`)
	multiNewlineRe  = regexp.MustCompile(`\n{3,}`)
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
	htmlTagRe       = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
)

func NewWithConfig(config ProcessorConfig) (*Processor, error) {
	if config.ChunkSize == 0 {
		config.ChunkSize = 13000
		if config.ChunkOverlap == 0 {
			config.ChunkOverlap = 400
		}
	}
	if config.Unit == "" {
		config.Unit = UnitChar
	}

	if config.ChunkSize < 1 {
		return nil, &errs.ConfigError{Field: "chunking.size", Message: "size must be positive"}
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return nil, &errs.ConfigError{Field: "chunking.overlap", Message: "overlap must be non-negative and less than size"}
	}
	if config.Unit != UnitChar && config.Unit != UnitWord {
		return nil, &errs.ConfigError{Field: "chunking.unit", Message: "unit must be \"char\" or \"word\""}
	}

	return &Processor{config: config}, nil
}

// CleanText strips the markdown-ish artifacts the layout extractor leaves
// behind: image placeholders, bullet glyphs, non-printable characters, runs
// of spaces and blank lines. Embedded HTML fragments are reduced to their
// text content first.
func (p *Processor) CleanText(text string) string {
	if text == "" {
		return ""
	}

	if htmlTagRe.MatchString(text) {
		text = stripHTML(text)
	}

	text = imageCommentRe.ReplaceAllString(text, "")
	replacer := strings.NewReplacer(
		"�", " ",
		"·", "- ",
		"•", "- ",
		"○", "- ",
	)
	text = replacer.Replace(text)

	text = nonPrintableRe.ReplaceAllString(text, " ")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	text = trailingSpaceRe.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}

// Chunk splits text into successive windows of ChunkSize units, each window
// starting ChunkSize-ChunkOverlap units after the previous one. The final
// window may be shorter. Empty input yields an empty slice.
func (p *Processor) Chunk(text string) []string {
	if text == "" {
		return []string{}
	}

	if p.config.Unit == UnitWord {
		return p.chunkUnits(strings.Fields(text))
	}
	return p.chunkRunes([]rune(text))
}

func (p *Processor) chunkRunes(runes []rune) []string {
	var chunks []string
	step := p.config.ChunkSize - p.config.ChunkOverlap

	for start := 0; start < len(runes); start += step {
		end := start + p.config.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}

func (p *Processor) chunkUnits(words []string) []string {
	var chunks []string
	step := p.config.ChunkSize - p.config.ChunkOverlap

	for start := 0; start < len(words); start += step {
		end := start + p.config.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}

	return chunks
}

// Process cleans and chunks in one pass.
func (p *Processor) Process(text string) []string {
	return p.Chunk(p.CleanText(text))
}

func stripHTML(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return htmlTagRe.ReplaceAllString(text, " ")
	}
	return doc.Text()
}
