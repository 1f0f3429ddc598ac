package ingest

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/model"
)

const (
	maxChunkTokens = 400
	mergeCodeLimit = 400
)

// Chunker splits textbook markdown into retrieval-sized chunks.
// Chapter and section headings flush the running chunk so a chunk never
// straddles two sections; the active heading is prefixed to every chunk
// it covers.
type Chunker struct{}

func NewChunker() *Chunker {
	return &Chunker{}
}

func (c *Chunker) Chunk(ctx context.Context, markdown string) ([]model.Chunk, error) {
	logger := logutil.GetLogger(ctx)
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	var chunks []model.Chunk
	var currentChunk []string
	var currentTokens int
	var currentHeading string
	position := 0

	flush := func() {
		if len(currentChunk) == 0 {
			return
		}
		content := strings.Join(currentChunk, "\n\n")
		if currentHeading != "" {
			content = "Heading: " + currentHeading + "\n" + content
		}
		tokenCount := estimateTokens(content)
		chunks = append(chunks, model.Chunk{
			Content:    content,
			TokenCount: tokenCount,
			Position:   position,
		})
		currentChunk = nil
		currentTokens = 0
		position++
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level == 1 || n.Level == 2 {
				heading := string(n.Text(reader.Source()))
				flush()
				currentHeading = heading
			} else {
				txt := string(n.Text(reader.Source()))
				currentChunk = append(currentChunk, txt)
				currentTokens += estimateTokens(txt)
			}
		case *ast.FencedCodeBlock:
			lang := string(n.Language(reader.Source()))
			var code strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				code.Write(line.Value(reader.Source()))
			}
			fenced := "```" + lang + "\n" + code.String() + "\n```"
			tokens := estimateTokens(fenced)
			// Small code blocks stay with the surrounding text, big ones
			// become their own chunk.
			if currentTokens > 0 && currentTokens+tokens <= mergeCodeLimit {
				currentChunk = append(currentChunk, fenced)
				currentTokens += tokens
			} else {
				flush()
				currentChunk = append(currentChunk, fenced)
				currentTokens = tokens
				flush()
			}
		default:
			txt := extractText(n, reader.Source())
			if txt == "" {
				continue
			}
			tokens := estimateTokens(txt)
			if currentTokens+tokens > maxChunkTokens {
				flush()
			}
			currentChunk = append(currentChunk, txt)
			currentTokens += tokens
		}
	}
	flush()
	logger.Debug("chunking completed", zap.Int("total_chunks", len(chunks)))
	return chunks, nil
}

func estimateTokens(text string) int {
	// Rough heuristic: one token per word for latin text, one per rune for CJK.
	count := 0
	for _, r := range text {
		if r > 127 {
			count++
		}
	}
	count += len(strings.Fields(text))
	if count == 0 && len(text) > 0 {
		return 1
	}
	return count
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Type() == ast.TypeBlock || node.Type() == ast.TypeInline {
			if node.Kind() == ast.KindText {
				sb.Write(node.(*ast.Text).Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
