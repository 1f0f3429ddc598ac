package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/ai"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/model"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/vectorstore"
)

// Stage identifies which upstream call failed during a query.
type Stage string

const (
	StageEmbed    Stage = "embed"
	StageSearch   Stage = "search"
	StageGenerate Stage = "generate"
)

// ProviderError wraps an upstream failure with the pipeline stage it came
// from, so the HTTP boundary can report it without string matching.
type ProviderError struct {
	Stage Stage
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

const notFoundAnswer = "I couldn't find relevant information in the textbook."

const corpusPromptTemplate = `You are a knowledgeable teaching assistant for the "%s" textbook.

RELEVANT TEXTBOOK EXCERPTS:
%s

STUDENT QUESTION: %s

INSTRUCTIONS (CRITICAL):
1. Answer STRICTLY based on the textbook excerpts above
2. If information is NOT in the excerpts, say: "This topic is not covered in the available textbook chapters."
3. Keep answers concise and technical
4. Reference specific chapters/sources when possible
5. Use markdown formatting for readability

ASSISTANT'S ANSWER:`

const selectionPromptTemplate = `You are a helpful assistant. Answer based STRICTLY on the following selected text:

SELECTED TEXT:
%s

QUESTION: %s

RULES:
1. Answer ONLY from the selected text above
2. If answer is NOT in selected text, say: "The selected text does not contain this information."
3. Do not use any external knowledge
4. Be concise and accurate

ANSWER:`

// RAGOptions are the retrieval tunables, loaded once at startup.
type RAGOptions struct {
	SimilarityThreshold float64
	MaxResults          int
	Model               string
	Topic               string
}

// RAGService orchestrates embed -> search -> generate over the textbook
// corpus. It holds no per-request state beyond its configuration.
type RAGService struct {
	embedder  ai.IEmbedder
	index     vectorstore.Index
	generator ai.IGenerator
	opts      RAGOptions
}

func NewRAGService(embedder ai.IEmbedder, index vectorstore.Index, generator ai.IGenerator, opts RAGOptions) *RAGService {
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = 0.7
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = 5
	}
	return &RAGService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		opts:      opts,
	}
}

// QueryCorpus answers a question from the indexed textbook.
func (s *RAGService) QueryCorpus(ctx context.Context, query string) (*model.AnswerResponse, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("query", truncate(query, 50)))
	start := time.Now()

	vector, err := s.embedder.Embed(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		logger.Error("query embedding failed", zap.Error(err))
		return nil, &ProviderError{Stage: StageEmbed, Err: err}
	}
	logger.Debug("query embedding generated", zap.Duration("elapsed", time.Since(start)))

	hits, err := s.index.Search(ctx, vector, s.opts.MaxResults, s.opts.SimilarityThreshold)
	if err != nil {
		logger.Error("vector search failed", zap.Error(err))
		return nil, &ProviderError{Stage: StageSearch, Err: err}
	}

	if len(hits) == 0 {
		logger.Info("no chunks above threshold", zap.Float64("threshold", s.opts.SimilarityThreshold))
		return &model.AnswerResponse{
			Answer:       notFoundAnswer,
			Sources:      []string{},
			ChunksUsed:   0,
			Query:        query,
			ResponseTime: time.Since(start).Seconds(),
		}, nil
	}

	contextText, sources, used := buildContext(hits)
	logger.Debug("context assembled", zap.Int("chunks", used))

	prompt := fmt.Sprintf(corpusPromptTemplate, s.opts.Topic, contextText, query)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Error("answer generation failed", zap.Error(err))
		return nil, &ProviderError{Stage: StageGenerate, Err: err}
	}

	scores := make([]float64, 0, len(hits))
	for _, hit := range hits {
		scores = append(scores, hit.Score)
	}

	resp := &model.AnswerResponse{
		Answer:           answer,
		Sources:          sources,
		ChunksUsed:       used,
		SimilarityScores: scores,
		Query:            query,
		ResponseTime:     time.Since(start).Seconds(),
		Model:            s.opts.Model,
	}
	logger.Info("query answered",
		zap.Int("chunks_used", used),
		zap.Float64("response_time", resp.ResponseTime),
	)
	return resp, nil
}

// QuerySelection answers only from the text the user selected. It never
// touches the embedder or the vector index.
func (s *RAGService) QuerySelection(ctx context.Context, query string, selectedText string) (*model.SelectedTextResponse, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("query", truncate(query, 50)))
	start := time.Now()

	prompt := fmt.Sprintf(selectionPromptTemplate, selectedText, query)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Error("selection answer generation failed", zap.Error(err))
		return nil, &ProviderError{Stage: StageGenerate, Err: err}
	}

	return &model.SelectedTextResponse{
		Answer:             answer,
		Source:             "User-selected text",
		Query:              query,
		SelectedTextLength: len(selectedText),
		ResponseTime:       time.Since(start).Seconds(),
		Model:              s.opts.Model,
	}, nil
}

// buildContext formats each hit as a labeled block and joins them with a
// blank-line/---/blank-line separator. Hits without content are skipped,
// which is why chunks_used can be smaller than the score list.
func buildContext(hits []model.SearchHit) (string, []string, int) {
	blocks := make([]string, 0, len(hits))
	sources := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for i, hit := range hits {
		if hit.Content == "" {
			continue
		}
		filename := hit.Filename
		if filename == "" {
			filename = fmt.Sprintf("chunk_%d", i)
		}
		blocks = append(blocks, fmt.Sprintf("[Source: %s, Score: %.3f]\n%s", filename, hit.Score, hit.Content))
		if _, ok := seen[filename]; !ok {
			seen[filename] = struct{}{}
			sources = append(sources, filename)
		}
	}
	return strings.Join(blocks, "\n\n---\n\n"), sources, len(blocks)
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
