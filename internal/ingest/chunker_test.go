package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkFlushesOnHeadings(t *testing.T) {
	markdown := `# Chapter 1

Intro paragraph about robots.

## Actuators

Actuators move joints.

## Sensors

Sensors perceive the world.`

	chunks, err := NewChunker().Chunk(context.Background(), markdown)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	require.True(t, strings.HasPrefix(chunks[0].Content, "Heading: Chapter 1\n"))
	require.Contains(t, chunks[0].Content, "Intro paragraph about robots.")
	require.True(t, strings.HasPrefix(chunks[1].Content, "Heading: Actuators\n"))
	require.Contains(t, chunks[1].Content, "Actuators move joints.")
	require.True(t, strings.HasPrefix(chunks[2].Content, "Heading: Sensors\n"))

	for i, chunk := range chunks {
		require.Equal(t, i, chunk.Position)
		require.Greater(t, chunk.TokenCount, 0)
	}
}

func TestChunkKeepsSmallCodeWithText(t *testing.T) {
	markdown := "## Control loop\n\nA PID controller:\n\n```python\nout = kp*e\n```\n"

	chunks, err := NewChunker().Chunk(context.Background(), markdown)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0].Content, "A PID controller:")
	require.Contains(t, chunks[0].Content, "```python")
	require.Contains(t, chunks[0].Content, "out = kp*e")
}

func TestChunkSplitsOversizedText(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# Long chapter\n\n")
	for i := 0; i < 40; i++ {
		sb.WriteString(strings.Repeat("robotics kinematics dynamics control planning ", 5))
		sb.WriteString("\n\n")
	}
	chunks, err := NewChunker().Chunk(context.Background(), sb.String())
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.Contains(t, chunk.Content, "Heading: Long chapter")
	}
}

func TestChunkEmptyDocument(t *testing.T) {
	chunks, err := NewChunker().Chunk(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestEstimateTokens(t *testing.T) {
	require.Equal(t, 0, estimateTokens(""))
	require.Equal(t, 3, estimateTokens("one two three"))
	require.Equal(t, 1, estimateTokens("   "))
}
