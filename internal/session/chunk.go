package session

import (
	"strings"
)

// fileDiff is one file's hunk within a unified diff, kept whole so
// chunking never splits mid-hunk.
type fileDiff struct {
	text   string
	tokens int
}

// Chunk is one unit of emitted diff content.
type Chunk struct {
	Index int
	Text  string
}

// estimateTokens matches spec.md §4.14 step 7: ceil(chars/4).
func estimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + 3) / 4
}

func splitByFile(diffText string) []fileDiff {
	lines := strings.Split(diffText, "\n")
	var files []fileDiff
	var current strings.Builder
	started := false

	flush := func() {
		if started {
			text := current.String()
			files = append(files, fileDiff{text: text, tokens: estimateTokens(text)})
		}
		current.Reset()
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			started = true
		}
		if started {
			current.WriteString(line)
			current.WriteByte('\n')
		}
	}
	flush()
	return files
}

// ChunkDiff packs per-file diffs into chunks bounded by both a token
// budget and a max-files-per-chunk limit, numbered 1..N with stable
// per-file ordering. A single file whose own diff exceeds the token
// budget becomes its own chunk (spec.md §4.14 step 7).
func ChunkDiff(diffText string, budgets Budgets) []Chunk {
	files := splitByFile(diffText)
	if len(files) == 0 {
		return nil
	}

	maxFiles := budgets.MaxFilesPerChunk
	if maxFiles <= 0 {
		maxFiles = 1
	}
	tokenBudget := budgets.TokenBudget
	if tokenBudget <= 0 {
		tokenBudget = estimateTokens(diffText) + 1
	}

	var chunks []Chunk
	var currentFiles []fileDiff
	currentTokens := 0

	flushChunk := func() {
		if len(currentFiles) == 0 {
			return
		}
		var sb strings.Builder
		for _, f := range currentFiles {
			sb.WriteString(f.text)
		}
		chunks = append(chunks, Chunk{Index: len(chunks) + 1, Text: sb.String()})
		currentFiles = nil
		currentTokens = 0
	}

	for _, f := range files {
		if f.tokens > tokenBudget {
			flushChunk()
			chunks = append(chunks, Chunk{Index: len(chunks) + 1, Text: f.text})
			continue
		}
		if len(currentFiles) > 0 && (currentTokens+f.tokens > tokenBudget || len(currentFiles) >= maxFiles) {
			flushChunk()
		}
		currentFiles = append(currentFiles, f)
		currentTokens += f.tokens
	}
	flushChunk()
	return chunks
}

func totalTokens(chunks []Chunk) int {
	total := 0
	for _, c := range chunks {
		total += estimateTokens(c.Text)
	}
	return total
}
