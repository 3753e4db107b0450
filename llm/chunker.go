// acloudcenter/livekit-alien-curator-demo/llm/chunker.go
package llm

import "strings"

// minChunkRunes keeps the chunker from flushing fragments like "Dr." or "2093."
// that merely look like sentence ends.
const minChunkRunes = 24

// SentenceChunker accumulates streamed completion deltas and emits complete
// sentences, so speech synthesis can start before the full reply exists.
type SentenceChunker struct {
	buf strings.Builder
}

// Feed appends a delta and returns any complete sentences ready to speak.
func (sc *SentenceChunker) Feed(delta string) []string {
	sc.buf.WriteString(delta)

	var out []string
	for {
		sentence, rest, ok := splitFirstSentence(sc.buf.String())
		if !ok {
			break
		}
		out = append(out, sentence)
		sc.buf.Reset()
		sc.buf.WriteString(rest)
	}
	return out
}

// Flush returns whatever text remains after the stream ends.
func (sc *SentenceChunker) Flush() string {
	rest := strings.TrimSpace(sc.buf.String())
	sc.buf.Reset()
	return rest
}

func splitFirstSentence(text string) (sentence, rest string, ok bool) {
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !isBoundary(runes[i+1]) {
			continue
		}
		candidate := strings.TrimSpace(string(runes[:i+1]))
		if len([]rune(candidate)) < minChunkRunes {
			continue
		}
		return candidate, strings.TrimLeft(string(runes[i+1:]), " \t\n"), true
	}
	return "", "", false
}

func isBoundary(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '"' || r == '\''
}
