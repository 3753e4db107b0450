package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentenceChunker(t *testing.T) {
	var sc SentenceChunker

	var sentences []string
	for _, delta := range []string{
		"The cranium holds 120 trillion syn",
		"thetic synapses. Visitors often study",
		" the neural pathways for hours. It",
	} {
		sentences = append(sentences, sc.Feed(delta)...)
	}

	assert.Equal(t, []string{
		"The cranium holds 120 trillion synthetic synapses.",
		"Visitors often study the neural pathways for hours.",
	}, sentences)
	assert.Equal(t, "It", sc.Flush())
	assert.Empty(t, sc.Flush())
}

func TestSentenceChunker_ShortFragmentsHeld(t *testing.T) {
	var sc SentenceChunker

	assert.Empty(t, sc.Feed("Dr. "))
	got := sc.Feed("Hamilton wove the rope memory by hand. ")
	assert.Equal(t, []string{"Dr. Hamilton wove the rope memory by hand."}, got)
}

func TestSentenceChunker_QuestionsAndExclamations(t *testing.T) {
	var sc SentenceChunker

	got := sc.Feed("Could a synthetic mind dream? Nobody can say for certain! ")
	assert.Equal(t, []string{
		"Could a synthetic mind dream?",
		"Nobody can say for certain!",
	}, got)
}

func TestSentenceChunker_DecimalNotSplit(t *testing.T) {
	var sc SentenceChunker

	got := sc.Feed("The core processes around 2.5 zettabytes of telemetry every cycle. ")
	assert.Equal(t, []string{"The core processes around 2.5 zettabytes of telemetry every cycle."}, got)
}
