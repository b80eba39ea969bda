// Package wer scores transcription hypotheses against reference lyrics
// using word and character error rates.
package wer

import (
	"errors"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ErrEmptyReference is returned when the reference text contains no words.
var ErrEmptyReference = errors.New("reference text is empty")

// Word computes the word error rate of hypothesis against reference:
// (substitutions + insertions + deletions) / reference word count, using
// unit-cost Levenshtein alignment over whitespace-separated, lowercased
// word tokens. The result is never negative and exceeds 1.0 when
// insertions dominate. An empty reference cannot be scored and yields
// ErrEmptyReference.
func Word(reference, hypothesis string) (float64, error) {
	refWords := Tokenize(reference)
	if len(refWords) == 0 {
		return 0, ErrEmptyReference
	}

	hypWords := Tokenize(hypothesis)
	if len(hypWords) == 0 {
		return 1.0, nil
	}

	refSeq, hypSeq := internWords(refWords, hypWords)
	distance := levenshtein.DistanceForStrings(refSeq, hypSeq, levenshtein.DefaultOptionsWithSub)
	return float64(distance) / float64(len(refWords)), nil
}

// Character computes the character error rate over runes of the
// normalized texts. Useful for languages where whitespace tokenization
// underestimates accuracy.
func Character(reference, hypothesis string) (float64, error) {
	refRunes := []rune(normalize(reference))
	if len(refRunes) == 0 {
		return 0, ErrEmptyReference
	}

	hypRunes := []rune(normalize(hypothesis))
	if len(hypRunes) == 0 {
		return 1.0, nil
	}

	distance := levenshtein.DistanceForStrings(refRunes, hypRunes, levenshtein.DefaultOptionsWithSub)
	return float64(distance) / float64(len(refRunes)), nil
}

// Tokenize splits text into lowercased word tokens. Doubled newlines are
// collapsed first so stanza breaks in lyrics do not produce phantom
// tokens mismatching single-line hypotheses.
func Tokenize(text string) []string {
	return strings.Fields(normalize(text))
}

func normalize(text string) string {
	collapsed := strings.ReplaceAll(text, "\n\n", "\n")
	return strings.ToLower(strings.TrimSpace(collapsed))
}

// internWords maps each distinct word to a unique symbol so the
// rune-based edit distance aligns whole words. Only symbol identity
// matters; equal words share a symbol across both sequences.
func internWords(ref, hyp []string) (refSeq, hypSeq []rune) {
	symbols := make(map[string]rune, len(ref)+len(hyp))
	intern := func(words []string) []rune {
		seq := make([]rune, len(words))
		for i, word := range words {
			symbol, ok := symbols[word]
			if !ok {
				symbol = rune(len(symbols))
				symbols[word] = symbol
			}
			seq[i] = symbol
		}
		return seq
	}
	return intern(ref), intern(hyp)
}
