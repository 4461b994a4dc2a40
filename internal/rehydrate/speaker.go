package rehydrate

import "strings"

// unknownSpeaker stands in for posts with no recoverable author, so every
// blank byline collapses onto one label.
const unknownSpeaker = "__unknown__"

// SpeakerMap assigns raw author tokens stable anonymous labels in order of
// first appearance: A..Z, then AA, AB and so on. It only grows, and lives for
// a single rehydration run; raw tokens never leave it.
type SpeakerMap struct {
	labels map[string]string
}

func NewSpeakerMap() *SpeakerMap {
	return &SpeakerMap{labels: make(map[string]string)}
}

// Assign returns the label for a raw author token, minting the next one in
// sequence on first sight.
func (m *SpeakerMap) Assign(rawAuthor string) string {
	token := strings.TrimSpace(rawAuthor)
	if token == "" {
		token = unknownSpeaker
	}
	if label, ok := m.labels[token]; ok {
		return label
	}
	label := indexToLetters(len(m.labels))
	m.labels[token] = label
	return label
}

// Len reports how many distinct speakers have been assigned.
func (m *SpeakerMap) Len() int {
	return len(m.labels)
}

// indexToLetters is the bijective base-26 encoding: 0->A, 25->Z, 26->AA.
func indexToLetters(i int) string {
	var letters []byte
	for {
		letters = append(letters, byte('A'+i%26))
		i /= 26
		if i == 0 {
			break
		}
		i--
	}
	for l, r := 0, len(letters)-1; l < r; l, r = l+1, r-1 {
		letters[l], letters[r] = letters[r], letters[l]
	}
	return string(letters)
}
