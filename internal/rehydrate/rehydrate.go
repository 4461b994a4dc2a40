// Package rehydrate turns stored dialogue ID chains back into readable
// (speaker, text) turns using posts re-scraped from the source thread.
// Authors are anonymized to per-run letter labels; unresolvable IDs become
// null turns counted per dialogue.
package rehydrate

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/conversa-ai/mvarchive/internal/scraper"
)

// Turn is one resolved dialogue step, marshaled as [speaker_letter, text].
// A nil Turn marshals as null and marks an unresolvable ID.
type Turn []string

var wsRe = regexp.MustCompile(`\s+`)

// CleanText collapses every run of whitespace, newlines included, to a single
// space and trims the ends. Idempotent.
func CleanText(text string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(text, " "))
}

// Run resolves every dialogue chain in the input against the accumulated post
// map. Chain order is preserved exactly; each element resolves to a Turn or
// to null when the ID does not parse, the post is absent, or its cleaned text
// is empty. Chains that are not JSON arrays are skipped without an output
// entry. Misses never abort the run.
func Run(posts map[int]scraper.Post, in *Input) *Document {
	speakers := NewSpeakerMap()
	dialogues := make(map[string][]Turn, len(in.Dialogues))
	missing := make(map[string]MissStats, len(in.Dialogues))

	for did, rawChain := range in.Dialogues {
		chain, ok := decodeChain(rawChain)
		if !ok {
			continue
		}

		turns := make([]Turn, 0, len(chain))
		miss := 0
		for _, rawID := range chain {
			id, ok := parseID(rawID)
			if !ok {
				miss++
				turns = append(turns, nil)
				continue
			}
			post, found := posts[id]
			if !found {
				miss++
				turns = append(turns, nil)
				continue
			}

			// Assign the speaker before the empty-text check so label
			// order tracks chain order, not text availability.
			speaker := speakers.Assign(post.Author)

			text := CleanText(post.Text)
			if text == "" {
				miss++
				turns = append(turns, nil)
				continue
			}
			turns = append(turns, Turn{speaker, text})
		}

		dialogues[did] = turns
		missing[did] = MissStats{NTurns: len(chain), NMissing: miss}
	}

	return newDocument(in, dialogues, missing)
}

// decodeChain accepts only JSON arrays; anything else, null included, marks
// the dialogue malformed.
func decodeChain(raw json.RawMessage) ([]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	chain, ok := v.([]any)
	return chain, ok
}

// parseID coerces a chain element to a post number: integers directly,
// numeric strings after trimming, fractional numbers by truncation.
func parseID(v any) (int, bool) {
	switch id := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(id.String(), 10, 64); err == nil {
			return int(n), true
		}
		if f, err := id.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
