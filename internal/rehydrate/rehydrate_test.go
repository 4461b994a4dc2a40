package rehydrate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conversa-ai/mvarchive/internal/scraper"
)

func inputWithDialogues(t *testing.T, dialogues string) *Input {
	t.Helper()
	in, err := ParseInput([]byte(`{
		"thread_url": "https://www.mediavida.com/foro/feda/hilo-123",
		"thread_id": 123,
		"snapshot_date": "2023-05-01",
		"dialogues": ` + dialogues + `
	}`))
	require.NoError(t, err)
	return in
}

func TestRunResolvesTurnsInChainOrder(t *testing.T) {
	posts := map[int]scraper.Post{
		1: {Author: "alice", Text: "hola"},
		2: {Author: "bob", Text: "buenas"},
		3: {Author: "alice", Text: "que tal"},
	}
	in := inputWithDialogues(t, `{"d0": [1, 2, 3, 2]}`)

	doc := Run(posts, in)

	require.Equal(t, []Turn{
		{"A", "hola"},
		{"B", "buenas"},
		{"A", "que tal"},
		{"B", "buenas"},
	}, doc.Dialogues["d0"])
	require.Equal(t, MissStats{NTurns: 4, NMissing: 0}, doc.Missing["d0"])
}

func TestRunNullTurnConditions(t *testing.T) {
	posts := map[int]scraper.Post{
		5: {Author: "alice", Text: "hello"},
	}
	in := inputWithDialogues(t, `{"d0": [5, 6, "x"]}`)

	doc := Run(posts, in)

	require.Equal(t, []Turn{{"A", "hello"}, nil, nil}, doc.Dialogues["d0"])
	require.Equal(t, MissStats{NTurns: 3, NMissing: 2}, doc.Missing["d0"])
}

func TestRunEmptyCleanedTextIsAMiss(t *testing.T) {
	posts := map[int]scraper.Post{
		1: {Author: "alice", Text: "  \n\t  "},
		2: {Author: "bob", Text: "algo"},
	}
	in := inputWithDialogues(t, `{"d0": [1, 2]}`)

	doc := Run(posts, in)

	require.Equal(t, []Turn{nil, {"B", "algo"}}, doc.Dialogues["d0"])
	require.Equal(t, MissStats{NTurns: 2, NMissing: 1}, doc.Missing["d0"])
}

func TestRunSkipsNonListChains(t *testing.T) {
	posts := map[int]scraper.Post{1: {Author: "alice", Text: "hola"}}
	in := inputWithDialogues(t, `{
		"good": [1],
		"str": "not a chain",
		"num": 42,
		"obj": {"a": 1},
		"nil": null
	}`)

	doc := Run(posts, in)

	require.Len(t, doc.Dialogues, 1)
	require.Contains(t, doc.Dialogues, "good")
	require.Len(t, doc.Missing, 1)
}

func TestRunAcceptsIntegerLikeIDs(t *testing.T) {
	posts := map[int]scraper.Post{
		7: {Author: "alice", Text: "siete"},
		8: {Author: "bob", Text: "ocho"},
	}
	in := inputWithDialogues(t, `{"d0": ["7", " 8 ", 7.9, true]}`)

	doc := Run(posts, in)

	require.Equal(t, []Turn{
		{"A", "siete"},
		{"B", "ocho"},
		{"A", "siete"},
		nil,
	}, doc.Dialogues["d0"])
	require.Equal(t, MissStats{NTurns: 4, NMissing: 1}, doc.Missing["d0"])
}

func TestRunNeverEmitsRawAuthors(t *testing.T) {
	posts := map[int]scraper.Post{
		1: {Author: "realuser99", Text: "contenido"},
	}
	in := inputWithDialogues(t, `{"d0": [1]}`)

	doc := Run(posts, in)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NotContains(t, string(data), "realuser99")
}

func TestCleanTextIsIdempotent(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"hola",
		"  hola   mundo  ",
		"linea\nuno\n\nlinea   dos",
		"tab\there\r\nand\rthere",
		"acentuación  y espacios",
	}
	for _, s := range cases {
		once := CleanText(s)
		require.Equal(t, once, CleanText(once), "input %q", s)
	}
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	require.Equal(t, "hola mundo", CleanText("  hola \n\n\t mundo  "))
}

func TestDocumentWritePreservesNonASCII(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	posts := map[int]scraper.Post{1: {Author: "alice", Text: "¿qué hacéis? <br> & más"}}
	in := inputWithDialogues(t, `{"d0": [1]}`)
	doc := Run(posts, in)

	require.NoError(t, doc.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "¿qué hacéis?")
	require.Contains(t, string(data), "<br>")
	require.NotContains(t, string(data), `\u003c`)

	var round map[string]any
	require.NoError(t, json.Unmarshal(data, &round))
	require.Equal(t, "mediavida_dialogue_text_v2_tuples", round["format"])
	require.Equal(t, "mediavida", round["source"])
	require.Equal(t, "2023-05-01", round["snapshot_date"])
	require.NotEmpty(t, round["rehydrated_at"])
	require.NotEmpty(t, round["notice"])
}
