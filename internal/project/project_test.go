package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriscorrea/tally/internal/counter"
)

const novx = `<?xml version="1.0" encoding="utf-8"?>
<novx version="1.4" xml:lang="en-US">
<PROJECT>
<Title>The Late Train</Title>
</PROJECT>
<CHAPTERS>
<CHAPTER id="ch1">
<Title>Chapter One</Title>
<SECTION id="sc1">
<Title>Arrival</Title>
<Content><p>The train was late.</p>
<p><note>check timetable</note>Again—as always.</p></Content>
</SECTION>
<SECTION id="sc2">
<Title>Empty</Title>
<Content/>
</SECTION>
<SECTION id="sc3">
<Title>Untitled draft</Title>
</SECTION>
</CHAPTER>
<CHAPTER id="ch2">
<Title>Chapter Two</Title>
<SECTION id="sc4">
<Title>Departure</Title>
<Content><p>She <em>left</em>.</p><p><comment>too short?</comment>Goodbye.</p></Content>
</SECTION>
</CHAPTER>
</CHAPTERS>
</novx>
`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(novx))
	require.NoError(t, err)

	assert.Equal(t, "The Late Train", p.Title)
	require.Len(t, p.Sections, 4)

	ids := make([]string, len(p.Sections))
	for i, s := range p.Sections {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"sc1", "sc2", "sc3", "sc4"}, ids)

	assert.Equal(t, "Arrival", p.Sections[0].Title)
	assert.Contains(t, p.Sections[0].Content, "<p>The train was late.</p>")
	assert.Contains(t, p.Sections[0].Content, "<note>check timetable</note>")
	assert.NotContains(t, p.Sections[0].Content, "<Content")
	assert.Empty(t, p.Sections[1].Content)
	assert.Empty(t, p.Sections[2].Content)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("<novx><SECTION>"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestUpdateWordCounts(t *testing.T) {
	p, err := Parse(strings.NewReader(novx))
	require.NoError(t, err)

	// counts already present on empty sections must survive an update
	p.Sections[1].WordCount = 7

	updated := p.UpdateWordCounts(counter.NewWordCounter())

	assert.Equal(t, 2, updated)
	assert.Equal(t, 7, p.Sections[0].WordCount) // The train was late. Again as always.
	assert.Equal(t, 7, p.Sections[1].WordCount)
	assert.Equal(t, 0, p.Sections[2].WordCount)
	assert.Equal(t, 3, p.Sections[3].WordCount) // She left. Goodbye.
	assert.Equal(t, 17, p.TotalWords())
}

func TestUpdateWordCountsFollowsCounterConfiguration(t *testing.T) {
	p, err := Parse(strings.NewReader(novx))
	require.NoError(t, err)

	c := counter.NewWordCounter()
	require.NoError(t, c.SetSeparatorRegex([]string{}))
	p.UpdateWordCounts(c)

	// "Again—as" is one word once the em dash no longer separates
	assert.Equal(t, 6, p.Sections[0].WordCount)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.novx")
	require.NoError(t, os.WriteFile(path, []byte(novx), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, p.Path)
	assert.Len(t, p.Sections, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.novx"))
	assert.Error(t, err)
}

func TestFromText(t *testing.T) {
	p := FromText("notes.txt", "one two <b>three</b>")

	require.Len(t, p.Sections, 1)
	assert.Equal(t, "notes.txt", p.Path)
	assert.Equal(t, 1, p.UpdateWordCounts(counter.NewWordCounter()))
	assert.Equal(t, 3, p.TotalWords())

	empty := FromText("-", "")
	assert.Equal(t, 0, empty.UpdateWordCounts(counter.NewWordCounter()))
	assert.Equal(t, 0, empty.TotalWords())
}
