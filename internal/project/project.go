// Package project models the sections whose words are counted.
//
// A novelibre project file (.novx) is XML; each SECTION element carries an
// id attribute, a Title and a Content element whose children are the
// section's paragraphs:
//
//	<SECTION id="sc1">
//	    <Title>Arrival</Title>
//	    <Content><p>The train was late.</p><p><note>check</note>Again.</p></Content>
//	</SECTION>
//
// The Content markup is kept verbatim so the counter can apply its markup
// rules to it. Other sources are wrapped with FromText as a project with a
// single section.
package project

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// Counter is the part of counter.Counter a project needs.
type Counter interface {
	Count(text string) int
}

// Section is a unit of content with its own word count.
type Section struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"-"`
	WordCount int    `json:"word_count"`
}

// Project is an ordered list of sections loaded from one source.
type Project struct {
	Path     string     `json:"path"`
	Title    string     `json:"title,omitempty"`
	Sections []*Section `json:"sections"`
}

// Load reads the .novx file at path.
func Load(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open project %q: %w", path, err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %q: %w", path, err)
	}
	p.Path = path
	return p, nil
}

// Parse reads a .novx document from r. Sections are returned in document
// order.
func Parse(r io.Reader) (*Project, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse project XML: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("project XML has no root element")
	}

	p := &Project{}
	if title := doc.FindElement("//PROJECT/Title"); title != nil {
		p.Title = strings.TrimSpace(title.Text())
	}

	for _, el := range doc.FindElements("//SECTION") {
		s := &Section{ID: el.SelectAttrValue("id", "")}
		if title := el.SelectElement("Title"); title != nil {
			s.Title = strings.TrimSpace(title.Text())
		}
		if content := el.SelectElement("Content"); content != nil {
			markup, err := innerXML(content)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", s.ID, err)
			}
			s.Content = markup
		}
		p.Sections = append(p.Sections, s)
	}

	slog.Debug("Project parsed", "title", p.Title, "sections", len(p.Sections))
	return p, nil
}

// FromText wraps a single body of text as a one-section project.
func FromText(name, body string) *Project {
	return &Project{
		Path:     name,
		Sections: []*Section{{ID: name, Content: body}},
	}
}

// UpdateWordCounts sets the word count of every section with content and
// returns how many were updated. Sections without content keep the count
// they had.
func (p *Project) UpdateWordCounts(c Counter) int {
	updated := 0
	for _, s := range p.Sections {
		if s.Content == "" {
			continue
		}
		s.WordCount = c.Count(s.Content)
		updated++
	}

	slog.Debug("Word counts updated", "path", p.Path, "updated", updated, "sections", len(p.Sections))
	return updated
}

// TotalWords returns the sum of all section word counts.
func (p *Project) TotalWords() int {
	total := 0
	for _, s := range p.Sections {
		total += s.WordCount
	}
	return total
}

// innerXML serializes the children of el, without el's own tags.
func innerXML(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return "", err
	}

	// strip "<Content ...>" and "</Content>"; a self-closed element has no children
	start := strings.IndexByte(s, '>')
	if start < 0 || strings.HasSuffix(s[:start+1], "/>") {
		return "", nil
	}
	end := strings.LastIndex(s, "</")
	if end <= start {
		return "", nil
	}
	return s[start+1 : end], nil
}
