package document

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---\n"

// Metadata describes a crawled page.
type Metadata struct {
	Title string `yaml:"title"`
	// Source is the URL the page was crawled from.
	Source        string   `yaml:"source"`
	SiteName      string   `yaml:"siteName,omitempty"`
	PublishedTime string   `yaml:"publishedTime,omitempty"`
	ProcessedTime string   `yaml:"processedTime"`
	Links         []string `yaml:"links,omitempty"`
}

// Document is a crawled page in markdown form.
type Document struct {
	// The markdown content of the scraped page.
	Content string
	// Metadata about the page.
	Metadata Metadata
}

func (d *Document) HasTitle() bool {
	return d.Metadata.Title != ""
}

// FindTitle returns the document title, falling back to the first
// level-1 markdown heading in the content when the metadata has none.
func (d *Document) FindTitle() string {
	if d.Metadata.Title != "" {
		return d.Metadata.Title
	}

	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	content := []byte(d.Content)
	reader := text.NewReader(content)
	root := md.Parser().Parse(reader)

	var title string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if heading, ok := n.(*ast.Heading); ok && entering && heading.Level == 1 {
			var builder strings.Builder
			for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
				if txt, ok := child.(*ast.Text); ok {
					builder.Write(txt.Segment.Value(content))
				}
			}
			title = builder.String()
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	return title
}

// ToMarkdown serializes the document to markdown with the metadata as
// YAML front matter. This is the storage format of the page cache.
func (d *Document) ToMarkdown() (string, error) {
	d.Metadata.Title = d.FindTitle()

	frontMatter, err := yaml.Marshal(d.Metadata)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal metadata to YAML")
	}

	var builder strings.Builder
	builder.WriteString(frontMatterDelim)
	builder.Write(frontMatter)
	builder.WriteString(frontMatterDelim)
	builder.WriteString(d.Content)

	return builder.String(), nil
}

// FromMarkdown parses a document serialized with ToMarkdown. Input
// without front matter becomes a document with empty metadata.
func FromMarkdown(raw string) (*Document, error) {
	if !strings.HasPrefix(raw, frontMatterDelim) {
		return &Document{Content: raw}, nil
	}

	rest := strings.TrimPrefix(raw, frontMatterDelim)
	idx := strings.Index(rest, frontMatterDelim)
	if idx < 0 {
		return nil, errors.New("unterminated front matter")
	}

	var md Metadata
	if err := yaml.Unmarshal([]byte(rest[:idx]), &md); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal front matter")
	}

	return &Document{
		Content:  rest[idx+len(frontMatterDelim):],
		Metadata: md,
	}, nil
}
