package loader

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// storyTitle picks the title of a story:
// 1. the page title, when the wiki has one that differs from the page name
// 2. the first level-1 heading, else the first level-2 heading
// 3. the page name with underscores as spaces and capitalized words
func storyTitle(pageTitle, name, syntax, content string) string {
	if t := strings.TrimSpace(pageTitle); t != "" && t != name {
		return t
	}

	var heading string
	if strings.HasPrefix(syntax, "xwiki/") {
		heading = xwikiHeading(content)
	} else {
		heading = markdownHeading([]byte(content))
	}
	if heading != "" {
		return heading
	}

	return titleFromName(name)
}

// markdownHeading returns the first # heading, or the first ## heading when
// the document has no level-1 heading.
func markdownHeading(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	doc := markdown.Parser().Parse(text.NewReader(content))

	var firstH1, firstH2 string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch {
		case heading.Level == 1:
			firstH1 = nodeText(heading, content)
			return ast.WalkStop, nil
		case heading.Level == 2 && firstH2 == "":
			firstH2 = nodeText(heading, content)
		}
		return ast.WalkSkipChildren, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	return firstH2
}

// xwikiHeading returns the first level-1 heading of XWiki 2.x markup,
// written "= Title =".
func xwikiHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "= ") {
			continue
		}
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "= "), "="))
	}
	return ""
}

func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// titleFromName turns "another_story" into "Another Story".
func titleFromName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
