// Package lecture loads lecture documents and segments their content into
// speakable units. A lecture is an ordered interleaving of prose runs and
// code blocks; order is significant and preserved end to end.
package lecture

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ItemKind discriminates content items.
type ItemKind int

const (
	// ItemText is a run of prose.
	ItemText ItemKind = iota
	// ItemCode is a placeholder for the Nth code block in document order.
	ItemCode
)

// ContentItem is one unit of lecture content as encountered in the document.
type ContentItem struct {
	Kind    ItemKind
	Content string // prose text, for ItemText
	Index   int    // code block ordinal, for ItemCode
}

// CodeBlock holds the source of one fenced code block.
type CodeBlock struct {
	Language string
	Source   string
}

// Lecture is a parsed lecture document.
type Lecture struct {
	Title      string
	Items      []ContentItem
	CodeBlocks []CodeBlock
}

// Parse extracts the ordered content items and code blocks from a markdown
// lecture. Prose blocks become text items; fenced and indented code blocks
// become code items numbered in document order. Inline code spans stay part
// of the surrounding prose.
func Parse(src []byte) (*Lecture, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	lec := &Lecture{}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			txt := collectText(node, src)
			if lec.Title == "" {
				lec.Title = txt
			} else if txt != "" {
				lec.Items = append(lec.Items, ContentItem{Kind: ItemText, Content: txt})
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			txt := collectText(node, src)
			if txt != "" {
				lec.Items = append(lec.Items, ContentItem{Kind: ItemText, Content: txt})
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lec.Items = append(lec.Items, ContentItem{Kind: ItemCode, Index: len(lec.CodeBlocks)})
			lec.CodeBlocks = append(lec.CodeBlocks, CodeBlock{
				Language: string(node.Language(src)),
				Source:   blockSource(node, src),
			})
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			lec.Items = append(lec.Items, ContentItem{Kind: ItemCode, Index: len(lec.CodeBlocks)})
			lec.CodeBlocks = append(lec.CodeBlocks, CodeBlock{
				Source: blockSource(node, src),
			})
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to walk lecture document: %w", err)
	}

	if len(lec.Items) == 0 {
		return nil, ErrNoContent
	}

	return lec, nil
}

// collectText flattens a block node's inline content into plain prose.
// Code spans contribute their literal text so sentences like "call
// console.log() here" survive intact.
func collectText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.CodeSpan:
			for child := t.FirstChild(); child != nil; child = child.NextSibling() {
				if txt, ok := child.(*ast.Text); ok {
					b.Write(txt.Segment.Value(src))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// blockSource reassembles a code block's raw lines.
func blockSource(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}
