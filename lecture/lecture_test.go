package lecture

import (
	"errors"
	"strings"
	"testing"
)

const sampleLecture = `# Goroutines

A goroutine is a lightweight thread. Start one with the go keyword.

` + "```go\ngo fmt.Println(\"hello\")\n```" + `

Channels connect goroutines. Use ` + "`make(chan int)`" + ` to create one.

` + "```\nch := make(chan int)\n```" + `
`

func TestParseLecture(t *testing.T) {
	lec, err := Parse([]byte(sampleLecture))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if lec.Title != "Goroutines" {
		t.Errorf("Title = %q, want %q", lec.Title, "Goroutines")
	}

	wantKinds := []ItemKind{ItemText, ItemCode, ItemText, ItemCode}
	if len(lec.Items) != len(wantKinds) {
		t.Fatalf("items = %+v, want %d entries", lec.Items, len(wantKinds))
	}
	for i, want := range wantKinds {
		if lec.Items[i].Kind != want {
			t.Errorf("item[%d].Kind = %v, want %v", i, lec.Items[i].Kind, want)
		}
	}

	if len(lec.CodeBlocks) != 2 {
		t.Fatalf("code blocks = %d, want 2", len(lec.CodeBlocks))
	}
	if lec.CodeBlocks[0].Language != "go" {
		t.Errorf("block 0 language = %q, want go", lec.CodeBlocks[0].Language)
	}
	if !strings.Contains(lec.CodeBlocks[0].Source, `go fmt.Println("hello")`) {
		t.Errorf("block 0 source = %q", lec.CodeBlocks[0].Source)
	}
	if lec.Items[1].Index != 0 || lec.Items[3].Index != 1 {
		t.Errorf("code item indexes = %d, %d, want 0, 1", lec.Items[1].Index, lec.Items[3].Index)
	}
}

func TestParseInlineCodeStaysInProse(t *testing.T) {
	lec, err := Parse([]byte("Use `make(chan int)` to create a channel.\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(lec.Items) != 1 || lec.Items[0].Kind != ItemText {
		t.Fatalf("items = %+v, want one text item", lec.Items)
	}
	if got := lec.Items[0].Content; got != "Use make(chan int) to create a channel." {
		t.Errorf("content = %q", got)
	}
}

func TestParseSecondHeadingBecomesText(t *testing.T) {
	src := "# Title\n\n## Section One\n\nBody text here.\n"
	lec, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lec.Title != "Title" {
		t.Errorf("Title = %q", lec.Title)
	}
	if len(lec.Items) != 2 {
		t.Fatalf("items = %+v, want heading text plus body", lec.Items)
	}
	if lec.Items[0].Content != "Section One" {
		t.Errorf("item[0] = %q, want %q", lec.Items[0].Content, "Section One")
	}
}

func TestParseJoinsSoftLineBreaks(t *testing.T) {
	lec, err := Parse([]byte("First line\nsecond line.\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := lec.Items[0].Content; got != "First line second line." {
		t.Errorf("content = %q, want lines joined with a space", got)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	for _, src := range []string{"", "   \n\n", "# Only a title\n"} {
		if _, err := Parse([]byte(src)); !errors.Is(err, ErrNoContent) {
			t.Errorf("Parse(%q) err = %v, want ErrNoContent", src, err)
		}
	}
}
