package parser_test

import (
	"testing"

	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/parser"
)

func TestParseMultilineComment(t *testing.T) {
	src := "# first line\n# second line\nhello = Hi!\n"
	res := parser.Parse(src)
	msg, ok := res.Entries[0].(*ast.Message)
	if !ok {
		t.Fatalf("expected *ast.Message, got %T", res.Entries[0])
	}
	want := "first line\nsecond line"
	if msg.Comment == nil || msg.Comment.Content != want {
		t.Errorf("comment = %+v, want %q", msg.Comment, want)
	}
}

func TestParseCommentHashDepthDoesNotMix(t *testing.T) {
	src := "# single\n## double\nhello = Hi!\n"
	res := parser.Parse(src)
	if len(res.Entries) != 3 {
		t.Fatalf("expected 3 entries (comment does not attach across depth change), got %d", len(res.Entries))
	}
	single, ok := res.Entries[0].(*ast.Comment)
	if !ok || single.Kind != ast.CommentStandalone {
		t.Errorf("entry[0] = %+v", res.Entries[0])
	}
	double, ok := res.Entries[1].(*ast.Comment)
	if !ok || double.Kind != ast.CommentGroup {
		t.Errorf("entry[1] = %+v", res.Entries[1])
	}
}

func TestParseEmptySource(t *testing.T) {
	res := parser.Parse("")
	if len(res.Entries) != 0 {
		t.Errorf("expected no entries for empty source, got %d", len(res.Entries))
	}
}

func TestParseCRLFNormalized(t *testing.T) {
	res := parser.Parse("hello = Hi!\r\nworld = Bye!\r\n")
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(res.Entries), res.Entries)
	}
}

func TestParseJunkThenValidEntriesResumeRepeatedly(t *testing.T) {
	src := "!!!\nfirst = One\n@@@\nsecond = Two\n"
	res := parser.Parse(src)
	if len(res.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d: %+v", len(res.Entries), res.Entries)
	}
	if _, ok := res.Entries[0].(*ast.Junk); !ok {
		t.Errorf("entry[0] = %T, want *ast.Junk", res.Entries[0])
	}
	if m, ok := res.Entries[1].(*ast.Message); !ok || m.ID.Name != "first" {
		t.Errorf("entry[1] = %+v", res.Entries[1])
	}
	if _, ok := res.Entries[2].(*ast.Junk); !ok {
		t.Errorf("entry[2] = %T, want *ast.Junk", res.Entries[2])
	}
	if m, ok := res.Entries[3].(*ast.Message); !ok || m.ID.Name != "second" {
		t.Errorf("entry[3] = %+v", res.Entries[3])
	}
}
