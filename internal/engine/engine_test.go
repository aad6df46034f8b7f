package engine

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/protoskema/internal/ir"
)

type sliceSource struct {
	toks []Token
	i    int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.i >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.i) }

func obj(toks ...Token) []Token {
	out := []Token{{Kind: KindBeginObject}}
	out = append(out, toks...)
	return append(out, Token{Kind: KindEndObject})
}

func key(k string) Token { return Token{Kind: KindKey, String: k} }
func str(s string) Token { return Token{Kind: KindString, String: s} }
func num(n string) Token { return Token{Kind: KindNumber, Number: n} }
func begin(k Kind) Token { return Token{Kind: k} }

func TestBuildKeepsKeyOrder(t *testing.T) {
	toks := obj(key("zeta"), num("1"), key("alpha"), str("x"), key("list"), begin(KindBeginArray), num("2"), begin(KindEndArray))
	v, err := Build(&sliceSource{toks: toks})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	o, ok := v.(*ir.Object)
	if !ok {
		t.Fatalf("got %T", v)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "list"}, o.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	if n, _ := o.Get("zeta"); n != ir.Number("1") {
		t.Fatalf("zeta=%v", n)
	}
	arr, _ := o.Array("list")
	if len(arr) != 1 || arr[0] != ir.Number("2") {
		t.Fatalf("list=%v", arr)
	}
}

func TestBuildTruncatedInput(t *testing.T) {
	toks := []Token{begin(KindBeginObject), key("a")}
	_, err := Build(&sliceSource{toks: toks})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestEnforceDuplicateKeyError(t *testing.T) {
	toks := obj(key("fields"), begin(KindBeginObject), key("id"), num("1"), key("id"), num("2"), begin(KindEndObject))
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{OnDuplicate: DupError})
	_, err := Build(src)
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != "duplicate_key" || ie.Path != "/fields/id" {
		t.Fatalf("unexpected issue: %+v", ie.SimpleIssue)
	}
}

func TestEnforceDuplicateKeyWarnReportsAndContinues(t *testing.T) {
	toks := obj(key("a"), num("1"), key("a"), num("2"))
	var got []SimpleIssue
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { got = append(got, si) },
	})
	v, err := Build(src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(got) != 1 || got[0].Path != "/a" {
		t.Fatalf("issues: %+v", got)
	}
	if a, _ := v.(*ir.Object).Get("a"); a != ir.Number("2") {
		t.Fatalf("last value should win, got %v", a)
	}
}

func TestEnforceMaxDepth(t *testing.T) {
	toks := obj(key("nested"), begin(KindBeginObject), key("deeper"), begin(KindBeginObject), begin(KindEndObject), begin(KindEndObject))
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{MaxDepth: 2})
	_, err := Build(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Path != "/nested/deeper" {
		t.Fatalf("expected depth issue at /nested/deeper, got %v", err)
	}
}

func TestEnforceMaxBytes(t *testing.T) {
	toks := obj(key("a"), num("1"), key("b"), num("2"))
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{MaxBytes: 2})
	_, err := Build(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("expected truncated issue, got %v", err)
	}
}
