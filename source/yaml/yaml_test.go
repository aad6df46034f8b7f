package yaml

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	eng "github.com/reoring/protoskema/internal/engine"
	"github.com/reoring/protoskema/internal/ir"
)

const userSchema = `
fields:
  name: {id: 2, type: string}
  id: {id: 1, type: uint32, rule: required}
reserved: [[10, 20], 30, legacy]
`

func TestBuildKeepsMappingOrder(t *testing.T) {
	v, err := Build([]byte(userSchema), Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	root := v.(*ir.Object)
	fields, _ := root.Object("fields")
	if diff := cmp.Diff([]string{"name", "id"}, fields.Keys()); diff != "" {
		t.Fatalf("field order (-want +got):\n%s", diff)
	}
	id, _ := fields.Object("id")
	if n, _ := id.Get("id"); n != ir.Number("1") {
		t.Fatalf("id=%v (%T)", n, n)
	}
	reserved, _ := root.Array("reserved")
	if len(reserved) != 3 || reserved[2] != "legacy" {
		t.Fatalf("reserved=%v", reserved)
	}
}

func TestBuildDuplicateKeyRejected(t *testing.T) {
	_, err := Build([]byte("a: 1\na: 2\n"), Options{OnDuplicate: eng.DupError})
	var ie eng.IssueError
	if !errors.As(err, &ie) || ie.Code != "duplicate_key" || ie.Path != "/a" {
		t.Fatalf("expected duplicate_key at /a, got %v", err)
	}
}

func TestBuildAllReadsEveryDocument(t *testing.T) {
	docs, err := BuildAll([]byte("a: 1\n---\nb: true\n"), Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs=%d", len(docs))
	}
	if b, _ := docs[1].(*ir.Object).Get("b"); b != true {
		t.Fatalf("b=%v", b)
	}
}
