package dsl_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/protoskema"
	"github.com/reoring/protoskema/dsl"
)

func TestMessage_BuildAndEncode(t *testing.T) {
	user := dsl.Message("User").
		Field("id", 1, dsl.Uint32).Required().
		Field("name", 2, dsl.String).
		MustBuild()
	if _, err := dsl.Schema(protoskema.RootOpt{}, user); err != nil {
		t.Fatalf("schema: %v", err)
	}

	m, err := user.Create(map[string]any{"id": 7, "name": "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := user.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !cmp.Equal(got, []byte{0x08, 0x07, 0x12, 0x01, 0x78}) {
		t.Fatalf("got % x", got)
	}
}

func TestMessage_FullDeclaration(t *testing.T) {
	status, err := dsl.Enum("Status").Value("ACTIVE", 1).Value("GONE", 2).Build()
	if err != nil {
		t.Fatalf("enum: %v", err)
	}
	typ, err := dsl.Message("Item").
		Field("nums", 1, dsl.Sint32).Packed().
		Map("labels", 2, dsl.String, dsl.String).
		Field("status", 3, "Status").Default("GONE").
		Field("a", 4, dsl.String).
		Field("b", 5, dsl.Int64).Optional().
		OneOf("pick", "a", "b").
		Extensions(100, 199).
		Reserved(10, 12).
		ReservedNames("old").
		Nested(status, nil).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := dsl.Schema(protoskema.RootOpt{}, typ); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if !typ.IsExtensionID(150) || !typ.IsReservedID(11) || !typ.IsReservedName("old") {
		t.Fatalf("ranges not applied")
	}

	m, err := typ.Create(map[string]any{"nums": []int{-1, 1}, "labels": map[string]string{"k": "v"}, "b": 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !typ.Field("nums").Packed() {
		t.Fatalf("nums not packed")
	}
	if m.Get("status") != int32(2) {
		t.Fatalf("status default = %v", m.Get("status"))
	}
	b, err := typ.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := []byte{
		0x0a, 0x02, 0x01, 0x02, // packed zigzag -1, 1
		0x12, 0x06, 0x0a, 0x01, 'k', 0x12, 0x01, 'v',
		0x28, 0x05,
	}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if typ.OneOf("pick").Which(m) != "b" {
		t.Fatalf("which = %q", typ.OneOf("pick").Which(m))
	}
}

func TestMessage_BuildErrors(t *testing.T) {
	_, err := dsl.Message("Dup").
		Field("a", 1, dsl.Int32).
		Field("a", 2, dsl.Int32).
		Build()
	if !errors.Is(err, protoskema.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	_, err = dsl.Message("Bad").Field("a", 1, dsl.Int32).OneOf("o", "a", "missing").Build()
	if !errors.Is(err, protoskema.ErrUnknownMember) {
		t.Fatalf("expected ErrUnknownMember, got %v", err)
	}

	_, err = dsl.Message("E").Nested(dsl.Enum("X").Value("A", 0).Value("A", 1).Build()).Build()
	if !errors.Is(err, protoskema.ErrDuplicateName) {
		t.Fatalf("expected enum error to surface, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("MustBuild must panic")
		}
	}()
	dsl.Message("Dup").Field("a", 1, dsl.Int32).Field("a", 2, dsl.Int32).MustBuild()
}

func TestPackageAndExtend(t *testing.T) {
	base := dsl.Message("Base").Field("id", 1, dsl.Uint32).Extensions(100, 200).MustBuild()
	pkg, err := dsl.Package("pkg", base, dsl.Extend("Base", "note", 100, dsl.String))
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	root, err := dsl.Schema(protoskema.RootOpt{Equality: protoskema.EqualStrict}, pkg)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if err := root.ResolveAll(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if base.Field(".pkg.note") == nil {
		t.Fatalf("extension not merged: %v", base.FieldNames())
	}
}

func TestMessage_DeclarationsAfterFieldStep(t *testing.T) {
	kind, err := dsl.Enum("Kind").Value("A", 0).Build()
	if err != nil {
		t.Fatalf("enum: %v", err)
	}
	typ, err := dsl.Message("Doc").
		Field("x", 1, dsl.String).Reserved(5, 6).
		Field("y", 2, dsl.String).ReservedNames("gone").
		Field("z", 3, dsl.String).Extensions(10, 20).
		Field("k", 4, "Kind").Nested(kind, nil).
		Field("w", 7, dsl.Bool).MessageOption("deprecated", true).
		Field("v", 8, dsl.Bool).OneOf("either", "w", "v").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !typ.IsReservedID(6) || !typ.IsReservedName("gone") || !typ.IsExtensionID(10) {
		t.Fatalf("ranges not applied: %v %v", typ.Reserved(), typ.Extensions())
	}
	if v, _ := typ.Option("deprecated"); v != true {
		t.Fatalf("message option not set: %v", typ.Options())
	}
	if typ.Field("w").Options() != nil {
		t.Fatalf("message option leaked onto field w")
	}
	if diff := cmp.Diff([]string{"w", "v"}, typ.OneOf("either").Members()); diff != "" {
		t.Fatalf("one-of members (-want +got):\n%s", diff)
	}
	if typ.Get("Kind") == nil {
		t.Fatalf("nested enum missing")
	}
}
