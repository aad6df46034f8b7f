package protoskema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/protoskema"
)

func TestType_CacheCoherence(t *testing.T) {
	typ := protoskema.NewType("T", nil)
	a := protoskema.NewField("a", protoskema.FieldSpec{ID: 1, Type: "int32"})
	if err := typ.Add(a); err != nil {
		t.Fatalf("add a: %v", err)
	}
	byID, err := typ.FieldsByID()
	if err != nil || byID[1] != a {
		t.Fatalf("byID = %v, %v", byID, err)
	}

	// duplicate ids are accepted by Add and reported when the index is built
	b := protoskema.NewField("b", protoskema.FieldSpec{ID: 1, Type: "int32"})
	if err := typ.Add(b); err != nil {
		t.Fatalf("add b: %v", err)
	}
	_, err = typ.FieldsByID()
	if !errors.Is(err, protoskema.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if se, ok := protoskema.AsSchemaError(err); !ok || se.Code != protoskema.CodeDuplicateID {
		t.Fatalf("expected duplicate_id SchemaError, got %v", err)
	}
	if _, err := typ.Create(nil); !errors.Is(err, protoskema.ErrDuplicateID) {
		t.Fatalf("create must surface the duplicate id, got %v", err)
	}

	if err := typ.Remove(b); err != nil {
		t.Fatalf("remove b: %v", err)
	}
	if b.Parent() != nil {
		t.Fatalf("removed field keeps its parent")
	}
	c := protoskema.NewField("c", protoskema.FieldSpec{ID: 2, Type: "string"})
	if err := typ.Add(c); err != nil {
		t.Fatalf("add c: %v", err)
	}
	byID, err = typ.FieldsByID()
	if err != nil {
		t.Fatalf("stale duplicate id error: %v", err)
	}
	if byID[2] != c || len(byID) != 2 {
		t.Fatalf("byID = %v", byID)
	}
	if diff := cmp.Diff([]string{"a", "c"}, typ.FieldNames()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}

	if err := typ.Remove(a); err != nil {
		t.Fatalf("remove a: %v", err)
	}
	if diff := cmp.Diff([]string{"c"}, typ.FieldNames()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestNamespace_DuplicateName(t *testing.T) {
	typ := protoskema.NewType("T", nil)
	if err := typ.Add(protoskema.NewField("a", protoskema.FieldSpec{ID: 1, Type: "int32"})); err != nil {
		t.Fatalf("add: %v", err)
	}
	for _, child := range []protoskema.Object{
		protoskema.NewField("a", protoskema.FieldSpec{ID: 2, Type: "int32"}),
		protoskema.NewOneOf("a", []string{"a"}, nil),
		protoskema.NewType("a", nil),
		protoskema.NewEnum("a", nil),
	} {
		err := typ.Add(child)
		if !errors.Is(err, protoskema.ErrDuplicateName) {
			t.Fatalf("%T: expected ErrDuplicateName, got %v", child, err)
		}
		if child.Parent() != nil {
			t.Fatalf("%T: rejected child must stay detached", child)
		}
	}

	root := protoskema.NewRoot()
	if err := root.Add(protoskema.NewNamespace("pkg", nil)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := root.Add(protoskema.NewType("pkg", nil)); !errors.Is(err, protoskema.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestNamespace_RemoveNotMember(t *testing.T) {
	root := protoskema.NewRoot()
	a := protoskema.NewType("A", nil)
	b := protoskema.NewType("B", nil)
	if err := root.Add(a); err != nil {
		t.Fatalf("add: %v", err)
	}
	f := protoskema.NewField("x", protoskema.FieldSpec{ID: 1, Type: "int32"})
	if err := a.Add(f); err != nil {
		t.Fatalf("add: %v", err)
	}

	var nm *protoskema.NotMemberError
	if err := root.Remove(b); !errors.As(err, &nm) {
		t.Fatalf("expected NotMemberError, got %v", err)
	}
	if err := b.Remove(f); !errors.As(err, &nm) || nm.Parent != "B" || nm.Name != "x" {
		t.Fatalf("expected NotMemberError{B x}, got %v", err)
	}
	if err := root.Remove(a); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if a.Parent() != nil || root.Get("A") != nil {
		t.Fatalf("A still attached")
	}
}

func TestNamespace_AddMovesChild(t *testing.T) {
	a := protoskema.NewType("A", nil)
	b := protoskema.NewType("B", nil)
	f := protoskema.NewField("x", protoskema.FieldSpec{ID: 1, Type: "int32"})
	if err := a.Add(f); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := b.Add(f); err != nil {
		t.Fatalf("move: %v", err)
	}
	if a.Field("x") != nil || len(a.FieldNames()) != 0 {
		t.Fatalf("field still on A")
	}
	if b.Field("x") != f || f.FullName() != "B.x" {
		t.Fatalf("field not on B: %q", f.FullName())
	}
}

func TestNamespace_LookupAndFullName(t *testing.T) {
	root, err := protoskema.LoadJSON([]byte(`{
	  "nested": {
	    "pkg": {
	      "nested": {
	        "Leaf":  {"fields": {"v": {"id": 1, "type": "int32"}}},
	        "Outer": {
	          "fields": {"leaf": {"id": 1, "type": "Leaf"}, "inner": {"id": 2, "type": "Outer.Inner"}},
	          "nested": {"Inner": {"fields": {"up": {"id": 1, "type": ".pkg.Leaf"}}}}
	        }
	      }
	    }
	  }
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	inner := root.LookupType("pkg.Outer.Inner")
	if inner == nil || inner.FullName() != "pkg.Outer.Inner" {
		t.Fatalf("inner = %v", inner)
	}
	if root.Lookup(".pkg.Leaf") != inner.Lookup("Leaf") {
		t.Fatalf("relative lookup must walk upward")
	}
	if err := root.ResolveAll(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	outer := root.LookupType("pkg.Outer")
	if outer.Field("leaf").ResolvedType() != root.LookupType("pkg.Leaf") {
		t.Fatalf("leaf not resolved")
	}
	if outer.Field("inner").ResolvedType() != inner {
		t.Fatalf("inner not resolved")
	}
	if inner.Field("up").Kind() != protoskema.KindMessage {
		t.Fatalf("absolute reference not resolved")
	}
}

func TestResolve_UnresolvedType(t *testing.T) {
	typ := loadType(t, `{"nested":{"T":{"fields":{"x":{"id":1,"type":"Nope"}}}}}`, "T")
	_, err := typ.Create(nil)
	if !errors.Is(err, protoskema.ErrUnresolvedType) {
		t.Fatalf("expected ErrUnresolvedType, got %v", err)
	}
}

const extendSchema = `{
  "nested": {
    "pkg": {
      "nested": {
        "Base": {
          "fields": {"id": {"id": 1, "type": "uint32"}},
          "extensions": [[100, 200]]
        },
        "note": {"id": 100, "type": "string", "extend": "Base"}
      }
    }
  }
}`

func TestResolveExtends(t *testing.T) {
	root, err := protoskema.LoadJSON([]byte(extendSchema))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(root.Pending()) != 1 {
		t.Fatalf("pending = %d", len(root.Pending()))
	}
	base := root.LookupType("pkg.Base")
	if !base.IsExtensionID(100) || base.IsExtensionID(99) {
		t.Fatalf("extension ranges not stored")
	}

	if err := base.ResolveExtends(); err != nil {
		t.Fatalf("resolve extends: %v", err)
	}
	once := append([]string(nil), base.FieldNames()...)
	if err := base.ResolveExtends(); err != nil {
		t.Fatalf("second resolve extends: %v", err)
	}
	if diff := cmp.Diff(once, base.FieldNames()); diff != "" {
		t.Fatalf("not idempotent (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"id", ".pkg.note"}, once); diff != "" {
		t.Fatalf("fields (-want +got):\n%s", diff)
	}
	if len(root.Pending()) != 0 {
		t.Fatalf("extension still pending")
	}
	decl := root.Lookup("pkg.note").(*protoskema.Field)
	sister := base.Field(".pkg.note")
	if decl.ExtensionField() != sister || sister.DeclaringField() != decl {
		t.Fatalf("declaring and sister fields not linked")
	}

	m := mustCreate(t, base, map[string]any{"id": 1, ".pkg.note": "hi"})
	got := mustMarshal(t, base, m)
	if want := unhex(t, "08 01 a2 06 02 68 69"); !cmp.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
	back, err := base.Decode(got)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Get(".pkg.note") != "hi" {
		t.Fatalf("extension value lost: %v", back.AsMap())
	}

	// removing the declaration takes the sister field with it
	if root.LookupType("pkg") != nil {
		t.Fatalf("pkg is a namespace, not a type")
	}
	pkg := root.Lookup("pkg").(*protoskema.Namespace)
	if err := pkg.Remove(decl); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if base.Field(".pkg.note") != nil {
		t.Fatalf("sister field survived removal of its declaration")
	}
}

func TestCreate_ResolvesExtendsImplicitly(t *testing.T) {
	root, err := protoskema.LoadJSON([]byte(extendSchema))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	base := root.LookupType("pkg.Base")
	b, err := base.Marshal(mustCreate(t, base, map[string]any{".pkg.note": "x"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !cmp.Equal(b, unhex(t, "a2 06 01 78")) {
		t.Fatalf("got % x", b)
	}
}

func TestFromJSON_Unclassifiable(t *testing.T) {
	_, err := protoskema.LoadJSON([]byte(`{"nested":{"ok":{"values":{"A":0}},"Weird":{"foo":1}}}`))
	if !errors.Is(err, protoskema.ErrUnclassifiable) {
		t.Fatalf("expected ErrUnclassifiable, got %v", err)
	}
	se, _ := protoskema.AsSchemaError(err)
	if se.Code != protoskema.CodeUnclassifiable || !strings.Contains(se.Error(), "Weird") {
		t.Fatalf("error must name the key: %v", se)
	}
}

func TestFromJSON_Classification(t *testing.T) {
	root, err := protoskema.LoadJSON([]byte(`{
	  "nested": {
	    "E":   {"values": {"A": 0, "B": 1}},
	    "M":   {"fields": {}},
	    "S":   {"methods": {"Get": {"requestType": "M", "responseType": "M"}}},
	    "ext": {"id": 5, "type": "int32", "extend": "M"},
	    "ns":  {"nested": {}}
	  }
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checks := map[string]string{
		"E": "*protoskema.Enum", "M": "*protoskema.Type", "S": "*protoskema.Service",
		"ext": "*protoskema.Field", "ns": "*protoskema.Namespace",
	}
	for name, want := range checks {
		if got := typeName(root.Get(name)); got != want {
			t.Fatalf("%s classified as %s, want %s", name, got, want)
		}
	}
	svc := root.Get("S").(*protoskema.Service)
	if diff := cmp.Diff([]string{"Get"}, svc.Methods()); diff != "" {
		t.Fatalf("methods (-want +got):\n%s", diff)
	}
}

func typeName(o protoskema.Object) string {
	switch o.(type) {
	case *protoskema.Enum:
		return "*protoskema.Enum"
	case *protoskema.Type:
		return "*protoskema.Type"
	case *protoskema.Service:
		return "*protoskema.Service"
	case *protoskema.Field:
		return "*protoskema.Field"
	case *protoskema.Namespace:
		return "*protoskema.Namespace"
	}
	return "unknown"
}

func TestFromJSON_OneOfUnknownMember(t *testing.T) {
	_, err := protoskema.LoadJSON([]byte(`{"nested":{"T":{"fields":{"a":{"id":1,"type":"int32"}},"oneofs":{"k":{"oneof":["a","b"]}}}}}`))
	if !errors.Is(err, protoskema.ErrUnknownMember) {
		t.Fatalf("expected ErrUnknownMember, got %v", err)
	}
}

func TestFromJSON_RangesVerbatim(t *testing.T) {
	typ := loadType(t, `{"nested":{"T":{
	  "fields": {"a": {"id": 1, "type": "int32"}},
	  "extensions": [[200, 100], [150, 300]],
	  "reserved": [[2, 4], 9, "old"]
	}}}`, "T")
	want := []protoskema.Range{{Start: 200, End: 100}, {Start: 150, End: 300}}
	if diff := cmp.Diff(want, typ.Extensions()); diff != "" {
		t.Fatalf("extensions (-want +got):\n%s", diff)
	}
	if !typ.IsReservedID(3) || !typ.IsReservedID(9) || typ.IsReservedID(5) {
		t.Fatalf("reserved ids wrong: %v", typ.Reserved())
	}
	if !typ.IsReservedName("old") || typ.IsReservedName("a") {
		t.Fatalf("reserved names wrong: %v", typ.Reserved())
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	src := `{
	  "options": {"java_package": "x"},
	  "nested": {
	    "Color": {"values": {"RED": 0, "GREEN": 1}},
	    "Msg": {
	      "fields": {
	        "id":    {"id": 1, "rule": "required", "type": "uint32"},
	        "vals":  {"id": 2, "rule": "repeated", "type": "int32", "options": {"packed": true}},
	        "tags":  {"id": 3, "keyType": "string", "type": "Color"},
	        "a":     {"id": 4, "type": "string"},
	        "b":     {"id": 5, "type": "bytes"}
	      },
	      "oneofs": {"pick": {"oneof": ["a", "b"]}},
	      "extensions": [[100, 199]],
	      "reserved": [[10, 12], "gone"]
	    },
	    "ext": {"id": 100, "type": "string", "extend": "Msg"}
	  }
	}`
	first, err := protoskema.LoadJSON([]byte(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := first.ResolveAll(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out1, err := first.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := protoskema.LoadJSON(out1)
	if err != nil {
		t.Fatalf("reload %s: %v", out1, err)
	}
	out2, err := second.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if diff := cmp.Diff(string(out1), string(out2)); diff != "" {
		t.Fatalf("(-first +second):\n%s", diff)
	}
	if strings.Contains(string(out1), ".ext") {
		t.Fatalf("sister field leaked into the export: %s", out1)
	}
}

func TestLoadJSON_Enforcement(t *testing.T) {
	dup := []byte(`{"nested":{"A":{"fields":{}},"A":{"fields":{}}}}`)
	_, err := protoskema.LoadJSON(dup, protoskema.LoadOpt{OnDuplicateKey: protoskema.Error})
	se, ok := protoskema.AsSchemaError(err)
	if !ok || se.Code != protoskema.CodeDuplicateKey || se.Path != "/nested/A" {
		t.Fatalf("expected duplicate_key at /nested/A, got %v", err)
	}
	if _, err := protoskema.LoadJSON(dup); err != nil {
		t.Fatalf("duplicates are ignored by default: %v", err)
	}

	deep := []byte(`{"nested":{"a":{"nested":{"b":{"nested":{}}}}}}`)
	if _, err := protoskema.LoadJSON(deep, protoskema.LoadOpt{MaxDepth: 3}); err == nil {
		t.Fatalf("expected max depth error")
	}
	_, err = protoskema.LoadJSON([]byte(userSchema), protoskema.LoadOpt{MaxBytes: 10})
	if se, ok := protoskema.AsSchemaError(err); !ok || se.Code != protoskema.CodeTruncated {
		t.Fatalf("expected %s, got %v", protoskema.CodeTruncated, err)
	}
	_, err = protoskema.ReadJSON(strings.NewReader(userSchema), protoskema.LoadOpt{MaxBytes: 10})
	if se, ok := protoskema.AsSchemaError(err); !ok || se.Code != protoskema.CodeTruncated {
		t.Fatalf("expected %s from reader, got %v", protoskema.CodeTruncated, err)
	}
	if _, err := protoskema.LoadJSON([]byte(`[1,2]`)); !errors.Is(err, protoskema.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	if _, err := protoskema.LoadJSON([]byte(`{"nested":`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadYAML(t *testing.T) {
	root, err := protoskema.LoadYAML([]byte(`
nested:
  User:
    fields:
      id:
        id: 1
        rule: required
        type: uint32
      name:
        id: 2
        type: string
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	user := root.LookupType("User")
	if diff := cmp.Diff([]string{"id", "name"}, user.FieldNames()); diff != "" {
		t.Fatalf("field order (-want +got):\n%s", diff)
	}
	got := mustMarshal(t, user, mustCreate(t, user, map[string]any{"id": 7, "name": "x"}))
	if !cmp.Equal(got, unhex(t, "08 07 12 01 78")) {
		t.Fatalf("got % x", got)
	}
}

func TestBuildProgrammatically(t *testing.T) {
	root := protoskema.NewRoot()
	user := protoskema.NewType("User", nil)
	for _, f := range []*protoskema.Field{
		protoskema.NewField("id", protoskema.FieldSpec{ID: 1, Rule: protoskema.RuleRequired, Type: "uint32"}),
		protoskema.NewField("name", protoskema.FieldSpec{ID: 2, Type: "string"}),
	} {
		if err := user.Add(f); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := root.Add(user); err != nil {
		t.Fatalf("add: %v", err)
	}
	got := mustMarshal(t, user, mustCreate(t, user, map[string]any{"id": 7, "name": "x"}))
	if !cmp.Equal(got, unhex(t, "08 07 12 01 78")) {
		t.Fatalf("got % x", got)
	}
	if err := protoskema.NewNamespace("n", nil).Add(protoskema.NewField("f", protoskema.FieldSpec{ID: 1, Type: "int32"})); err == nil {
		t.Fatalf("plain fields belong to types")
	}
}
