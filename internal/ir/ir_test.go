package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestObjectKeepsInsertionOrder(t *testing.T) {
	o := NewObject().Set("b", 1).Set("a", 2).Set("c", 3)
	o.Set("b", 4)
	if diff := cmp.Diff([]string{"b", "a", "c"}, o.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	if v, _ := o.Get("b"); v != 4 {
		t.Fatalf("b=%v", v)
	}
	o.Delete("a")
	if diff := cmp.Diff([]string{"b", "c"}, o.Keys()); diff != "" {
		t.Fatalf("keys after delete (-want +got):\n%s", diff)
	}
}

func TestObjectMarshalJSONOrdered(t *testing.T) {
	inner := NewObject().Set("z", true).Set("a", nil)
	o := NewObject().Set("name", "x").Set("id", Number("7")).Set("nested", inner).Set("list", []any{Number("1"), "two"})
	b, err := o.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"x","id":7,"nested":{"z":true,"a":null},"list":[1,"two"]}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}

func TestFromMapSortsKeys(t *testing.T) {
	o := FromMap(map[string]any{"b": 1, "a": map[string]any{"y": 1, "x": 2}})
	if diff := cmp.Diff([]string{"a", "b"}, o.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	inner, ok := o.Object("a")
	if !ok {
		t.Fatalf("nested map not converted")
	}
	if diff := cmp.Diff([]string{"x", "y"}, inner.Keys()); diff != "" {
		t.Fatalf("inner keys (-want +got):\n%s", diff)
	}
}

func TestNumberConversions(t *testing.T) {
	if v, err := Number("7.0").Int64(); err != nil || v != 7 {
		t.Fatalf("int64: %v %v", v, err)
	}
	if _, err := Number("7.5").Int64(); err == nil {
		t.Fatalf("expected error for fractional int")
	}
	if _, err := Number("-1").Uint64(); err == nil {
		t.Fatalf("expected error for negative uint")
	}
	if v, err := Number("18446744073709551615").Uint64(); err != nil || v != 18446744073709551615 {
		t.Fatalf("uint64: %v %v", v, err)
	}
}
