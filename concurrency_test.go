package protoskema_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/reoring/protoskema"
)

// runParallel starts n goroutines running fn iters times each and waits.
func runParallel(n, iters int, fn func()) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iters; j++ {
				fn()
			}
		}()
	}
	wg.Wait()
}

func TestResolvedTree_ConcurrentCreateEncodeDecode(t *testing.T) {
	root, err := protoskema.LoadJSON([]byte(userSchema))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := root.ResolveAll(); err != nil {
		t.Fatalf("resolve all: %v", err)
	}
	user := root.LookupType("User")
	want := unhex(t, "08 07 12 01 78")

	runParallel(8, 200, func() {
		m, err := user.Create(map[string]any{"id": 7, "name": "x"})
		if err != nil {
			t.Errorf("create: %v", err)
			return
		}
		b, err := user.Marshal(m)
		if err != nil || !bytes.Equal(b, want) {
			t.Errorf("marshal = % x, %v", b, err)
			return
		}
		back, err := user.Decode(b)
		if err != nil || back.Get("id") != uint32(7) {
			t.Errorf("decode = %v, %v", back, err)
		}
	})
}

func TestResolvedTree_ConcurrentWithMergedExtension(t *testing.T) {
	root, err := protoskema.LoadJSON([]byte(extendSchema))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := root.ResolveAll(); err != nil {
		t.Fatalf("resolve all: %v", err)
	}
	if n := len(root.Pending()); n != 0 {
		t.Fatalf("pending after ResolveAll = %d", n)
	}
	base := root.LookupType("pkg.Base")
	want := unhex(t, "08 01 a2 06 02 68 69")

	runParallel(8, 200, func() {
		m, err := base.Create(map[string]any{"id": 1, ".pkg.note": "hi"})
		if err != nil {
			t.Errorf("create: %v", err)
			return
		}
		b, err := base.Marshal(m)
		if err != nil || !bytes.Equal(b, want) {
			t.Errorf("marshal = % x, %v", b, err)
			return
		}
		if _, err := base.Decode(b); err != nil {
			t.Errorf("decode: %v", err)
		}
	})
}
