package resource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hubastard/marquee/engine/assets"
	"github.com/hubastard/marquee/engine/sched"
)

func assetRoot(t *testing.T) assets.Dir {
	t.Helper()
	root := t.TempDir()
	for name, body := range map[string]string{
		"shaders/quad.vert": "#version 330 core\n",
		"shaders/quad.frag": "#version 330 core\n",
	} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return assets.Dir(root)
}

// settle runs posted completions until the catalog is ready.
func settle(t *testing.T, loop *sched.Loop, c *Catalog) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !c.Ready() {
		select {
		case <-loop.Wake():
			loop.RunPending()
		case <-deadline:
			t.Fatalf("catalog never became ready")
		}
	}
}

func newCatalog(t *testing.T) (*Catalog, *sched.Loop) {
	loop := sched.New(nil)
	return NewCatalog(assetRoot(t), loop.Post), loop
}

func TestWorkWaitsForBatch(t *testing.T) {
	c, loop := newCatalog(t)
	c.Add(Shader("quad.vert"), Shader("quad.frag"))

	var order []string
	_ = c.ExecuteWhenReady(func() error { order = append(order, "first"); return nil })
	_ = c.ExecuteWhenReady(func() error { order = append(order, "second"); return nil })

	var progress []int
	c.OnProgress(func(name string, total, loaded int) {
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		progress = append(progress, loaded)
	})

	c.RequestLoad()
	if len(order) != 0 {
		t.Fatalf("work ran before resources loaded")
	}
	settle(t, loop, c)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v", order)
	}
	if len(progress) != 2 || progress[1] != 2 {
		t.Fatalf("progress = %v", progress)
	}
	if _, err := c.Shader("quad.vert"); err != nil {
		t.Fatalf("shader: %v", err)
	}

	ran := false
	_ = c.ExecuteWhenReady(func() error { ran = true; return nil })
	if !ran {
		t.Fatalf("work on a ready catalog did not run immediately")
	}
}

func TestEmptyBatchIsReadyAtOnce(t *testing.T) {
	c, _ := newCatalog(t)
	ran := false
	_ = c.ExecuteWhenReady(func() error { ran = true; return nil })
	c.RequestLoad()
	if !ran || !c.Ready() {
		t.Fatalf("empty batch did not open the catalog")
	}
}

func TestAddAfterReadyOpensNewBatch(t *testing.T) {
	c, loop := newCatalog(t)
	c.Add(Shader("quad.vert"))
	c.RequestLoad()
	settle(t, loop, c)

	c.Add(Shader("quad.vert")) // already loaded
	if !c.Ready() {
		t.Fatalf("re-adding a loaded resource opened a batch")
	}

	c.Add(Shader("quad.frag"))
	if c.Ready() {
		t.Fatalf("new resource did not open a batch")
	}
	ran := false
	_ = c.ExecuteWhenReady(func() error { ran = true; return nil })
	if ran {
		t.Fatalf("work ran before the new batch loaded")
	}
	c.RequestLoad()
	settle(t, loop, c)
	if !ran {
		t.Fatalf("queued work did not run")
	}
}

func TestFailuresDoNotBlockReadiness(t *testing.T) {
	c, loop := newCatalog(t)
	c.Add(Shader("quad.vert"), Texture("missing.png", 0))
	c.RequestLoad()
	settle(t, loop, c)

	if c.Err() == nil {
		t.Fatalf("missing texture not reported")
	}
	if _, err := c.Texture("missing.png"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if _, err := c.Shader("quad.vert"); err != nil {
		t.Fatalf("good resource lost: %v", err)
	}
}
