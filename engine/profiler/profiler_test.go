//go:build profile

package profiler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDumpBalancesSpans(t *testing.T) {
	Init(64)
	outer := Start("tick")
	inner := Start("render")
	inner()
	_ = Start("left-open")
	outer()

	path := filepath.Join(t.TempDir(), "capture.json")
	n, err := Dump(path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc ssFile
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	evs := doc.Profiles[0].Events
	if len(evs) != n {
		t.Fatalf("reported %d events, file has %d", n, len(evs))
	}
	opens, closes := 0, 0
	for _, e := range evs {
		if e.Type == "O" {
			opens++
		} else {
			closes++
		}
	}
	if opens != closes {
		t.Fatalf("unbalanced profile: %d opens, %d closes", opens, closes)
	}
}
