//go:build profile

// Package profiler records nested timing spans (render ticks, buffer setup)
// into a ring buffer and writes them as a speedscope evented profile.
// Build with -tags profile to enable it.
package profiler

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Init allocates room for capacity span events. Call once at startup.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 16
	}
	events.init(capacity)
}

func Enabled() bool { return events.ready.Load() }

// Start opens a span and returns the func that closes it.
func Start(name string) func() {
	if !events.ready.Load() {
		return func() {}
	}
	id := intern(name)
	start := time.Now().UnixNano()
	events.push(event{at: start, frame: id, open: true})
	return func() {
		end := time.Now().UnixNano()
		if end < start {
			end = start
		}
		events.push(event{at: end, frame: id})
	}
}

type event struct {
	at    int64
	frame int
	open  bool
}

type ring struct {
	ready atomic.Bool
	size  uint64
	write atomic.Uint64
	buf   []event
}

var events ring

func (r *ring) init(capacity int) {
	r.size = uint64(capacity)
	r.buf = make([]event, capacity)
	r.write.Store(0)
	r.ready.Store(true)
}

func (r *ring) push(e event) {
	i := r.write.Add(1) - 1
	r.buf[i%r.size] = e
}

// snapshot returns the retained events in write order.
func (r *ring) snapshot() []event {
	n := r.write.Load()
	start := uint64(0)
	if n > r.size {
		start = n - r.size
	}
	out := make([]event, 0, n-start)
	for k := start; k < n; k++ {
		out = append(out, r.buf[k%r.size])
	}
	return out
}

var (
	framesMu sync.Mutex
	frames   []string
	frameIDs = map[string]int{}
)

func intern(name string) int {
	framesMu.Lock()
	defer framesMu.Unlock()
	if id, ok := frameIDs[name]; ok {
		return id
	}
	id := len(frames)
	frameIDs[name] = id
	frames = append(frames, name)
	return id
}

type ssFile struct {
	Schema   string      `json:"$schema"`
	Shared   ssShared    `json:"shared"`
	Profiles []ssProfile `json:"profiles"`
	Exporter string      `json:"exporter,omitempty"`
	Name     string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // microseconds since the first event
	Frame int    `json:"frame"`
}

// Dump writes the retained spans to path and returns how many events were
// written. Unbalanced closes are dropped and spans still open are closed at
// the last timestamp.
func Dump(path string) (int, error) {
	evs := events.snapshot()
	if len(evs) == 0 {
		return 0, fmt.Errorf("profiler: no events recorded")
	}

	framesMu.Lock()
	fs := make([]ssFrame, len(frames))
	for i, n := range frames {
		fs[i] = ssFrame{Name: n}
	}
	framesMu.Unlock()

	base := evs[0].at
	out := make([]ssEvent, 0, len(evs))
	var stack []int
	last := int64(0)
	for _, e := range evs {
		at := (e.at - base) / 1000
		if at < last {
			at = last
		}
		if e.open {
			out = append(out, ssEvent{Type: "O", At: at, Frame: e.frame})
			stack = append(stack, e.frame)
		} else {
			if len(stack) == 0 || stack[len(stack)-1] != e.frame {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, ssEvent{Type: "C", At: at, Frame: e.frame})
		}
		last = at
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, ssEvent{Type: "C", At: last, Frame: stack[i]})
	}

	doc := ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: fs},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "render loop",
			Unit:     "microseconds",
			EndValue: last,
			Events:   out,
		}},
		Exporter: "marquee-profiler",
		Name:     "marquee capture",
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return len(out), os.Rename(tmp, path)
}
