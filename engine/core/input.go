package core

// Input tracks key and pointer state from the event stream.
type Input struct {
	keys           map[Key]bool
	pressed        map[Key]bool
	mouseX, mouseY float64
	scrollY        float64
}

func NewInput() *Input { return &Input{keys: map[Key]bool{}, pressed: map[Key]bool{}} }

func (in *Input) Handle(ev Event) {
	switch e := ev.(type) {
	case EventKey:
		if e.Down && !in.keys[e.Key] {
			in.pressed[e.Key] = true
		}
		in.keys[e.Key] = e.Down
	case EventMouseMove:
		in.mouseX, in.mouseY = e.X, e.Y
	case EventScroll:
		in.scrollY += e.Yoff
	}
}

func (in *Input) IsKeyDown(k Key) bool      { return in.keys[k] }
func (in *Input) Mouse() (float64, float64) { return in.mouseX, in.mouseY }

// WasPressed reports whether k went down since the last call for k.
// Key repeats do not count.
func (in *Input) WasPressed(k Key) bool {
	p := in.pressed[k]
	delete(in.pressed, k)
	return p
}

// Scroll returns the vertical scroll accumulated since the last call.
func (in *Input) Scroll() float64 {
	s := in.scrollY
	in.scrollY = 0
	return s
}
