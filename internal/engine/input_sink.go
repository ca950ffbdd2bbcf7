package engine

// InputSink is the engine's raw-input dispatch target (spec.md §4.4:
// "delivered through the engine's raw-input dispatch, so the game cannot
// distinguish synthetic from real input"). The Input Injector never
// touches engine internals directly — it only calls this contract.
type InputSink interface {
	// Key dispatches a synthetic key event. keycode is an engine keycode
	// resolved from a name table; pressed is true for press, false for
	// release.
	Key(keycode int, pressed bool)
	// MouseButton dispatches a synthetic mouse button event at the given
	// local/global position.
	MouseButton(button int, pressed bool, doubleClick bool, x, y, globalX, globalY float64)
	// MouseMotion dispatches cursor movement.
	MouseMotion(x, y, relX, relY float64)
	// Action dispatches a mapped-action event, driving the engine's
	// InputMap regardless of concrete key bindings (spec.md §4.4).
	Action(name string, pressed bool, strength float64)
}

// RecordedInput is one call captured by FakeInputSink, used by tests to
// assert press/release ordering and payload shape.
type RecordedInput struct {
	Kind                    string // "key", "mouse_button", "mouse_motion", "action"
	Keycode                 int
	Button                  int
	Pressed                 bool
	Double                  bool
	X, Y, GlobalX, GlobalY  float64
	RelX, RelY              float64
	Action                  string
	Strength                float64
}

// FakeInputSink is an in-memory InputSink recording every dispatched
// event in order, for use by tests and by cmd/runtime-bridge when no
// engine is attached.
type FakeInputSink struct {
	Events []RecordedInput
}

func NewFakeInputSink() *FakeInputSink { return &FakeInputSink{} }

func (f *FakeInputSink) Key(keycode int, pressed bool) {
	f.Events = append(f.Events, RecordedInput{Kind: "key", Keycode: keycode, Pressed: pressed})
}

func (f *FakeInputSink) MouseButton(button int, pressed bool, double bool, x, y, gx, gy float64) {
	f.Events = append(f.Events, RecordedInput{
		Kind: "mouse_button", Button: button, Pressed: pressed, Double: double,
		X: x, Y: y, GlobalX: gx, GlobalY: gy,
	})
}

func (f *FakeInputSink) MouseMotion(x, y, relX, relY float64) {
	f.Events = append(f.Events, RecordedInput{Kind: "mouse_motion", X: x, Y: y, RelX: relX, RelY: relY})
}

func (f *FakeInputSink) Action(name string, pressed bool, strength float64) {
	f.Events = append(f.Events, RecordedInput{Kind: "action", Action: name, Pressed: pressed, Strength: strength})
}
