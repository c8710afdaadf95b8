package trace

// Cursor is a position in a trace. The index is always clamped to
// [0, len-1]; on an empty trace there is no current step.
type Cursor struct {
	steps []Step
	index int
}

func NewCursor(t *Trace) *Cursor {
	c := &Cursor{}
	if t != nil {
		c.steps = t.Steps
	}
	return c
}

// Current returns the step under the cursor, false when the trace is empty.
func (c *Cursor) Current() (Step, bool) {
	if len(c.steps) == 0 {
		return Step{}, false
	}
	return c.steps[c.index], true
}

// Forward moves one step ahead and reports whether the cursor moved.
func (c *Cursor) Forward() bool {
	if c.index+1 >= len(c.steps) {
		return false
	}
	c.index++
	return true
}

// Backward moves one step back and reports whether the cursor moved.
func (c *Cursor) Backward() bool {
	if c.index == 0 {
		return false
	}
	c.index--
	return true
}

// Seek moves to i, clamped into range.
func (c *Cursor) Seek(i int) {
	switch {
	case len(c.steps) == 0 || i < 0:
		c.index = 0
	case i >= len(c.steps):
		c.index = len(c.steps) - 1
	default:
		c.index = i
	}
}

// Reset discards the steps. A new trace has to be loaded with Load.
func (c *Cursor) Reset() {
	c.steps = nil
	c.index = 0
}

// Load replaces the steps and rewinds to the first one.
func (c *Cursor) Load(t *Trace) {
	c.Reset()
	if t != nil {
		c.steps = t.Steps
	}
}

func (c *Cursor) Index() int    { return c.index }
func (c *Cursor) Len() int      { return len(c.steps) }
func (c *Cursor) AtStart() bool { return c.index == 0 }
func (c *Cursor) AtEnd() bool   { return len(c.steps) == 0 || c.index == len(c.steps)-1 }
