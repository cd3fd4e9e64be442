package command

// maxCount caps accumulated counts. Puts and searches do work in
// proportion to the count, so the cap stays small.
const maxCount = 10000

// CountState accumulates a numeric prefix.
type CountState struct {
	Value  int
	Active bool
}

// Reset clears the count.
func (c *CountState) Reset() {
	c.Value = 0
	c.Active = false
}

// Accumulate adds a digit. A leading 0 is not a count; it is the
// line-start motion, so it is refused.
func (c *CountState) Accumulate(t Token) bool {
	d, ok := t.Digit()
	if !ok {
		return false
	}
	if !c.Active && d == 0 {
		return false
	}
	c.Active = true
	if c.Value > (maxCount-d)/10 {
		c.Value = maxCount
		return true
	}
	c.Value = c.Value*10 + d
	return true
}

// Get returns the effective count, 1 when none was typed.
func (c *CountState) Get() int {
	if c.Value <= 0 {
		return 1
	}
	return c.Value
}
