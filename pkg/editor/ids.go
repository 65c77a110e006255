package editor

import "strconv"

// InstanceID identifies one placed section. Ids are never reused.
type InstanceID int

// String implements fmt.Stringer.
func (id InstanceID) String() string { return strconv.Itoa(int(id)) }

// ParseInstanceID parses the decimal form produced by String.
func ParseInstanceID(raw string) (InstanceID, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return InstanceID(value), nil
}

// IDGenerator hands out instance ids.
type IDGenerator interface {
	Next() InstanceID
	// Seed guarantees every later id is greater than floor.
	Seed(floor InstanceID)
}

// Counter is the default monotonic IDGenerator. The zero value starts at 1.
type Counter struct {
	last InstanceID
}

// NewCounter returns a counter whose first id is start+1.
func NewCounter(start InstanceID) *Counter {
	return &Counter{last: start}
}

// Next implements IDGenerator.
func (c *Counter) Next() InstanceID {
	c.last++
	return c.last
}

// Seed implements IDGenerator.
func (c *Counter) Seed(floor InstanceID) {
	if floor > c.last {
		c.last = floor
	}
}
