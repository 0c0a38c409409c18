package corpus

import (
	"encoding/json"
	"fmt"

	"github.com/bitextio/bitext/core/lang"
)

// Counter counts units per language direction, preserving first-seen
// direction order for stable serialization.
type Counter struct {
	order  []lang.Direction
	counts map[lang.Direction]int
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[lang.Direction]int)}
}

// Add increments the count of d by n.
func (c *Counter) Add(d lang.Direction, n int) {
	if _, ok := c.counts[d]; !ok {
		c.order = append(c.order, d)
	}
	c.counts[d] += n
}

// Count increments the count of d by one.
func (c *Counter) Count(d lang.Direction) {
	c.Add(d, 1)
}

// Get returns the count of d.
func (c *Counter) Get(d lang.Direction) int {
	return c.counts[d]
}

// Total returns the sum over all directions.
func (c *Counter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Directions returns the counted directions in first-seen order.
func (c *Counter) Directions() []lang.Direction {
	return append([]lang.Direction(nil), c.order...)
}

// Len returns the number of distinct directions.
func (c *Counter) Len() int {
	return len(c.order)
}

// MarshalJSON encodes the counter as [[[src,tgt],count], ...] in first-seen
// direction order.
func (c *Counter) MarshalJSON() ([]byte, error) {
	items := make([][2]json.RawMessage, 0, len(c.order))
	for _, d := range c.order {
		dirJSON, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		countJSON, err := json.Marshal(c.counts[d])
		if err != nil {
			return nil, err
		}
		items = append(items, [2]json.RawMessage{dirJSON, countJSON})
	}
	return json.Marshal(items)
}

// UnmarshalJSON decodes the [[[src,tgt],count], ...] form.
func (c *Counter) UnmarshalJSON(data []byte) error {
	c.order = nil
	c.counts = make(map[lang.Direction]int)

	var items [][2]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for _, item := range items {
		var d lang.Direction
		if err := json.Unmarshal(item[0], &d); err != nil {
			return err
		}
		var n int
		if err := json.Unmarshal(item[1], &n); err != nil {
			return fmt.Errorf("counter: invalid count for %s: %w", d, err)
		}
		c.Add(d, n)
	}
	return nil
}
