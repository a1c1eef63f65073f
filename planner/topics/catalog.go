package topics

import (
	"fmt"
	"slices"
)

// Catalog is the ordered list of syllabus topics offered for a course.
type Catalog struct {
	topics []string
}

// NewCatalog returns a catalog holding topics in order, skipping repeats.
func NewCatalog(topics ...string) *Catalog {
	c := &Catalog{}
	for _, t := range topics {
		c.Add(t)
	}
	return c
}

// Add appends topic unless it is empty or already listed.
func (c *Catalog) Add(topic string) {
	if topic == "" || slices.Contains(c.topics, topic) {
		return
	}
	c.topics = append(c.topics, topic)
}

// Topics returns the raw topics in insertion order.
func (c *Catalog) Topics() []string { return slices.Clone(c.topics) }

// Labels returns each topic numbered from 1, as "<n> - <topic>".
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.topics))
	for i, t := range c.topics {
		out[i] = fmt.Sprintf("%d - %s", i+1, t)
	}
	return out
}

func (c *Catalog) Len() int { return len(c.topics) }
