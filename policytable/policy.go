// Package policytable implements the dense action table indexed by
// valid-state index, and its binary file persistence.
package policytable

import (
	"fmt"
	"os"

	"github.com/niceyeti/gridagent/geometry"
)

// Policy is a dense byte array of length space_size; entry k holds the
// action chosen at valid-state index k. A Policy's backing array is a
// plain Go slice: whether it is read and written by one goroutine or
// partitioned across many (see package train), no copying or process-
// shared allocation is required, since goroutines already share the heap.
type Policy struct {
	actions []byte
}

// New returns a Policy of the given size, every entry initialized to fill.
func New(size int, fill geometry.Action) *Policy {
	p := &Policy{actions: make([]byte, size)}
	for i := range p.actions {
		p.actions[i] = byte(fill)
	}
	return p
}

// Load reads a policy previously written by WriteToFile. The file's size
// determines the policy's length, per the size-driven, header-less wire
// format (§6): no length prefix, no checksum.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policytable: load %s: %w", path, err)
	}
	return &Policy{actions: data}, nil
}

// Len returns space_size.
func (p *Policy) Len() int { return len(p.actions) }

// Get returns the action stored at valid index k.
func (p *Policy) Get(k int) geometry.Action {
	return geometry.Action(p.actions[k])
}

// Set stores a at valid index k.
func (p *Policy) Set(k int, a geometry.Action) {
	p.actions[k] = byte(a)
}

// WriteToFile dumps the policy as a raw byte blob of exactly Len() bytes,
// with no header and no checksum.
func (p *Policy) WriteToFile(path string) error {
	if err := os.WriteFile(path, p.actions, 0o644); err != nil {
		return fmt.Errorf("policytable: write %s: %w", path, err)
	}
	return nil
}
