// File: internal/plugin/hooks.go
package plugin

import "context"

// File identifies one input file as it moves through the loader.
type File struct {
	Name  string // base name, e.g. "users.csv"
	Path  string
	Ext   string // lower-case, with the dot
	Table string
}

// Hooks defines lifecycle callbacks for file loads. Callbacks run on the
// loader's goroutine in file-name order.
type Hooks interface {
	// BeforeLoad runs before a file is persisted; a non-nil error skips it
	// and is recorded as the failure reason.
	BeforeLoad(ctx context.Context, f File) error
	// AfterLoad reports the outcome: rows written, or the error that failed the file.
	AfterLoad(ctx context.Context, f File, rows int, err error)
}

// Nop implements Hooks with no behaviour.
type Nop struct{}

func (Nop) BeforeLoad(context.Context, File) error { return nil }
func (Nop) AfterLoad(context.Context, File, int, error) {}

// Chain fans callbacks out to several hooks. BeforeLoad stops at the first error.
type Chain []Hooks

func (c Chain) BeforeLoad(ctx context.Context, f File) error {
	for _, h := range c {
		if err := h.BeforeLoad(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (c Chain) AfterLoad(ctx context.Context, f File, rows int, err error) {
	for _, h := range c {
		h.AfterLoad(ctx, f, rows, err)
	}
}
