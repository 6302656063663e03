package probe

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// Checker is anything that can report whether a link is live.
type Checker interface {
	Check(ctx context.Context, link string) Result
}

// Dedupe shares one check per distinct link between concurrent callers.
// The first caller for a link runs the check; later callers wait for its
// result. A Dedupe lives for a single parse and is then discarded.
type Dedupe struct {
	checker Checker
	calls   *xsync.MapOf[string, *call]
}

type call struct {
	done chan struct{}
	res  Result
}

// NewDedupe wraps checker.
func NewDedupe(checker Checker) *Dedupe {
	return &Dedupe{
		checker: checker,
		calls:   xsync.NewMapOf[string, *call](),
	}
}

// Check returns the verdict for link, running the wrapped check at most once.
// A waiter whose ctx ends first gets a not-live result.
func (d *Dedupe) Check(ctx context.Context, link string) Result {
	c, loaded := d.calls.LoadOrCompute(link, func() *call {
		return &call{done: make(chan struct{})}
	})

	if loaded {
		select {
		case <-c.done:
			return c.res
		case <-ctx.Done():
			return Result{Kind: KindNone}
		}
	}

	c.res = d.checker.Check(ctx, link)
	close(c.done)
	return c.res
}

// Len returns the number of distinct links seen.
func (d *Dedupe) Len() int {
	return d.calls.Size()
}
