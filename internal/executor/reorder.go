package executor

import "github.com/harrison/scour/internal/models"

// reorderBuffer holds out-of-order results until the next expected index arrives.
type reorderBuffer struct {
	next    int
	pending map[int]models.FileResult
}

func newReorderBuffer(first int) *reorderBuffer {
	return &reorderBuffer{next: first, pending: make(map[int]models.FileResult)}
}

// Push stores result and returns every result that is now ready, in index order.
func (b *reorderBuffer) Push(result models.FileResult) []models.FileResult {
	b.pending[result.Index] = result

	var ready []models.FileResult
	for {
		r, ok := b.pending[b.next]
		if !ok {
			return ready
		}
		delete(b.pending, b.next)
		ready = append(ready, r)
		b.next++
	}
}

// Pending returns how many results are waiting for an earlier index.
func (b *reorderBuffer) Pending() int {
	return len(b.pending)
}
