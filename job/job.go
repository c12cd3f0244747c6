package job

import (
	"fmt"

	"github.com/staggerhq/stagger"
)

// Job is one unit of work: a numeric ID unique within the batch, the
// name of the worker that must execute it, and the category that decides
// its shared rate-limit gate.
type Job struct {
	ID       int64  `json:"id"`
	Worker   string `json:"worker"`
	Category string `json:"category"`
}

// String returns a compact description for logs.
func (j Job) String() string {
	return fmt.Sprintf("job %d (%s/%s)", j.ID, j.Worker, j.Category)
}

// NewBatch builds a batch from (id, worker, category) triples, rejecting
// duplicate job IDs. Input order is preserved; it defines the per-worker
// execution order.
func NewBatch(triples ...Job) ([]*Job, error) {
	seen := make(map[int64]struct{}, len(triples))
	batch := make([]*Job, 0, len(triples))
	for i := range triples {
		j := triples[i]
		if _, dup := seen[j.ID]; dup {
			return nil, fmt.Errorf("%w: %d", stagger.ErrDuplicateJobID, j.ID)
		}
		seen[j.ID] = struct{}{}
		batch = append(batch, &j)
	}
	return batch, nil
}
