package scheduler

import (
	"container/heap"

	"edgellm/internal/catalog"
)

// request is one pending ask to make desc resident. done is resolved exactly once.
type request struct {
	desc  catalog.Descriptor
	seq   uint64
	done  chan error
	index int
}

func (r *request) resolve(err error) {
	select {
	case r.done <- err:
	default:
	}
}

// requestHeap orders by (priority asc, seq asc).
type requestHeap []*request

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].desc.Priority != h[j].desc.Priority {
		return h[i].desc.Priority < h[j].desc.Priority
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *requestHeap) Push(x any) {
	r := x.(*request)
	r.index = len(*h)
	*h = append(*h, r)
}

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	r.index = -1
	*h = old[:n-1]
	return r
}

// extract removes and returns every queued request for filename.
func (h *requestHeap) extract(filename string) []*request {
	var out []*request
	kept := (*h)[:0]
	for _, r := range *h {
		if r.desc.Filename == filename {
			out = append(out, r)
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(*h); i++ {
		(*h)[i] = nil
	}
	*h = kept
	for i, r := range *h {
		r.index = i
	}
	heap.Init(h)
	return out
}
