package routingalgorithm

// candidateHeap binary min-heap berisi candidate path yen. Urut cost, lalu urutan node
// (lexicographic node index == lexicographic node id), jadi pop selalu deterministic.
type candidateHeap struct {
	heap []indexedPath
}

func newCandidateHeap() *candidateHeap {
	return &candidateHeap{heap: make([]indexedPath, 0)}
}

func (h *candidateHeap) size() int {
	return len(h.heap)
}

func (h *candidateHeap) less(i, j int) bool {
	a, b := h.heap[i], h.heap[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	for x := 0; x < len(a.nodes) && x < len(b.nodes); x++ {
		if a.nodes[x] != b.nodes[x] {
			return a.nodes[x] < b.nodes[x]
		}
	}
	return len(a.nodes) < len(b.nodes)
}

func (h *candidateHeap) push(p indexedPath) {
	h.heap = append(h.heap, p)
	i := len(h.heap) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.heap[i], h.heap[parent] = h.heap[parent], h.heap[i]
		i = parent
	}
}

func (h *candidateHeap) pop() indexedPath {
	root := h.heap[0]
	last := len(h.heap) - 1
	h.heap[0] = h.heap[last]
	h.heap = h.heap[:last]

	i := 0
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < len(h.heap) && h.less(left, smallest) {
			smallest = left
		}
		if right < len(h.heap) && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return root
		}
		h.heap[i], h.heap[smallest] = h.heap[smallest], h.heap[i]
		i = smallest
	}
}
