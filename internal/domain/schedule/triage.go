package schedule

import (
	"container/heap"

	"github.com/google/uuid"
)

// TriageQueue orders waiting emergency patients by urgency level, 1 being
// the most critical. Patients with equal urgency are served in arrival
// order; the monotonic sequence number is the tie-break key.
type TriageQueue struct {
	entries triageHeap
	seq     uint64
}

func NewTriageQueue() *TriageQueue {
	return &TriageQueue{}
}

// Push enqueues a waiting patient at the given urgency level.
func (q *TriageQueue) Push(patientID uuid.UUID, urgency int) error {
	if !IsValidUrgency(urgency) {
		return ErrInvalidUrgency
	}
	q.seq++
	heap.Push(&q.entries, &triageEntry{
		patientID: patientID,
		urgency:   urgency,
		seq:       q.seq,
	})
	return nil
}

// Pop removes and returns the most critical waiting patient. The boolean
// is false when the queue is empty.
func (q *TriageQueue) Pop() (uuid.UUID, int, bool) {
	if q.entries.Len() == 0 {
		return uuid.Nil, 0, false
	}
	e := heap.Pop(&q.entries).(*triageEntry)
	return e.patientID, e.urgency, true
}

// Remove drops every queued entry for the patient, reporting whether any
// existed. Used when a patient record is deleted.
func (q *TriageQueue) Remove(patientID uuid.UUID) bool {
	removed := false
	for i := 0; i < q.entries.Len(); {
		if q.entries[i].patientID == patientID {
			heap.Remove(&q.entries, i)
			removed = true
			continue
		}
		i++
	}
	return removed
}

func (q *TriageQueue) Len() int {
	return q.entries.Len()
}

type triageEntry struct {
	patientID uuid.UUID
	urgency   int
	seq       uint64
	index     int
}

type triageHeap []*triageEntry

func (h triageHeap) Len() int { return len(h) }

func (h triageHeap) Less(i, j int) bool {
	if h[i].urgency != h[j].urgency {
		return h[i].urgency < h[j].urgency
	}
	return h[i].seq < h[j].seq
}

func (h triageHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *triageHeap) Push(x any) {
	e := x.(*triageEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *triageHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
