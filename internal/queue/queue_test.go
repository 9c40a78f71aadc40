package queue

import (
	"testing"

	"github.com/avaucher/ripple/internal/catalog"
)

func track(id string) catalog.Track {
	return catalog.Track{ID: id, Title: "Track " + id}
}

func ids(tracks []catalog.Track) []string {
	result := make([]string, len(tracks))
	for i, t := range tracks {
		result[i] = t.ID
	}
	return result
}

func assertOrder(t *testing.T, q *Queue, want ...string) {
	t.Helper()
	got := ids(q.Tracks())
	if len(got) != len(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue = %v, want %v", got, want)
		}
	}
}

func TestFIFO(t *testing.T) {
	q := New()
	q.Enqueue(track("a"))
	q.Enqueue(track("b"))

	head := q.DequeueHead()
	if head == nil || head.ID != "a" {
		t.Fatalf("DequeueHead = %v, want a", head)
	}
	assertOrder(t, q, "b")
}

func TestDequeueHead_Empty(t *testing.T) {
	q := New()
	if q.DequeueHead() != nil {
		t.Error("DequeueHead on empty queue should be nil")
	}
}

func TestPeek_DoesNotConsume(t *testing.T) {
	q := New()
	q.Enqueue(track("a"))

	if head := q.Peek(); head == nil || head.ID != "a" {
		t.Fatalf("Peek = %v, want a", head)
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d after Peek, want 1", q.Len())
	}
}

func TestRemoveAt(t *testing.T) {
	q := New()
	q.Enqueue(track("a"), track("b"), track("c"))

	if !q.RemoveAt(1) {
		t.Fatal("RemoveAt(1) = false, want true")
	}
	assertOrder(t, q, "a", "c")
}

func TestRemoveAt_OutOfRangeIsNoOp(t *testing.T) {
	q := New()
	q.Enqueue(track("a"))

	if q.RemoveAt(-1) {
		t.Error("RemoveAt(-1) = true, want false")
	}
	if q.RemoveAt(1) {
		t.Error("RemoveAt(1) = true, want false")
	}
	assertOrder(t, q, "a")
}

func TestMove(t *testing.T) {
	q := New()
	q.Enqueue(track("a"), track("b"), track("c"))

	if !q.Move(0, 2) {
		t.Fatal("Move(0,2) = false, want true")
	}
	assertOrder(t, q, "b", "c", "a")

	if !q.Move(2, 0) {
		t.Fatal("Move(2,0) = false, want true")
	}
	assertOrder(t, q, "a", "b", "c")
}

func TestMove_SamePosition(t *testing.T) {
	q := New()
	q.Enqueue(track("a"), track("b"))

	if !q.Move(1, 1) {
		t.Error("Move to same position should succeed")
	}
	assertOrder(t, q, "a", "b")
}

func TestMove_OutOfRangeIsNoOp(t *testing.T) {
	q := New()
	q.Enqueue(track("a"), track("b"))

	if q.Move(-1, 0) || q.Move(0, 2) || q.Move(5, 0) {
		t.Error("out-of-range Move should return false")
	}
	assertOrder(t, q, "a", "b")
}

func TestClear(t *testing.T) {
	q := New()
	q.Enqueue(track("a"), track("b"))
	q.Clear()

	if !q.IsEmpty() {
		t.Error("queue should be empty after Clear")
	}
	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0", q.Len())
	}
}

func TestTracks_ReturnsCopy(t *testing.T) {
	q := New()
	q.Enqueue(track("a"))

	tracks := q.Tracks()
	tracks[0].ID = "mutated"

	if q.Tracks()[0].ID != "a" {
		t.Error("mutating the returned slice changed the queue")
	}
}
