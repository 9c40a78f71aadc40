// Package queue holds the pending play queue: an ordered list of tracks
// separate from the catalog. While non-empty it takes priority over catalog
// order for "next".
package queue

import "github.com/avaucher/ripple/internal/catalog"

// Queue is an ordered pending list with FIFO consumption. Out-of-range
// indices are no-ops rather than errors; concurrent user actions can race
// the UI state they were issued against.
type Queue struct {
	tracks []catalog.Track
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{tracks: make([]catalog.Track, 0)}
}

// Enqueue appends tracks to the end of the queue.
func (q *Queue) Enqueue(tracks ...catalog.Track) {
	q.tracks = append(q.tracks, tracks...)
}

// DequeueHead removes and returns the first track. Returns nil when empty.
func (q *Queue) DequeueHead() *catalog.Track {
	if len(q.tracks) == 0 {
		return nil
	}
	head := q.tracks[0]
	q.tracks = q.tracks[1:]
	return &head
}

// Peek returns the first track without removing it, or nil when empty.
func (q *Queue) Peek() *catalog.Track {
	if len(q.tracks) == 0 {
		return nil
	}
	head := q.tracks[0]
	return &head
}

// RemoveAt removes the track at the given position.
// Returns false for out-of-range indices.
func (q *Queue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.tracks) {
		return false
	}
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	return true
}

// Move moves the track at from to position to.
// Returns false if either index is out of range.
func (q *Queue) Move(from, to int) bool {
	if from < 0 || from >= len(q.tracks) {
		return false
	}
	if to < 0 || to >= len(q.tracks) {
		return false
	}
	if from == to {
		return true
	}

	track := q.tracks[from]
	q.tracks = append(q.tracks[:from], q.tracks[from+1:]...)
	q.tracks = append(q.tracks[:to], append([]catalog.Track{track}, q.tracks[to:]...)...)
	return true
}

// Clear removes all tracks.
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
}

// Tracks returns a copy of all queued tracks in order.
func (q *Queue) Tracks() []catalog.Track {
	result := make([]catalog.Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}
