package board

import "sort"

// MovePriority represents the move order priority.
type MovePriority int

// MovePriorityFn assigns a priority to moves.
type MovePriorityFn func(move Move) MovePriority

// SortByPriority sorts the moves by descending priority, preserving order
// for same priority.
func SortByPriority(moves []Move, fn MovePriorityFn) {
	sort.SliceStable(moves, func(i, j int) bool {
		return fn(moves[i]) > fn(moves[j])
	})
}
