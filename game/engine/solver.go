package engine

import (
	"iter"
	"slices"
)

// Moves yields the canonical recursive solution that carries n disks from
// source to target using aux. The sequence is lazy and can be ranged over
// any number of times; it holds exactly 2^n - 1 moves.
func Moves(n, source, target, aux int) iter.Seq[Move] {
	return func(yield func(Move) bool) {
		hanoi(n, source, target, aux, yield)
	}
}

func hanoi(n, source, target, aux int, yield func(Move) bool) bool {
	if n <= 0 {
		return true
	}
	if !hanoi(n-1, source, aux, target, yield) {
		return false
	}
	if !yield(Move{From: source, To: target}) {
		return false
	}
	return hanoi(n-1, aux, target, source, yield)
}

// Solution collects the canonical solution for n disks from peg 0 to peg 2
func Solution(n int) []Move {
	return slices.Collect(Moves(n, 0, 2, 1))
}

// MinimumMoves returns 2^n - 1
func MinimumMoves(n int) int {
	if n <= 0 {
		return 0
	}
	return 1<<n - 1
}
