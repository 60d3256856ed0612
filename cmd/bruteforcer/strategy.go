package main

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/hanoi/game/engine"
)

var (
	ErrSmallestMissing = errors.New("smallest disk is not on a solving peg")
	ErrNoLegalMove     = errors.New("no legal move between the other pegs")
)

// CyclicStrategy derives the next optimal move from the pegs alone.
// Even moves carry the smallest disk one step around a fixed cycle of the
// source, spare and target pegs; odd moves make the only legal move between
// the two pegs the smallest disk is not on.
type CyclicStrategy struct {
	disks  int
	target int
	order  [3]int
}

// NewCyclicStrategy plans for n disks moving from peg 0 to target with peg 1 as spare
func NewCyclicStrategy(n, target int) *CyclicStrategy {
	order := [3]int{0, 1, target}
	if n%2 == 1 {
		order = [3]int{0, target, 1}
	}
	return &CyclicStrategy{disks: n, target: target, order: order}
}

func top(peg []int) int {
	if len(peg) == 0 {
		return -1
	}
	return peg[len(peg)-1]
}

// NextMove returns the move to make after moveCount optimal moves.
// pegs lists disk sizes bottom to top, 0 being the smallest.
func (s *CyclicStrategy) NextMove(pegs [][]int, moveCount int) (engine.Move, error) {
	at := -1
	for i, p := range s.order {
		if p < len(pegs) && top(pegs[p]) == 0 {
			at = i
			break
		}
	}
	if at < 0 {
		return engine.Move{}, ErrSmallestMissing
	}

	if moveCount%2 == 0 {
		return engine.Move{From: s.order[at], To: s.order[(at+1)%3]}, nil
	}

	a, b := s.order[(at+1)%3], s.order[(at+2)%3]
	ta, tb := top(pegs[a]), top(pegs[b])
	switch {
	case ta < 0 && tb < 0:
		return engine.Move{}, ErrNoLegalMove
	case ta < 0:
		return engine.Move{From: b, To: a}, nil
	case tb < 0 || ta < tb:
		return engine.Move{From: a, To: b}, nil
	default:
		return engine.Move{From: b, To: a}, nil
	}
}

// Plan returns up to limit moves starting from pegs, stopping once the tower
// sits on the target peg. pegs is not modified.
func (s *CyclicStrategy) Plan(pegs [][]int, moveCount, limit int) ([]engine.Move, error) {
	sim := make([][]int, len(pegs))
	for i, peg := range pegs {
		sim[i] = append([]int(nil), peg...)
	}

	var moves []engine.Move
	for len(moves) < limit && len(sim[s.target]) < s.disks {
		m, err := s.NextMove(sim, moveCount+len(moves))
		if err != nil {
			return moves, err
		}
		disk := top(sim[m.From])
		if dst := top(sim[m.To]); dst >= 0 && dst < disk {
			return moves, fmt.Errorf("move %s: disk %d cannot rest on disk %d", m, disk, dst)
		}
		sim[m.From] = sim[m.From][:len(sim[m.From])-1]
		sim[m.To] = append(sim[m.To], disk)
		moves = append(moves, m)
	}
	return moves, nil
}
