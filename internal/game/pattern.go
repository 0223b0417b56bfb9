package game

import "math/bits"

// WinPatterns are the 8 index triples that win when held by one player,
// checked in this order.
var WinPatterns = [8][3]int{
	{0, 1, 2},
	{0, 3, 6},
	{0, 4, 8},
	{1, 4, 7},
	{2, 5, 8},
	{2, 4, 6},
	{3, 4, 5},
	{6, 7, 8},
}

var winMasks = func() [len(WinPatterns)]MoveLog {
	var masks [len(WinPatterns)]MoveLog
	for i, p := range WinPatterns {
		masks[i] = MoveLog(0).With(p[0]).With(p[1]).With(p[2])
	}
	return masks
}()

// MoveLog is the set of cells one player occupies, one bit per index.
type MoveLog uint16

// With returns the log with index added.
func (l MoveLog) With(index int) MoveLog {
	return l | 1<<uint(index)
}

// Has reports whether index is in the log.
func (l MoveLog) Has(index int) bool {
	return index >= 0 && index < BoardSize && l&(1<<uint(index)) != 0
}

func (l MoveLog) Len() int {
	return bits.OnesCount16(uint16(l))
}

// Indices lists the occupied cells in ascending order.
func (l MoveLog) Indices() []int {
	out := make([]int, 0, l.Len())
	for i := 0; i < BoardSize; i++ {
		if l.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// CheckWinner reports whether any win pattern is a subset of log.
func CheckWinner(log MoveLog) bool {
	for _, m := range winMasks {
		if log&m == m {
			return true
		}
	}
	return false
}
