package game

import (
	"math/rand/v2"
	"testing"
)

// play applies moves in order and fails the test on the first rejection.
func play(t *testing.T, moves ...int) State {
	t.Helper()
	s := New()
	for _, m := range moves {
		var ok bool
		s, ok = s.Apply(m)
		if !ok {
			t.Fatalf("move %d rejected, board %v", m, s.Board())
		}
	}
	return s
}

func TestNew(t *testing.T) {
	s := New()
	if s.Turn() != PlayerO {
		t.Errorf("Turn() = %q, want %q", s.Turn(), PlayerO)
	}
	if s.Status() != InProgress {
		t.Errorf("Status() = %q, want %q", s.Status(), InProgress)
	}
	if s.Board() != (Board{}) {
		t.Errorf("Board() = %v, want empty", s.Board())
	}
	if got := s.StatusText(); got != "Player O's turn" {
		t.Errorf("StatusText() = %q", got)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		moves      []int
		wantStatus Status
		wantWinner Mark
		wantTurn   Mark
		wantText   string
	}{
		{
			name:       "first move flips turn",
			moves:      []int{4},
			wantStatus: InProgress,
			wantTurn:   PlayerX,
			wantText:   "Player X's turn",
		},
		{
			name:       "O wins top row",
			moves:      []int{0, 3, 1, 4, 2},
			wantStatus: Won,
			wantWinner: PlayerO,
			wantTurn:   PlayerO,
			wantText:   "Player O Wins!",
		},
		{
			name:       "X wins anti-diagonal",
			moves:      []int{0, 2, 1, 4, 8, 6},
			wantStatus: Won,
			wantWinner: PlayerX,
			wantTurn:   PlayerX,
			wantText:   "Player X Wins!",
		},
		{
			name: "draw",
			// O X O
			// O X X
			// X O O
			moves:      []int{0, 1, 2, 4, 3, 5, 7, 6, 8},
			wantStatus: Draw,
			wantTurn:   PlayerO,
			wantText:   "Game was a Draw.",
		},
		{
			name: "win on the last cell is a win, not a draw",
			// O X O
			// X O X
			// X O O
			moves:      []int{0, 1, 2, 3, 4, 5, 7, 6, 8},
			wantStatus: Won,
			wantWinner: PlayerO,
			wantTurn:   PlayerO,
			wantText:   "Player O Wins!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := play(t, tt.moves...)
			if s.Status() != tt.wantStatus {
				t.Errorf("Status() = %q, want %q", s.Status(), tt.wantStatus)
			}
			if w, _ := s.Winner(); w != tt.wantWinner {
				t.Errorf("Winner() = %q, want %q", w, tt.wantWinner)
			}
			if s.Turn() != tt.wantTurn {
				t.Errorf("Turn() = %q, want %q", s.Turn(), tt.wantTurn)
			}
			if s.StatusText() != tt.wantText {
				t.Errorf("StatusText() = %q, want %q", s.StatusText(), tt.wantText)
			}
		})
	}
}

func TestApplyRejects(t *testing.T) {
	t.Run("occupied cell", func(t *testing.T) {
		s := play(t, 4)
		next, ok := s.Apply(4)
		if ok {
			t.Fatal("second move on cell 4 accepted")
		}
		if next != s {
			t.Errorf("state changed after rejected move")
		}
	})

	t.Run("out of range", func(t *testing.T) {
		s := New()
		for _, idx := range []int{-1, 9, 100} {
			if next, ok := s.Apply(idx); ok || next != s {
				t.Errorf("Apply(%d) accepted", idx)
			}
		}
	})

	t.Run("after win", func(t *testing.T) {
		s := play(t, 0, 3, 1, 4, 2)
		for _, idx := range s.EmptyCells() {
			if next, ok := s.Apply(idx); ok || next != s {
				t.Errorf("Apply(%d) accepted after win", idx)
			}
		}
	})

	t.Run("after draw", func(t *testing.T) {
		s := play(t, 0, 1, 2, 4, 3, 5, 7, 6, 8)
		for i := 0; i < BoardSize; i++ {
			if next, ok := s.Apply(i); ok || next != s {
				t.Errorf("Apply(%d) accepted after draw", i)
			}
		}
	})
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	s := New()
	next, ok := s.Apply(0)
	if !ok {
		t.Fatal("Apply(0) rejected")
	}
	if s.Cell(0) != Empty || s.Turn() != PlayerO {
		t.Errorf("receiver mutated: cell=%q turn=%q", s.Cell(0), s.Turn())
	}
	if next.Cell(0) != PlayerO {
		t.Errorf("next.Cell(0) = %q", next.Cell(0))
	}
}

// TestRandomGames drives many random games and checks the invariants that must
// hold after every accepted move.
func TestRandomGames(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for g := 0; g < 500; g++ {
		s := New()
		accepted := 0
		for step := 0; step < 20; step++ {
			prev := s
			idx := rng.IntN(BoardSize+2) - 1
			var ok bool
			s, ok = s.Apply(idx)
			if !ok {
				if s != prev {
					t.Fatalf("rejected move changed state")
				}
				continue
			}
			accepted++

			filled := 0
			for i, c := range s.Board() {
				if c == Empty {
					continue
				}
				filled++
				if !s.MoveLog(c).Has(i) {
					t.Fatalf("cell %d holds %q but is missing from its log", i, c)
				}
			}
			if filled != accepted || s.MovesPlayed() != accepted {
				t.Fatalf("filled=%d moves=%d accepted=%d", filled, s.MovesPlayed(), accepted)
			}
			if s.MoveLog(PlayerO)&s.MoveLog(PlayerX) != 0 {
				t.Fatalf("move logs overlap")
			}
			if s.IsOver() {
				if s.Turn() != prev.Turn() {
					t.Fatalf("turn flipped on terminal move")
				}
			} else if s.Turn() != prev.Turn().Opponent() {
				t.Fatalf("turn did not alternate")
			}
		}
	}
}

func TestRestore(t *testing.T) {
	states := map[string]State{
		"empty":       New(),
		"in progress": play(t, 4, 0, 8),
		"won":         play(t, 0, 3, 1, 4, 2),
		"draw":        play(t, 0, 1, 2, 4, 3, 5, 7, 6, 8),
	}
	for name, s := range states {
		t.Run(name, func(t *testing.T) {
			w, _ := s.Winner()
			got, err := Restore(s.Board(), s.Turn(), s.Status(), w)
			if err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if got != s {
				t.Errorf("Restore() = %+v, want %+v", got, s)
			}
		})
	}

	t.Run("wrong turn", func(t *testing.T) {
		s := play(t, 4)
		if _, err := Restore(s.Board(), PlayerO, InProgress, Empty); err == nil {
			t.Error("expected error for wrong turn")
		}
	})

	t.Run("too many X marks", func(t *testing.T) {
		b := Board{PlayerX, PlayerX}
		if _, err := Restore(b, PlayerO, InProgress, Empty); err == nil {
			t.Error("expected error for mark count")
		}
	})

	t.Run("unknown mark", func(t *testing.T) {
		b := Board{"Z"}
		if _, err := Restore(b, PlayerO, InProgress, Empty); err == nil {
			t.Error("expected error for unknown mark")
		}
	})
}
