package cli

import (
	"context"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"strconv"
	"strings"
)

// boardView draws render states and alerts on the terminal.
type boardView struct {
	app *App
}

func (v *boardView) Render(_ context.Context, rs session.RenderState) {
	var b strings.Builder
	b.WriteString("\n")
	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteString("---+---+---\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				b.WriteString("|")
			}
			b.WriteString(" " + v.cell(rs.Cells[row*3+col]) + " ")
		}
		b.WriteString("\n")
	}
	b.WriteString(rs.StatusText + "\n")
	if !rs.GameOver {
		b.WriteString("> ")
	}
	v.app.printf("%s", b.String())
}

func (v *boardView) Alert(_ context.Context, n session.Notification) {
	out := v.app.out
	v.app.printf("\n[ %s ] %s\nr for a new game, q to go back.\n> ",
		out.String(n.Title).Bold().Reverse(), n.Body)
}

func (v *boardView) cell(c session.Cell) string {
	out := v.app.out
	switch c.Mark {
	case game.PlayerO:
		return out.String(string(c.Mark)).Foreground(out.Color("4")).Bold().String()
	case game.PlayerX:
		return out.String(string(c.Mark)).Foreground(out.Color("1")).Bold().String()
	}
	label := strconv.Itoa(c.Index + 1)
	if !c.Interactive {
		return out.String(label).Faint().String()
	}
	return label
}
