package domain

import "fmt"

// MoveEntry is one line of the move list.
type MoveEntry struct {
	// Number is the entry's index in History regardless of sort order.
	Number  int
	Label   string
	Current bool
}

// View is everything a renderer needs to draw the viewed step.
type View struct {
	Board          Board
	Winner         *Win
	Status         string
	NextPlayer     Cell
	Moves          []MoveEntry
	SortDescending bool
	Step           int
}

// Highlighted reports whether i belongs to the winning line.
func (v View) Highlighted(i int) bool {
	if v.Winner == nil {
		return false
	}
	for _, sq := range v.Winner.Squares {
		if sq == i {
			return true
		}
	}
	return false
}

// View derives the display data for the viewed step.
func (g Game) View() View {
	v := View{
		Board:          g.Current().Board,
		NextPlayer:     g.Mark(),
		SortDescending: g.SortDescending,
		Step:           g.Step,
	}
	if w, ok := CalculateWinner(v.Board); ok {
		v.Winner = &w
		v.Status = "Winner: " + w.Player.String()
	} else {
		v.Status = "Next player: " + v.NextPlayer.String()
	}

	v.Moves = make([]MoveEntry, 0, len(g.History))
	for i := range g.History {
		n := i
		if g.SortDescending {
			n = len(g.History) - 1 - i
		}
		v.Moves = append(v.Moves, MoveEntry{
			Number:  n,
			Label:   MoveLabel(n, g.History[n]),
			Current: n == g.Step,
		})
	}
	return v
}

// MoveLabel is the jump button text for history entry n.
func MoveLabel(n int, s Snapshot) string {
	p, ok := s.Position()
	if n == 0 || !ok {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d (col %d, row %d)", n, p.Col, p.Row)
}
