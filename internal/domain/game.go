package domain

import "errors"

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// NoMove marks the initial snapshot, which was not produced by a move.
const NoMove = -1

// Snapshot is the board after a move plus the cell that move filled.
type Snapshot struct {
	Board     Board
	LastMoved int
}

// Position returns the display position of the cell this snapshot filled.
// It reports false for the initial snapshot.
func (s Snapshot) Position() (Position, bool) {
	if s.LastMoved == NoMove {
		return Position{}, false
	}
	p, err := SquarePosition(s.LastMoved)
	if err != nil {
		return Position{}, false
	}
	return p, true
}

// Game holds the move history of a match and the step being viewed.
// Transitions return a new Game; snapshots already in History are never
// modified.
type Game struct {
	History        []Snapshot
	Step           int
	XIsNext        bool
	SortDescending bool
}

// Errors returned by domain operations. Every rejected operation also
// returns the game unchanged, so callers may ignore them.
var (
	ErrOutOfBounds    = errors.New("out of bounds")
	ErrOccupied       = errors.New("cell occupied")
	ErrGameOver       = errors.New("game over")
	ErrStepOutOfRange = errors.New("step out of range")
)

// New returns a new game with an empty board and X to move.
func New() Game {
	return Game{
		History: []Snapshot{{LastMoved: NoMove}},
		XIsNext: true,
	}
}

// Current returns the snapshot at the viewed step.
func (g Game) Current() Snapshot {
	return g.History[g.Step]
}

// Mark is the mark the next accepted move will place.
func (g Game) Mark() Cell {
	if g.XIsNext {
		return X
	}
	return O
}

// Play places the current mark at index on the viewed board. Any history
// after the viewed step is discarded.
func (g Game) Play(index int) (Game, error) {
	if index < 0 || index >= len(Board{}) {
		return g, ErrOutOfBounds
	}
	board := g.Current().Board
	if _, won := CalculateWinner(board); won {
		return g, ErrGameOver
	}
	if board[index] != Empty {
		return g, ErrOccupied
	}

	board[index] = g.Mark()

	// Fresh backing array so the receiver's history stays intact.
	history := make([]Snapshot, g.Step+1, g.Step+2)
	copy(history, g.History[:g.Step+1])
	history = append(history, Snapshot{Board: board, LastMoved: index})

	g.History = history
	g.Step = len(history) - 1
	g.XIsNext = !g.XIsNext
	return g, nil
}

// JumpTo views the given history step. X moves on even steps.
func (g Game) JumpTo(step int) (Game, error) {
	if step < 0 || step >= len(g.History) {
		return g, ErrStepOutOfRange
	}
	g.Step = step
	g.XIsNext = step%2 == 0
	return g, nil
}

// ToggleSort flips the move list order.
func (g Game) ToggleSort() Game {
	g.SortDescending = !g.SortDescending
	return g
}

// Win describes a completed line.
type Win struct {
	Player  Cell
	Squares [3]int
}

var lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// CalculateWinner returns the first completed line on b, if any.
func CalculateWinner(b Board) (Win, bool) {
	for _, ln := range lines {
		a := b[ln[0]]
		if a != Empty && a == b[ln[1]] && a == b[ln[2]] {
			return Win{Player: a, Squares: ln}, true
		}
	}
	return Win{}, false
}

// Position is a 1-based column and row.
type Position struct {
	Col int
	Row int
}

// SquarePosition returns the display position of a cell on the 3x3 board.
func SquarePosition(index int) (Position, error) {
	if index < 0 || index >= len(Board{}) {
		return Position{}, ErrOutOfBounds
	}
	return PositionOn(index, 3), nil
}

// PositionOn returns the 1-based position of index on a board with cols
// columns. index must be non-negative and cols positive.
func PositionOn(index, cols int) Position {
	return Position{
		Col: index%cols + 1,
		// ceil((index+1)/cols)
		Row: (index + cols) / cols,
	}
}
