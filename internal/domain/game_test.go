package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var winningLines = [][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// helper to apply a sequence of moves
func playMoves(t *testing.T, g Game, moves ...int) Game {
	t.Helper()
	for i, m := range moves {
		var err error
		g, err = g.Play(m)
		require.NoError(t, err, "move %d (%d)", i, m)
	}
	return g
}

// fillers returns the first n cells of order that are not on line.
func fillers(line [3]int, n int, order ...int) []int {
	out := make([]int, 0, n)
	for _, f := range order {
		if f != line[0] && f != line[1] && f != line[2] {
			out = append(out, f)
		}
		if len(out) == n {
			break
		}
	}
	return out
}

func TestNewGameInitialState(t *testing.T) {
	g := New()

	require.Len(t, g.History, 1)
	assert.Equal(t, 0, g.Step)
	assert.True(t, g.XIsNext)
	assert.False(t, g.SortDescending)
	assert.Equal(t, Board{}, g.History[0].Board)
	assert.Equal(t, NoMove, g.History[0].LastMoved)
	assert.Equal(t, X, g.Mark())
}

func TestPlayOutOfBounds(t *testing.T) {
	g := New()
	for _, idx := range []int{-1, 9, 42} {
		got, err := g.Play(idx)
		require.ErrorIs(t, err, ErrOutOfBounds, "index %d", idx)
		require.Equal(t, g, got)
	}
}

func TestPlayOccupiedLeavesStateUnchanged(t *testing.T) {
	g := playMoves(t, New(), 0)

	got, err := g.Play(0)
	require.ErrorIs(t, err, ErrOccupied)
	require.Equal(t, g, got)
}

func TestTurnFlipsAfterValidMove(t *testing.T) {
	g := playMoves(t, New(), 4)

	assert.False(t, g.XIsNext)
	assert.Equal(t, O, g.Mark())
	assert.Equal(t, X, g.Current().Board[4])
	assert.Equal(t, 4, g.Current().LastMoved)
}

func TestHistoryGrowsWithEachMove(t *testing.T) {
	g := New()
	for k, idx := range []int{4, 0, 8, 2, 1, 7} {
		var err error
		g, err = g.Play(idx)
		require.NoError(t, err)

		require.Len(t, g.History, k+2)
		require.Equal(t, len(g.History)-1, g.Step)
		// after move k (0-based) X is next iff k is odd
		require.Equal(t, k%2 == 1, g.XIsNext, "after move %d", k)
	}
}

func TestPlayDoesNotMutateReceiver(t *testing.T) {
	g := playMoves(t, New(), 0, 1)
	before := append([]Snapshot(nil), g.History...)

	_ = playMoves(t, g, 2)
	jumped, err := g.JumpTo(0)
	require.NoError(t, err)
	_ = playMoves(t, jumped, 8)

	require.Equal(t, before, g.History)
}

func TestWinConditionsForX(t *testing.T) {
	for _, line := range winningLines {
		f := fillers(line, 2, 8, 7, 6, 5, 3)
		g := playMoves(t, New(), line[0], f[0], line[1], f[1], line[2])

		w, ok := CalculateWinner(g.Current().Board)
		require.True(t, ok, "line %v", line)
		assert.Equal(t, X, w.Player)
		assert.Equal(t, line, w.Squares)
		assert.Len(t, g.History, 6)
	}
}

func TestWinConditionsForO(t *testing.T) {
	for _, line := range winningLines {
		f := fillers(line, 3, 5, 7, 3, 6, 2, 1, 8, 4)
		g := playMoves(t, New(), f[0], line[0], f[1], line[1], f[2], line[2])

		w, ok := CalculateWinner(g.Current().Board)
		require.True(t, ok, "line %v", line)
		assert.Equal(t, O, w.Player)
		assert.Equal(t, line, w.Squares)
	}
}

func TestCalculateWinnerOnArbitraryBoards(t *testing.T) {
	for _, line := range winningLines {
		var b Board
		for _, i := range line {
			b[i] = O
		}
		before := b

		w, ok := CalculateWinner(b)
		require.True(t, ok)
		assert.Equal(t, Win{Player: O, Squares: line}, w)
		assert.Equal(t, before, b)
	}

	t.Run("mixed line is not a win", func(t *testing.T) {
		_, ok := CalculateWinner(Board{X, X, O})
		assert.False(t, ok)
	})

	t.Run("first line in order wins", func(t *testing.T) {
		b := Board{X, X, X, X, O, O, X, O, O}
		w, ok := CalculateWinner(b)
		require.True(t, ok)
		assert.Equal(t, [3]int{0, 1, 2}, w.Squares)
	})
}

func TestDrawNoWinner(t *testing.T) {
	// X O X / X O O / O X X
	g := playMoves(t, New(), 0, 1, 2, 4, 3, 5, 7, 6, 8)

	require.Equal(t, Board{X, O, X, X, O, O, O, X, X}, g.Current().Board)
	_, ok := CalculateWinner(g.Current().Board)
	assert.False(t, ok)
	assert.Len(t, g.History, 10)
}

func TestGameOverBlocksFurtherMoves(t *testing.T) {
	// X wins quickly on top row
	g := playMoves(t, New(), 0, 3, 1, 4, 2)

	got, err := g.Play(8)
	require.ErrorIs(t, err, ErrGameOver)
	require.Equal(t, g, got)
}

func TestJumpTo(t *testing.T) {
	g := playMoves(t, New(), 0, 1, 2, 3)

	for step := 0; step < len(g.History); step++ {
		got, err := g.JumpTo(step)
		require.NoError(t, err)
		assert.Equal(t, step, got.Step)
		assert.Equal(t, step%2 == 0, got.XIsNext)
		assert.Equal(t, g.History, got.History)
	}

	t.Run("out of range", func(t *testing.T) {
		for _, step := range []int{-1, len(g.History), 100} {
			got, err := g.JumpTo(step)
			require.ErrorIs(t, err, ErrStepOutOfRange)
			require.Equal(t, g, got)
		}
	})
}

func TestMoveAfterJumpDiscardsFuture(t *testing.T) {
	g := playMoves(t, New(), 0, 1, 2, 3)
	require.Len(t, g.History, 5)

	g, err := g.JumpTo(2)
	require.NoError(t, err)
	g, err = g.Play(8)
	require.NoError(t, err)

	require.Len(t, g.History, 4)
	assert.Equal(t, 3, g.Step)
	assert.Equal(t, Board{X, O, Empty, Empty, Empty, Empty, Empty, Empty, X}, g.Current().Board)
	assert.False(t, g.XIsNext)
}

func TestJumpBackBeforeWinAllowsPlay(t *testing.T) {
	g := playMoves(t, New(), 0, 3, 1, 4, 2)

	g, err := g.JumpTo(4)
	require.NoError(t, err)
	g, err = g.Play(5)
	require.NoError(t, err)

	_, won := CalculateWinner(g.Current().Board)
	assert.False(t, won)
	assert.Len(t, g.History, 6)
}

func TestToggleSort(t *testing.T) {
	g := playMoves(t, New(), 0, 1)

	toggled := g.ToggleSort()
	assert.True(t, toggled.SortDescending)
	assert.Equal(t, g.History, toggled.History)
	assert.Equal(t, g.Step, toggled.Step)
	assert.Equal(t, g.XIsNext, toggled.XIsNext)
	assert.False(t, toggled.ToggleSort().SortDescending)
}

func TestSquarePosition(t *testing.T) {
	cases := []struct {
		index int
		want  Position
	}{
		{0, Position{Col: 1, Row: 1}},
		{1, Position{Col: 2, Row: 1}},
		{3, Position{Col: 1, Row: 2}},
		{4, Position{Col: 2, Row: 2}},
		{5, Position{Col: 3, Row: 2}},
		{8, Position{Col: 3, Row: 3}},
	}
	for _, tc := range cases {
		got, err := SquarePosition(tc.index)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "index %d", tc.index)
	}

	_, err := SquarePosition(NoMove)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = SquarePosition(9)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestPositionOnWiderBoard(t *testing.T) {
	assert.Equal(t, Position{Col: 4, Row: 1}, PositionOn(3, 4))
	assert.Equal(t, Position{Col: 1, Row: 2}, PositionOn(4, 4))
	assert.Equal(t, Position{Col: 4, Row: 4}, PositionOn(15, 4))
}

func TestSnapshotPosition(t *testing.T) {
	_, ok := New().Current().Position()
	assert.False(t, ok)

	g := playMoves(t, New(), 7)
	p, ok := g.Current().Position()
	require.True(t, ok)
	assert.Equal(t, Position{Col: 2, Row: 3}, p)
}
