package domain

import (
	"errors"
	"fmt"
)

// Outcome is derived from the pawn counts.
type Outcome uint8

const (
	Unfinished Outcome = iota
	RedWon
	BlackWon
)

func (o Outcome) String() string {
	switch o {
	case RedWon:
		return "RED_WON"
	case BlackWon:
		return "BLACK_WON"
	default:
		return "UNFINISHED"
	}
}

// Errors returned by move validation, in the order the checks run.
var (
	ErrGameOver    = errors.New("game over")
	ErrNotYourPawn = errors.New("source is not a pawn of the active player")
	ErrOccupied    = errors.New("cell occupied")
	ErrNotStraight = errors.New("move is not along a single row or column")
	ErrPathBlocked = errors.New("path is blocked")
)

// Game holds the current state of a Hasami Shogi match.
type Game struct {
	board Board
	turn  Color
}

// MoveResult describes an accepted move.
type MoveResult struct {
	From     Position
	To       Position
	Mover    Color
	Captured []Position
	Outcome  Outcome
}

// New returns a new game with Black to move.
func New() Game {
	return Game{board: NewBoard(), turn: Black}
}

// NewFromBoard starts a game from an arbitrary position with turn to move.
func NewFromBoard(b Board, turn Color) Game {
	return Game{board: b, turn: turn}
}

// Board returns a copy of the current board.
func (g *Game) Board() Board { return g.board }

// ActivePlayer returns the color whose move is next.
func (g *Game) ActivePlayer() Color { return g.turn }

// State derives the outcome from the pawn counts. A side with one pawn or
// fewer has lost.
func (g *Game) State() Outcome {
	switch {
	case g.board.PawnCount(Black) <= 1:
		return RedWon
	case g.board.PawnCount(Red) <= 1:
		return BlackWon
	default:
		return Unfinished
	}
}

// Winner returns the winning color once the game is decided.
func (g *Game) Winner() (Color, bool) {
	switch g.State() {
	case RedWon:
		return Red, true
	case BlackWon:
		return Black, true
	default:
		return 0, false
	}
}

// CapturedCount returns how many pawns of color c have been taken.
func (g *Game) CapturedCount(c Color) int {
	n := PawnsPerSide - g.board.PawnCount(c)
	if n < 0 {
		return 0
	}
	if n > PawnsPerSide {
		return PawnsPerSide
	}
	return n
}

// Occupant returns what stands on the square named by notation.
func (g *Game) Occupant(notation string) (Cell, error) {
	return g.board.Occupant(notation)
}

// MakeMove plays src to dst for the active player and reports whether it was legal.
func (g *Game) MakeMove(src, dst string) bool {
	_, err := g.Play(src, dst)
	return err == nil
}

// Play validates and applies a move, resolves captures and passes the turn.
// A rejected move leaves the game untouched.
func (g *Game) Play(src, dst string) (MoveResult, error) {
	from, to, err := g.validate(src, dst)
	if err != nil {
		return MoveResult{}, err
	}
	mover := g.turn
	pawn := g.board.Get(from)
	g.board.Set(from, Empty)
	g.board.Set(to, pawn)

	res := MoveResult{From: from, To: to, Mover: mover}
	res.Captured = g.resolveCaptures(to, mover)
	res.Outcome = g.State()
	g.turn = mover.Opponent()
	return res, nil
}

// Validate reports why src to dst would be rejected, or nil if it is legal.
func (g *Game) Validate(src, dst string) error {
	_, _, err := g.validate(src, dst)
	return err
}

func (g *Game) validate(src, dst string) (Position, Position, error) {
	if g.State() != Unfinished {
		return Position{}, Position{}, ErrGameOver
	}
	from, err := ParsePosition(src)
	if err != nil {
		return Position{}, Position{}, fmt.Errorf("%w: %w", ErrNotYourPawn, err)
	}
	if c, _ := g.board.Get(from).Color(); c != g.turn {
		return Position{}, Position{}, fmt.Errorf("%w: %s holds %s", ErrNotYourPawn, from, g.board.Get(from))
	}
	to, err := ParsePosition(dst)
	if err != nil {
		return Position{}, Position{}, err
	}
	if g.board.Get(to) != Empty {
		return Position{}, Position{}, fmt.Errorf("%w: %s", ErrOccupied, to)
	}
	if from == to || (from.Row != to.Row && from.Col != to.Col) {
		return Position{}, Position{}, fmt.Errorf("%w: %s to %s", ErrNotStraight, from, to)
	}
	if !g.pathIsClear(from, to) {
		return Position{}, Position{}, fmt.Errorf("%w: %s to %s", ErrPathBlocked, from, to)
	}
	return from, to, nil
}

// pathIsClear reports whether every cell strictly between from and to is
// empty. from and to must share a row or a column.
func (g *Game) pathIsClear(from, to Position) bool {
	dr, dc := sign(to.Row-from.Row), sign(to.Col-from.Col)
	for p := from.add(dr, dc); p != to; p = p.add(dr, dc) {
		if g.board.Get(p) != Empty {
			return false
		}
	}
	return true
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
