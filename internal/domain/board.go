package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the number of rows and columns on the board.
const Size = 9

// PawnsPerSide is the starting number of pawns for each color.
const PawnsPerSide = 9

// ErrInvalidNotation is returned for squares outside a1..i9.
var ErrInvalidNotation = errors.New("invalid notation")

// Color identifies a player.
type Color uint8

const (
	Red Color = iota + 1
	Black
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == Red {
		return Black
	}
	return Red
}

func (c Color) String() string {
	switch c {
	case Red:
		return "RED"
	case Black:
		return "BLACK"
	default:
		return "NONE"
	}
}

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	RedPawn
	BlackPawn
)

// Pawn returns the cell occupied by a pawn of color c.
func Pawn(c Color) Cell {
	switch c {
	case Red:
		return RedPawn
	case Black:
		return BlackPawn
	default:
		return Empty
	}
}

// Color reports the owner of the pawn in the cell; ok is false for Empty.
func (c Cell) Color() (Color, bool) {
	switch c {
	case RedPawn:
		return Red, true
	case BlackPawn:
		return Black, true
	default:
		return 0, false
	}
}

func (c Cell) String() string {
	if col, ok := c.Color(); ok {
		return col.String()
	}
	return "NONE"
}

// Position is a zero-based (row, column) coordinate. Row 0 is 'a', column 0 is '1'.
type Position struct {
	Row, Col int
}

// ParsePosition converts notation such as "a1" or "i9" to a Position.
func ParsePosition(notation string) (Position, error) {
	if len(notation) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
	}
	r, c := notation[0], notation[1]
	if r < 'a' || r > 'i' || c < '1' || c > '9' {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
	}
	return Position{Row: int(r - 'a'), Col: int(c - '1')}, nil
}

// Valid reports whether p lies on the board.
func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return string([]byte{byte('a' + p.Row), byte('1' + p.Col)})
}

func (p Position) add(dr, dc int) Position {
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

func (p Position) index() int { return p.Row*Size + p.Col }

// Board is a fixed 9x9 board stored row-major together with live pawn counts.
// The counts are only ever changed by Set.
type Board struct {
	cells [Size * Size]Cell
	red   int
	black int
}

// NewBoard returns the starting layout: row a Red, row i Black.
func NewBoard() Board {
	var b Board
	for col := 0; col < Size; col++ {
		b.Set(Position{Row: 0, Col: col}, RedPawn)
		b.Set(Position{Row: Size - 1, Col: col}, BlackPawn)
	}
	return b
}

// Get returns the cell at p. Positions off the board read as Empty.
func (b *Board) Get(p Position) Cell {
	if !p.Valid() {
		return Empty
	}
	return b.cells[p.index()]
}

// Set stores c at p and keeps the pawn counts in step. Off-board writes are ignored.
func (b *Board) Set(p Position, c Cell) {
	if !p.Valid() {
		return
	}
	prev := b.cells[p.index()]
	if prev == c {
		return
	}
	b.adjust(prev, -1)
	b.adjust(c, 1)
	b.cells[p.index()] = c
}

func (b *Board) adjust(c Cell, delta int) {
	switch c {
	case RedPawn:
		b.red += delta
	case BlackPawn:
		b.black += delta
	}
}

// RemovePawn empties p. Removing from an empty square does nothing.
func (b *Board) RemovePawn(p Position) {
	b.Set(p, Empty)
}

// PawnCount returns the number of pawns of color c on the board.
func (b *Board) PawnCount(c Color) int {
	switch c {
	case Red:
		return b.red
	case Black:
		return b.black
	default:
		return 0
	}
}

// Occupant looks up a square by notation.
func (b *Board) Occupant(notation string) (Cell, error) {
	p, err := ParsePosition(notation)
	if err != nil {
		return Empty, err
	}
	return b.Get(p), nil
}

// Cells returns a copy of the grid in row-major order.
func (b *Board) Cells() [Size * Size]Cell {
	return b.cells
}

// String renders the grid one row per line, R for red, B for black and . for empty.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			switch b.cells[row*Size+col] {
			case RedPawn:
				sb.WriteByte('R')
			case BlackPawn:
				sb.WriteByte('B')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
