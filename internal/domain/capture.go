package domain

// directions are the four orthogonal scan vectors: left, right, up, down.
var directions = [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// corner pairs a corner square with its two orthogonal neighbours.
type corner struct {
	at         Position
	neighbours [2]Position
}

var corners = [4]corner{
	{at: Position{0, 0}, neighbours: [2]Position{{1, 0}, {0, 1}}},
	{at: Position{0, Size - 1}, neighbours: [2]Position{{0, Size - 2}, {1, Size - 1}}},
	{at: Position{Size - 1, 0}, neighbours: [2]Position{{Size - 2, 0}, {Size - 1, 1}}},
	{at: Position{Size - 1, Size - 1}, neighbours: [2]Position{{Size - 2, Size - 1}, {Size - 1, Size - 2}}},
}

// resolveCaptures removes every pawn taken by mover landing on at and returns
// the emptied squares. Sandwiches are resolved first, then all four corners.
func (g *Game) resolveCaptures(at Position, mover Color) []Position {
	var captured []Position
	for _, d := range directions {
		run := g.sandwich(at, mover, d[0], d[1])
		for _, p := range run {
			g.board.RemovePawn(p)
		}
		captured = append(captured, run...)
	}
	for _, c := range corners {
		if g.cornerTaken(c) {
			g.board.RemovePawn(c.at)
			captured = append(captured, c.at)
		}
	}
	return captured
}

// sandwich walks from at along (dr, dc) collecting the contiguous run of
// opponent pawns. The run is returned only when a pawn of mover closes it;
// reaching an empty square or the edge first yields nil.
func (g *Game) sandwich(at Position, mover Color, dr, dc int) []Position {
	opp := Pawn(mover.Opponent())
	var run []Position
	for p := at.add(dr, dc); p.Valid(); p = p.add(dr, dc) {
		switch g.board.Get(p) {
		case opp:
			run = append(run, p)
		case Pawn(mover):
			return run
		default:
			return nil
		}
	}
	return nil
}

// cornerTaken reports whether the pawn on c is flanked on both open sides by
// its opponent.
func (g *Game) cornerTaken(c corner) bool {
	owner, ok := g.board.Get(c.at).Color()
	if !ok {
		return false
	}
	want := Pawn(owner.Opponent())
	return g.board.Get(c.neighbours[0]) == want && g.board.Get(c.neighbours[1]) == want
}
