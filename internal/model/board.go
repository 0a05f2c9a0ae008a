package model

// BoardSize is the side length of the square maze grid
const BoardSize = 7

// Position is a cell coordinate on the board, origin at the top-left
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is a cardinal movement direction on the grid
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionRight Direction = "right"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
)

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionRight:
		return DirectionLeft
	case DirectionDown:
		return DirectionUp
	default:
		return DirectionRight
	}
}

// Translate returns the position moved n cells in direction d
func (p Position) Translate(d Direction, n int) Position {
	switch d {
	case DirectionUp:
		return Position{X: p.X, Y: p.Y - n}
	case DirectionRight:
		return Position{X: p.X + n, Y: p.Y}
	case DirectionDown:
		return Position{X: p.X, Y: p.Y + n}
	default:
		return Position{X: p.X - n, Y: p.Y}
	}
}

// PushPosition is one of the 12 legal edge slots plus the insert direction
type PushPosition struct {
	Position
	Direction Direction `json:"direction"`
}

// Board is the 7x7 maze grid. Cells may be nil only while the board is being
// shuffled during setup; a committed playing board has no nil cells.
type Board struct {
	Pieces [BoardSize][BoardSize]*PieceOnBoard `json:"pieces"`
}

// At returns the piece at pos, which may be nil during setup
func (b *Board) At(pos Position) *PieceOnBoard {
	return b.Pieces[pos.Y][pos.X]
}

// Set places piece at pos and stamps the piece's position
func (b *Board) Set(pos Position, piece *PieceOnBoard) {
	if piece != nil {
		piece.Position = pos
	}
	b.Pieces[pos.Y][pos.X] = piece
}

// Remove clears the cell at pos and returns the removed piece, if any
func (b *Board) Remove(pos Position) *PieceOnBoard {
	piece := b.Pieces[pos.Y][pos.X]
	b.Pieces[pos.Y][pos.X] = nil
	return piece
}

// Contains reports whether pos is inside the grid
func (b *Board) Contains(pos Position) bool {
	return pos.X >= 0 && pos.X < BoardSize && pos.Y >= 0 && pos.Y < BoardSize
}

// EmptyCount returns the number of nil cells
func (b *Board) EmptyCount() int {
	n := 0
	for y := range b.Pieces {
		for x := range b.Pieces[y] {
			if b.Pieces[y][x] == nil {
				n++
			}
		}
	}
	return n
}

// IsFilled reports whether every cell holds a piece
func (b *Board) IsFilled() bool {
	return b.EmptyCount() == 0
}

// IsLockedPosition reports whether pos is a fixed cell: the four corners and
// the fixed trophy tiles, which are never pushed out of line nor perturbed by
// the shuffler. Fixed cells are the ones with both coordinates even.
func IsLockedPosition(pos Position) bool {
	return pos.X%2 == 0 && pos.Y%2 == 0
}

// CornerPositions returns the four corner cells clockwise from the top-left
func CornerPositions() []Position {
	return []Position{
		{X: 0, Y: 0},
		{X: BoardSize - 1, Y: 0},
		{X: BoardSize - 1, Y: BoardSize - 1},
		{X: 0, Y: BoardSize - 1},
	}
}
