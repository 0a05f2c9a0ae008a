package board

import (
	"fmt"

	"github.com/shiftmaze/shiftmaze/internal/dependencies/random"
	"github.com/shiftmaze/shiftmaze/internal/model"
)

// OpenSides tells which edges of a tile are walkable
type OpenSides struct {
	Up, Right, Down, Left bool
}

// Open reports whether the side facing direction d is walkable
func (o OpenSides) Open(d model.Direction) bool {
	switch d {
	case model.DirectionUp:
		return o.Up
	case model.DirectionRight:
		return o.Right
	case model.DirectionDown:
		return o.Down
	default:
		return o.Left
	}
}

// openDirections maps piece type and rotation to walkable sides. Rotation 0
// is the art's base orientation: the corner opens up+right, the straight
// opens up+down, the t-shape opens everything but left.
var openDirections = map[model.PieceType]map[model.Rotation]OpenSides{
	model.PieceCorner: {
		0:   {Up: true, Right: true},
		90:  {Right: true, Down: true},
		180: {Down: true, Left: true},
		270: {Up: true, Left: true},
	},
	model.PieceStraight: {
		0:   {Up: true, Down: true},
		90:  {Right: true, Left: true},
		180: {Up: true, Down: true},
		270: {Right: true, Left: true},
	},
	model.PieceTShape: {
		0:   {Up: true, Right: true, Down: true},
		90:  {Right: true, Down: true, Left: true},
		180: {Up: true, Down: true, Left: true},
		270: {Up: true, Right: true, Left: true},
	},
}

// OpenDirectionsFor returns the walkable sides of a piece in its current
// rotation
func OpenDirectionsFor(p model.Piece) OpenSides {
	return openDirections[p.Type][p.Rotation]
}

// pushPositions are the twelve slots where the spare piece may be inserted,
// three per edge, clockwise from the top
var pushPositions = []model.PushPosition{
	{Position: model.Position{X: 1, Y: 0}, Direction: model.DirectionDown},
	{Position: model.Position{X: 3, Y: 0}, Direction: model.DirectionDown},
	{Position: model.Position{X: 5, Y: 0}, Direction: model.DirectionDown},
	{Position: model.Position{X: 6, Y: 1}, Direction: model.DirectionLeft},
	{Position: model.Position{X: 6, Y: 3}, Direction: model.DirectionLeft},
	{Position: model.Position{X: 6, Y: 5}, Direction: model.DirectionLeft},
	{Position: model.Position{X: 5, Y: 6}, Direction: model.DirectionUp},
	{Position: model.Position{X: 3, Y: 6}, Direction: model.DirectionUp},
	{Position: model.Position{X: 1, Y: 6}, Direction: model.DirectionUp},
	{Position: model.Position{X: 0, Y: 5}, Direction: model.DirectionRight},
	{Position: model.Position{X: 0, Y: 3}, Direction: model.DirectionRight},
	{Position: model.Position{X: 0, Y: 1}, Direction: model.DirectionRight},
}

// PushPositions returns all legal push slots
func PushPositions() []model.PushPosition {
	out := make([]model.PushPosition, len(pushPositions))
	copy(out, pushPositions)
	return out
}

// PushPositionAt resolves a cell coordinate to its push slot
func PushPositionAt(pos model.Position) (model.PushPosition, error) {
	for _, pp := range pushPositions {
		if pp.X == pos.X && pp.Y == pos.Y {
			return pp, nil
		}
	}
	return model.PushPosition{}, fmt.Errorf("position (%d,%d): %w", pos.X, pos.Y, model.ErrInvalidPushPosition)
}

// IsAllowedPushPosition reports whether pos is one of the twelve push slots
func IsAllowedPushPosition(pos model.Position) bool {
	_, err := PushPositionAt(pos)
	return err == nil
}

// OppositePushPosition returns the slot on the far side of the same lane,
// where the previous push could be trivially reverted from
func OppositePushPosition(pos model.PushPosition) model.PushPosition {
	opposite := pos
	switch pos.Direction {
	case model.DirectionUp, model.DirectionDown:
		opposite.Y = model.BoardSize - 1 - pos.Y
	default:
		opposite.X = model.BoardSize - 1 - pos.X
	}
	opposite.Direction = pos.Direction.Opposite()
	return opposite
}

// Service implements the board algorithms: pushes, connectivity and the
// random helpers the shuffler builds on
type Service struct {
	rnd random.Random
}

// New creates a board Service
func New(rnd random.Random) *Service {
	return &Service{rnd: rnd}
}

// Neighbor is an adjacent piece together with the direction it lies in
type Neighbor struct {
	Piece     *model.PieceOnBoard
	Direction model.Direction
}

// Neighbors returns the occupied cells adjacent to pos
func (s *Service) Neighbors(b *model.Board, pos model.Position) []Neighbor {
	var out []Neighbor
	for _, d := range []model.Direction{model.DirectionUp, model.DirectionRight, model.DirectionDown, model.DirectionLeft} {
		next := pos.Translate(d, 1)
		if !b.Contains(next) {
			continue
		}
		if piece := b.At(next); piece != nil {
			out = append(out, Neighbor{Piece: piece, Direction: d})
		}
	}
	return out
}

// IsValidMove reports whether a player may step from piece across to the
// neighbor: both tiles must have an open side on the shared edge
func (s *Service) IsValidMove(from model.Piece, to Neighbor) bool {
	if !OpenDirectionsFor(from).Open(to.Direction) {
		return false
	}
	return OpenDirectionsFor(to.Piece.Piece).Open(to.Direction.Opposite())
}

// FindConnected returns the full connected component reachable from the seed
// pieces, seeds included
func (s *Service) FindConnected(b *model.Board, seeds ...*model.PieceOnBoard) []*model.PieceOnBoard {
	visited := make(map[*model.PieceOnBoard]bool, len(seeds))
	var order []*model.PieceOnBoard
	queue := make([]*model.PieceOnBoard, 0, len(seeds))
	for _, seed := range seeds {
		if !visited[seed] {
			visited[seed] = true
			order = append(order, seed)
			queue = append(queue, seed)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range s.Neighbors(b, current.Position) {
			if visited[n.Piece] || !s.IsValidMove(current.Piece, n) {
				continue
			}
			visited[n.Piece] = true
			order = append(order, n.Piece)
			queue = append(queue, n.Piece)
		}
	}
	return order
}

// IsValidPlayerMove reports whether a walkable path exists from one cell to
// another on a filled board
func (s *Service) IsValidPlayerMove(b *model.Board, from, to model.Position) bool {
	piece := b.At(from)
	if piece == nil {
		return false
	}
	for _, c := range s.FindConnected(b, piece) {
		if c.Position == to {
			return true
		}
	}
	return false
}

// SubgraphsLargerThan returns every connected component holding more than
// max pieces
func (s *Service) SubgraphsLargerThan(b *model.Board, max int) [][]*model.PieceOnBoard {
	var offending [][]*model.PieceOnBoard
	visited := make(map[*model.PieceOnBoard]bool)
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			piece := b.At(model.Position{X: x, Y: y})
			if piece == nil || visited[piece] {
				continue
			}
			component := s.FindConnected(b, piece)
			for _, p := range component {
				visited[p] = true
			}
			if len(component) > max {
				offending = append(offending, component)
			}
		}
	}
	return offending
}

// ConnectedCornerNeighbors returns pieces directly walkable from a corner.
// Corners should start fully unconnected so nobody begins with a free route.
func (s *Service) ConnectedCornerNeighbors(b *model.Board) []*model.PieceOnBoard {
	var out []*model.PieceOnBoard
	for _, pos := range model.CornerPositions() {
		corner := b.At(pos)
		if corner == nil {
			continue
		}
		for _, n := range s.Neighbors(b, pos) {
			if s.IsValidMove(corner.Piece, n) {
				out = append(out, n.Piece)
			}
		}
	}
	return out
}

// PushWithPiece inserts piece at the push slot, shifting the whole lane one
// cell. The piece shoved off the far edge becomes the new spare and any
// players standing on it wrap around to the inserted tile. Returns the new
// spare piece.
func (s *Service) PushWithPiece(b *model.Board, pushPos model.PushPosition, piece *model.Piece) (*model.Piece, error) {
	if !IsAllowedPushPosition(pushPos.Position) {
		return nil, fmt.Errorf("position (%d,%d): %w", pushPos.X, pushPos.Y, model.ErrInvalidPushPosition)
	}

	ejectPos := pushPos.Position.Translate(pushPos.Direction, model.BoardSize-1)
	ejected := b.Remove(ejectPos)

	// Walk from the freed cell back towards the push slot, sliding each
	// piece one cell forward
	for i := 1; i < model.BoardSize; i++ {
		from := ejectPos.Translate(pushPos.Direction.Opposite(), i)
		b.Set(from.Translate(pushPos.Direction, 1), b.Remove(from))
	}

	inserted := &model.PieceOnBoard{
		Piece:   *piece,
		Players: ejected.Players,
	}
	if inserted.Players == nil {
		inserted.Players = []*model.Player{}
	}
	b.Set(pushPos.Position, inserted)

	spare := ejected.Piece
	return &spare, nil
}

// PlayerPosition finds the cell the given player is standing on
func (s *Service) PlayerPosition(b *model.Board, playerID string) (model.Position, bool) {
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			piece := b.At(model.Position{X: x, Y: y})
			if piece == nil {
				continue
			}
			for _, p := range piece.Players {
				if p.ID == playerID {
					return piece.Position, true
				}
			}
		}
	}
	return model.Position{}, false
}

// MovePlayer places the player token on the target cell, detaching it from
// wherever it stood. The move is not validated; callers check reachability.
func (s *Service) MovePlayer(b *model.Board, player *model.Player, to model.Position) {
	if pos, ok := s.PlayerPosition(b, player.ID); ok {
		b.At(pos).RemovePlayer(player.ID)
	}
	target := b.At(to)
	target.Players = append(target.Players, player)
}

// pieceWeights bias the shuffler's draw heavily towards t-shapes, which keep
// generated boards from collapsing into long corridors
var pieceWeights = map[model.PieceType]int{
	model.PieceStraight: 5,
	model.PieceCorner:   5,
	model.PieceTShape:   90,
}

// WeightedRandomPieceIndex draws an index from the bag with the type weights
func (s *Service) WeightedRandomPieceIndex(bag []*model.Piece) int {
	total := 0
	for _, p := range bag {
		total += pieceWeights[p.Type]
	}
	draw := s.rnd.Intn(total)
	acc := 0
	for i, p := range bag {
		acc += pieceWeights[p.Type]
		if draw < acc {
			return i
		}
	}
	return len(bag) - 1
}

// AddPiece places piece on the first empty cell in scan order with a random
// rotation and returns the placed tile
func (s *Service) AddPiece(b *model.Board, piece *model.Piece) (*model.PieceOnBoard, error) {
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			pos := model.Position{X: x, Y: y}
			if b.At(pos) != nil {
				continue
			}
			placed := &model.PieceOnBoard{
				Piece:   *piece,
				Players: []*model.Player{},
			}
			placed.Rotation = s.randomRotation()
			b.Set(pos, placed)
			return placed, nil
		}
	}
	return nil, fmt.Errorf("board already full")
}

// RemovePiece detaches the tile at pos and returns it as a loose piece
func (s *Service) RemovePiece(b *model.Board, pos model.Position) *model.Piece {
	removed := b.Remove(pos)
	if removed == nil {
		return nil
	}
	piece := removed.Piece
	return &piece
}

// ChangeRandomPiece swaps one random tile from changeable for a random piece
// out of the bag; the removed tile goes back into the bag
func (s *Service) ChangeRandomPiece(b *model.Board, bag *[]*model.Piece, changeable []*model.PieceOnBoard) {
	target := changeable[s.rnd.Intn(len(changeable))]
	pos := target.Position
	removed := s.RemovePiece(b, pos)

	i := s.rnd.Intn(len(*bag))
	replacement := (*bag)[i]
	*bag = append((*bag)[:i], (*bag)[i+1:]...)
	*bag = append(*bag, removed)

	placed := &model.PieceOnBoard{
		Piece:   *replacement,
		Players: []*model.Player{},
	}
	placed.Rotation = s.randomRotation()
	b.Set(pos, placed)
}

// FilledNonLockedCount counts occupied cells outside the fixed grid
func (s *Service) FilledNonLockedCount(b *model.Board) int {
	n := 0
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			pos := model.Position{X: x, Y: y}
			if b.At(pos) != nil && !model.IsLockedPosition(pos) {
				n++
			}
		}
	}
	return n
}

// RemoveRandomPiece detaches one random non-locked tile and returns it
func (s *Service) RemoveRandomPiece(b *model.Board) *model.Piece {
	count := s.FilledNonLockedCount(b)
	if count == 0 {
		return nil
	}
	target := s.rnd.Intn(count)
	i := 0
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			pos := model.Position{X: x, Y: y}
			if b.At(pos) == nil || model.IsLockedPosition(pos) {
				continue
			}
			if i == target {
				return s.RemovePiece(b, pos)
			}
			i++
		}
	}
	return nil
}

func (s *Service) randomRotation() model.Rotation {
	return model.Rotations[s.rnd.Intn(len(model.Rotations))]
}
