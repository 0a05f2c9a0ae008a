package shuffle

import (
	"log/slog"

	"github.com/shiftmaze/shiftmaze/internal/dependencies/random"
	"github.com/shiftmaze/shiftmaze/internal/model"
	"github.com/shiftmaze/shiftmaze/internal/services/board"
)

// levelToConnectedCount maps a difficulty to the largest connected subgraph
// the generated board may contain. Lower is stricter.
func levelToConnectedCount(level model.ShuffleLevel) int {
	switch level {
	case model.ShuffleLevelEasy:
		return 7
	case model.ShuffleLevelMedium:
		return 4
	case model.ShuffleLevelHard:
		return 3
	default:
		return 2
	}
}

const (
	triesPerPlacement = 50
	stallWindow       = 10
	stallLimit        = 2
)

// Service generates starting boards whose connectivity is bounded by the
// shuffle level, so no player begins with long free routes
type Service struct {
	boards *board.Service
	rnd    random.Random
	logger *slog.Logger
}

// New creates a shuffle Service
func New(boards *board.Service, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		boards: boards,
		rnd:    rnd,
		logger: logger.With("component", "shuffle"),
	}
}

// Generate fills a fresh board piece by piece while keeping the connectivity
// constraints satisfied. Each placement gets a bounded number of local
// retries; when a placement stalls the offending pieces go back into the
// bag, and repeated stalls evict one extra random piece to escape the local
// minimum. Returns the filled board and the one leftover spare piece.
func (s *Service) Generate(level model.ShuffleLevel) (*model.Board, []*model.Piece) {
	maxConnected := levelToConnectedCount(level)
	bag := board.NewPieceBag(s.rnd)
	b := board.NewInitialBoard()

	noSolutions := newRingBuffer(stallWindow)

	for b.EmptyCount() > 0 {
		// The bag always outnumbers the empty cells by one, so a draw
		// never fails
		index := s.boards.WeightedRandomPieceIndex(bag)
		piece := bag[index]
		bag = append(bag[:index], bag[index+1:]...)
		if _, err := s.boards.AddPiece(b, piece); err != nil {
			s.logger.Error("piece placement failed", "error", err)
			continue
		}

		foundSolution := false
		for tries := 0; tries < triesPerPlacement; tries++ {
			changeable := s.offendingChangeable(b, maxConnected)
			if len(changeable) == 0 {
				foundSolution = true
				break
			}
			s.boards.ChangeRandomPiece(b, &bag, changeable)
		}

		if foundSolution {
			noSolutions.push(0)
			continue
		}

		// Give up on this placement: pull every currently offending
		// piece back into the bag
		for _, offending := range s.offendingChangeable(b, maxConnected) {
			if removed := s.boards.RemovePiece(b, offending.Position); removed != nil {
				bag = append(bag, removed)
			}
		}

		if noSolutions.sum() > stallLimit && s.boards.FilledNonLockedCount(b) > 0 {
			if removed := s.boards.RemoveRandomPiece(b); removed != nil {
				bag = append(bag, removed)
			}
			s.logger.Debug("evicted extra piece to unblock stalled shuffle")
			noSolutions.clear()
		} else {
			noSolutions.push(1)
		}
	}

	return b, bag
}

// offendingChangeable collects the non-locked pieces that violate the
// constraints: members of any oversized connected subgraph plus any piece
// directly walkable from a corner
func (s *Service) offendingChangeable(b *model.Board, maxConnected int) []*model.PieceOnBoard {
	seen := make(map[model.Position]bool)
	var out []*model.PieceOnBoard

	add := func(p *model.PieceOnBoard) {
		if model.IsLockedPosition(p.Position) || seen[p.Position] {
			return
		}
		seen[p.Position] = true
		out = append(out, p)
	}

	for _, subgraph := range s.boards.SubgraphsLargerThan(b, maxConnected) {
		for _, p := range subgraph {
			add(p)
		}
	}
	for _, p := range s.boards.ConnectedCornerNeighbors(b) {
		add(p)
	}
	return out
}

// ringBuffer keeps the last max pushed values
type ringBuffer struct {
	max    int
	values []int
}

func newRingBuffer(max int) *ringBuffer {
	return &ringBuffer{max: max}
}

func (r *ringBuffer) push(v int) {
	r.values = append(r.values, v)
	if len(r.values) > r.max {
		r.values = r.values[1:]
	}
}

func (r *ringBuffer) sum() int {
	total := 0
	for _, v := range r.values {
		total += v
	}
	return total
}

func (r *ringBuffer) clear() {
	r.values = nil
}
