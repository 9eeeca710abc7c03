package board

import "slices"

// Board dimensions live in [3,16]: three is the smallest playable
// grid and sixteen the widest the four-bit position fields can hold.
const (
	MinDimension = 3
	MaxDimension = 16
)

func clampDimension(size int) int {
	if size < MinDimension {
		return MinDimension
	}
	if size > MaxDimension {
		return MaxDimension
	}
	return size
}

// Board holds the playing grid's dimensions and an unordered
// collection of the pieces still in play. Pieces are shared with
// callers by pointer; a capture removes exactly the referenced piece.
type Board struct {
	Width  int
	Height int
	Pieces []*Piece
}

func NewBoard(width, height int) *Board {
	board := &Board{
		Width:  clampDimension(width),
		Height: clampDimension(height),
	}
	board.Generate()
	return board
}

// IsRedSquare reports whether the square is one checkers can never
// occupy. Playable ("black") squares are those where row+column is
// even; generation and validation share this predicate so they can
// never disagree on the parity convention.
func (board *Board) IsRedSquare(row, column int) bool {
	return (row+column)%2 != 0
}

// Generate populates the mirrored starting formation: rowsPerSide
// rows of black checkers from the top of the grid and the reflection
// of those rows in red from the bottom, skipping red squares.
func (board *Board) Generate() {
	rowsPerSide := board.Height / 2
	if board.Height%2 == 0 {
		rowsPerSide = (board.Height - 1) / 2
	}

	for row := 0; row < rowsPerSide; row++ {
		for column := 0; column < board.Width; column++ {
			if !board.IsRedSquare(row, column) {
				piece := NewPiece(false, Black, column, row)
				board.AddPiece(&piece)
			}

			mirrored := board.Height - row - 1
			if !board.IsRedSquare(mirrored, column) {
				piece := NewPiece(false, Red, column, mirrored)
				board.AddPiece(&piece)
			}
		}
	}
}

func (board *Board) AddPiece(piece *Piece) {
	board.Pieces = append(board.Pieces, piece)
}

// RemovePiece removes by identity, not by encoded value, so a piece
// sharing a square with another is never confused with it.
func (board *Board) RemovePiece(piece *Piece) {
	for i, other := range board.Pieces {
		if other == piece {
			board.Pieces = slices.Delete(board.Pieces, i, i+1)
			return
		}
	}
}

func (board *Board) PieceCount() int {
	return len(board.Pieces)
}

// PieceAt finds the piece occupying a square. With an intact board
// at most one piece sits on any square; the first match wins.
func (board *Board) PieceAt(column, row int) (*Piece, bool) {
	for _, piece := range board.Pieces {
		if piece.Column() == column && piece.Row() == row {
			return piece, true
		}
	}
	return nil, false
}

func (board *Board) RemainingPieces(colour Colour) int {
	count := 0
	for _, piece := range board.Pieces {
		if piece.Colour() == colour {
			count++
		}
	}
	return count
}
