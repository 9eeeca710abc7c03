package board

import "fmt"

// Square is the wire encoding of a target square: one byte with the
// column in bits 7-4 and the row in bits 3-0.
type Square uint8

func NewSquare(column, row int) Square {
	return Square(clampCoordinate(column))<<4 | Square(clampCoordinate(row))
}

func (square Square) Column() int {
	return int(square >> 4)
}
func (square Square) Row() int {
	return int(square & 0b00001111)
}

func (square Square) String() string {
	return fmt.Sprintf("(column %d, row %d)", square.Column(), square.Row())
}

// Gate failure reasons. An illegal move is a normal outcome, not an
// error, so these travel in the result for callers that want to log them.
const (
	ReasonBadSquare     = "invalid move parameter"
	ReasonOffGrid       = "move is not on the grid"
	ReasonRedSquare     = "checkers can only move to black squares"
	ReasonNotDiagonal   = "checkers can only move diagonally"
	ReasonBackwardsMove = "checkers that have not been promoted to king can not move backwards"
	ReasonBackwardsJump = "checkers that have not been promoted to king can not jump backwards"
	ReasonOccupied      = "checkers can not move to an occupied square"
	ReasonOwnColour     = "checkers can not jump over checkers of their own colour"
)

// Verdict is the outcome of running a proposed move through the
// legality gates. Jump may be true on an illegal verdict when the move
// was classified as a jump before a later gate failed. Jumped is only
// set on a legal capturing jump.
type Verdict struct {
	Legal  bool
	Jump   bool
	Jumped *Piece
	Reason string
}

// MoveResult describes an executed move. Legal and Captured are
// independent fields, so "illegal" and "legal but nothing captured"
// are never ambiguous.
type MoveResult struct {
	Legal    bool
	Jump     bool
	Captured *Piece
	Reason   string
}

func (result *MoveResult) String() string {
	captured := "none"
	if result.Captured != nil {
		captured = result.Captured.String()
	}
	return fmt.Sprintf("legal: %t, jump: %t, captured: %s",
		result.Legal, result.Jump, captured)
}
