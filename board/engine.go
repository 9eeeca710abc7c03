package board

/*
Engine owns one board and decides move legality.

The rules it enforces:

 1. checkers only move to black squares
 2. checkers only move diagonally
 3. checkers only move and jump forwards until promoted to king
 4. checkers can not jump over checkers of their own colour
 5. checkers reaching the far row are promoted to king

It deliberately does not enumerate legal moves, enforce turn order,
enforce the mandatory-jump rule, or detect the end of the game.
*/
type Engine struct {
	Board *Board
	// Turn counts the side to move. Validation never reads it and
	// nothing here advances it; turn order is the caller's rule.
	Turn int
}

func NewEngine(width, height int) *Engine {
	return &Engine{Board: NewBoard(width, height)}
}

// backwards reports whether the move runs against a non-king's
// direction of play. Black advances down the grid (towards greater
// rows), red advances up it. Kings move either way.
func backwards(piece Piece, targetRow int) bool {
	if piece.IsKing() {
		return false
	}
	if piece.IsBlack() {
		return piece.Row() >= targetRow
	}
	return piece.Row() <= targetRow
}

// CheckMove runs a proposed move through the legality gates in order,
// short-circuiting on the first failure. movingPiece is assumed to
// belong to this engine's board. A legal move that reaches the far
// row promotes the piece here, before the position is committed by
// Move; withPosition preserves the freshly set king bit.
func (engine *Engine) CheckMove(movingPiece *Piece, move int) Verdict {
	if move < 0 || move > 255 {
		return Verdict{Reason: ReasonBadSquare}
	}
	square := Square(move)
	targetColumn := square.Column()
	targetRow := square.Row()

	if targetColumn >= engine.Board.Width || targetRow >= engine.Board.Height {
		return Verdict{Reason: ReasonOffGrid}
	}

	if engine.Board.IsRedSquare(targetRow, targetColumn) {
		return Verdict{Reason: ReasonRedSquare}
	}

	// rejects squares sharing a row or column with the mover; the
	// offsets are not checked for equal magnitude, so an uneven
	// two-axis step slips through this gate
	if movingPiece.Column() == targetColumn || movingPiece.Row() == targetRow {
		return Verdict{Reason: ReasonNotDiagonal}
	}

	if backwards(*movingPiece, targetRow) {
		return Verdict{Reason: ReasonBackwardsMove}
	}

	for _, piece := range engine.Board.Pieces {
		if piece.Column() == targetColumn && piece.Row() == targetRow {
			return Verdict{Reason: ReasonOccupied}
		}
	}

	// a displacement of two or more columns reads as a jump attempt;
	// the row distance is never consulted
	isJump := movingPiece.Column() > targetColumn+1 ||
		movingPiece.Column() < targetColumn-1

	var jumpedPiece *Piece
	if isJump {
		if backwards(*movingPiece, targetRow) {
			return Verdict{Jump: true, Reason: ReasonBackwardsJump}
		}

		// only the (+1,+1) and (-1,-1) offsets from the target are
		// inspected for a jumped piece, whichever way the jump ran
		for _, piece := range engine.Board.Pieces {
			if piece.Column() == targetColumn+1 && piece.Row() == targetRow+1 {
				if piece.Colour() == movingPiece.Colour() {
					return Verdict{Jump: true, Reason: ReasonOwnColour}
				}
				jumpedPiece = piece
			}

			if piece.Column() == targetColumn-1 && piece.Row() == targetRow-1 {
				if piece.Colour() == movingPiece.Colour() {
					return Verdict{Jump: true, Reason: ReasonOwnColour}
				}
				jumpedPiece = piece
			}
		}
	}

	if movingPiece.IsRed() {
		if targetRow == 0 {
			*movingPiece = movingPiece.promote()
		}
	} else if targetRow == engine.Board.Height-1 {
		*movingPiece = movingPiece.promote()
	}

	return Verdict{Legal: true, Jump: isJump, Jumped: jumpedPiece}
}

// Move validates and, when legal, executes a move: the piece's
// position bits are overwritten with the target square (king and
// colour preserved) and a jumped piece is removed from the board.
func (engine *Engine) Move(movingPiece *Piece, move int) MoveResult {
	verdict := engine.CheckMove(movingPiece, move)

	if verdict.Legal {
		*movingPiece = movingPiece.withPosition(Square(move))
	}

	if verdict.Jump && verdict.Jumped != nil {
		engine.Board.RemovePiece(verdict.Jumped)
	}

	return MoveResult{
		Legal:    verdict.Legal,
		Jump:     verdict.Jump,
		Captured: verdict.Jumped,
		Reason:   verdict.Reason,
	}
}
