package board_test

import (
	"testing"

	"github.com/Ndymario/Checkers-Framework/board"
)

// emptyEngine clears the generated formation so tests can stage exact
// positions.
func emptyEngine(width, height int) *board.Engine {
	engine := board.NewEngine(width, height)
	engine.Board.Pieces = nil
	return engine
}

func placePiece(
	engine *board.Engine,
	king bool,
	colour board.Colour,
	column, row int,
) *board.Piece {
	piece := board.NewPiece(king, colour, column, row)
	engine.Board.AddPiece(&piece)
	return &piece
}

func assertIllegal(test *testing.T, verdict board.Verdict, reason string) {
	test.Helper()
	if verdict.Legal {
		test.Fatal("expected an illegal verdict, received a legal one")
	}
	assertStrEquality(test, reason, verdict.Reason)
}

func assertLegal(test *testing.T, verdict board.Verdict) {
	test.Helper()
	if !verdict.Legal {
		test.Fatalf("expected a legal verdict, received: %s", verdict.Reason)
	}
}

func Test_movement_gates(test *testing.T) {
	test.Run("test unparsable targets", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, false, board.Black, 2, 2)

		assertIllegal(test, engine.CheckMove(piece, -1), board.ReasonBadSquare)
		assertIllegal(test, engine.CheckMove(piece, 256), board.ReasonBadSquare)
	})

	test.Run("test targets off the grid", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, true, board.Black, 6, 6)

		assertIllegal(test,
			engine.CheckMove(piece, int(board.NewSquare(8, 0))),
			board.ReasonOffGrid)
		assertIllegal(test,
			engine.CheckMove(piece, int(board.NewSquare(0, 8))),
			board.ReasonOffGrid)
	})

	test.Run("test red squares are unreachable", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, false, board.Black, 2, 2)

		// (0, 1) has odd parity
		assertIllegal(test,
			engine.CheckMove(piece, int(board.NewSquare(1, 0))),
			board.ReasonRedSquare)
	})

	test.Run("test generation and validation agree on parity", func(test *testing.T) {
		engine := board.NewEngine(8, 8)
		for _, piece := range engine.Board.Pieces {
			if engine.Board.IsRedSquare(piece.Row(), piece.Column()) {
				test.Errorf("generated piece sits on a square validation rejects: %s",
					piece.String())
			}
		}
	})

	test.Run("test axis aligned moves are rejected", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, true, board.Black, 2, 2)

		assertIllegal(test,
			engine.CheckMove(piece, int(board.NewSquare(2, 4))),
			board.ReasonNotDiagonal)
		assertIllegal(test,
			engine.CheckMove(piece, int(board.NewSquare(4, 2))),
			board.ReasonNotDiagonal)
	})

	test.Run("test uneven offsets pass the diagonal gate", func(test *testing.T) {
		// the gate only rejects shared rows and columns, it does not
		// compare the offset magnitudes
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, false, board.Black, 0, 0)

		verdict := engine.CheckMove(piece, int(board.NewSquare(1, 3)))
		assertLegal(test, verdict)
		assertBoolEq(test, false, verdict.Jump)
	})

	test.Run("test black moves forward only", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, false, board.Black, 1, 5)

		assertIllegal(test,
			engine.CheckMove(piece, int(board.NewSquare(0, 4))),
			board.ReasonBackwardsMove)
		assertLegal(test, engine.CheckMove(piece, int(board.NewSquare(2, 6))))
	})

	test.Run("test red moves forward only", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, false, board.Red, 2, 4)

		assertIllegal(test,
			engine.CheckMove(piece, int(board.NewSquare(3, 5))),
			board.ReasonBackwardsMove)
		assertLegal(test, engine.CheckMove(piece, int(board.NewSquare(1, 3))))
	})

	test.Run("test kings move either way", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		blackKing := placePiece(engine, true, board.Black, 2, 6)
		redKing := placePiece(engine, true, board.Red, 5, 1)

		assertLegal(test, engine.CheckMove(blackKing, int(board.NewSquare(1, 5))))
		assertLegal(test, engine.CheckMove(redKing, int(board.NewSquare(6, 2))))
	})

	test.Run("test occupied targets", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, false, board.Red, 2, 6)
		placePiece(engine, false, board.Red, 1, 5)

		assertIllegal(test,
			engine.CheckMove(piece, int(board.NewSquare(1, 5))),
			board.ReasonOccupied)
	})

	test.Run("test occupied starting square", func(test *testing.T) {
		engine := board.NewEngine(8, 8)
		king := board.NewPiece(true, board.Red, 1, 1)
		engine.Board.AddPiece(&king)

		// (0, 0) holds a generated black piece
		assertIllegal(test,
			engine.CheckMove(&king, int(board.NewSquare(0, 0))),
			board.ReasonOccupied)
	})
}

func Test_jumping(test *testing.T) {
	test.Run("test jump capture over the falling diagonal", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		mover := placePiece(engine, false, board.Red, 4, 4)
		target := placePiece(engine, false, board.Black, 3, 3)

		result := engine.Move(mover, int(board.NewSquare(2, 2)))

		assertBoolEq(test, true, result.Legal)
		assertBoolEq(test, true, result.Jump)
		if result.Captured != target {
			test.Fatal("the jumped piece was not the one reported captured")
		}
		assertNumEq(test, 1, engine.Board.PieceCount())
		assertNumEq(test, 2, mover.Column())
		assertNumEq(test, 2, mover.Row())
	})

	test.Run("test jumping over own colour", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		mover := placePiece(engine, false, board.Red, 4, 4)
		placePiece(engine, false, board.Red, 3, 3)

		result := engine.Move(mover, int(board.NewSquare(2, 2)))

		assertBoolEq(test, false, result.Legal)
		assertBoolEq(test, true, result.Jump)
		assertStrEquality(test, board.ReasonOwnColour, result.Reason)
		assertNumEq(test, 2, engine.Board.PieceCount())
		assertNumEq(test, 4, mover.Column())
		assertNumEq(test, 4, mover.Row())
	})

	test.Run("test jump over nothing is legal", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		mover := placePiece(engine, false, board.Red, 4, 4)

		result := engine.Move(mover, int(board.NewSquare(2, 2)))

		assertBoolEq(test, true, result.Legal)
		assertBoolEq(test, true, result.Jump)
		if result.Captured != nil {
			test.Fatal("nothing should have been captured")
		}
	})

	test.Run("test rising diagonal jumps capture nothing", func(test *testing.T) {
		// capture detection only inspects the squares one step below
		// and one step above the falling diagonal through the target,
		// so a jump travelling the other diagonal misses its piece
		engine := emptyEngine(8, 8)
		mover := placePiece(engine, false, board.Red, 2, 4)
		placePiece(engine, false, board.Black, 3, 3)

		result := engine.Move(mover, int(board.NewSquare(4, 2)))

		assertBoolEq(test, true, result.Legal)
		assertBoolEq(test, true, result.Jump)
		if result.Captured != nil {
			test.Fatal("rising diagonal jumps are not expected to capture")
		}
		assertNumEq(test, 2, engine.Board.PieceCount())
	})

	test.Run("test backward jumps", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		mover := placePiece(engine, false, board.Black, 4, 4)
		placePiece(engine, false, board.Red, 3, 3)

		result := engine.Move(mover, int(board.NewSquare(2, 2)))

		assertBoolEq(test, false, result.Legal)
		assertStrEquality(test, board.ReasonBackwardsMove, result.Reason)
		assertNumEq(test, 2, engine.Board.PieceCount())
	})
}

func Test_promotion(test *testing.T) {
	test.Run("test red promotes on the top row", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, false, board.Red, 1, 1)

		result := engine.Move(piece, int(board.NewSquare(2, 0)))

		assertBoolEq(test, true, result.Legal)
		assertBoolEq(test, true, piece.IsKing())
		if *piece&board.KingMask == 0 {
			test.Fatal("the king bit is not set in the encoded piece")
		}
		assertBoolEq(test, true, piece.IsRed())
		assertNumEq(test, 2, piece.Column())
		assertNumEq(test, 0, piece.Row())
	})

	test.Run("test black promotes on the bottom row", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, false, board.Black, 6, 6)

		result := engine.Move(piece, int(board.NewSquare(7, 7)))

		assertBoolEq(test, true, result.Legal)
		assertBoolEq(test, true, piece.IsKing())
		assertBoolEq(test, true, piece.IsBlack())
	})

	test.Run("test moves preserve king and colour", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, true, board.Red, 5, 5)

		result := engine.Move(piece, int(board.NewSquare(4, 4)))

		assertBoolEq(test, true, result.Legal)
		assertBoolEq(test, true, piece.IsKing())
		assertBoolEq(test, true, piece.IsRed())
		assertNumEq(test, 4, piece.Column())
		assertNumEq(test, 4, piece.Row())

		// the same piece, not a replacement
		if engine.Board.Pieces[0] != piece {
			test.Fatal("the moved piece lost its identity")
		}
	})

	test.Run("test illegal moves promote nothing", func(test *testing.T) {
		engine := emptyEngine(8, 8)
		piece := placePiece(engine, false, board.Red, 1, 1)
		placePiece(engine, false, board.Black, 2, 0)

		result := engine.Move(piece, int(board.NewSquare(2, 0)))

		assertBoolEq(test, false, result.Legal)
		assertBoolEq(test, false, piece.IsKing())
		assertNumEq(test, 1, piece.Column())
		assertNumEq(test, 1, piece.Row())
	})
}
