package main

import (
	"fmt"

	"github.com/Ndymario/Checkers-Framework/board"
)

// A tiny game on the smallest legal board: print it, slide one black
// checker forward, print it again.
func main() {
	engine := board.NewEngine(3, 3)

	fmt.Println("before:")
	fmt.Println(board.Render(engine.Board))

	piece, found := engine.Board.PieceAt(0, 0)
	if !found {
		panic("no piece generated on the first square")
	}

	result := engine.Move(piece, int(board.NewSquare(1, 1)))
	fmt.Println(result.String())

	fmt.Println("after:")
	fmt.Println(board.Render(engine.Board))
}
