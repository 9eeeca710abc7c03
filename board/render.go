package board

import "strings"

// Render draws a board as a printable grid, one cell per square with
// the top of the grid as row zero. It has no legality knowledge:
// whatever the collection holds gets drawn, and pieces sharing a
// square have their markers concatenated.
func Render(board *Board) string {
	cells := make([][]string, board.Height)
	for row := range cells {
		cells[row] = make([]string, board.Width)
	}
	for _, piece := range board.Pieces {
		cell := &cells[piece.Row()][piece.Column()]
		if *cell != "" {
			*cell += " "
		}
		*cell += piece.Marker()
	}

	// every column is as wide as its widest cell
	widths := make([]int, board.Width)
	for column := range widths {
		widths[column] = 1
		for row := 0; row < board.Height; row++ {
			if len(cells[row][column]) > widths[column] {
				widths[column] = len(cells[row][column])
			}
		}
	}

	separator := renderSeparator(widths)

	var builder strings.Builder
	builder.WriteString(separator)
	for _, rowCells := range cells {
		builder.WriteString("\n")
		for column, cell := range rowCells {
			builder.WriteString("| ")
			builder.WriteString(cell)
			builder.WriteString(strings.Repeat(" ", widths[column]-len(cell)+1))
		}
		builder.WriteString("|\n")
		builder.WriteString(separator)
	}
	return builder.String()
}

func renderSeparator(widths []int) string {
	var builder strings.Builder
	for _, width := range widths {
		builder.WriteString("+")
		builder.WriteString(strings.Repeat("-", width+2))
	}
	builder.WriteString("+")
	return builder.String()
}
