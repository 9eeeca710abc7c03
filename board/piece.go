package board

import "fmt"

/*
A checker packs its whole state into the low ten bits:

	king colour column row
	K    C      XXXX   YYYY

bit 9 is the king flag, bit 8 the colour (1 = red, 0 = black),
bits 4-7 the column and bits 0-3 the row. The packed value is the
interop representation; every accessor decodes from it and every
mutation goes back through it, so the layout is defined here once.
*/
type Piece uint16

type Colour uint8

const (
	Black Colour = iota
	Red
)

func ColourString(colour Colour) string {
	if colour == Red {
		return "red"
	}
	return "black"
}

func OppositeColour(colour Colour) Colour {
	if colour == Red {
		return Black
	}
	return Red
}

const (
	RowMask    Piece = 0b0000001111
	ColumnMask       = 0b0011110000
	ColourMask       = 0b0100000000
	KingMask         = 0b1000000000
)

const (
	ColumnShift uint8 = 4
	ColourShift       = 8
	KingShift         = 9
)

const positionMask = ColumnMask | RowMask

// coordinates saturate into [0,15] rather than erroring,
// the packed fields cannot represent anything wider
func clampCoordinate(coordinate int) int {
	if coordinate < 0 {
		return 0
	}
	if coordinate > 15 {
		return 15
	}
	return coordinate
}

func NewPiece(king bool, colour Colour, column, row int) Piece {
	piece := Piece(clampCoordinate(column))<<ColumnShift |
		Piece(clampCoordinate(row))
	if colour == Red {
		piece |= ColourMask
	}
	if king {
		piece |= KingMask
	}
	return piece
}

func (piece Piece) IsKing() bool {
	return piece&KingMask == KingMask
}
func (piece Piece) Colour() Colour {
	if piece&ColourMask == ColourMask {
		return Red
	}
	return Black
}
func (piece Piece) IsRed() bool {
	return piece.Colour() == Red
}
func (piece Piece) IsBlack() bool {
	return piece.Colour() == Black
}
func (piece Piece) Column() int {
	return int((piece & ColumnMask) >> ColumnShift)
}
func (piece Piece) Row() int {
	return int(piece & RowMask)
}

// withPosition keeps the king and colour bits and replaces only the
// position bits. A moved checker is the same checker.
func (piece Piece) withPosition(square Square) Piece {
	return piece&^positionMask | Piece(square)
}

func (piece Piece) promote() Piece {
	return piece | KingMask
}

// Marker is the renderer's cell text for this piece:
// "B" or "R", prefixed with "K" once promoted.
func (piece Piece) Marker() string {
	marker := "B"
	if piece.IsRed() {
		marker = "R"
	}
	if piece.IsKing() {
		marker = "K" + marker
	}
	return marker
}

func (piece Piece) String() string {
	return fmt.Sprintf("King: %t | Colour: %s | Column: %d | Row: %d",
		piece.IsKing(), ColourString(piece.Colour()), piece.Column(), piece.Row())
}
