package board

// CardBounds is the vertical extent of a rendered card.
type CardBounds struct {
	Top    float64
	Height float64
}

// DropIndex returns the insertion index for a drop at pointerY: the first card
// whose vertical midpoint lies below the pointer, or len(cards) to append.
func DropIndex(pointerY float64, cards []CardBounds) int {
	for i, c := range cards {
		if pointerY < c.Top+c.Height/2 {
			return i
		}
	}
	return len(cards)
}
