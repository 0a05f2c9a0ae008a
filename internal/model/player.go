package model

// Color is a player piece color, rendered by clients from its hex value
type Color string

const (
	ColorBlue   Color = "#2F80ED"
	ColorRed    Color = "#EB5757"
	ColorOrange Color = "#F2994A"
	ColorPurple Color = "#9B51E0"
)

// NewColorPool returns the fixed color pool. Colors are popped from the end
// as players join, so the first player gets purple.
func NewColorPool() []Color {
	return []Color{ColorBlue, ColorRed, ColorOrange, ColorPurple}
}

// MaxPlayers is the seat count, bounded by the color pool
const MaxPlayers = 4

// Player is a seated participant. Cards is the player's dealt objective deck;
// the first unfound card is the one currently hunted.
type Player struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"originalName"`
	Color        Color   `json:"color"`
	Cards        []*Card `json:"cards"`
}

// CurrentCards returns up to max unfound cards in deal order. Regular rules
// hunt a single card at a time, but the data allows for variants where
// several are active at once.
func (p *Player) CurrentCards(max int) []*Card {
	var current []*Card
	for _, c := range p.Cards {
		if !c.Found {
			current = append(current, c)
			if len(current) >= max {
				return current
			}
		}
	}
	return current
}

// CurrentCard returns the card the player is hunting, or nil when every card
// has been found
func (p *Player) CurrentCard() *Card {
	cards := p.CurrentCards(1)
	if len(cards) == 0 {
		return nil
	}
	return cards[0]
}

// FoundCount returns how many of the player's cards are already found
func (p *Player) FoundCount() int {
	n := 0
	for _, c := range p.Cards {
		if c.Found {
			n++
		}
	}
	return n
}

// HasFoundAll reports whether the player has no unfound cards left
func (p *Player) HasFoundAll() bool {
	return p.CurrentCard() == nil
}
