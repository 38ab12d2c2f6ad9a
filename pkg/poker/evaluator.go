package poker

import (
	"fmt"

	chehsunliu "github.com/chehsunliu/poker"
)

// HandCategory represents the category of a poker hand, high card lowest.
type HandCategory int

const (
	HighCard HandCategory = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns the display name of the category
func (c HandCategory) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandValue is a complete evaluation of a hand: the category, a totally
// ordered score, and the five cards that make up the best hand. Two
// HandValues compare equal exactly when the hands would split a pot.
type HandValue struct {
	Category HandCategory
	Desc     string
	BestFive []Card

	// Cactus-Kev style rank from the evaluator backend; lower is better.
	// Ties on score are genuine poker ties (suits never break ties).
	score int32
}

// convertCard converts our Card type to the evaluator backend's card type
func convertCard(card Card) chehsunliu.Card {
	var rankChar byte
	switch Value(card.GetValue()) {
	case Two:
		rankChar = '2'
	case Three:
		rankChar = '3'
	case Four:
		rankChar = '4'
	case Five:
		rankChar = '5'
	case Six:
		rankChar = '6'
	case Seven:
		rankChar = '7'
	case Eight:
		rankChar = '8'
	case Nine:
		rankChar = '9'
	case Ten:
		rankChar = 'T'
	case Jack:
		rankChar = 'J'
	case Queen:
		rankChar = 'Q'
	case King:
		rankChar = 'K'
	case Ace:
		rankChar = 'A'
	}

	var suitChar byte
	switch Suit(card.GetSuit()) {
	case Spades:
		suitChar = 's'
	case Hearts:
		suitChar = 'h'
	case Diamonds:
		suitChar = 'd'
	case Clubs:
		suitChar = 'c'
	}

	return chehsunliu.NewCard(string([]byte{rankChar, suitChar}))
}

// categoryFromRankClass converts the backend's rank class to a HandCategory
func categoryFromRankClass(rankClass int32) HandCategory {
	switch rankClass {
	case 1:
		return StraightFlush
	case 2:
		return FourOfAKind
	case 3:
		return FullHouse
	case 4:
		return Flush
	case 5:
		return Straight
	case 6:
		return ThreeOfAKind
	case 7:
		return TwoPair
	case 8:
		return OnePair
	default:
		return HighCard
	}
}

// EvaluateBest scores the best 5-card poker hand found within the given
// cards (typically 2 hole cards plus up to 5 community cards). At least 5
// cards are required. The wheel straight A-2-3-4-5 ranks as five-high.
func EvaluateBest(cards []Card) (HandValue, error) {
	if len(cards) < 5 {
		return HandValue{}, fmt.Errorf("need at least 5 cards to evaluate a hand, have %d", len(cards))
	}

	converted := make([]chehsunliu.Card, len(cards))
	for i, card := range cards {
		converted[i] = convertCard(card)
	}

	rank := chehsunliu.Evaluate(converted)

	return HandValue{
		Category: categoryFromRankClass(chehsunliu.RankClass(rank)),
		Desc:     chehsunliu.RankString(rank),
		BestFive: bestFiveCards(cards, rank),
		score:    rank,
	}, nil
}

// bestFiveCards finds the 5-card subset whose evaluation matches the known
// best rank of the full pool. For 7 cards this scans the 21 combinations.
func bestFiveCards(cards []Card, bestRank int32) []Card {
	if len(cards) == 5 {
		return cloneCards(cards)
	}

	for _, combo := range combinations(cards, 5) {
		converted := make([]chehsunliu.Card, 5)
		for i, card := range combo {
			converted[i] = convertCard(card)
		}
		if chehsunliu.Evaluate(converted) == bestRank {
			return combo
		}
	}

	// Unreachable: the best rank is by definition attained by some subset.
	return cloneCards(cards[:5])
}

// combinations generates all k-card combinations from a slice of cards
func combinations(cards []Card, k int) [][]Card {
	var out [][]Card

	if k <= 0 || k > len(cards) {
		return out
	}

	var generate func(start int, current []Card)
	generate = func(start int, current []Card) {
		if len(current) == k {
			combo := make([]Card, k)
			copy(combo, current)
			out = append(out, combo)
			return
		}
		for i := start; i <= len(cards)-(k-len(current)); i++ {
			generate(i+1, append(current, cards[i]))
		}
	}

	generate(0, []Card{})
	return out
}

// CompareHands compares two hand values and returns:
//
//	-1 if a is worse than b
//	 0 if a and b tie
//	 1 if a is better than b
func CompareHands(a, b HandValue) int {
	// The backend assigns lower scores to better hands.
	switch {
	case a.score > b.score:
		return -1
	case a.score < b.score:
		return 1
	default:
		return 0
	}
}
