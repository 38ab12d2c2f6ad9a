package server

// DefaultBuyInsCents are the buy-in tiers the server keeps one table open
// for, in cents.
var DefaultBuyInsCents = []int64{500, 2_000, 10_000}

// DefaultMaxSeats is the seat count for tier tables.
const DefaultMaxSeats = 6

// BlindsForBuyIn derives the blind sizes for a buy-in: the big blind is one
// fiftieth of the buy-in and the small blind half of that, each floored at
// one cent.
func BlindsForBuyIn(buyInCents int64) (smallBlindCents, bigBlindCents int64) {
	bigBlindCents = buyInCents / 50
	if bigBlindCents < 1 {
		bigBlindCents = 1
	}
	smallBlindCents = bigBlindCents / 2
	if smallBlindCents < 1 {
		smallBlindCents = 1
	}
	return smallBlindCents, bigBlindCents
}
