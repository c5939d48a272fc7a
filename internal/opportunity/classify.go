package opportunity

// Classify assigns a hedge type from the platforms of the two legs
func Classify(back, lay Platform) HedgeType {
	switch {
	case back.Kind == KindExchange && lay.Kind == KindExchange:
		if back.Key == lay.Key {
			return HedgeTypeExchangeInternal
		}
		return HedgeTypeCrossExchange
	case back.Kind == KindBookmaker && lay.Kind == KindBookmaker:
		return HedgeTypeBookmakerBookmaker
	default:
		return HedgeTypeBookmakerExchange
	}
}

// ClassifyLegs classifies an opportunity by all of its leg platforms. More
// than two legs is always multi_leg. A single leg is classified against itself.
func ClassifyLegs(platforms ...Platform) HedgeType {
	switch len(platforms) {
	case 0:
		return HedgeTypeMultiLeg
	case 1:
		return Classify(platforms[0], platforms[0])
	case 2:
		return Classify(platforms[0], platforms[1])
	default:
		return HedgeTypeMultiLeg
	}
}
