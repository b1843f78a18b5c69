package audio

// ----- Destination ----- //

// Destination is what the LFO modulates.
type Destination int

// Destinations
const (
	DestNone Destination = iota
	DestScale
	DestRotate
	DestTranslate
)

var destinationNames = [...]string{
	DestNone:      "none",
	DestScale:     "scale",
	DestRotate:    "rotate",
	DestTranslate: "translate",
}

// DestinationFromString returns DestNone for unknown names.
func DestinationFromString(s string) Destination {
	for d, name := range destinationNames {
		if name == s {
			return Destination(d)
		}
	}
	return DestNone
}

func (d Destination) String() string {
	if d < 0 || int(d) >= len(destinationNames) {
		return destinationNames[DestNone]
	}
	return destinationNames[d]
}
