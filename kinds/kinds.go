package kinds

const (
	length   = 64
	idLength = 8
	depthMax = length / idLength
	idMask   = (1 << idLength) - 1
)

// Kind packs id together with every id found in bases, so that a kind
// carries its whole ancestry.
func Kind(id uint64, bases ...uint64) uint64 {
	id = id & idMask
	seen := make(map[uint64]struct{})
	for _, base := range bases {
		for j := 0; j < depthMax; j++ {
			baseId := (base >> (idLength * j)) & idMask
			if baseId == 0 {
				break
			}
			if _, ok := seen[baseId]; ok {
				continue
			}
			seen[baseId] = struct{}{}
			id |= baseId << (idLength * len(seen))
		}
	}
	return id
}

// IsKind reports whether kind is, or descends from, any of bases.
func IsKind(kind uint64, bases ...uint64) bool {
	for _, base := range bases {
		baseId := base & idMask
		if kind == baseId {
			return true
		}
		for i := 0; i < depthMax; i++ {
			if (kind>>(idLength*i))&idMask == baseId {
				return true
			}
		}
	}
	return false
}

var (
	Element    = Kind(1)
	Table      = Kind(2, Element)
	Transition = Kind(3, Element)
	Point      = Kind(4, Transition)
	Cycle      = Kind(5, Transition)
)
