package auth

import "fmt"

// Level is a caller's permission level: an ordered numeric tier or the
// super-admin variant, which outranks every numeric tier. Modeling the
// super-admin as its own variant keeps comparisons exhaustive instead of
// relying on a magic sentinel value.
type Level struct {
	tier  uint8
	super bool
}

func LevelOf(tier uint8) Level {
	return Level{tier: tier}
}

func SuperAdmin() Level {
	return Level{super: true}
}

func (l Level) IsSuperAdmin() bool {
	return l.super
}

func (l Level) Tier() uint8 {
	return l.tier
}

// Compare defines the total order: super-admin above all numeric tiers,
// numeric tiers by value.
func (l Level) Compare(other Level) int {
	switch {
	case l.super && other.super:
		return 0
	case l.super:
		return 1
	case other.super:
		return -1
	case l.tier < other.tier:
		return -1
	case l.tier > other.tier:
		return 1
	default:
		return 0
	}
}

func (l Level) AtLeast(other Level) bool {
	return l.Compare(other) >= 0
}

func (l Level) String() string {
	if l.super {
		return "super-admin"
	}
	return fmt.Sprintf("level-%d", l.tier)
}
