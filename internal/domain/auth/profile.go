package auth

// Clearance is the ordered severity ceiling attached to a profile. It mirrors
// the report severity scale without depending on the report package.
type Clearance uint8

const (
	ClearanceLow Clearance = iota
	ClearanceMedium
	ClearanceHigh
	ClearanceCritical
)

func (c Clearance) String() string {
	switch c {
	case ClearanceLow:
		return "low"
	case ClearanceMedium:
		return "medium"
	case ClearanceHigh:
		return "high"
	default:
		return "critical"
	}
}

// Profile is the capability set computed per request from the caller's level.
// It is never persisted.
type Profile struct {
	CanView                    bool
	CanInvestigate             bool
	CanEscalate                bool
	CanResolve                 bool
	CanViewStatistics          bool
	CanAccessConfidentialNotes bool
	CanAssignInvestigators     bool
	MaxSeverity                Clearance
}

// Tier thresholds. The table is ordered by ascending level; each tier
// includes everything below it except where noted (statistics-only viewers
// cannot read reports).
const (
	tierStatistics  = 2
	tierInvestigate = 3
	tierEscalate    = 5
	tierResolve     = 7
)

func Resolve(level Level) Profile {
	switch {
	case level.IsSuperAdmin() || level.Tier() >= tierResolve:
		return Profile{
			CanView:                    true,
			CanInvestigate:             true,
			CanEscalate:                true,
			CanResolve:                 true,
			CanViewStatistics:          true,
			CanAccessConfidentialNotes: true,
			CanAssignInvestigators:     true,
			MaxSeverity:                ClearanceCritical,
		}
	case level.Tier() >= tierEscalate:
		return Profile{
			CanView:                    true,
			CanInvestigate:             true,
			CanEscalate:                true,
			CanViewStatistics:          true,
			CanAccessConfidentialNotes: true,
			CanAssignInvestigators:     true,
			MaxSeverity:                ClearanceHigh,
		}
	case level.Tier() >= tierInvestigate:
		return Profile{
			CanView:           true,
			CanInvestigate:    true,
			CanViewStatistics: true,
			MaxSeverity:       ClearanceMedium,
		}
	case level.Tier() >= tierStatistics:
		return Profile{
			CanViewStatistics: true,
			MaxSeverity:       ClearanceLow,
		}
	default:
		return Profile{MaxSeverity: ClearanceLow}
	}
}
