package models

// Valid state transitions: from -> []to
var ValidStakeTransitions = map[string][]string{
	StakeStatusActive:    {StakeStatusWithdrawn},
	StakeStatusWithdrawn: {},
}

var ValidInstallmentTransitions = map[string][]string{
	InstallmentStatusActive:    {InstallmentStatusCompleted},
	InstallmentStatusCompleted: {},
}

var ValidMissionTransitions = map[string][]string{
	MissionLocked:    {MissionUnlocked},
	MissionUnlocked:  {MissionCompleted},
	MissionCompleted: {},
}

func CanTransition(table map[string][]string, from, to string) bool {
	allowed, ok := table[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
