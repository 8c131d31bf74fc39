package profile

// Preferences captures the household details the planner personalizes for.
type Preferences struct {
	FamilySize          int    `json:"familySize,omitempty"`
	Ages                string `json:"ages,omitempty"`
	DietaryRestrictions string `json:"dietaryRestrictions,omitempty"`
	FoodPreferences     string `json:"foodPreferences,omitempty"`
	MenuDays            int    `json:"menuDays,omitempty"`
}

// IsZero reports whether no preference has been set.
func (p Preferences) IsZero() bool {
	return p == Preferences{}
}
