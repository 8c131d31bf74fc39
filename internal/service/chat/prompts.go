package chat

import (
	"fmt"
	"strings"

	"github.com/jefree-app/backend/internal/model/profile"
)

// menuPlanRequest builds the user message asking for a multi-day menu.
func menuPlanRequest(prefs profile.Preferences) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I need a detailed menu for %d days considering these preferences:\n", prefs.MenuDays)
	if prefs.FamilySize > 0 {
		fmt.Fprintf(&b, "- We are %d people\n", prefs.FamilySize)
	}
	if prefs.Ages != "" {
		fmt.Fprintf(&b, "- Ages: %s\n", prefs.Ages)
	}
	if prefs.DietaryRestrictions != "" {
		fmt.Fprintf(&b, "- Restrictions: %s\n", prefs.DietaryRestrictions)
	}
	if prefs.FoodPreferences != "" {
		fmt.Fprintf(&b, "- Preferences: %s\n", prefs.FoodPreferences)
	}
	b.WriteString(`
Please include:
- Breakfast, mid-morning, lunch, snack and dinner for each day
- Portions adapted to the number of people
- Alternatives for main dishes
- Drink suggestions
- Preparation tips where relevant`)
	return b.String()
}

// shoppingListRequest builds the user message turning a menu into a list.
func shoppingListRequest(menuPlan string) string {
	return fmt.Sprintf(`I need a detailed, organized shopping list for this menu:

%s

Please:
- Organize the ingredients by category
- Specify exact quantities
- Include alternatives where relevant
- Add notes on selecting products
- Suggest seasonal produce where possible`, menuPlan)
}

// costEstimateRequest builds the user message asking to price a list.
func costEstimateRequest(shoppingList string) string {
	return fmt.Sprintf(`Could you give me a detailed cost estimate for this shopping list?

%s

Please:
- Provide an approximate price range
- Suggest cheaper alternatives where possible
- Include tips to optimize the budget
- Highlight products where savings are easy
- Mention typical offers or cheaper seasons`, shoppingList)
}
