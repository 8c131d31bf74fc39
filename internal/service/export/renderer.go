package export

import (
	"fmt"
	"strings"
)

// TextRenderer writes the document as plain text, sections in the same order
// the client's PDF layout uses: menu, shopping list, cost estimate.
type TextRenderer struct{}

// Render implements Renderer.
func (TextRenderer) Render(doc Document) ([]byte, string, error) {
	var b strings.Builder

	b.WriteString("Jefree - Menu & Shopping List\n")
	if doc.UserName != "" {
		fmt.Fprintf(&b, "Generated for: %s\n", doc.UserName)
	}
	fmt.Fprintf(&b, "Date: %s\n", doc.GeneratedAt.Format("2006-01-02"))

	writeSection(&b, "Weekly Menu", doc.MenuPlan)
	writeSection(&b, "Shopping List", doc.ShoppingList)
	writeSection(&b, "Cost Estimate", doc.CostEstimate)

	return []byte(b.String()), "text/plain; charset=utf-8", nil
}

func writeSection(b *strings.Builder, title, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(b, "\n== %s ==\n%s\n", title, content)
}
