package services

import "satang/internal/core"

// defaultCategories is the fixed set seeded on first run, both type
// partitions. IDs are stable slugs so a fresh install always produces the
// same registry.
func defaultCategories() []core.Category {
	expense := []core.Category{
		{ID: "food", Name: "Food & Drink", Icon: "restaurant", Color: "#FF7043"},
		{ID: "transport", Name: "Transport", Icon: "directions_bus", Color: "#42A5F5"},
		{ID: "shopping", Name: "Shopping", Icon: "shopping_bag", Color: "#AB47BC"},
		{ID: "bills", Name: "Bills & Utilities", Icon: "receipt_long", Color: "#26A69A"},
		{ID: "entertainment", Name: "Entertainment", Icon: "movie", Color: "#EC407A"},
		{ID: "health", Name: "Health", Icon: "local_hospital", Color: "#66BB6A"},
		{ID: "education", Name: "Education", Icon: "school", Color: "#5C6BC0"},
		{ID: "other-expense", Name: "Other", Icon: "category", Color: "#78909C"},
	}
	income := []core.Category{
		{ID: "salary", Name: "Salary", Icon: "payments", Color: "#66BB6A"},
		{ID: "bonus", Name: "Bonus", Icon: "star", Color: "#FFA726"},
		{ID: "investment", Name: "Investment", Icon: "trending_up", Color: "#29B6F6"},
		{ID: "gift", Name: "Gift", Icon: "card_giftcard", Color: "#EC407A"},
		{ID: "other-income", Name: "Other Income", Icon: "attach_money", Color: "#78909C"},
	}

	out := make([]core.Category, 0, len(expense)+len(income))
	for i, c := range expense {
		c.Type = core.ExpenseCategory
		c.SortOrder = i
		c.IsSystem = true
		out = append(out, c)
	}
	for i, c := range income {
		c.Type = core.IncomeCategory
		c.SortOrder = i
		c.IsSystem = true
		out = append(out, c)
	}
	return out
}
