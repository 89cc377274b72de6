package repository

import (
	"fmt"
	"strings"

	"headline-generator/internal/models"
)

// whereClause renders filter as a WHERE clause with positional arguments
// starting at $1. An empty filter renders as "".
func whereClause(filter models.HeadlineFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Text != "" {
		add(`headline ILIKE $%d ESCAPE '\'`, containsPattern(filter.Text))
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user text into a literal substring ILIKE pattern.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// orderClause maps page sorting onto a whitelisted column.
func orderClause(page models.Page) string {
	col := "created_at"
	if page.SortBy == models.SortByCategory {
		col = "category"
	}
	dir := "ASC"
	if page.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}
