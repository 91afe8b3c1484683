package sqlite

import (
	"strings"

	"github.com/HealthyWithVictor/storefront/internal/repository"
)

// Listing queries are assembled from loosely-typed request parameters, so
// this file is the single choke point where they are made safe:
//
//   - user-supplied values (category id, search term) only ever travel as
//     bound parameters, never spliced into the SQL text
//   - sort column and direction are compared against allow-lists; anything
//     that fails the check silently falls back to the default ordering
//     instead of erroring
//   - page numbers below 1 clamp to 1 so the OFFSET can never go negative
//
// The count query and the page query share the same WHERE fragment, which is
// what keeps totalCount consistent with the rows actually returned.

const (
	defaultSortColumn = "id"
	defaultSortDir    = "DESC"
)

// sortColumns maps the externally visible sort keys to the column expression
// used in ORDER BY. Only these four are ever interpolated into query text.
var sortColumns = map[string]string{
	"id":    "p.id",
	"name":  "p.name",
	"price": "p.price",
	"stock": "p.stock",
}

// buildProductWhere returns the WHERE fragment (including the leading
// "WHERE", or "" when unfiltered) and its positional parameters.
func buildProductWhere(f repository.ProductFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.CategoryID != "" {
		clauses = append(clauses, "p.category_id = ?")
		args = append(args, f.CategoryID)
	}

	if term := strings.TrimSpace(f.Search); term != "" {
		// LIKE is case-insensitive for ASCII in SQLite. The %-wrapped term
		// is a parameter, so wildcards in user input stay harmless noise.
		clauses = append(clauses, "(p.name LIKE ? OR p.description LIKE ?)")
		pattern := "%" + term + "%"
		args = append(args, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// buildProductOrderBy returns the ORDER BY fragment. Unknown columns or
// directions fall back to the default (id DESC, newest first) without
// surfacing an error to the caller.
func buildProductOrderBy(f repository.ProductFilter) string {
	column, ok := sortColumns[strings.ToLower(strings.TrimSpace(f.SortColumn))]
	if !ok {
		column = sortColumns[defaultSortColumn]
	}

	dir := strings.ToUpper(strings.TrimSpace(f.SortDir))
	if dir != "ASC" && dir != "DESC" {
		dir = defaultSortDir
	}

	return "ORDER BY " + column + " " + dir
}

// pageBounds converts the 1-based page number into LIMIT/OFFSET values.
// Pages below 1 clamp to 1 so the offset can never go negative, and the page
// size is capped so one request cannot dump the whole table.
func pageBounds(f repository.ProductFilter) (limit, offset, page int) {
	size := f.PageSize
	if size <= 0 {
		size = repository.DefaultPageSize
	}
	if size > repository.MaxPageSize {
		size = repository.MaxPageSize
	}

	page = f.Page
	if page < 1 {
		page = 1
	}

	return size, (page - 1) * size, page
}
