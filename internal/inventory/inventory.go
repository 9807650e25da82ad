package inventory

import (
	"sort"
	"strings"

	types "github.com/betoojeda/tienda-facil/internal/domain"
)

const (
	AllCategories   = "Todos"
	DefaultPageSize = 10
)

type SortField string

const (
	SortCode           SortField = "code"
	SortName           SortField = "name"
	SortCategory       SortField = "category"
	SortCostPrice      SortField = "cost_price"
	SortPrice          SortField = "price"
	SortWholesalePrice SortField = "wholesale_price"
	SortStock          SortField = "stock"
	SortMinStock       SortField = "min_stock"
)

func (f SortField) Valid() bool {
	switch f {
	case SortCode, SortName, SortCategory, SortCostPrice, SortPrice, SortWholesalePrice, SortStock, SortMinStock:
		return true
	}
	return false
}

type Query struct {
	Category string
	Search   string
	Sort     SortField
	Desc     bool
	Page     int
	PageSize int
}

type Page struct {
	Items      []*types.Product `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalItems int              `json:"total_items"`
	TotalPages int              `json:"total_pages"`
}

// Filter keeps products in category (Todos or empty = any) whose name or
// code contains search, case-insensitively.
func Filter(products []*types.Product, category, search string) []*types.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	allCats := category == "" || category == AllCategories
	out := make([]*types.Product, 0, len(products))
	for _, p := range products {
		if !allCats && categoryOf(p) != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Code), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort orders products in place; strings compare case-insensitively and
// ties keep their original order.
func Sort(products []*types.Product, field SortField, desc bool) {
	if !field.Valid() {
		return
	}
	sort.SliceStable(products, func(i, j int) bool {
		c := compare(products[i], products[j], field)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b *types.Product, field SortField) int {
	switch field {
	case SortCode:
		return compareStrings(a.Code, b.Code)
	case SortName:
		return compareStrings(a.Name, b.Name)
	case SortCategory:
		return compareStrings(categoryOf(a), categoryOf(b))
	case SortCostPrice:
		return compareFloats(a.CostPrice, b.CostPrice)
	case SortPrice:
		return compareFloats(a.Price, b.Price)
	case SortWholesalePrice:
		return compareFloats(a.WholesalePrice, b.WholesalePrice)
	case SortStock:
		return compareFloats(float64(a.Stock), float64(b.Stock))
	case SortMinStock:
		return compareFloats(float64(a.MinStock), float64(b.MinStock))
	}
	return 0
}

func compareStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Paginate slices one page; page is clamped to [1, totalPages].
func Paginate(products []*types.Product, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(products)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	items := products[start:end]
	if items == nil {
		items = []*types.Product{}
	}
	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// List is Filter, Sort and Paginate in that order. The input is not modified.
func List(products []*types.Product, q Query) Page {
	filtered := Filter(products, q.Category, q.Search)
	Sort(filtered, q.Sort, q.Desc)
	return Paginate(filtered, q.Page, q.PageSize)
}

// Categories lists distinct categories in first-seen order, Todos first.
func Categories(products []*types.Product) []string {
	out := []string{AllCategories}
	seen := map[string]bool{}
	for _, p := range products {
		c := categoryOf(p)
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func LowStock(products []*types.Product) []*types.Product {
	out := []*types.Product{}
	for _, p := range products {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out
}

func categoryOf(p *types.Product) string {
	if strings.TrimSpace(p.Category) == "" {
		return types.DefaultCategory
	}
	return p.Category
}
