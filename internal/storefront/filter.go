package storefront

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

// AllCategories disables the category filter.
const AllCategories = "All"

type Filter struct {
	Term     string
	Category string
}

func (f Filter) category() string {
	c := strings.TrimSpace(f.Category)
	if strings.EqualFold(c, AllCategories) {
		return ""
	}
	return c
}

func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Term) == "" && f.category() == ""
}

func (f Filter) request() transport.SearchRequest {
	return transport.SearchRequest{
		Name:     strings.TrimSpace(f.Term),
		Category: f.category(),
	}
}

// visible applies the filter locally with Unicode case folding.
func (f Filter) visible(items []transport.Sweet) []transport.Sweet {
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(f.Term))
	category := fold.String(f.category())

	out := make([]transport.Sweet, 0, len(items))
	for _, it := range items {
		if term != "" && !strings.Contains(fold.String(it.Name), term) {
			continue
		}
		if category != "" && fold.String(it.Category) != category {
			continue
		}
		out = append(out, it)
	}
	return out
}
