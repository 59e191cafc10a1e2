package storefront

import "slices"

type Favorites struct {
	ids map[uint]struct{}
}

func NewFavorites() *Favorites {
	return &Favorites{ids: make(map[uint]struct{})}
}

// Toggle flips membership and reports whether id is now a favorite.
func (f *Favorites) Toggle(id uint) bool {
	if _, ok := f.ids[id]; ok {
		delete(f.ids, id)
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

func (f *Favorites) Has(id uint) bool {
	_, ok := f.ids[id]
	return ok
}

func (f *Favorites) Clear() { clear(f.ids) }

func (f *Favorites) IDs() []uint {
	ids := make([]uint, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
