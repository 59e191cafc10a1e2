// Package storefront holds the client-side catalog, cart and admin state.
package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/apiclient"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	NoticeTTL       = 3 * time.Second
	fetchTimeout    = 15 * time.Second
)

type CatalogAPI interface {
	ListSweets(ctx context.Context, skip, limit int) (*transport.SweetList, error)
	SearchSweets(ctx context.Context, req transport.SearchRequest) (*transport.SweetList, error)
	Purchase(ctx context.Context, id uint, quantity int) (*transport.PurchaseResponse, error)
}

type Option func(*options)

type options struct {
	debounce  time.Duration
	noticeTTL time.Duration
	logger    *slog.Logger
	notices   *NoticeBoard
}

func WithDebounce(d time.Duration) Option { return func(o *options) { o.debounce = d } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func WithNotices(b *NoticeBoard) Option { return func(o *options) { o.notices = b } }

// WithNoticeTTL sets how long posted notices stay on the board.
func WithNoticeTTL(d time.Duration) Option { return func(o *options) { o.noticeTTL = d } }

func buildOptions(opts []Option) options {
	o := options{debounce: DefaultDebounce, noticeTTL: NoticeTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	if o.notices == nil {
		o.notices = NewNoticeBoard()
	}
	return o
}

type CartLine struct {
	Item     transport.Sweet
	Quantity int
	Subtotal decimal.Decimal
}

// View is a copy of the shop state for rendering.
type View struct {
	Items     []transport.Sweet
	Loaded    int
	Filter    Filter
	Cart      []CartLine
	CartTotal decimal.Decimal
	CartCount int
	Favorites []uint
	Busy      bool
}

// Shop is the customer-facing catalog store. All state below the loop
// field is owned by the loop goroutine.
type Shop struct {
	api      CatalogAPI
	notices  *NoticeBoard
	logger   *slog.Logger
	debounce time.Duration
	ttl      time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	loop     *eventLoop

	items     []transport.Sweet
	byID      map[uint]transport.Sweet
	cart      *Cart
	favorites *Favorites
	filter    Filter
	seq       uint64
	inflight  int
	timer     *time.Timer
	timerGen  uint64
	idle      []chan struct{}
}

func NewShop(api CatalogAPI, opts ...Option) *Shop {
	o := buildOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	return &Shop{
		api:       api,
		notices:   o.notices,
		logger:    o.logger.With("component", "shop"),
		debounce:  o.debounce,
		ttl:       o.noticeTTL,
		ctx:       ctx,
		cancel:    cancel,
		loop:      newEventLoop(),
		byID:      make(map[uint]transport.Sweet),
		cart:      NewCart(),
		favorites: NewFavorites(),
	}
}

func (s *Shop) Notices() *NoticeBoard { return s.notices }

func (s *Shop) Close() {
	s.cancel()
	s.loop.close()
}

// LoadAll replaces the snapshot with the first page of the full catalog.
func (s *Shop) LoadAll(ctx context.Context) error {
	var result <-chan error
	if err := s.loop.call(ctx, func() { result = s.dispatch(nil) }); err != nil {
		return err
	}
	return s.loop.wait(ctx, result)
}

// Search replaces the snapshot with the server's matches for req.
func (s *Shop) Search(ctx context.Context, req transport.SearchRequest) error {
	var result <-chan error
	if err := s.loop.call(ctx, func() { result = s.dispatch(&req) }); err != nil {
		return err
	}
	return s.loop.wait(ctx, result)
}

// dispatch starts a fetch tagged with a new sequence number. Runs on the loop.
func (s *Shop) dispatch(req *transport.SearchRequest) <-chan error {
	s.seq++
	seq := s.seq
	s.inflight++
	result := make(chan error, 1)

	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, fetchTimeout)
		defer cancel()

		var (
			list *transport.SweetList
			err  error
		)
		if req == nil {
			list, err = s.api.ListSweets(ctx, 0, apiclient.DefaultListLimit)
		} else {
			list, err = s.api.SearchSweets(ctx, *req)
		}
		if !s.loop.post(func() { s.complete(seq, req != nil, list, err, result) }) {
			result <- ErrClosed
		}
	}()
	return result
}

func (s *Shop) complete(seq uint64, search bool, list *transport.SweetList, err error, result chan<- error) {
	s.inflight--
	defer s.checkIdle()

	// A superseded fetch leaves the snapshot alone but still reports its own error.
	if seq != s.seq {
		s.logger.Debug("stale_catalog_response", "seq", seq, "latest", s.seq)
		result <- err
		return
	}
	if err != nil {
		msg := "Failed to load sweets"
		if search {
			msg = "Search failed"
		}
		s.logger.Warn("catalog_fetch_failed", "search", search, "error", err)
		s.notices.Post(NoticeError, msg, s.ttl)
		result <- err
		return
	}
	s.setItems(list.Sweets)
	result <- nil
}

func (s *Shop) setItems(items []transport.Sweet) {
	s.items = items
	s.byID = make(map[uint]transport.Sweet, len(items))
	for _, it := range items {
		s.byID[it.ID] = it
	}
}

// SetSearchTerm updates the name filter and re-arms the debounce.
func (s *Shop) SetSearchTerm(ctx context.Context, term string) error {
	return s.loop.call(ctx, func() {
		s.filter.Term = term
		s.armDebounce()
	})
}

// SetCategory updates the category filter; AllCategories clears it.
func (s *Shop) SetCategory(ctx context.Context, category string) error {
	return s.loop.call(ctx, func() {
		s.filter.Category = category
		s.armDebounce()
	})
}

func (s *Shop) armDebounce() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	s.timer = time.AfterFunc(s.debounce, func() {
		s.loop.post(func() {
			if gen != s.timerGen {
				return
			}
			s.timer = nil
			s.runFilter()
			s.checkIdle()
		})
	})
}

func (s *Shop) stopDebounce() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
}

func (s *Shop) runFilter() {
	if s.filter.Empty() {
		s.dispatch(nil)
		return
	}
	req := s.filter.request()
	s.dispatch(&req)
}

func (s *Shop) checkIdle() {
	if s.timer != nil || s.inflight > 0 {
		return
	}
	for _, ch := range s.idle {
		close(ch)
	}
	s.idle = nil
}

// Settle waits until no debounce is armed and no fetch is in flight.
func (s *Shop) Settle(ctx context.Context) error {
	var ch chan struct{}
	err := s.loop.call(ctx, func() {
		if s.timer == nil && s.inflight == 0 {
			return
		}
		ch = make(chan struct{})
		s.idle = append(s.idle, ch)
	})
	if err != nil || ch == nil {
		return err
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.loop.quit:
		return ErrClosed
	}
}

// AddToCart adds one unit of id, bounded by the snapshot's stock.
func (s *Shop) AddToCart(ctx context.Context, id uint) error {
	var err error
	if callErr := s.loop.call(ctx, func() {
		item, ok := s.byID[id]
		if !ok {
			err = ErrUnknownItem
			return
		}
		if err = s.cart.Add(item); err != nil {
			s.notices.Post(NoticeWarning, "Maximum stock reached!", s.ttl)
			return
		}
		s.notices.Post(NoticeSuccess, fmt.Sprintf("Added %s to cart!", item.Name), s.ttl)
	}); callErr != nil {
		return callErr
	}
	return err
}

func (s *Shop) RemoveFromCart(ctx context.Context, id uint) error {
	var err error
	if callErr := s.loop.call(ctx, func() {
		if s.cart.Quantity(id) == 0 {
			err = ErrNotInCart
			return
		}
		s.cart.Remove(id)
	}); callErr != nil {
		return callErr
	}
	return err
}

// ToggleFavorite reports whether id is a favorite afterwards.
func (s *Shop) ToggleFavorite(ctx context.Context, id uint) (bool, error) {
	var (
		on  bool
		err error
	)
	if callErr := s.loop.call(ctx, func() {
		if _, ok := s.byID[id]; !ok && !s.favorites.Has(id) {
			err = ErrUnknownItem
			return
		}
		on = s.favorites.Toggle(id)
		if on {
			s.notices.Post(NoticeSuccess, "Added to favorites!", s.ttl)
		} else {
			s.notices.Post(NoticeInfo, "Removed from favorites", s.ttl)
		}
	}); callErr != nil {
		return false, callErr
	}
	return on, err
}

// Purchase submits the whole cart entry for id. On success the entry is
// cleared and the catalog reloaded; on failure the cart is untouched.
func (s *Shop) Purchase(ctx context.Context, id uint) error {
	var qty int
	if err := s.loop.call(ctx, func() { qty = s.cart.Quantity(id) }); err != nil {
		return err
	}
	if qty == 0 {
		return ErrNotInCart
	}

	l := s.logger.With("sweet_id", id, "quantity", qty)
	if _, err := s.api.Purchase(ctx, id, qty); err != nil {
		l.Warn("purchase_failed", "error", err)
		s.notices.Post(NoticeError, apiclient.DetailOf(err, "Purchase failed"), s.ttl)
		return err
	}

	var reload <-chan error
	if err := s.loop.call(ctx, func() {
		s.cart.Clear(id)
		s.notices.Post(NoticeSuccess, fmt.Sprintf("Purchased %d item(s) successfully!", qty), s.ttl)
		reload = s.dispatch(nil)
	}); err != nil {
		return err
	}
	l.Info("purchase_completed")

	if err := s.loop.wait(ctx, reload); err != nil {
		l.Warn("reload_after_purchase_failed", "error", err)
	}
	return nil
}

// Reset drops everything tied to the signed-in user.
func (s *Shop) Reset(ctx context.Context) error {
	return s.loop.call(ctx, func() {
		s.stopDebounce()
		s.seq++
		s.cart.ClearAll()
		s.favorites.Clear()
		s.filter = Filter{}
		s.setItems(nil)
		s.checkIdle()
	})
}

func (s *Shop) View(ctx context.Context) (View, error) {
	var v View
	err := s.loop.call(ctx, func() {
		v = View{
			Items:     s.filter.visible(s.items),
			Loaded:    len(s.items),
			Filter:    s.filter,
			CartTotal: s.cart.Total(s.byID),
			CartCount: s.cart.ItemCount(),
			Favorites: s.favorites.IDs(),
			Busy:      s.inflight > 0 || s.timer != nil,
		}
		for _, id := range s.cart.IDs() {
			item, ok := s.byID[id]
			if !ok {
				item = transport.Sweet{ID: id}
			}
			q := s.cart.Quantity(id)
			line := CartLine{Item: item, Quantity: q, Subtotal: decimal.Zero}
			if ok {
				line.Subtotal = item.Price.Mul(decimal.NewFromInt(int64(q)))
			}
			v.Cart = append(v.Cart, line)
		}
	})
	return v, err
}
