package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/apiclient"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

const deletePrompt = "Are you sure you want to delete this sweet?"

type AdminAPI interface {
	ListSweets(ctx context.Context, skip, limit int) (*transport.SweetList, error)
	CreateSweet(ctx context.Context, req transport.CreateSweetRequest) (*transport.Sweet, error)
	UpdateSweet(ctx context.Context, id uint, req transport.UpdateSweetRequest) (*transport.Sweet, error)
	DeleteSweet(ctx context.Context, id uint) (*transport.OperationResponse, error)
	Restock(ctx context.Context, id uint, quantity int) (*transport.Sweet, error)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// SweetForm is the admin's create/edit input.
type SweetForm struct {
	Name        string
	Category    string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

func (f SweetForm) Validate() error {
	var problems []string
	if strings.TrimSpace(f.Name) == "" {
		problems = append(problems, "Name is required")
	}
	if strings.TrimSpace(f.Category) == "" {
		problems = append(problems, "Category is required")
	}
	if !f.Price.IsPositive() {
		problems = append(problems, "Price must be > 0")
	}
	if f.Quantity < 0 {
		problems = append(problems, "Valid quantity required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (f SweetForm) createRequest() transport.CreateSweetRequest {
	return transport.CreateSweetRequest{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
		Price:       f.Price,
		Quantity:    f.Quantity,
	}
}

// updateRequest sends every field; an empty description is left as is.
func (f SweetForm) updateRequest() transport.UpdateSweetRequest {
	name := strings.TrimSpace(f.Name)
	category := strings.TrimSpace(f.Category)
	price := f.Price
	qty := f.Quantity
	req := transport.UpdateSweetRequest{Name: &name, Category: &category, Price: &price, Quantity: &qty}
	if d := strings.TrimSpace(f.Description); d != "" {
		req.Description = &d
	}
	return req
}

// Admin is the inventory panel. Its snapshot is owned by the loop goroutine.
type Admin struct {
	api     AdminAPI
	confirm Confirmer
	notices *NoticeBoard
	logger  *slog.Logger
	ttl     time.Duration
	loop    *eventLoop

	items []transport.Sweet
	seq   uint64
}

func NewAdmin(api AdminAPI, confirm Confirmer, opts ...Option) *Admin {
	o := buildOptions(opts)
	if confirm == nil {
		confirm = ConfirmFunc(func(string) bool { return false })
	}
	return &Admin{
		api:     api,
		confirm: confirm,
		notices: o.notices,
		logger:  o.logger.With("component", "admin"),
		ttl:     o.noticeTTL,
		loop:    newEventLoop(),
	}
}

func (a *Admin) Notices() *NoticeBoard { return a.notices }

func (a *Admin) Close() { a.loop.close() }

// Reload fetches the whole catalog for the inventory table.
func (a *Admin) Reload(ctx context.Context) error {
	var seq uint64
	if err := a.loop.call(ctx, func() {
		a.seq++
		seq = a.seq
	}); err != nil {
		return err
	}

	list, err := a.api.ListSweets(ctx, 0, apiclient.AdminListLimit)

	var applyErr error
	if callErr := a.loop.call(ctx, func() {
		if seq != a.seq {
			return
		}
		if err != nil {
			a.logger.Warn("admin_reload_failed", "error", err)
			a.notices.Post(NoticeError, "Failed to load sweets", a.ttl)
			applyErr = err
			return
		}
		a.items = list.Sweets
	}); callErr != nil {
		return callErr
	}
	return applyErr
}

func (a *Admin) Items(ctx context.Context) ([]transport.Sweet, error) {
	var out []transport.Sweet
	err := a.loop.call(ctx, func() { out = append([]transport.Sweet(nil), a.items...) })
	return out, err
}

// Reset drops the snapshot when the session ends.
func (a *Admin) Reset(ctx context.Context) error {
	return a.loop.call(ctx, func() {
		a.seq++
		a.items = nil
	})
}

func (a *Admin) Create(ctx context.Context, form SweetForm) error {
	if err := a.rejectInvalid(form.Validate()); err != nil {
		return err
	}
	_, err := a.api.CreateSweet(ctx, form.createRequest())
	return a.finish(ctx, "create", err, "Sweet created!", "Operation failed")
}

func (a *Admin) Update(ctx context.Context, id uint, form SweetForm) error {
	if err := a.rejectInvalid(form.Validate()); err != nil {
		return err
	}
	_, err := a.api.UpdateSweet(ctx, id, form.updateRequest())
	return a.finish(ctx, "update", err, "Sweet updated!", "Operation failed")
}

// Delete asks the confirmer first and sends nothing when declined.
func (a *Admin) Delete(ctx context.Context, id uint) error {
	if !a.confirm.Confirm(deletePrompt) {
		return ErrCancelled
	}
	_, err := a.api.DeleteSweet(ctx, id)
	return a.finish(ctx, "delete", err, "Sweet deleted!", "Delete failed")
}

func (a *Admin) Restock(ctx context.Context, id uint, quantity int) error {
	if quantity <= 0 {
		return a.rejectInvalid(fmt.Errorf("%w: Restock quantity must be > 0", ErrValidation))
	}
	_, err := a.api.Restock(ctx, id, quantity)
	return a.finish(ctx, "restock", err, "Restocked successfully!", "Restock failed")
}

func (a *Admin) rejectInvalid(err error) error {
	if err == nil {
		return nil
	}
	a.notices.Post(NoticeError, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "), a.ttl)
	return err
}

// finish posts the outcome of a mutation and reloads after success.
func (a *Admin) finish(ctx context.Context, op string, err error, success, fallback string) error {
	if err != nil {
		a.logger.Warn("admin_op_failed", "op", op, "error", err)
		a.notices.Post(NoticeError, apiclient.DetailOf(err, fallback), a.ttl)
		return err
	}
	a.logger.Info("admin_op_success", "op", op)
	a.notices.Post(NoticeSuccess, success, a.ttl)
	if err := a.Reload(ctx); err != nil {
		a.logger.Warn("admin_reload_after_op_failed", "op", op, "error", err)
	}
	return nil
}
