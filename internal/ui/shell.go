// Package ui is the line-oriented terminal front end of the storefront.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/apiclient"
	"github.com/Skotchmaster/sweet_shop/internal/session"
	"github.com/Skotchmaster/sweet_shop/internal/storefront"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

type HistoryAPI interface {
	Purchases(ctx context.Context, skip, limit int) (*transport.PurchaseList, error)
}

type Deps struct {
	Session *session.Manager
	Shop    *storefront.Shop
	Admin   *storefront.Admin
	History HistoryAPI
	Notices *storefront.NoticeBoard
}

type Shell struct {
	in    *bufio.Scanner
	out   io.Writer
	theme Theme
	d     Deps

	lastState session.State
}

var errQuit = errors.New("quit")

func New(in io.Reader, out io.Writer, theme Theme, d Deps) *Shell {
	return &Shell{
		in:    bufio.NewScanner(in),
		out:   out,
		theme: theme,
		d:     d,
	}
}

// Confirm asks a yes/no question on the shell's input.
func (s *Shell) Confirm(prompt string) bool {
	line, ok := s.readLine(prompt + " [y/N] ")
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (s *Shell) readLine(prompt string) (string, bool) {
	fmt.Fprint(s.out, s.theme.paint(s.theme.Accent, prompt))
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Shell) printf(style, format string, args ...any) {
	fmt.Fprintln(s.out, s.theme.paint(style, fmt.Sprintf(format, args...)))
}

// Run reads commands until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.printf(s.theme.Title, "Sweet Shop")
	s.lastState = s.d.Session.State()
	if s.lastState == session.Authenticated {
		s.welcome(ctx)
	} else {
		s.printf(s.theme.Muted, "Please log in (type 'help' for commands).")
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		s.noticeSessionChange()

		line, ok := s.readLine(s.prompt())
		if !ok {
			return nil
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		var err error
		if s.d.Session.State() == session.Authenticated {
			err = s.shopCommand(ctx, args)
		} else {
			err = s.loginCommand(ctx, args)
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		s.flushNotices()
		if err != nil {
			s.printError(err)
		}
	}
}

func (s *Shell) prompt() string {
	if s.d.Session.State() != session.Authenticated {
		return "login> "
	}
	if s.d.Session.IsAdmin() {
		return "admin> "
	}
	return "shop> "
}

func (s *Shell) noticeSessionChange() {
	state := s.d.Session.State()
	if s.lastState == session.Authenticated && state == session.Anonymous {
		s.flushNotices()
		s.printf(s.theme.Warning, "Session ended. Please log in again.")
	}
	s.lastState = state
}

func (s *Shell) welcome(ctx context.Context) {
	if u := s.d.Session.User(); u != nil {
		s.printf(s.theme.Success, "Welcome, %s!", u.FullName)
	}
	if err := s.d.Shop.LoadAll(ctx); err == nil {
		s.renderItems(ctx)
	}
	s.flushNotices()
}

// notify posts to the shared board so the message prints with the others.
func (s *Shell) notify(kind storefront.NoticeKind, text string) {
	if s.d.Notices == nil {
		s.printf(s.theme.Error, "%s", text)
		return
	}
	s.d.Notices.Post(kind, text, storefront.NoticeTTL)
}

func (s *Shell) flushNotices() {
	if s.d.Notices == nil {
		return
	}
	for _, n := range s.d.Notices.Unseen() {
		style := s.theme.Muted
		switch n.Kind {
		case storefront.NoticeSuccess:
			style = s.theme.Success
		case storefront.NoticeWarning:
			style = s.theme.Warning
		case storefront.NoticeError:
			style = s.theme.Error
		}
		s.printf(style, "%s", n.Text)
	}
}

// printError reports errors that did not already produce a notice.
func (s *Shell) printError(err error) {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr),
		errors.Is(err, storefront.ErrMaxStock),
		errors.Is(err, storefront.ErrValidation):
		return
	case errors.Is(err, storefront.ErrNotInCart):
		s.printf(s.theme.Warning, "Nothing to purchase: that sweet is not in your cart.")
	case errors.Is(err, storefront.ErrUnknownItem):
		s.printf(s.theme.Warning, "No sweet with that id is listed.")
	case errors.Is(err, storefront.ErrCancelled):
		s.printf(s.theme.Muted, "Cancelled.")
	default:
		s.printf(s.theme.Error, "%s", apiclient.DetailOf(err, err.Error()))
	}
}

func (s *Shell) loginCommand(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		s.printf(s.theme.Muted, "login <email>                      sign in")
		s.printf(s.theme.Muted, "register <email> <full name...>    create an account")
		s.printf(s.theme.Muted, "quit")
		return nil
	case "quit", "exit":
		return errQuit
	case "login":
		if len(args) != 2 {
			return usage("login <email>")
		}
		password, ok := s.readLine("password: ")
		if !ok {
			return errQuit
		}
		if err := s.d.Session.Login(ctx, args[1], password); err != nil {
			s.printf(s.theme.Error, "%s", apiclient.DetailOf(err, "Invalid email or password"))
			return nil
		}
		s.lastState = session.Authenticated
		s.welcome(ctx)
		return nil
	case "register":
		if len(args) < 3 {
			return usage("register <email> <full name...>")
		}
		return s.register(ctx, args[1], strings.Join(args[2:], " "))
	}
	return usage("unknown command, try 'help'")
}

func (s *Shell) register(ctx context.Context, email, fullName string) error {
	password, ok := s.readLine("password: ")
	if !ok {
		return errQuit
	}
	confirm, ok := s.readLine("confirm password: ")
	if !ok {
		return errQuit
	}
	if password != confirm {
		s.printf(s.theme.Error, "Passwords do not match")
		return nil
	}
	if len(password) < 8 {
		s.printf(s.theme.Error, "Password must be at least 8 characters")
		return nil
	}
	if _, err := s.d.Session.Register(ctx, transport.RegisterRequest{Email: email, FullName: fullName, Password: password}); err != nil {
		s.printf(s.theme.Error, "%s", apiclient.DetailOf(err, "Registration failed"))
		return nil
	}
	if err := s.d.Session.Login(ctx, email, password); err != nil {
		s.printf(s.theme.Error, "%s", apiclient.DetailOf(err, "Invalid email or password"))
		return nil
	}
	s.lastState = session.Authenticated
	s.welcome(ctx)
	return nil
}

type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

func usage(text string) error { return usageError(text) }

func parseID(args []string, i int) (uint, error) {
	if len(args) <= i {
		return 0, usage("missing id")
	}
	id, err := strconv.ParseUint(args[i], 10, 32)
	if err != nil || id == 0 {
		return 0, usage("id must be a positive integer")
	}
	return uint(id), nil
}

func (s *Shell) shopCommand(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		s.shopHelp()
		return nil
	case "quit", "exit":
		return errQuit
	case "logout":
		s.d.Session.Logout()
		s.lastState = session.Anonymous
		s.printf(s.theme.Muted, "Logged out.")
		return nil
	case "list":
		if err := s.d.Shop.LoadAll(ctx); err != nil {
			return err
		}
		s.renderItems(ctx)
		return nil
	case "search":
		if err := s.d.Shop.SetSearchTerm(ctx, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		return s.settleAndRender(ctx)
	case "category":
		cat := storefront.AllCategories
		if len(args) > 1 {
			cat = strings.Join(args[1:], " ")
		}
		if err := s.d.Shop.SetCategory(ctx, cat); err != nil {
			return err
		}
		return s.settleAndRender(ctx)
	case "add", "remove", "fav", "buy":
		id, err := parseID(args, 1)
		if err != nil {
			return err
		}
		return s.itemCommand(ctx, args[0], id)
	case "cart":
		s.renderCart(ctx)
		return nil
	case "favs":
		s.renderFavorites(ctx)
		return nil
	case "orders":
		return s.renderOrders(ctx)
	case "admin":
		if !s.d.Session.IsAdmin() {
			s.printf(s.theme.Error, "Admin access required")
			return nil
		}
		return s.adminCommand(ctx, args[1:])
	}
	return usage("unknown command, try 'help'")
}

func (s *Shell) shopHelp() {
	lines := []string{
		"list                     show the catalog",
		"search <term>            filter by name (empty clears)",
		"category <name|All>      filter by category",
		"add <id> / remove <id>   change the cart",
		"cart                     show the cart",
		"buy <id>                 purchase the cart entry for id",
		"fav <id> / favs          toggle and list favorites",
		"orders                   show your purchase history",
		"logout / quit",
	}
	if s.d.Session.IsAdmin() {
		lines = append(lines,
			"admin list",
			"admin create <name>|<category>|<price>|<qty>[|<description>]",
			"admin update <id> <name>|<category>|<price>|<qty>[|<description>]",
			"admin delete <id>",
			"admin restock <id> <qty>",
		)
	}
	for _, l := range lines {
		s.printf(s.theme.Muted, "%s", l)
	}
}

func (s *Shell) settleAndRender(ctx context.Context) error {
	if err := s.d.Shop.Settle(ctx); err != nil {
		return err
	}
	s.renderItems(ctx)
	return nil
}

func (s *Shell) itemCommand(ctx context.Context, cmd string, id uint) error {
	switch cmd {
	case "add":
		return s.d.Shop.AddToCart(ctx, id)
	case "remove":
		return s.d.Shop.RemoveFromCart(ctx, id)
	case "fav":
		_, err := s.d.Shop.ToggleFavorite(ctx, id)
		return err
	default:
		if err := s.d.Shop.Purchase(ctx, id); err != nil {
			return err
		}
		s.flushNotices()
		s.renderItems(ctx)
		return nil
	}
}

func (s *Shell) renderItems(ctx context.Context) {
	v, err := s.d.Shop.View(ctx)
	if err != nil {
		return
	}
	if len(v.Items) == 0 {
		s.printf(s.theme.Muted, "No sweets found.")
		return
	}
	favs := make(map[uint]bool, len(v.Favorites))
	for _, id := range v.Favorites {
		favs[id] = true
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\t")
	for _, it := range v.Items {
		stock := strconv.Itoa(it.Quantity)
		if it.Quantity == 0 {
			stock = "out of stock"
		}
		mark := ""
		if favs[it.ID] {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s%s\t%s\t$%s\t%s\t\n", it.ID, it.Name, mark, it.Category, it.Price.StringFixed(2), stock)
	}
	_ = tw.Flush()
	if v.CartCount > 0 {
		s.printf(s.theme.Accent, "Cart: %d item(s), total $%s", v.CartCount, v.CartTotal.StringFixed(2))
	}
}

func (s *Shell) renderCart(ctx context.Context) {
	v, err := s.d.Shop.View(ctx)
	if err != nil {
		return
	}
	if len(v.Cart) == 0 {
		s.printf(s.theme.Muted, "Your cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tSUBTOTAL\t")
	for _, line := range v.Cart {
		name := line.Item.Name
		if name == "" {
			name = "(not listed)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t$%s\t\n", line.Item.ID, name, line.Quantity, line.Subtotal.StringFixed(2))
	}
	_ = tw.Flush()
	s.printf(s.theme.Accent, "Total: $%s", v.CartTotal.StringFixed(2))
}

func (s *Shell) renderFavorites(ctx context.Context) {
	v, err := s.d.Shop.View(ctx)
	if err != nil {
		return
	}
	if len(v.Favorites) == 0 {
		s.printf(s.theme.Muted, "No favorites yet.")
		return
	}
	ids := make([]string, 0, len(v.Favorites))
	for _, id := range v.Favorites {
		ids = append(ids, strconv.FormatUint(uint64(id), 10))
	}
	s.printf(s.theme.Accent, "Favorites: %s", strings.Join(ids, ", "))
}

func (s *Shell) renderOrders(ctx context.Context) error {
	if s.d.History == nil {
		return nil
	}
	list, err := s.d.History.Purchases(ctx, 0, 50)
	if err != nil {
		s.notify(storefront.NoticeError, apiclient.DetailOf(err, "Failed to load purchases"))
		return nil
	}
	if len(list.Purchases) == 0 {
		s.printf(s.theme.Muted, "No purchases yet.")
		return nil
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tSWEET\tQTY\tTOTAL\tDATE\t")
	for _, p := range list.Purchases {
		fmt.Fprintf(tw, "%d\t%d\t%d\t$%s\t%s\t\n", p.ID, p.SweetID, p.Quantity, p.TotalPrice.StringFixed(2), p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (s *Shell) adminCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("admin list|create|update|delete|restock")
	}
	a := s.d.Admin
	switch args[0] {
	case "list":
		if err := a.Reload(ctx); err != nil {
			return err
		}
		items, err := a.Items(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tAVAILABLE\t")
		for _, it := range items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t$%s\t%d\t%t\t\n", it.ID, it.Name, it.Category, it.Price.StringFixed(2), it.Quantity, it.IsAvailable)
		}
		return tw.Flush()
	case "create":
		form, err := parseForm(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return a.Create(ctx, form)
	case "update":
		id, err := parseID(args, 1)
		if err != nil {
			return err
		}
		form, err := parseForm(strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		return a.Update(ctx, id, form)
	case "delete":
		id, err := parseID(args, 1)
		if err != nil {
			return err
		}
		return a.Delete(ctx, id)
	case "restock":
		id, err := parseID(args, 1)
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return usage("admin restock <id> <qty>")
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return usage("quantity must be a number")
		}
		return a.Restock(ctx, id, qty)
	}
	return usage("admin list|create|update|delete|restock")
}

// parseForm reads "name|category|price|qty[|description]".
func parseForm(s string) (storefront.SweetForm, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 4 {
		return storefront.SweetForm{}, usage("<name>|<category>|<price>|<qty>[|<description>]")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return storefront.SweetForm{}, usage("price must be a number")
	}
	qty, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return storefront.SweetForm{}, usage("quantity must be a whole number")
	}
	form := storefront.SweetForm{
		Name:     strings.TrimSpace(parts[0]),
		Category: strings.TrimSpace(parts[1]),
		Price:    price,
		Quantity: qty,
	}
	if len(parts) > 4 {
		form.Description = strings.TrimSpace(strings.Join(parts[4:], "|"))
	}
	return form, nil
}
