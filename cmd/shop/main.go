package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/sweet_shop/internal/apiclient"
	"github.com/Skotchmaster/sweet_shop/internal/config"
	"github.com/Skotchmaster/sweet_shop/internal/session"
	"github.com/Skotchmaster/sweet_shop/internal/storefront"
	"github.com/Skotchmaster/sweet_shop/internal/ui"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

func main() {
	config.LoadEnv(".env")
	cfg := config.LoadClient()

	apiURL := flag.String("api", cfg.APIURL, "Sweet Shop API base URL")
	home := flag.String("home", cfg.Home, "Directory holding the saved session")
	themeName := flag.String("theme", cfg.Theme, "Color theme: light, dark or plain")
	flag.Parse()

	logger := logging.NewTo(os.Stderr, cfg.LogLevel).With("app", "sweet_shop_client")

	theme, ok := ui.ThemeByName(*themeName)
	if !ok {
		logger.Warn("unknown_theme", "theme", *themeName)
	}

	store := session.NewFileStore(*home)

	api := apiclient.NewClient(*apiURL, apiclient.WithLogger(logger))
	mgr := session.NewManager(store, api, logger)
	api.OnUnauthorized(mgr.HandleUnauthorized)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notices := storefront.NewNoticeBoard()
	shop := storefront.NewShop(api, storefront.WithLogger(logger), storefront.WithNotices(notices))
	defer shop.Close()

	var shell *ui.Shell
	admin := storefront.NewAdmin(api, storefront.ConfirmFunc(func(prompt string) bool {
		return shell.Confirm(prompt)
	}), storefront.WithLogger(logger), storefront.WithNotices(notices))
	defer admin.Close()

	mgr.OnEnd(func(reason string) {
		notices.Clear()
		resetCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := shop.Reset(resetCtx); err != nil {
			logger.Warn("shop_reset_failed", "reason", reason, "error", err)
		}
		if err := admin.Reset(resetCtx); err != nil {
			logger.Warn("admin_reset_failed", "reason", reason, "error", err)
		}
	})

	shell = ui.New(os.Stdin, os.Stdout, theme, ui.Deps{
		Session: mgr,
		Shop:    shop,
		Admin:   admin,
		History: api,
		Notices: notices,
	})
	if err := shell.Run(ctx); err != nil {
		logger.Error("shell_failed", "error", err)
		os.Exit(1)
	}
}
