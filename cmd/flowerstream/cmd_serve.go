package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"flowerstream/internal/cache"
	"flowerstream/internal/config"
	"flowerstream/internal/events"
	"flowerstream/internal/http/handlers"
	"flowerstream/internal/payment"
	"flowerstream/internal/rates"
	"flowerstream/internal/repos"
)

// flowerstream serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		// Optional file logging
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
			} else {
				defer f.Close()
				log.SetOutput(io.MultiWriter(os.Stdout, f))
			}
		}

		repos.AdminPassword = cfg.AdminPassword
		db, err := repos.OpenDB(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		ext := externals(cmd.Context(), cfg)
		defer ext.Events.Close()

		deps := handlers.NewDeps(db, cfg, ext)
		app := handlers.NewApp(deps, cfg.MediaDir, handlers.Limits{})
		return app.Listen(":" + cfg.Port)
	},
}

// externals picks the live integrations when they are configured and local stand-ins otherwise.
func externals(ctx context.Context, cfg config.Config) handlers.Externals {
	if ctx == nil {
		ctx = context.Background()
	}
	var ext handlers.Externals

	loc, err := time.LoadLocation(cfg.DisplayTZ)
	if err != nil {
		log.Printf("[warn] unknown DISPLAY_TZ %q, using UTC", cfg.DisplayTZ)
		loc = time.UTC
	}
	ext.Loc = loc

	if cfg.StripeSecretKey != "" {
		ext.Gateway = payment.NewStripe(cfg.StripeSecretKey, cfg.CheckoutTTL)
	} else {
		log.Printf("[payment] no STRIPE_SECRET_KEY, sessions are paid on creation")
		sb := payment.NewSandbox()
		sb.AutoPay = true
		ext.Gateway = sb
	}

	var c cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		r := cache.NewRedis(cfg.RedisAddr)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := r.Ping(pctx); err != nil {
			log.Printf("[warn] redis %s unreachable, caching rates in memory: %v", cfg.RedisAddr, err)
		} else {
			c = r
		}
	}
	ext.Rates = rates.NewClient(cfg.RateURL, cfg.PaymentCurrency, cfg.FallbackRate, cfg.RateCacheTTL, c)

	if len(cfg.KafkaBrokers) > 0 {
		ext.Events = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		ext.Events = &events.Recorder{}
	}
	return ext
}
