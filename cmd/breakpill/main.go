package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/BreakThePill/breakpill/internal/activity"
	"github.com/BreakThePill/breakpill/internal/chain"
	"github.com/BreakThePill/breakpill/internal/config"
	"github.com/BreakThePill/breakpill/internal/countdown"
	"github.com/BreakThePill/breakpill/internal/escrow"
	"github.com/BreakThePill/breakpill/internal/model"
	"github.com/BreakThePill/breakpill/internal/poller"
	"github.com/BreakThePill/breakpill/internal/recorder"
	"github.com/BreakThePill/breakpill/internal/scheduler"
	"github.com/BreakThePill/breakpill/internal/session"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] breakpill client starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Chain access
	client, err := chain.Dial(ctx, cfg.RPC.HTTPURL, cfg.RPC.WSURL)
	if err != nil {
		log.Fatalf("[FATAL] dial chain: %v", err)
	}
	defer client.Close()
	log.Printf("[INFO] chain endpoint: %s", client.Name())

	binding := escrow.NewBinding(common.HexToAddress(cfg.Contract.Address))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Countdown driven by global state updates
	cd := countdown.New(nil)
	defer cd.Stop()

	// Pollers
	global := poller.NewGlobalPoller(client, binding, func(g *model.GlobalState) {
		cd.Update(g.WithdrawsOpenedAtEpoch, g.WithdrawDurationSec)
	})
	user := poller.NewUserPoller(client, binding, nil)

	// Wallet capability (absent unless a key is configured)
	var wallet chain.Wallet = chain.NoWallet{}
	if cfg.Wallet.PrivateKey != "" {
		kw, err := chain.NewKeyWallet(cfg.Wallet.PrivateKey, cfg.Network.ChainID)
		if err != nil {
			log.Fatalf("[FATAL] init wallet: %v", err)
		}
		wallet = kw
	}

	target := model.NetworkMetadata{
		ChainID:          cfg.Network.ChainID,
		Name:             cfg.Network.Name,
		RPCURL:           cfg.RPC.HTTPURL,
		ExplorerURL:      cfg.Network.ExplorerURL,
		CurrencyName:     cfg.Network.CurrencyName,
		CurrencySymbol:   cfg.Network.CurrencySymbol,
		CurrencyDecimals: cfg.Network.CurrencyDecimals,
	}

	// Session: account changes feed the user poller
	sess := session.New(wallet, client, binding, target, rec, func(account *common.Address) {
		user.SetAccount(account)
	})
	sess.Start(ctx)
	defer sess.Close()

	// Scheduler wiring (feed is created below so round events can trigger
	// an immediate re-poll through it)
	var sched *scheduler.Scheduler
	feed := activity.New(client, binding, rec, cfg.Feed.WindowBlocks, cfg.Feed.MaxEntries, func(*model.RoundNotice) {
		if sched != nil {
			go sched.RunAllNow()
		}
	})
	sched = scheduler.NewScheduler(ctx, global, user, feed, cd, sess)
	if err := sched.RegisterAll(cfg.Schedule.PollEvery, cfg.Schedule.FeedEvery); err != nil {
		log.Fatalf("[FATAL] register tasks: %v", err)
	}

	// Live subscriptions on top of the polling cadence
	if err := feed.Subscribe(ctx); err != nil {
		log.Printf("[WARN] live events unavailable, polling only: %v", err)
	}
	defer feed.Stop()

	if wallet.Available() {
		if err := sess.Connect(ctx); err != nil {
			log.Printf("[WARN] wallet connect: %v", err)
		}
	}

	sched.Start()
	defer sched.Stop()

	// First poll immediately instead of waiting one interval
	go sched.RunAllNow()

	log.Println("[INFO] breakpill client is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] breakpill client stopped")
}
