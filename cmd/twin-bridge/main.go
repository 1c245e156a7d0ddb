package main

import (
	"context"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"twin/internal/agent"
	"twin/internal/bridge"
	"twin/internal/cli"
	"twin/internal/config"
	"twin/internal/proxy"
	"twin/internal/sources"
)

func main() {
	envFile := flag.StringP("env", "e", ".env", "Env file path")
	logLevel := flag.StringP("log", "l", "info", "Log level")
	proxyAddr := flag.StringP("proxy", "p", "", "SOCKS5 proxy address")
	flag.Parse()

	config.SetupLogger(os.Stdout, *logLevel)

	log.Info("Booting up")

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Warn("Failed to load env file", "path", *envFile, "err", err)
	}

	cfg, err := config.LoadBridge(os.Getenv)
	if err != nil {
		log.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	if *proxyAddr != "" {
		cfg.LLM.Proxy = *proxyAddr
	}

	modelClient, err := proxy.NewClient(cfg.LLM.Proxy, 0)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.LLM.Proxy, "err", err)
		os.Exit(1)
	}
	fetchClient, err := proxy.NewClient(cfg.LLM.Proxy, sources.DefaultTimeout)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.LLM.Proxy, "err", err)
		os.Exit(1)
	}

	set := sources.NewSet(fetchClient)
	responder := bridge.NewResponder(
		agent.MeetingAgent(set.URL, set.PDF, set.Paste),
		cli.DefaultRunner(cfg.LLM, modelClient),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Boot up - successful", "domain", cfg.Domain, "agent_id", cfg.AgentID)

	if err := bridge.Serve(ctx, cfg, bridge.NewServer(responder, cfg.AgentID)); err != nil {
		log.Error("Bridge stopped", "err", err)
		os.Exit(1)
	}
	log.Info("Bridge stopped")
}
