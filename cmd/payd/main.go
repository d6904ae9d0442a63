package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"paycore/config"
	"paycore/core/events"
	"paycore/native/distributor"
	"paycore/native/gateway"
	"paycore/observability/logging"
	"paycore/rpc"
	"paycore/state"
	"paycore/storage"
	"paycore/token"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.Setup("payd", cfg.Env, cfg.LogFile)

	admin, err := config.Address(cfg.AdminAddress)
	if err != nil {
		logger.Error("invalid admin address", slog.String("error", err.Error()))
		os.Exit(1)
	}
	gatewayAddr, err := config.Address(cfg.GatewayAddress)
	if err != nil {
		logger.Error("invalid gateway address", slog.String("error", err.Error()))
		os.Exit(1)
	}
	distributorAddr, err := config.Address(cfg.DistributorAddress)
	if err != nil {
		logger.Error("invalid distributor address", slog.String("error", err.Error()))
		os.Exit(1)
	}
	charity, err := config.Address(cfg.CharityBeneficiary)
	if err != nil {
		logger.Error("invalid charity beneficiary", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	manager := state.NewManager(db)
	recorder := events.NewRecorder()

	ledger := token.NewLedger(cfg.LedgerName, cfg.ChainID)
	ledger.SetState(manager)
	ledger.SetEmitter(recorder)

	supply, err := ledger.TotalSupply()
	if err != nil {
		logger.Error("failed to read total supply", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if supply.Sign() == 0 {
		if err := ledger.Mint(admin, token.GenesisSupply); err != nil {
			logger.Error("genesis mint failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("genesis supply minted", slog.String("to", cfg.AdminAddress))
	}

	dist := distributor.NewEngine(admin, distributorAddr)
	dist.SetState(manager)
	dist.SetToken(ledger)
	dist.SetEmitter(recorder)
	if err := dist.Bootstrap(charity); err != nil {
		logger.Error("failed to bootstrap charity beneficiary", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := dist.AuthorizeSource(admin, gatewayAddr); err != nil {
		logger.Error("failed to authorize gateway", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := dist.AddService(admin, gateway.ServiceName); err != nil && !errors.Is(err, distributor.ErrServiceExists) {
		logger.Error("failed to register gateway service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gw := gateway.NewEngine(admin, gatewayAddr)
	gw.SetState(manager)
	gw.SetToken(ledger)
	gw.SetEmitter(recorder)
	gw.SetFeesDistributor(dist)

	auth := rpc.NewAuthenticator(os.Getenv("PAYCORE_RPC_SECRET"))
	if !auth.Enabled() {
		logger.Warn("PAYCORE_RPC_SECRET not set; administrative RPC methods are disabled")
	}

	server := rpc.NewServer(logger, ledger, gw, dist, recorder, auth)
	server.SetDistributorFactory(func(addr [20]byte) gateway.FeesDistributor {
		next := distributor.NewEngine(admin, addr)
		next.SetState(manager)
		next.SetToken(ledger)
		next.SetEmitter(recorder)
		_ = next.AuthorizeSource(admin, gatewayAddr)
		return next
	})

	logger.Info("payd started",
		slog.String("rpc", cfg.RPCAddress),
		slog.String("ledger", cfg.LedgerName),
		slog.Int64("chainId", cfg.ChainID),
	)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("rpc server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
