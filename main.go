package main

import (
	"context"
	"duitku/config"
	"duitku/internal"
	"duitku/services"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {

	logger := internal.NewLogger("internal", false, nil)
	defer logger.Sync()

	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	logger.Info("using config file: " + *configPath)
	conf, err := config.GetConfig(*configPath)
	if err != nil {
		logger.Error("boot", err)
		return
	}

	var mongo services.Database
	if conf.Mongo.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		client, e := internal.NewMongoClient(ctx, conf)
		cancel()
		if e != nil {
			logger.Error("mongo client", e)
			return
		}
		mongo = client
		logger.Info("mongo client initialized")
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongo.Close(ctx)
		}()
	}

	logger.Info("merchant code: " + conf.Merchant.Code)
	logger.Info("gateway url: " + conf.Merchant.BaseUrl)

	metrics := internal.NewMetrics()

	gateway := internal.NewGatewayClient(conf.MerchantUrls().Gateway, conf.GatewayTimeout)
	gateway.SetMetrics(metrics)

	paymentsLogger := internal.NewLogger("payments", conf.IsDebug, mongo)
	payments := internal.NewPayments(conf.Credentials(), conf.MerchantUrls(), gateway)
	payments.SetLogger(paymentsLogger)
	payments.SetMetrics(metrics)
	payments.SetNotificationHandler(internal.NewLogNotificationHandler(paymentsLogger))

	serverLogger := internal.NewLogger("server", conf.IsDebug, mongo)
	server := internal.NewServer(conf, metrics)
	server.SetLogger(serverLogger)
	server.SetPaymentsService(payments)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	select {
	case err = <-errs:
		if err != nil {
			logger.Error("server start", err)
		}
	case <-stop:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err = server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown", err)
		}
	}

	// notification handlers and log writes must finish before mongo is closed
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = payments.Wait(ctx); err != nil {
		logger.Error("notification handlers", err)
	}
	for _, l := range []*internal.Logger{paymentsLogger, serverLogger} {
		if err = l.Wait(ctx); err != nil {
			logger.Error("log writes", err)
		}
	}
}
