package main

import (
	"github.com/open-wap/go-push-gateway/internal/config"
	"github.com/open-wap/go-push-gateway/internal/event"
	"github.com/open-wap/go-push-gateway/internal/gateway"
	"github.com/open-wap/go-push-gateway/internal/logger"
	"github.com/open-wap/go-push-gateway/internal/ota"
	"github.com/open-wap/go-push-gateway/internal/server"
	"github.com/open-wap/go-push-gateway/internal/store"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		logger.FatalF("Error occured while reading config %v", err)
		return
	}
	loggerCallback := logger.Init()
	logger.Debug("Application initializing...")
	cleaner := event.NewCleaner()
	cleaner.Init(loggerCallback)

	var results store.ResultStore
	if cfg.Database.Enabled {
		if err := store.ConnectDatabase(); err != nil {
			logger.FatalF("Error occured while initializing database, details: %v", err)
			return
		}
		results = store.NewDatabaseStore()
	} else {
		logger.Info("Database disabled, delivery results kept in memory")
		results = store.NewMemoryStore()
	}

	bearerbox := ota.NewBearerboxAddress()
	bearerbox.Set(cfg.Gateway.ContactAddress)

	// The WSP session services live in the bearer-facing half of the
	// gateway; until that half is attached these sinks record what
	// would leave over the air.
	wsp := ota.DispatchFunc(func(e ota.Event) {
		logger.InfoF("[wsp] Outbound %T", e)
	})
	wspUnit := ota.DispatchFunc(func(e ota.Event) {
		logger.InfoF("[wsp-unit] Outbound %T", e)
	})
	appl := ota.DispatchFunc(func(e ota.Event) {
		logger.DebugF("[appl] Outbound %T", e)
	})

	driver := ota.NewDriver(wsp, wspUnit, bearerbox, cfg.Gateway.ContactPort)
	cleaner.Add(ota.NewDriverCloseCallback(driver))
	go driver.Run()

	intake := server.NewIntake(nil, results)
	controller := gateway.NewController(driver, appl, intake, results)
	intake.SetSubmitter(controller)
	cleaner.Add(gateway.NewControllerCloseCallback(controller))
	go controller.Run()

	closeCallback, run := intake.StartServer(cfg.AppPort)
	cleaner.Add(closeCallback)
	if err := run(); err != nil {
		logger.FatalF("Submission intake start error: %v", err)
	}
}
