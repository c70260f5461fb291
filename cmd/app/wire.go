//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/ciderworks/internal/bootstrap"
	"github.com/yanqian/ciderworks/internal/domain/cellar"
	"github.com/yanqian/ciderworks/internal/infra/config"
	httpiface "github.com/yanqian/ciderworks/internal/interface/http"
	"github.com/yanqian/ciderworks/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideCellarConfig,
		provideRegistry,
		provideMetricsRecorder,
		provideBatchRepository,
		provideCalibrationStore,
		cellar.NewService,
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
