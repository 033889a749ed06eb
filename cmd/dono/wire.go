//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/dono/internal/config"
	"github.com/amaumene/dono/internal/controllers"
)

func initializeApp(cfg *config.Config, logger *logrus.Logger) (*App, func(), error) {
	wire.Build(serveSet)
	return nil, nil, nil
}

func initializeReader(cfg *config.Config, logger *logrus.Logger) (*controllers.IngestController, func(), error) {
	wire.Build(readerSet)
	return nil, nil, nil
}
