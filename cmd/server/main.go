package main

import (
	"github.com/fusegraph/backend/internal/server"
	"github.com/fusegraph/backend/internal/util"
	"github.com/fusegraph/backend/pkg/logger"
	"github.com/fusegraph/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
