package main

import (
	"os"

	"github.com/dozeapp/doze/app"
	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/internal/logging"
	"github.com/dozeapp/doze/internal/static"
	"github.com/dozeapp/doze/report"
)

func main() {
	config.InitializePaths()

	logging.Init(config.LogFilePath())

	err := static.CopyFilesToDataDir()
	if err != nil {
		report.Quit(err)
	}

	err = app.Get().Run(os.Args)
	if err != nil {
		report.Quit(err)
	}
}
