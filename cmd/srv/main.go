package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var server srv

func main() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "xbooster"
	app.Usage = "X-Booster backend"
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start the api service",
			Category:    "Api",
			Description: `The main service included all apis.`,
		},
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start the cron service",
			Category:    "Worker",
			Description: `Runs recurring jobs, currently the boost progress tick.`,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
