package main

import (
	"log"

	"taskserver/internal/client/cli"
	"taskserver/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()

	app := cli.NewApp(cfg)
	if err := app.Run(); err != nil {
		log.Printf("%v", err)
	}
}
