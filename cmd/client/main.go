package main

import (
	"context"

	"github.com/passvault/passvault/internal/client/cli"
	"github.com/passvault/passvault/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	app.Run(ctx)

}
