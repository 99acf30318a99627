package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/tripkeeper/internal/app"
	"github.com/dmitrijs2005/tripkeeper/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg, nil, nil)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
