package main

import (
	"log"

	"github.com/m3rciful/postbot/core/cmd"
	"github.com/m3rciful/postbot/internal/app"
	"github.com/m3rciful/postbot/internal/config"
)

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Fatal(err)
	}
}
