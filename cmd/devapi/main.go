// Command devapi serves the parts catalog REST API the web frontend talks to.
package main

import (
	"flag"
	"log"

	"github.com/simp-lee/partsweb/internal/config"
	"github.com/simp-lee/partsweb/internal/devapi"
)

func main() {
	configPath := flag.String("config", "configs/devapi.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadDevAPI(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	s, err := devapi.New(cfg)
	if err != nil {
		log.Fatal("failed to create devapi: ", err)
	}

	if err := s.Run(); err != nil {
		log.Fatal("server error: ", err)
	}
}
