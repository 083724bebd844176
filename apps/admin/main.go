package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
	logsvc "github.com/trezcool/markmywords/services/logger"
	"github.com/trezcool/markmywords/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage
	repo, err := database.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	state, err := document.Open(context.Background(), repo, document.Seed(conf.Seed.Username, conf.Seed.Password), logger)
	if err != nil {
		_ = repo.Close()
		logger.Fatal(err.Error(), err)
	}

	// start CLI
	cli := commandLine{state: state, out: os.Stdout}
	err = cli.run(os.Args)

	_ = repo.Close()
	logger.Close()

	if err != nil {
		if err != errHelp {
			log.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
