//go:build !windows || dev

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bartek5186/sheet2woo/internal/app"
	"github.com/bartek5186/sheet2woo/internal/commands"
	conf "github.com/bartek5186/sheet2woo/internal/config"
	logs "github.com/bartek5186/sheet2woo/internal/logs"
)

var ver = "1.0.0"

func main() {
	appDir := app.Dir("sheet2woo")
	log := logs.New(filepath.Join(appDir, "app.log"), true)

	cfgPath := filepath.Join(appDir, "config.json")
	cfg, firstRun, err := conf.LoadOrCreate(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	if firstRun {
		log.Info().Msgf("created default config: %s", cfgPath)
		fmt.Println("First run. Fill in spreadsheet_id and credentials_file in", cfgPath)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, log, appDir, cfg, cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("startup error")
	}
	defer a.Close()

	if cfg.AutoStart {
		_ = a.Scheduler.Start(ctx)
		log.Info().Msgf("sheet2woo %s: auto-fetch running", ver)
	}

	fmt.Println("sheet2woo CLI", ver)
	fmt.Println("Commands:", strings.Join(commands.Names(), " | "), "| paths | quit")
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			cancel()
			a.Scheduler.Stop()
			return
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]

		switch cmd {
		case "paths":
			fmt.Println("log:", filepath.Join(appDir, "app.log"))
			fmt.Println("config:", a.CfgPath)
			fmt.Println("store:", a.DB.Path)
		case "quit", "exit":
			cancel()
			a.Scheduler.Stop()
			time.Sleep(50 * time.Millisecond)
			return
		default:
			fmt.Println(commands.Dispatch(ctx, a.Deps, cmd, args))
		}
	}
}
