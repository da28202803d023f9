//go:build windows && !dev

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/getlantern/systray"

	"github.com/bartek5186/sheet2woo/internal/app"
	"github.com/bartek5186/sheet2woo/internal/commands"
	conf "github.com/bartek5186/sheet2woo/internal/config"
	logs "github.com/bartek5186/sheet2woo/internal/logs"
)

// override with: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

func main() {
	appDir := app.Dir("sheet2woo")
	log := logs.New(filepath.Join(appDir, "app.log"), false)

	cfgPath := filepath.Join(appDir, "config.json")
	cfg, firstRun, err := conf.LoadOrCreate(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	if firstRun {
		log.Info().Msgf("created default config: %s", cfgPath)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, log, appDir, cfg, cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("startup error")
	}
	defer a.Close()

	go func() {
		<-ctx.Done()
		a.Scheduler.Stop()
		systray.Quit()
	}()

	systray.Run(func() {
		systray.SetTooltip(fmt.Sprintf("sheet2woo %s", ver))

		mFetch := systray.AddMenuItem("Fetch now", "Pull the catalog into the sheet")
		mPush := systray.AddMenuItem("Push all rows", "Send the sheet to the store")
		mTest := systray.AddMenuItem("Test connection", "Check endpoint and token")
		systray.AddSeparator()
		mStart := systray.AddMenuItem("Start auto-fetch", "Run the fetch schedule")
		mStop := systray.AddMenuItem("Stop auto-fetch", "Stop the fetch schedule")
		mStop.Disable()
		systray.AddSeparator()
		mOpenLogs := systray.AddMenuItem("Open log", "Show the log file")
		mOpenCfg := systray.AddMenuItem("Settings (config.json)", "Open the config file")
		systray.AddSeparator()
		mAbout := systray.AddMenuItem(fmt.Sprintf("About (%s)", ver), "")
		mQuit := systray.AddMenuItem("Quit", "Close the application")

		if cfg.AutoStart {
			if err := a.Scheduler.Start(ctx); err == nil {
				mStart.Disable()
				mStop.Enable()
				systray.SetTooltip(fmt.Sprintf("sheet2woo %s: auto-fetch running", ver))
			} else {
				log.Error().Err(err).Msg("auto-start failed")
			}
		}

		run := func(name string) {
			out := commands.Dispatch(ctx, a.Deps, name, nil)
			log.Info().Str("action", name).Msg(out)
			systray.SetTooltip(fmt.Sprintf("sheet2woo %s: %s", ver, out))
		}

		go func() {
			for {
				select {
				case <-mFetch.ClickedCh:
					run("fetch")

				case <-mPush.ClickedCh:
					run("push")

				case <-mTest.ClickedCh:
					run("test")

				case <-mStart.ClickedCh:
					if err := a.Scheduler.Start(ctx); err != nil {
						log.Error().Err(err).Msg("start error")
						continue
					}
					mStart.Disable()
					mStop.Enable()
					systray.SetTooltip(fmt.Sprintf("sheet2woo %s: auto-fetch running", ver))

				case <-mStop.ClickedCh:
					a.Scheduler.Stop()
					mStop.Disable()
					mStart.Enable()
					systray.SetTooltip(fmt.Sprintf("sheet2woo %s: auto-fetch stopped", ver))

				case <-mOpenLogs.ClickedCh:
					openInExplorer(filepath.Join(appDir, "app.log"))

				case <-mOpenCfg.ClickedCh:
					openInExplorer(cfgPath)

				case <-mAbout.ClickedCh:
					log.Info().Msgf("sheet2woo %s | %s", ver, runtime.Version())

				case <-mQuit.ClickedCh:
					cancel()
					a.Scheduler.Stop()
					systray.Quit()
					return
				}
			}
		}()
	}, func() {
		// onExit: give the logger a moment to flush
		time.Sleep(50 * time.Millisecond)
	})
}

// portable "open in default application"
func openInExplorer(path string) {
	switch runtime.GOOS {
	case "windows":
		// "start" must run through cmd /C, with an empty window title
		_ = exec.Command("cmd", "/C", "start", "", path).Start()
	case "darwin":
		_ = exec.Command("open", path).Start()
	default:
		_ = exec.Command("xdg-open", path).Start()
	}
}
