package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bartek5186/sheet2woo/internal/catalog"
	"github.com/bartek5186/sheet2woo/internal/db"
	"github.com/bartek5186/sheet2woo/internal/settings"
)

func usageLine() string {
	return strings.Join(Names(), " | ")
}

func init() {
	Register("fetch", cmdFetch)
	Register("push", cmdPush)
	Register("test", cmdTest)
	Register("config", cmdConfig)
	Register("set-url", cmdSetURL)
	Register("set-secret", cmdSetSecret)
	Register("start", cmdStart)
	Register("stop", cmdStop)
	Register("status", cmdStatus)
}

func cmdFetch(ctx context.Context, d *Deps, _ []string) string {
	res := d.Engine.Fetch(ctx)
	if !res.Success {
		return "fetch failed: " + res.Message
	}
	return res.Message
}

// cmdPush pushes the whole grid, or only the rows whose product id was
// given as an argument ("push 1023 1024").
func cmdPush(ctx context.Context, d *Deps, args []string) string {
	if len(args) == 0 {
		out := d.Engine.PushAll(ctx)
		if !out.Success {
			return "push failed: " + out.Message
		}
		return out.Message
	}

	rows, err := d.Grid.ReadRows(ctx)
	if err != nil {
		return "push failed: " + err.Error()
	}
	wanted := make(map[string]struct{}, len(args))
	for _, id := range args {
		wanted[id] = struct{}{}
	}
	selected := make([][]string, 0, len(args))
	for _, row := range rows {
		if len(row) > int(catalog.ColumnID) {
			if _, ok := wanted[row[catalog.ColumnID]]; ok {
				selected = append(selected, row)
			}
		}
	}

	out := d.Engine.Push(ctx, selected)
	if !out.Success {
		return "push failed: " + out.Message
	}
	return out.Message
}

func cmdTest(ctx context.Context, d *Deps, _ []string) string {
	res := d.Engine.TestConnection(ctx)
	if !res.Success {
		return "connection test failed: " + res.Message
	}
	return res.Message
}

func cmdConfig(_ context.Context, d *Deps, _ []string) string {
	st, err := d.Settings.Load()
	if err != nil {
		return "cannot read settings: " + err.Error()
	}
	if !st.Configured() {
		return "not configured - use set-url <url> and set-secret <key>"
	}
	return fmt.Sprintf("url: %s, secret: %s", st.BaseURL, mask(st.SecretKey))
}

func cmdSetURL(_ context.Context, d *Deps, args []string) string {
	if len(args) != 1 {
		return "usage: set-url <https://shop.example.com>"
	}
	st, err := d.Settings.Load()
	if err != nil {
		return "cannot read settings: " + err.Error()
	}
	st.BaseURL = args[0]
	if err := d.Settings.Save(settings.Settings{BaseURL: st.BaseURL, SecretKey: st.SecretKey}); err != nil {
		return "cannot save settings: " + err.Error()
	}
	return "remote URL saved"
}

func cmdSetSecret(_ context.Context, d *Deps, args []string) string {
	if len(args) != 1 {
		return "usage: set-secret <shared secret>"
	}
	st, err := d.Settings.Load()
	if err != nil {
		return "cannot read settings: " + err.Error()
	}
	st.SecretKey = args[0]
	if err := d.Settings.Save(settings.Settings{BaseURL: st.BaseURL, SecretKey: st.SecretKey}); err != nil {
		return "cannot save settings: " + err.Error()
	}
	return "secret key saved"
}

func cmdStart(ctx context.Context, d *Deps, _ []string) string {
	if err := d.Scheduler.Start(ctx); err != nil {
		return "start failed: " + err.Error()
	}
	return "auto-fetch started"
}

func cmdStop(_ context.Context, d *Deps, _ []string) string {
	d.Scheduler.Stop()
	return "auto-fetch stopped"
}

func cmdStatus(_ context.Context, d *Deps, _ []string) string {
	var b strings.Builder
	if d.Scheduler != nil && d.Scheduler.IsRunning() {
		b.WriteString("auto-fetch: running\n")
	} else {
		b.WriteString("auto-fetch: stopped\n")
	}

	if d.DB != nil {
		var runs []db.SyncRun
		if err := d.DB.Order("run_id desc").Limit(5).Find(&runs).Error; err == nil {
			for _, r := range runs {
				outcome := "ok"
				if !r.Success {
					outcome = "FAILED"
				}
				fmt.Fprintf(&b, "%s %s %s - %s\n",
					r.StartedAt.Format("2006-01-02 15:04:05"), r.Kind, outcome, r.Message)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
