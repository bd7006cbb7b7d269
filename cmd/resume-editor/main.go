package main

// Edit the resume from a terminal against a running API:
//   go run ./cmd/resume-editor list experience
//   go run ./cmd/resume-editor save < item.json
//   go run ./cmd/resume-editor save <id> < item.json
//   go run ./cmd/resume-editor delete skills <id>
//
// The password comes from RESUME_PASSWORD.

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-backend/internal/editor"
	"portfolio-backend/internal/resume"
	"portfolio-backend/internal/shared/config"
	"portfolio-backend/internal/shared/telemetry"
)

var errUsage = errors.New("usage: resume-editor [-api url] list <category> | save [id] | delete <category> <id>")

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.Env)

	api := flag.String("api", "http://localhost:"+cfg.Port+"/api/v1", "resume API base URL")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := editor.NewHTTPClient(*api, &http.Client{Timeout: 15 * time.Second})
	ed := editor.New(client)
	defer ed.Exit()

	err := run(ctx, ed, cfg.ResumePassword, flag.Args(), os.Stdin, os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	case editor.IsUnauthorized(err):
		telemetry.Error("resume_editor.unauthorized", map[string]any{"api": *api})
		fmt.Fprintln(os.Stderr, "password rejected; check RESUME_PASSWORD")
		os.Exit(1)
	default:
		telemetry.Error("resume_editor.failed", map[string]any{"api": *api, "error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, ed *editor.Editor, password string, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		if len(args) != 2 {
			return errUsage
		}
		cat, err := resume.ParseCategory(args[1])
		if err != nil {
			return err
		}
		if err := ed.Refresh(ctx, cat); err != nil {
			return err
		}
		return printEntries(out, ed.Items(cat))
	case "save":
		if len(args) > 2 {
			return errUsage
		}
		var id string
		if len(args) == 2 {
			id = args[1]
		}
		raw, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		item, err := resume.DecodeItem(raw)
		if err != nil {
			return err
		}
		if err := ed.Unlock(ctx, password); err != nil {
			return err
		}
		if err := ed.Save(ctx, item, id); err != nil {
			return err
		}
		return printEntries(out, ed.Items(item.Category()))
	case "delete":
		if len(args) != 3 {
			return errUsage
		}
		cat, err := resume.ParseCategory(args[1])
		if err != nil {
			return err
		}
		if err := ed.Unlock(ctx, password); err != nil {
			return err
		}
		if err := ed.Delete(ctx, cat, args[2]); err != nil {
			return err
		}
		return printEntries(out, ed.Items(cat))
	}
	return errUsage
}

func printEntries(out io.Writer, entries []resume.Entry) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
