package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/reqtrack/internal/chat"
	"github.com/jorge-barreto/reqtrack/internal/data"
	"github.com/jorge-barreto/reqtrack/internal/dispatch"
	"github.com/jorge-barreto/reqtrack/internal/docs"
	"github.com/jorge-barreto/reqtrack/internal/doctor"
	"github.com/jorge-barreto/reqtrack/internal/runner"
	"github.com/jorge-barreto/reqtrack/internal/scaffold"
	"github.com/jorge-barreto/reqtrack/internal/ux"
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("failed")

func main() {
	app := &cli.Command{
		Name:        "reqtrack",
		Usage:       "Requirements and project tracker",
		Description: "Run 'reqtrack docs' for documentation on tools, traceability, chat, and more.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, or error (overrides REQTRACK_LOG_LEVEL and config)"},
		},
		Commands: []*cli.Command{
			initCmd(),
			callCmd(),
			runCmd(),
			toolsCmd(),
			chatCmd(),
			statusCmd(),
			useCmd(),
			backupCmd(),
			doctorCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errReported) {
			ux.Error(err)
		}
		os.Exit(1)
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new .reqtrack/ directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Workspace name (default: directory name)"},
			&cli.StringFlag{Name: "project", Usage: "Create a first project and make it active"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, "")
			if err != nil {
				return err
			}
			defer log.Sync()
			return scaffold.Init(dir, scaffold.Options{
				Name:    cmd.String("name"),
				Project: cmd.String("project"),
				Logger:  log,
			})
		},
	}
}

func callCmd() *cli.Command {
	return &cli.Command{
		Name:      "call",
		Usage:     "Run a single tool call",
		ArgsUsage: "<tool> [json|-]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the result envelope as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tool := cmd.Args().Get(0)
			if tool == "" {
				return fmt.Errorf("tool argument is required (see 'reqtrack tools')")
			}
			input, err := readArg(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			w, err := openWorkspace(cmd, false)
			if err != nil {
				return err
			}
			defer w.close()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			res := w.disp.Dispatch(ctx, dispatch.Call{Tool: tool, Input: input})
			if err := ux.RenderResult(res, cmd.Bool("json")); err != nil {
				return err
			}
			if !res.Success {
				return errReported
			}
			return nil
		},
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a plan of tool calls in order",
		ArgsUsage: "<plan.json|->",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the plan without executing"},
			&cli.BoolFlag{Name: "json", Usage: "Print step results as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			src := cmd.Args().First()
			if src == "" {
				return fmt.Errorf("plan argument is required")
			}
			raw, err := readPlanFile(src)
			if err != nil {
				return err
			}
			plan, err := decodePlan(raw)
			if err != nil {
				return err
			}
			if cmd.Bool("dry-run") {
				runner.DryRun(plan)
				return nil
			}

			w, err := openWorkspace(cmd, false)
			if err != nil {
				return err
			}
			defer w.close()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			asJSON := cmd.Bool("json")
			r := &runner.Runner{Dispatcher: w.disp, Log: w.log.Named("runner"), Verbose: !asJSON}
			rep := r.Run(ctx, plan)
			if asJSON {
				if err := printSteps(rep); err != nil {
					return err
				}
			}
			if len(rep.Failed()) > 0 {
				return errReported
			}
			return nil
		},
	}
}

func toolsCmd() *cli.Command {
	return &cli.Command{
		Name:      "tools",
		Usage:     "List tools and their input fields",
		ArgsUsage: "[tool]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the catalog as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tools := dispatch.Catalog()
			if name := cmd.Args().First(); name != "" {
				t, ok := dispatch.Lookup(name)
				if !ok {
					return fmt.Errorf("unknown tool %q; run 'reqtrack tools' to list available tools", name)
				}
				tools = []dispatch.Tool{t}
			}
			if cmd.Bool("json") {
				return printJSON(tools)
			}
			ux.RenderCatalog(tools)
			return nil
		},
	}
}

func chatCmd() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Plan and run a natural-language request",
		ArgsUsage: "<request>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Show the plan without executing"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			request := strings.Join(cmd.Args().Slice(), " ")
			w, err := openWorkspace(cmd, false)
			if err != nil {
				return err
			}
			defer w.close()
			client, err := w.client()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			a := &chat.Assistant{
				Client:  client,
				Service: w.svc,
				Runner:  &runner.Runner{Dispatcher: w.disp, Log: w.log.Named("runner"), Verbose: true},
				Log:     w.log.Named("chat"),
			}
			reply, err := a.Plan(ctx, request)
			if err != nil {
				return err
			}
			if reply.Message != "" {
				fmt.Println(reply.Message)
			}
			if reply.Help || len(reply.Plan) == 0 {
				return nil
			}
			if reply.Intent != "" {
				fmt.Printf("\n%sPlan:%s %s\n", ux.Bold, ux.Reset, reply.Intent)
			}
			if cmd.Bool("dry-run") {
				runner.DryRun(reply.Plan)
				return nil
			}
			reply = a.Execute(ctx, reply)
			if reply.Report.Interrupted {
				ux.Warn("interrupted: %d steps were not run", skipped(*reply.Report))
			}
			if len(reply.Report.Failed()) > 0 {
				return errReported
			}
			return nil
		},
	}
}

func skipped(rep runner.Report) int {
	n := 0
	for _, s := range rep.Steps {
		if s.Skipped {
			n++
		}
	}
	return n
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show workspace statistics and the active project",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w, err := openWorkspace(cmd, false)
			if err != nil {
				return err
			}
			defer w.close()

			st := w.svc.Statistics()
			var sum *data.ProjectSummary
			if id := w.svc.ActiveProjectID(); id != "" {
				s, err := w.svc.ProjectSummary(id)
				if err != nil {
					return err
				}
				sum = &s
			}
			if cmd.Bool("json") {
				return printJSON(map[string]any{"statistics": st, "project": sum})
			}
			ux.RenderStatus(st, sum)
			return nil
		},
	}
}

func useCmd() *cli.Command {
	return &cli.Command{
		Name:      "use",
		Usage:     "Set the active project (no argument clears it)",
		ArgsUsage: "[project]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w, err := openWorkspace(cmd, true)
			if err != nil {
				return err
			}
			defer w.close()

			input, err := json.Marshal(map[string]string{"project": strings.Join(cmd.Args().Slice(), " ")})
			if err != nil {
				return err
			}
			res := w.disp.Dispatch(ctx, dispatch.Call{Tool: "set_active_project", Input: input})
			if err := ux.RenderResult(res, false); err != nil {
				return err
			}
			if !res.Success {
				return errReported
			}
			return nil
		},
	}
}

func backupCmd() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Create, list, or restore data file backups",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "list", Usage: "List backups, newest first"},
			&cli.StringFlag{Name: "restore", Usage: "Restore the given backup file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w, err := openWorkspace(cmd, true)
			if err != nil {
				return err
			}
			defer w.close()

			switch {
			case cmd.Bool("list"):
				backups, err := w.store.ListBackups()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Println("No backups.")
					return nil
				}
				for _, b := range backups {
					fmt.Printf("  %s  %s%s%s  %d bytes\n", b.ModTime.Format("2006-01-02 15:04:05"), ux.Cyan, b.Path, ux.Reset, b.Size)
				}
			case cmd.String("restore") != "":
				if err := w.store.RestoreBackup(cmd.String("restore")); err != nil {
					return err
				}
				fmt.Printf("%s✓ Restored %s%s\n", ux.Green, cmd.String("restore"), ux.Reset)
			default:
				path, err := w.store.CreateBackup()
				if err != nil {
					return err
				}
				if path == "" {
					fmt.Println("Nothing to back up yet.")
					return nil
				}
				fmt.Printf("%s✓ Backup written to %s%s\n", ux.Green, path, ux.Reset)
			}
			return nil
		},
	}
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the data file for broken references",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "explain", Usage: "Ask the model to explain problems and suggest repairs"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w, err := openWorkspace(cmd, true)
			if err != nil {
				return err
			}
			defer w.close()

			doc := w.svc.Document()
			findings := doctor.Check(doc)
			doctor.Render(findings)

			if cmd.Bool("explain") && len(findings) > 0 {
				client, err := w.client()
				if err != nil {
					return err
				}
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				fmt.Printf("\n%sAsking model for a diagnosis...%s\n\n", ux.Dim, ux.Reset)
				text, err := doctor.Explain(ctx, client, doc, findings)
				if err != nil {
					return err
				}
				fmt.Println(text)
			}
			if doctor.Errors(findings) > 0 {
				return errReported
			}
			return nil
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-14s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'reqtrack docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}

// readArg returns arg as JSON input, reading stdin when arg is "-".
func readArg(arg string) (json.RawMessage, error) {
	if arg != "-" {
		return json.RawMessage(arg), nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return json.RawMessage(b), nil
}

func readPlanFile(src string) ([]byte, error) {
	if src == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(src)
}

// decodePlan accepts a JSON array of calls or a chat-style plan object.
func decodePlan(raw []byte) ([]dispatch.Call, error) {
	var calls []dispatch.Call
	if err := json.Unmarshal(raw, &calls); err == nil {
		return calls, nil
	}
	p, err := chat.ParsePlan(string(raw))
	if err != nil {
		return nil, err
	}
	return p.Calls, nil
}

func printSteps(rep runner.Report) error {
	type step struct {
		Tool    string          `json:"tool"`
		Result  dispatch.Result `json:"result"`
		Skipped bool            `json:"skipped,omitempty"`
	}
	out := make([]step, len(rep.Steps))
	for i, s := range rep.Steps {
		out[i] = step{Tool: s.Call.Tool, Result: s.Result, Skipped: s.Skipped}
	}
	return printJSON(out)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
