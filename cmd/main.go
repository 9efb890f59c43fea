package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"led-detector/config"
	telegram "led-detector/internal/api"
	app "led-detector/internal/application"
	"led-detector/internal/container"
	"led-detector/internal/domain/entity"
	"led-detector/internal/logger"
)

const (
	flagOut     = "out"
	flagWorkers = "workers"
	flagLimit   = "limit"
)

// env собирает всё, что нужно командам: настройки, логгер и сервисы.
type env struct {
	cfg *config.Config
	log *logger.Logger
	app *container.Container
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return nil, err
	}

	c, err := container.New(cfg, lg.SugaredLogger)
	if err != nil {
		_ = lg.Close()
		return nil, err
	}
	return &env{cfg: cfg, log: lg, app: c}, nil
}

func (e *env) close() {
	if err := e.app.Close(); err != nil {
		e.log.Warnw("close storage", "error", err)
	}
	_ = e.log.Close()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:  "led-detector",
		Usage: "find lit LEDs in images and count them by colour",
		Commands: []*cli.Command{
			{
				Name:      "detect",
				Usage:     "annotate image files or directories of images",
				ArgsUsage: "<path>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagOut,
						Aliases: []string{"o"},
						Usage:   "directory for annotated copies (default OUTPUT_DIR)",
					},
					&cli.IntFlag{
						Name:    flagWorkers,
						Aliases: []string{"w"},
						Usage:   "number of frames processed in parallel (default PROCESSING_WORKERS)",
					},
				},
				Action: detectAction,
			},
			{
				Name:  "stats",
				Usage: "print colour totals and recent frames",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagLimit,
						Value: 10,
						Usage: "number of recent frames to list",
					},
				},
				Action: statsAction,
			},
			{
				Name:   "bot",
				Usage:  "run the Telegram bot",
				Action: botAction,
			},
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func detectAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one image path is required")
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	outDir := e.cfg.OutputDir
	if c.IsSet(flagOut) {
		outDir = c.String(flagOut)
	}
	workers := e.cfg.Workers
	if c.IsSet(flagWorkers) {
		workers = c.Int(flagWorkers)
	}

	batch := app.NewBatchService(e.app.DetectionService, e.app.Codec, workers, e.log.Named("batch"))
	paths, err := batch.Expand(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no images found")
	}

	outcomes, errs := batch.ProcessFiles(c.Context, paths, outDir)
	fmt.Fprintln(c.App.Writer, outcomeTable(outcomes))
	if errs != nil {
		e.log.Errorw("some frames failed", "error", errs)
		return cli.Exit(fmt.Sprintf("%d of %d frames failed", failed(outcomes), len(outcomes)), 1)
	}
	return nil
}

func statsAction(c *cli.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	totals, err := e.app.DetectionService.Totals(c.Context)
	if err != nil {
		return err
	}
	recent, err := e.app.DetectionService.Recent(c.Context, c.Int(flagLimit))
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, totalsTable(totals))
	fmt.Fprintln(c.App.Writer, reportsTable(recent))
	return nil
}

func botAction(c *cli.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if e.cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	bot, err := telegram.NewBot(e.cfg.TelegramToken, e.app, e.log.Named("bot"))
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	e.log.Info("bot is running")
	return bot.Run(c.Context)
}

func outcomeTable(outcomes []app.FileOutcome) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "File", "Red", "Green", "Blue", "Output"})
	for i, o := range outcomes {
		if o.Err != nil {
			t.AppendRow(table.Row{i + 1, o.Path, "-", "-", "-", "error: " + o.Err.Error()})
			continue
		}
		c := o.Report.Result.Counts
		t.AppendRow(table.Row{i + 1, o.Path, c.Red, c.Green, c.Blue, o.Output})
	}
	return t.Render()
}

func totalsTable(c entity.Counts) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Red", "Green", "Blue", "Total"})
	t.AppendRow(table.Row{c.Red, c.Green, c.Blue, c.Total()})
	return t.Render()
}

func reportsTable(reports []entity.FrameReport) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Processed", "Source", "Size", "Red", "Green", "Blue", "Skipped"})
	for _, r := range reports {
		res := r.Result
		t.AppendRow(table.Row{
			r.ProcessedAt.Local().Format("2006-01-02 15:04:05"),
			r.Source,
			fmt.Sprintf("%dx%d", res.Width, res.Height),
			res.Counts.Red,
			res.Counts.Green,
			res.Counts.Blue,
			res.Degenerate,
		})
	}
	return t.Render()
}

func failed(outcomes []app.FileOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
