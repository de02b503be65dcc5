// Command townbot exercises a running town server: it lists and creates
// towns and can fill one with randomly walking players.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/townsquare/internal/town"
	"github.com/playperu/townsquare/internal/townbot"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load .env file if it exists.
	_ = godotenv.Load()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "townbot",
		Usage: "drive a town server from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "base URL of the town server",
				Sources: cli.EnvVars("TOWNBOT_SERVER"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every bot event",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "towns",
				Usage:  "list publicly listed towns",
				Action: listTowns(stdout),
			},
			{
				Name:  "create",
				Usage: "create a town and print its credentials",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Usage: "friendly name"},
					&cli.StringFlag{Name: "map", Usage: "map file (server default when empty)"},
					&cli.BoolFlag{Name: "private", Usage: "do not list the town publicly"},
				},
				Action: createTown(stdout),
			},
			{
				Name:  "walk",
				Usage: "join a town with bots that walk around at random",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "town", Required: true, Usage: "town ID"},
					&cli.IntFlag{Name: "bots", Value: 5, Usage: "number of bots"},
					&cli.IntFlag{Name: "steps", Value: 100, Usage: "moves per bot"},
					&cli.DurationFlag{Name: "interval", Value: 250 * time.Millisecond, Usage: "delay between moves"},
					&cli.FloatFlag{Name: "step-size", Value: 16, Usage: "distance per move"},
					&cli.FloatFlag{Name: "width", Value: 1600, Usage: "width of the walkable area"},
					&cli.FloatFlag{Name: "height", Value: 1200, Usage: "height of the walkable area"},
				},
				Action: walk(stdout),
			},
		},
	}
}

func newLogger(cmd *cli.Command, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func listTowns(stdout io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		towns, err := townbot.NewClient(cmd.String("server")).ListTowns(ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPLAYERS")
		for _, t := range towns {
			fmt.Fprintf(tw, "%s\t%s\t%d/%d\n", t.TownID, t.FriendlyName, t.CurrentOccupancy, t.MaximumOccupancy)
		}
		return tw.Flush()
	}
}

func createTown(stdout io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		creds, err := townbot.NewClient(cmd.String("server")).
			CreateTown(ctx, cmd.String("name"), !cmd.Bool("private"), cmd.String("map"))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "town:     %s\npassword: %s\n", creds.TownID, creds.TownUpdatePassword)
		return nil
	}
}

func walk(stdout io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		logger := newLogger(cmd, stdout)
		server := cmd.String("server")
		townID := cmd.String("town")

		g, gctx := errgroup.WithContext(ctx)
		for i := range int(cmd.Int("bots")) {
			bot := &townbot.Bot{
				Name:     fmt.Sprintf("bot-%02d", i+1),
				Steps:    int(cmd.Int("steps")),
				Interval: cmd.Duration("interval"),
				StepSize: cmd.Float("step-size"),
				Bounds:   town.BoundingBox{Width: cmd.Float("width"), Height: cmd.Float("height")},
				Logger:   logger,
			}
			g.Go(func() error {
				stats, err := bot.Run(gctx, townbot.SocketURL(server, townID, bot.Name))
				if err != nil {
					return fmt.Errorf("%s: %w", bot.Name, err)
				}
				logger.Info("bot finished", "bot", bot.Name, "user_id", stats.UserID,
					"sent", stats.Sent, "received", stats.Received)
				return nil
			})
		}
		return g.Wait()
	}
}
