package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/melih/drydock/internal/adapters/builder"
	"github.com/melih/drydock/internal/adapters/docker"
	httpadapter "github.com/melih/drydock/internal/adapters/http"
	"github.com/melih/drydock/internal/adapters/store"
	"github.com/melih/drydock/internal/core/domain"
	"github.com/melih/drydock/internal/core/ports"
)

func main() {
	logger := logrus.New()

	app := &cli.App{
		Name:  "drydock",
		Usage: "assemble container images from declarative recipes and launch them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Usage:   "path to the build history database",
				Value:   "drydock.db",
				EnvVars: []string{"DRYDOCK_DATA"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logger.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			buildCommand(logger),
			runCommand(logger),
			psCommand(logger),
			stopCommand(logger),
			logsCommand(logger),
			envCommand(logger),
			portsCommand(logger),
			historyCommand(logger),
			serveCommand(logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func openStore(c *cli.Context) (*store.Store, error) {
	return store.Open(c.String("data"))
}

func buildCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "assemble an image from a build context",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "context", Aliases: []string{"c"}, Usage: "local build context directory"},
			&cli.StringFlag{Name: "repo", Usage: "git repository URL to use as the build context"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "image name to assemble", Required: true},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "recipe file inside the context"},
		},
		Action: func(c *cli.Context) error {
			st, err := openStore(c)
			if err != nil {
				return err
			}
			defer st.Close()

			b, err := builder.NewAdapter(st, logger)
			if err != nil {
				return err
			}

			rec, err := b.Build(c.Context, ports.BuildRequest{
				ContextDir: c.String("context"),
				RepoURL:    c.String("repo"),
				ImageName:  c.String("tag"),
				RecipeFile: c.String("file"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%dms\n", rec.ImageName, rec.Status, rec.DurationMs)
			return nil
		},
	}
}

func runCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "launch a container from an image",
		ArgsUsage: "IMAGE",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "env", Aliases: []string{"e"}, Usage: "environment override KEY=VALUE (takes precedence over image defaults)"},
			&cli.StringFlag{Name: "name", Usage: "container name"},
		},
		Action: func(c *cli.Context) error {
			image := c.Args().First()
			if image == "" {
				return fmt.Errorf("image argument is required")
			}
			overrides, err := parseEnv(c.StringSlice("env"))
			if err != nil {
				return err
			}

			launcher, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}
			id, err := launcher.LaunchContainer(c.Context, image, domain.LaunchOptions{
				Name:         c.String("name"),
				EnvOverrides: overrides,
			})
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
}

func psCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "ps",
		Usage: "list containers",
		Action: func(c *cli.Context) error {
			launcher, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}
			containers, err := launcher.ListContainers(c.Context)
			if err != nil {
				return err
			}
			for _, ct := range containers {
				fmt.Printf("%s\t%s\t%s\t%s\n", ct.ID, ct.Name, ct.Image, ct.Status)
			}
			return nil
		},
	}
}

func stopCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:      "stop",
		Usage:     "stop a running container",
		ArgsUsage: "CONTAINER",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("container argument is required")
			}
			launcher, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}
			return launcher.StopContainer(c.Context, id)
		},
	}
}

func logsCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:      "logs",
		Usage:     "print container logs",
		ArgsUsage: "CONTAINER",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("container argument is required")
			}
			launcher, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}
			logs, err := launcher.GetContainerLogs(c.Context, id)
			if err != nil {
				return err
			}
			defer logs.Close()
			_, err = os.Stdout.ReadFrom(logs)
			return err
		},
	}
}

func envCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:      "env",
		Usage:     "print a container's effective environment",
		ArgsUsage: "CONTAINER",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("container argument is required")
			}
			launcher, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}
			env, err := launcher.InspectEnv(c.Context, id)
			if err != nil {
				return err
			}
			for _, e := range env {
				fmt.Println(e)
			}
			return nil
		},
	}
}

func portsCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:      "ports",
		Usage:     "print the ports an image declares as exposed",
		ArgsUsage: "IMAGE",
		Action: func(c *cli.Context) error {
			image := c.Args().First()
			if image == "" {
				return fmt.Errorf("image argument is required")
			}
			launcher, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}
			declared, err := launcher.DeclaredPorts(c.Context, image)
			if err != nil {
				return err
			}
			for _, p := range declared {
				fmt.Println(p)
			}
			return nil
		},
	}
}

func historyCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list recent builds",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
		},
		Action: func(c *cli.Context) error {
			st, err := openStore(c)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.ListBuilds(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Printf("%s\t%s\t%s\t%s\t%dms\n",
					rec.StartedAt.Format("2006-01-02 15:04:05"),
					rec.ImageName, rec.BaseImage, rec.Status, rec.DurationMs)
			}
			return nil
		},
	}
}

func serveCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":3000", EnvVars: []string{"DRYDOCK_ADDR"}},
		},
		Action: func(c *cli.Context) error {
			st, err := openStore(c)
			if err != nil {
				return err
			}
			defer st.Close()

			launcher, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}
			b, err := builder.NewAdapter(st, logger)
			if err != nil {
				return err
			}

			app := fiber.New()
			httpadapter.NewHandler(launcher, b, st).Register(app)

			logger.WithField("addr", c.String("addr")).Info("Server starting")
			return app.Listen(c.String("addr"))
		},
	}
}

func parseEnv(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid env override %q, expected KEY=VALUE", entry)
		}
		out[key] = value
	}
	return out, nil
}
