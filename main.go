package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryanmoran/qbzrun/internal"
	"github.com/ryanmoran/qbzrun/internal/bzr"
	"github.com/ryanmoran/qbzrun/internal/cli"
	"github.com/ryanmoran/qbzrun/internal/docker"
	"github.com/ryanmoran/qbzrun/internal/launch"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic occurred: %v", r)
			os.Exit(1)
		}
	}()

	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	if err := run(os.Args, os.Environ()); err != nil {
		log.Fatal(err)
	}
}

func run(args, env []string) error {
	w := internal.NewStandardWriter()

	cleanupMgr := internal.NewCleanupManager(w)
	defer cleanupMgr.Execute()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	root := cli.NewRootCommand(func(ctx context.Context, subcommand string, paths []string) error {
		config, err := internal.ParseConfig(env, internal.CurrentUser())
		if err != nil {
			return err
		}

		workingDirectory, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current working directory: %w\nThis is a system error - check file system permissions", err)
		}

		client, err := docker.NewDefaultClient()
		if err != nil {
			return fmt.Errorf("failed to create docker client: %w\nMake sure Docker is installed and running (try 'docker ps')", err)
		}
		cleanupMgr.Add("docker-client", func() error {
			client.Close()
			return nil
		})

		launcher := launch.Launcher{
			Config:  config,
			Runtime: client,
			Identity: func(ctx context.Context) (string, error) {
				return bzr.WhoAmI(ctx, "bzr")
			},
			Session: internal.GenerateSession(),
			Writer:  w,
		}

		return launcher.Launch(ctx, launch.Request{
			Subcommand: subcommand,
			Paths:      paths,
			Cwd:        workingDirectory,
		})
	})
	root.SetArgs(args[1:])

	return root.ExecuteContext(ctx)
}
