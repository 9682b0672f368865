package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v2"

	"github.com/birdsync/birdsync/archive"
	"github.com/birdsync/birdsync/bsky"
	"github.com/birdsync/birdsync/cache"
	"github.com/birdsync/birdsync/conf"
	"github.com/birdsync/birdsync/o11y"
	"github.com/birdsync/birdsync/run"
	"github.com/birdsync/birdsync/twitter"
	"github.com/birdsync/birdsync/version"
)

func main() {
	// optional .env alongside the binary
	_ = godotenv.Load()
	log := conf.NewLog()

	build, _ := version.BuildVersion()

	app := &cli.App{
		Name:    "birdsync",
		Usage:   "re-follow your Twitter follows on Bluesky",
		Version: build.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "archive",
				Value: archive.DefaultPath,
				Usage: "path to following.js from the Twitter data export",
			},
			&cli.StringFlag{
				Name:  "pds",
				Value: bsky.BSKY_SOCIAL_URL,
				Usage: "ATProto PDS host",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Value: cache.DefaultDir,
				Usage: "directory for resolution caches",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "resolve and report without creating follows",
			},
		},
		Action: followBatch,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithErrorMsg(err, "Follow batch failed")
		os.Exit(1)
	}
}

func followBatch(c *cli.Context) error {
	log := conf.NewLog()
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := o11y.NewO11y(ctx, log); err != nil {
		// metrics are best-effort for a local batch run
		log.WithErrorMsg(err, "Error bootstrapping metrics")
	} else {
		defer func() {
			if err := o11y.Cleanup(ctx); err != nil {
				log.WithErrorMsg(err, "Error shutting down metrics")
			}
		}()
	}

	records, err := archive.Read(c.String("archive"))
	if err != nil {
		return err
	}
	log.With("records", len(records), "path", c.String("archive")).Info("Loaded follow records")

	creds, ok := bsky.CredentialsFromEnv()
	if !ok {
		if creds, err = promptCredentials(); err != nil {
			return err
		}
	}

	client, err := bsky.NewClient(ctx, bsky.ClientConf{
		Host:        c.String("pds"),
		Credentials: creds,
	})
	if err != nil {
		return err
	}
	log.With("handle", client.Handle(), "did", client.Did()).Info("Authenticated")

	cacheDir := c.String("cache-dir")
	handles, err := cache.Open[string](cacheDir, cache.TwitterHandleFile)
	if err != nil {
		return err
	}
	actors, err := cache.Open[bsky.Actor](cacheDir, cache.BskyActorFile)
	if err != nil {
		return err
	}

	executor, err := bsky.NewExecutor(ctx, client, actors)
	if err != nil {
		return err
	}
	executor.WithDryRun(c.Bool("dry-run"))

	pipeline, err := run.NewPipeline(ctx, twitter.NewResolver(), executor)
	if err != nil {
		return err
	}
	pipeline.WithHandleCache(handles).WithProgress(printResult)

	results, err := pipeline.Run(ctx, records)
	printSummary(results)
	return err
}

// promptCredentials asks on stdin when BLUESKY_LOGIN / BLUESKY_PASSWORD
// are unset. Values are held in memory only.
func promptCredentials() (bsky.Credentials, error) {
	var creds bsky.Credentials
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Bluesky handle or email: ")
	identifier, err := reader.ReadString('\n')
	if err != nil {
		return creds, fmt.Errorf("reading login: %w", err)
	}

	fmt.Print("Bluesky app password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return creds, fmt.Errorf("reading app password: %w", err)
	}

	creds.Identifier = strings.TrimSpace(identifier)
	creds.Password = strings.TrimSpace(password)
	return creds, nil
}

func printResult(result run.Result) {
	switch {
	case result.FollowStatus != "":
		actor := ""
		if result.Actor != nil {
			actor = fmt.Sprintf(" -> %s (%s)", result.Actor.Handle, result.Actor.Did)
		}
		fmt.Printf("%-20s @%s%s: %s\n", result.AccountID, result.Handle, actor, result.FollowStatus)
	default:
		fmt.Printf("%-20s unresolved: %s %s\n", result.AccountID, result.Resolution, result.Diagnostic)
	}
}

func printSummary(results []run.Result) {
	followed := map[string]int{}
	unresolved := map[string]int{}
	for _, result := range results {
		if result.FollowStatus != "" {
			followed[string(result.FollowStatus)]++
		} else {
			unresolved[string(result.Resolution)]++
		}
	}
	fmt.Printf("\nprocessed %d accounts\n", len(results))
	for status, count := range followed {
		fmt.Printf("  %s: %d\n", status, count)
	}
	for status, count := range unresolved {
		fmt.Printf("  unresolved (%s): %d\n", status, count)
	}
}
