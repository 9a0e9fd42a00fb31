package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nobletrout/mailbridge/pkg/channel"
	emailchan "github.com/nobletrout/mailbridge/pkg/channel/email"
	"github.com/nobletrout/mailbridge/pkg/config"
	"github.com/nobletrout/mailbridge/pkg/logging"
)

func main() {
	var (
		configFile = flag.String("config", "", "Load configuration from a YAML file instead of the environment")
		listen     = flag.Bool("listen", false, "Poll the mailbox and print normalized messages as JSON lines")
		sendTo     = flag.String("to", "", "Recipient for -message (may carry encoded thread metadata)")
		message    = flag.String("message", "", "Markdown message body to send to -to")
		health     = flag.Bool("health", false, "Run the connectivity health check")
		preview    = flag.String("preview", "", "Convert an HTML file to plain text and print it")
		debugMode  = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	logger := logging.New(*debugMode)

	// Preview mode needs no mailbox configuration.
	if *preview != "" {
		data, err := os.ReadFile(*preview)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read preview file")
		}
		fmt.Println(emailchan.HTMLToText(string(data)))
		return
	}

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadConfigFile(*configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ch := emailchan.New(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *health:
		if !ch.HealthCheck(ctx) {
			fmt.Println("unhealthy")
			os.Exit(1)
		}
		fmt.Println("ok")

	case *message != "":
		if *sendTo == "" {
			logger.Fatal().Msg("-message requires -to")
		}
		if err := cfg.ValidateForOperation(); err != nil {
			logger.Fatal().Err(err).Msg("email not configured")
		}
		if err := ch.Send(ctx, *message, *sendTo); err != nil {
			logger.Fatal().Err(err).Msg("send failed")
		}
		fmt.Println("sent")

	case *listen:
		if err := cfg.ValidateForOperation(); err != nil {
			logger.Fatal().Err(err).Msg("email not configured")
		}
		if err := runListener(ctx, ch); err != nil {
			logger.Fatal().Err(err).Msg("listener failed")
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// runListener pumps normalized messages from the channel to stdout, one JSON
// object per line, until interrupted.
func runListener(ctx context.Context, ch channel.Channel) error {
	sink := make(chan channel.Message, 16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		enc := json.NewEncoder(os.Stdout)
		for msg := range sink {
			enc.Encode(msg)
		}
	}()

	err := ch.Listen(ctx, sink)
	close(sink)
	wg.Wait()
	return err
}
