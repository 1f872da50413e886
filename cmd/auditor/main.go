package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/craprotocol/echo/internal/common"
	"github.com/craprotocol/echo/internal/config"
	"github.com/craprotocol/echo/internal/services/mirror"
	"github.com/craprotocol/echo/internal/services/webhook"
	"github.com/craprotocol/echo/internal/storage"
	"github.com/craprotocol/echo/pkg/audit"
	"github.com/craprotocol/echo/pkg/router"
	"github.com/getsentry/sentry-go"
)

func main() {
	log.Default().Println("launching auditor...")

	env := flag.String("env", "", "path to .env file")

	confpath := flag.String("config", "", "path to a json config file")

	out := flag.String("out", "", "write the audit report to this file")

	serve := flag.Bool("serve", false, "serve the audit api instead of running a single scan")

	port := flag.Int("port", 3000, "port to listen on")

	cursor := flag.String("cursor", "", "resume a previous scan from this cursor")

	timeout := flag.Duration("timeout", 30*time.Second, "timeout per indexer request")

	flag.Parse()

	ctx := context.Background()

	conf, err := config.New(ctx, *env, *confpath)
	if err != nil {
		log.Fatal(err)
	}

	if conf.SentryURL != "" && conf.SentryURL != "x" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:              conf.SentryURL,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		// Flush buffered events before the program terminates.
		defer sentry.Flush(2 * time.Second)
	}

	window, err := conf.Window()
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Println("using mirror node: ", conf.MirrorNodeURL)

	idx := mirror.New(conf.MirrorNodeURL, &http.Client{Timeout: *timeout})

	a, err := audit.New(idx, audit.Options{
		ContractID: conf.ContractID,
		PageSize:   conf.PageSize,
	})
	if err != nil {
		log.Fatal(err)
	}

	if *serve {
		log.Default().Println("starting api service...")

		api := router.NewServer(conf.APIKey, a, window, conf.PageSize)

		log.Default().Println("listening on port: ", *port)

		err = api.Start(*port)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	w := webhook.NewMessager(conf.DiscordURL, conf.Network, true)

	log.Default().Println("scanning transfers of contract: ", conf.ContractID)

	s := a.Scan(window, *cursor)

	report := &audit.Report{}
	for s.Next(ctx) {
		ev := s.Event()
		report.Events = append(report.Events, ev)

		log.Default().Printf("%s %s #%s %s -> %s (%s)\n",
			ev.Timestamp.Format(time.RFC3339),
			common.ShortenHex(ev.Token, 4),
			ev.SerialNumber,
			common.ShortenHex(ev.Sender, 4),
			common.ShortenHex(ev.Receiver, 4),
			common.ShortenHex(ev.TransactionHash, 6),
		)
	}

	report.Failures = s.Failures()
	report.Cursor = s.Cursor()

	for _, f := range report.Failures {
		log.Default().Println("skipped: ", f.Error())
		sentry.CaptureException(f)
	}

	log.Default().Printf("%d transfers, %d undecodable logs, %d pages\n", len(report.Events), len(report.Failures), s.Pages())

	if len(report.Failures) > 0 {
		w.NotifyWarning(ctx, fmt.Errorf("%d logs of %s could not be decoded", len(report.Failures), conf.ContractID))
	}

	if *out != "" {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatal(err)
		}

		err = storage.Save(*out, b)
		if err != nil {
			log.Fatal(err)
		}

		log.Default().Println("report written to: ", *out)
	}

	if err := s.Err(); err != nil {
		sentry.CaptureException(err)
		w.NotifyError(ctx, err)
		sentry.Flush(2 * time.Second)
		log.Fatalf("audit stopped early, resume from cursor %q: %s", report.Cursor, err)
	}

	w.Notify(ctx, fmt.Sprintf("audit of %s finished: %d transfers", conf.ContractID, len(report.Events)))
}
