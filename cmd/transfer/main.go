package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/craprotocol/echo/internal/config"
	"github.com/craprotocol/echo/internal/services/ledger"
	"github.com/craprotocol/echo/internal/services/webhook"
	"github.com/craprotocol/echo/pkg/cra"
	"github.com/craprotocol/echo/pkg/submitter"
	"github.com/getsentry/sentry-go"
)

func main() {
	log.Default().Println("launching transfer...")

	env := flag.String("env", "", "path to .env file")

	confpath := flag.String("config", "", "path to a json config file")

	token := flag.String("token", "", "CRA NFT token address (hex or shard.realm.num)")

	sender := flag.String("sender", "", "current owner, defaults to the operator account")

	receiver := flag.String("receiver", "", "destination account (hex or shard.realm.num)")

	serial := flag.Int64("serial", 0, "NFT serial number")

	ack := flag.String("ack", "", "acknowledgment, must match the configured string exactly")

	timeout := flag.Duration("timeout", 2*time.Minute, "give up after this long")

	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conf, err := config.New(ctx, *env, *confpath)
	if err != nil {
		log.Fatal(err)
	}

	if !conf.HasOperator() {
		log.Fatal("OPERATOR_ID and OPERATOR_KEY are required to submit transfers")
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

	w := webhook.NewMessager(conf.DiscordURL, conf.Network, true)

	log.Default().Println("connecting to network: ", conf.Network)

	l, err := ledger.NewLedgerService(ledger.Network(conf.Network), conf.OperatorID, conf.OperatorKey)
	if err != nil {
		log.Fatal(err)
	}
	defer l.Close()

	s, err := submitter.New(l, submitter.Options{
		ContractID:     conf.ContractID,
		Acknowledgment: conf.Acknowledgment,
		Gas:            conf.Gas,
	})
	if err != nil {
		log.Fatal(err)
	}

	req := cra.TransferRequest{
		Token:          *token,
		Sender:         *sender,
		Receiver:       *receiver,
		SerialNumber:   *serial,
		Acknowledgment: *ack,
	}

	if req.Sender == "" {
		req.Sender = l.OperatorID()
	}

	log.Default().Printf("transferring serial %d of %s from %s to %s...\n", req.SerialNumber, req.Token, req.Sender, req.Receiver)

	receipt, err := s.Transfer(ctx, req)
	if err != nil {
		// local validation failures never reached the network
		if !errors.Is(err, cra.ErrInvalidAcknowledgment) && !errors.Is(err, cra.ErrSenderMismatch) {
			sentry.CaptureException(err)
			w.NotifyError(ctx, err)
		}
		sentry.Flush(2 * time.Second)
		log.Fatal(err)
	}

	w.Notify(ctx, fmt.Sprintf("transfer %s of serial %d to %s: %s", receipt.TransactionID, req.SerialNumber, req.Receiver, receipt.Status))

	log.Default().Printf("transaction %s finished with status %s\n", receipt.TransactionID, receipt.Status)
}
