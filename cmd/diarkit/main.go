// Command diarkit trains, validates and applies the neural building blocks
// of a speaker diarization pipeline.
//
// Usage:
//
//	diarkit (sad|scd|ovl|emb|dom) train    [options] <root> <protocol>
//	diarkit (sad|scd|ovl|emb|dom) validate [options] <train> <protocol>
//	diarkit (sad|scd|ovl|emb|dom) apply    [options] <validate> <protocol>
//	diarkit -h | --help
//	diarkit --version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/diarkit/diarkit/cli"

	// Registers the s3 model store.
	_ "github.com/diarkit/diarkit/store/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr, cli.DefaultBootstrap)
	stop()
	os.Exit(code)
}
