package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/arloliu/squash/format"
)

const (
	success = 0
	failure = 1
)

const usage = `usage: squash [flags] <command> [arguments]

commands:
  compress <algorithm> <input> <output>     compress a file
  decompress <algorithm> <input> <output>   decompress a file
  analyze <path>                            benchmark every codec on a file or directory
  detect <path>                             print the detected file type
  cloud upload <path>                       upload a file to the simulated bucket
  cloud download <path> <object>            download an object to a local path
  cloud summary                             print the bucket contents and cost

algorithms: huffman, lzw, arithmetic

flags:
`

type flags struct {
	level          string
	metadataFormat string
	bucket         string
	compress       bool
	algorithm      string
	ext            []string
	concurrency    int
	baselines      bool
	save           string
	latency        bool
	uploadMbps     float64
	downloadMbps   float64
}

type command struct {
	log    zerolog.Logger
	flags  flags
	format format.MetadataFormat
	out    io.Writer
	ctx    context.Context
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {

	// Signal catching for clean shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Command line parameter initialization.
	var f flags

	fs := pflag.NewFlagSet("squash", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVarP(&f.level, "level", "l", "info", "log output level")
	fs.StringVarP(&f.metadataFormat, "metadata-format", "m", "json", "metadata document format (json or cbor)")
	fs.StringVarP(&f.bucket, "bucket", "b", ".cloud_bucket", "directory of the simulated cloud bucket")
	fs.BoolVarP(&f.compress, "compress", "c", false, "compress the file before upload")
	fs.StringVarP(&f.algorithm, "algorithm", "a", "huffman", "algorithm used by cloud upload --compress")
	fs.StringSliceVarP(&f.ext, "ext", "e", nil, "file extensions analyzed in a directory")
	fs.IntVar(&f.concurrency, "concurrency", 4, "number of files analyzed in parallel")
	fs.BoolVar(&f.baselines, "baselines", true, "measure zstd, s2 and lz4 alongside the codecs")
	fs.StringVarP(&f.save, "save", "s", "", "path of a JSON file receiving the analysis results")
	fs.BoolVar(&f.latency, "latency", true, "simulate transfer latency")
	fs.Float64Var(&f.uploadMbps, "upload-mbps", 100, "simulated upload bandwidth in megabits per second")
	fs.Float64Var(&f.downloadMbps, "download-mbps", 200, "simulated download bandwidth in megabits per second")

	if err := fs.Parse(args); err != nil {
		return failure
	}

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(f.level)
	if err != nil {
		log.Error().Str("level", f.level).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	metaFormat, err := format.ParseMetadataFormat(f.metadataFormat)
	if err != nil {
		log.Error().Err(err).Msg("invalid metadata format")
		return failure
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return failure
	}

	cmd := command{
		log:    log,
		flags:  f,
		format: metaFormat,
		out:    stdout,
		ctx:    ctx,
	}

	switch rest[0] {
	case "compress":
		err = cmd.compress(rest[1:])
	case "decompress":
		err = cmd.decompress(rest[1:])
	case "analyze":
		err = cmd.analyze(rest[1:])
	case "detect":
		err = cmd.detect(rest[1:])
	case "cloud":
		err = cmd.cloud(rest[1:])
	default:
		err = fmt.Errorf("unknown command %q", rest[0])
	}
	if err != nil {
		log.Error().Str("command", rest[0]).Err(err).Msg("command failed")
		return failure
	}

	return success
}
