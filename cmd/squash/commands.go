package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/arloliu/squash/analysis"
	"github.com/arloliu/squash/compress"
	"github.com/arloliu/squash/filecodec"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/report"
	"github.com/arloliu/squash/storage"
)

func expectArgs(args []string, n int, names string) error {
	if len(args) != n {
		return fmt.Errorf("expected arguments %s, got %d", names, len(args))
	}

	return nil
}

func (c command) adapter(name string) (*filecodec.Adapter, error) {
	alg, err := format.ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}

	return filecodec.ForAlgorithm(alg,
		filecodec.WithMetadataFormat(c.format),
		filecodec.WithLogger(c.log),
	)
}

func (c command) compress(args []string) error {
	if err := expectArgs(args, 3, "<algorithm> <input> <output>"); err != nil {
		return err
	}

	adapter, err := c.adapter(args[0])
	if err != nil {
		return err
	}
	stats, err := adapter.CompressFile(args[1], args[2])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Compressed %s -> %s\n", args[1], args[2])
	printStats(c, stats)

	return nil
}

func (c command) decompress(args []string) error {
	if err := expectArgs(args, 3, "<algorithm> <input> <output>"); err != nil {
		return err
	}

	adapter, err := c.adapter(args[0])
	if err != nil {
		return err
	}
	stats, err := adapter.DecompressFile(args[1], args[2])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Decompressed %s -> %s\n", args[1], args[2])
	printStats(c, stats)

	return nil
}

func printStats(c command, stats compress.CompressionStats) {
	fmt.Fprintf(c.out, "  algorithm:        %s\n", stats.Algorithm.Name())
	fmt.Fprintf(c.out, "  original size:    %s (%d bytes)\n", humanize.Bytes(uint64(stats.OriginalSize)), stats.OriginalSize)
	fmt.Fprintf(c.out, "  compressed size:  %s (%d bytes)\n", humanize.Bytes(uint64(stats.CompressedSize)), stats.CompressedSize)
	fmt.Fprintf(c.out, "  ratio:            %.4f\n", stats.CompressionRatio())
	fmt.Fprintf(c.out, "  space saved:      %.2f%%\n", stats.SpaceSavings())
}

func (c command) analyze(args []string) error {
	if err := expectArgs(args, 1, "<path>"); err != nil {
		return err
	}

	analyzer, err := report.New(
		report.WithLogger(c.log),
		report.WithMetadataFormat(c.format),
		report.WithConcurrency(c.flags.concurrency),
		report.WithBaselines(c.flags.baselines),
	)
	if err != nil {
		return err
	}

	st, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", args[0], err)
	}
	if st.IsDir() {
		_, err = analyzer.AnalyzeDirectory(c.ctx, args[0], c.flags.ext...)
	} else {
		_, err = analyzer.AnalyzeFile(args[0])
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("analysis incomplete")
	}

	fmt.Fprintln(c.out, analyzer.Report())

	if c.flags.save != "" {
		if err := analyzer.SaveResults(c.flags.save); err != nil {
			return err
		}
	}

	return nil
}

func (c command) detect(args []string) error {
	if err := expectArgs(args, 1, "<path>"); err != nil {
		return err
	}

	detector, err := analysis.NewDetector()
	if err != nil {
		return err
	}
	info, err := detector.Detect(args[0])
	if err != nil {
		return err
	}

	return c.printJSON(struct {
		analysis.FileInfo
		Recommendations []analysis.Recommendation `json:"recommendations"`
	}{info, analysis.Recommendations(info)})
}

func (c command) cloud(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected cloud action upload, download or summary")
	}

	sim, err := storage.New(c.log,
		storage.WithBucket(c.flags.bucket),
		storage.WithLatency(c.flags.latency),
		storage.WithBandwidth(c.flags.uploadMbps, c.flags.downloadMbps),
	)
	if err != nil {
		return err
	}

	switch args[0] {
	case "upload":
		if err := expectArgs(args[1:], 1, "<path>"); err != nil {
			return err
		}
		opts := storage.UploadOptions{Compress: c.flags.compress}
		if c.flags.compress {
			opts.Algorithm, err = format.ParseAlgorithm(c.flags.algorithm)
			if err != nil {
				return err
			}
		}
		res, err := sim.Upload(c.ctx, args[1], opts)
		if err != nil {
			return err
		}

		return c.printJSON(res)

	case "download":
		if err := expectArgs(args[1:], 2, "<path> <object>"); err != nil {
			return err
		}
		res, err := sim.Download(c.ctx, args[2], args[1])
		if err != nil {
			return err
		}

		return c.printJSON(res)

	case "summary":
		sum, err := sim.Summary()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d objects, %s, estimated $%.6f per month\n",
			len(sum.Objects), humanize.Bytes(uint64(sum.TotalBytes)), sum.MonthlyCostUSD)

		return c.printJSON(sum)

	default:
		return fmt.Errorf("unknown cloud action %q", args[0])
	}
}

func (c command) printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode output: %w", err)
	}
	fmt.Fprintln(c.out, string(out))

	return nil
}
