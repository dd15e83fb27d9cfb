package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fsdu/internal/config"
	"fsdu/internal/connect"
	"fsdu/internal/fs"
	"fsdu/internal/logging"
	"fsdu/internal/pathsize"

	"github.com/dustin/go-humanize"
)

const (
	exitOK       = 0
	exitError    = 1
	exitNotFound = 2
)

var (
	logger = logging.GetLogger()
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] target...\n\n", os.Args[0])
	fmt.Fprintln(flag.CommandLine.Output(), "A target is a local path or glob, sftp://[user@]server[:port]/pattern,")
	fmt.Fprintln(flag.CommandLine.Output(), "ftp://..., ftps://... or vmap:///pattern.")
	fmt.Fprintln(flag.CommandLine.Output())
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "Config file path (default "+config.DefaultPath()+")")
	human := flag.Bool("h", false, "Print sizes in human readable form")
	stats := flag.Bool("stats", false, "Print glob and list call counts")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(exitError)
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(exitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg, flag.Args(), *human, *stats)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, args []string, human, stats bool) int {
	conns := connect.NewManager(cfg)
	defer func() {
		if err := conns.Close(); err != nil {
			logger.Warn("Failed to close connections: %v", err)
		}
	}()

	code := exitOK
	for _, arg := range args {
		res, calls, err := measure(ctx, conns, arg)
		if err != nil {
			logger.Error("%s: %v", arg, err)
			code = exitError
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if !res.Found {
			fmt.Fprintf(os.Stderr, "%s: no such file or directory\n", arg)
			if code == exitOK {
				code = exitNotFound
			}
			continue
		}

		size := fmt.Sprint(res.Bytes)
		if human {
			size = humanize.IBytes(uint64(res.Bytes))
		}
		fmt.Printf("%s\t%s\n", size, arg)

		if stats {
			fmt.Fprintf(os.Stderr, "%s: %d files, %d directories, %d glob, %d list calls\n",
				arg, res.Files, res.Directories, calls.Globs(), calls.Lists())
		}
	}
	return code
}

func measure(ctx context.Context, conns *connect.Manager, arg string) (pathsize.Result, *fs.CountingFS, error) {
	target, err := connect.ParseTarget(arg)
	if err != nil {
		return pathsize.Result{}, nil, err
	}

	fsys, err := conns.Open(ctx, target)
	if err != nil {
		return pathsize.Result{}, nil, err
	}

	calls := fs.NewCountingFS(fsys)
	logger.Debug("Measuring %q on %s", target.Pattern, target)
	res, err := pathsize.Calculate(ctx, calls, target.Pattern)
	return res, calls, err
}
