// Command drivesight analyzes LTE drive-test exports: it ingests a
// telemetry file, runs the selected analyses, renders a report, and
// optionally stores the run for later review.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/drivesight/drivesight/internal/config"
	"github.com/drivesight/drivesight/internal/engine"
	"github.com/drivesight/drivesight/internal/engine/aggregate"
	"github.com/drivesight/drivesight/internal/logging"
	"github.com/drivesight/drivesight/internal/model"
	"github.com/drivesight/drivesight/internal/pipeline"
	"github.com/drivesight/drivesight/internal/report"
	filesink "github.com/drivesight/drivesight/internal/report/file"
	"github.com/drivesight/drivesight/internal/report/multi"
	"github.com/drivesight/drivesight/internal/report/stdout"
	"github.com/drivesight/drivesight/internal/store"

	// Register format readers.
	_ "github.com/drivesight/drivesight/internal/ingest/csvfile"
	_ "github.com/drivesight/drivesight/internal/ingest/logfile"
	_ "github.com/drivesight/drivesight/internal/ingest/trp"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = cmdAnalyze(os.Args[2:])
	case "watch":
		err = cmdWatch(os.Args[2:])
	case "history":
		err = cmdHistory(os.Args[2:])
	case "show":
		err = cmdShow(os.Args[2:])
	case "delete":
		err = cmdDelete(os.Args[2:])
	case "types":
		for _, t := range model.AllTypes() {
			fmt.Println(t)
		}
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "drivesight: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "drivesight: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: drivesight <command> [flags]

commands:
  analyze <file>   analyze a drive-test export
  watch <dir>      analyze files as they appear in a directory
  history          list stored runs
  show <id>        render a stored run
  delete <id>      remove a stored run
  types            print the analysis-type vocabulary

run "drivesight <command> -h" for command flags
`)
}

// runFlags are the flags shared by analyze and watch.
type runFlags struct {
	configPath string
	types      string
	format     string
	outFile    string
	dbPath     string
	verbosity  string
}

func addRunFlags(fs *flag.FlagSet, rf *runFlags) {
	fs.StringVar(&rf.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&rf.types, "types", "", "comma-separated analysis types (default all)")
	fs.StringVar(&rf.format, "out", "text", "report format: text, json, csv")
	fs.StringVar(&rf.outFile, "o", "", "also write the report to this file")
	fs.StringVar(&rf.dbPath, "db", "", "store the run in this SQLite database")
	fs.StringVar(&rf.verbosity, "v", "standard", "text detail: minimal, standard, full")
}

// setup loads configuration and assembles the pipeline from the flags.
func setup(rf *runFlags) (*pipeline.Pipeline, *store.Store, error) {
	cfg, err := config.Load(rf.configPath)
	if err != nil {
		return nil, nil, err
	}
	if rf.types != "" {
		cfg.Analyses = nil
		for _, t := range strings.Split(rf.types, ",") {
			cfg.Analyses = append(cfg.Analyses, strings.TrimSpace(t))
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	if rf.dbPath != "" {
		cfg.DBPath = rf.dbPath
	}

	logging.Init(true, logging.ParseLevel(cfg.LogLevel))

	renderer, err := report.New(rf.format, report.ParseVerbosity(rf.verbosity))
	if err != nil {
		return nil, nil, err
	}
	var sink report.Sink = stdout.New(renderer)
	if rf.outFile != "" {
		sink = multi.New(sink, filesink.New(rf.outFile, renderer))
	}

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
	}

	eng := engine.New(engineConfig(cfg))
	return pipeline.New(eng, sink, st), st, nil
}

func engineConfig(cfg config.Config) engine.Config {
	ec := engine.Config{
		Types: cfg.Analyses,
	}
	ec.Thresholds.RSRP = cfg.Thresholds.RSRP
	ec.Thresholds.RSRQ = cfg.Thresholds.RSRQ
	ec.Thresholds.SINR = cfg.Thresholds.SINR
	ec.Cluster.RadiusM = cfg.Cluster.RadiusM
	ec.Cluster.MinSamples = cfg.Cluster.MinSamples
	ec.Throughput.DLKbps = cfg.Throughput.DLFloorKbps
	ec.Throughput.ULKbps = cfg.Throughput.ULFloorKbps
	for _, c := range cfg.Cells {
		ec.Cells = append(ec.Cells, aggregate.CellRef{CellID: c.CellID, PCI: c.PCI, EARFCN: c.EARFCN})
	}
	return ec
}

func cmdAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	var rf runFlags
	addRunFlags(fs, &rf)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("analyze: expected exactly one input file")
	}

	p, st, err := setup(&rf)
	if err != nil {
		return err
	}
	defer p.Close()
	if st != nil {
		defer st.Close()
	}

	_, err = p.RunFile(context.Background(), fs.Arg(0))
	return err
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var rf runFlags
	addRunFlags(fs, &rf)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("watch: expected exactly one directory")
	}

	p, st, err := setup(&rf)
	if err != nil {
		return err
	}
	defer p.Close()
	if st != nil {
		defer st.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return p.Watch(ctx, fs.Arg(0))
}

// openStore opens the history database for the read-only subcommands.
func openStore(fs *flag.FlagSet, args []string) (*store.Store, *flag.FlagSet, error) {
	dbPath := fs.String("db", "", "SQLite database path")
	fs.Parse(args)

	cfg, err := config.Load("")
	if err != nil {
		return nil, nil, err
	}
	logging.Init(true, logging.ParseLevel(cfg.LogLevel))
	path := cfg.DBPath
	if *dbPath != "" {
		path = *dbPath
	}
	if path == "" {
		return nil, nil, fmt.Errorf("no database configured; pass -db or set DRIVESIGHT_DB_PATH")
	}
	st, err := store.Open(path)
	return st, fs, err
}

func cmdHistory(args []string) error {
	st, _, err := openStore(flag.NewFlagSet("history", flag.ExitOnError), args)
	if err != nil {
		return err
	}
	defer st.Close()

	tests, err := st.ListTests(context.Background())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tFORMAT\tSAMPLES\tANALYZED")
	for _, t := range tests {
		name := t.Filename
		if t.Degraded {
			name += " (degraded)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			t.ID, name, t.Format,
			humanize.Comma(int64(t.RecordCount)),
			humanize.Time(t.UploadDate))
	}
	return tw.Flush()
}

func cmdShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	format := fs.String("out", "text", "report format: text, json, csv")
	verbosity := fs.String("v", "standard", "text detail: minimal, standard, full")
	st, fs, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := parseID(fs)
	if err != nil {
		return err
	}
	run, err := st.GetRun(context.Background(), id)
	if err != nil {
		return err
	}
	renderer, err := report.New(*format, report.ParseVerbosity(*verbosity))
	if err != nil {
		return err
	}
	return renderer.Render(os.Stdout, run)
}

func cmdDelete(args []string) error {
	st, fs, err := openStore(flag.NewFlagSet("delete", flag.ExitOnError), args)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := parseID(fs)
	if err != nil {
		return err
	}
	if err := st.DeleteTest(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("deleted run %d\n", id)
	return nil
}

func parseID(fs *flag.FlagSet) (int64, error) {
	if fs.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one run id")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run id %q", fs.Arg(0))
	}
	return id, nil
}
