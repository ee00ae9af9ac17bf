package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/integrii/flaggy"

	"lifegrid/src/config"
	"lifegrid/src/runner"
	"lifegrid/src/seed"
	"lifegrid/src/stats"
	"lifegrid/src/terminal"
	"lifegrid/src/universe"
	"lifegrid/src/view"
)

//fallback terminal size when it can't be detected
const (
	DefWidth  = 80
	DefHeight = 24
)

//EnvOptions are the command line options which are not stored in the config file
type EnvOptions struct {
	configPath  string
	interactive bool
	dumpConfig  bool
	noColor     bool
}

func main() {
	eo, cfg := initOptions()

	if eo.dumpConfig {
		data, err := cfg.YAML()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	logger, closeLog := newLogger(cfg.Log, eo.interactive)
	defer closeLog()

	if err := run(eo, cfg, logger); err != nil {
		logger.Error("simulation failed", "err", err)
		if eo.interactive {
			fmt.Fprintln(os.Stderr, err)
		}
		closeLog()
		os.Exit(1)
	}
}

func run(eo *EnvOptions, cfg *config.Config, logger *log.Logger) error {
	rule, err := cfg.ParsedRule()
	if err != nil {
		return err
	}
	cells, err := loadSeed(cfg.Seed)
	if err != nil {
		return err
	}
	logger.Debug("seed loaded", "file", cfg.Seed.File, "pattern", cfg.Seed.Pattern, "live", cells.Len())

	glyphs := view.Glyphs{Live: cfg.Render.LiveGlyph, Dead: cfg.Render.DeadGlyph}
	cmds := make(chan runner.Command, 16)

	var ui *view.ConsoleUI
	var size terminal.SizeProvider
	if eo.interactive {
		if ui, err = view.NewConsoleUI(cmds, glyphs); err != nil {
			return err
		}
		defer ui.Close()
		size = ui
	} else {
		size = terminal.Chain{terminal.Stty{}, terminal.Env{}, terminal.Fixed{Rows: DefHeight, Cols: DefWidth}}
	}
	rows, cols, err := size.Size()
	if err != nil {
		return err
	}
	if !eo.interactive {
		//the last line is the status line
		rows--
	}
	bounds := fieldBounds(cfg.Simulation, rows, cols)

	u := universe.Engines[cfg.Simulation.Engine]()
	if err := u.Initialize(cells, rule, bounds); err != nil {
		return err
	}
	logger.Info("universe initialized", "engine", u.Name(), "rule", rule, "width", bounds.Width, "height", bounds.Height, "live", cells.Len())

	r := runner.New(u, runner.Options{
		Interval:       cfg.Simulation.Interval,
		MaxSteps:       cfg.Simulation.MaxSteps,
		StopWhenStable: cfg.Simulation.StopWhenStable,
		ExitOnFinish:   !eo.interactive,
		SnapshotDir:    cfg.Snapshot.Dir,
	}, logger)

	recorder, err := stats.CreateRecorder(cfg.Stats.CSV)
	if err != nil {
		return err
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Warn("closing stats file", "err", err)
		}
	}()
	r.SetRecorder(recorder)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	startTime := time.Now()
	if eo.interactive {
		r.RegisterViewer(ui)
		done := make(chan error, 1)
		go func() { done <- r.Loop(ctx, cmds) }()
		uiErr := ui.Start()
		cancel()
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		if uiErr != nil {
			return uiErr
		}
	} else {
		out := view.NewConsoleOut(os.Stdout, cols, rows, glyphs, cfg.Render.Color && !eo.noColor, cfg.Render.Quiet)
		r.RegisterViewer(out)
		go func() {
			if err := runner.ReadCommands(ctx, os.Stdin, cmds, out.Message); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("reading commands", "err", err)
			}
		}()
		if err := r.Loop(ctx, cmds); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	logger.Info("simulation finished", append(r.Report().KeyVals(), "total_time", time.Since(startTime).Round(time.Millisecond))...)
	return nil
}

//fieldBounds returns the configured bounds, the unset axes are taken from the terminal
//the upper bounds are inclusive, the last visible row and column are the limits
func fieldBounds(c config.SimulationConfig, rows int, cols int) universe.Bounds {
	b := universe.Bounds{Width: cols - 1, Height: rows - 1}
	if c.Width != 0 {
		b.Width = c.Width
	}
	if c.Height != 0 {
		b.Height = c.Height
	}
	return b
}

//loadSeed returns the built-in pattern when it is configured, the seed file otherwise
func loadSeed(c config.SeedConfig) (universe.LiveSet, error) {
	if c.Pattern != "" {
		cells, ok := seed.FromTemplate(c.Pattern)
		if !ok {
			return universe.LiveSet{}, fmt.Errorf("unknown pattern %q, expected one of [%s]", c.Pattern, strings.Join(seed.TemplateNames(), "|"))
		}
		return cells, nil
	}
	return seed.Load(c.File)
}

//newLogger writes to the log file when it is configured,
//the terminal ui owns the screen so nothing is written there in the interactive mode
func newLogger(c config.LogConfig, interactive bool) (*log.Logger, func()) {
	var w io.Writer = os.Stderr
	closeLog := func() {}
	if c.File != "" {
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
			os.Exit(1)
		}
		w = f
		closeLog = func() { _ = f.Close() }
	} else if interactive {
		w = io.Discard
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "lifegrid",
	})
	if level, err := log.ParseLevel(c.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warn("unknown log level, using info", "level", c.Level)
	}
	return logger, closeLog
}

func initOptions() (eo *EnvOptions, cfg *config.Config) {
	eo = &EnvOptions{}
	var (
		seedFile, pattern, rule, engine, snapshotDir, statsCSV, logFile, logLevel string
		width, height, maxSteps                                                   int
		interval                                                                  time.Duration
		quiet, stopWhenStable                                                     bool
	)

	flaggy.SetName("lifegrid")
	flaggy.SetDescription("\"The Life\" cellular automaton in the terminal")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&eo.configPath, "c", "config", "Path to the YAML config (empty = use defaults)")
	flaggy.String(&seedFile, "f", "seed", "Seed file, '*' marks a live cell")
	flaggy.String(&pattern, "p", "pattern", "Built-in pattern ["+strings.Join(seed.TemplateNames(), "|")+"], overrides the seed file")
	flaggy.Int(&width, "x", "width", "Width of a simulation field, -1 = unbounded (default: terminal width)")
	flaggy.Int(&height, "y", "height", "Height of a simulation field, -1 = unbounded (default: terminal height)")
	flaggy.Duration(&interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&maxSteps, "s", "maxSteps", "Limit the simulation to maxSteps")
	flaggy.String(&rule, "r", "rule", "Rule in B/S notation, for example B3/S23")
	flaggy.String(&engine, "e", "engine", "Engine to use ["+strings.Join(universe.EngineNames(), "|")+"]")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.String(&snapshotDir, "o", "snapshotDir", "Directory for the snapshot files")
	flaggy.String(&statsCSV, "", "stats", "Write per-generation statistics to the CSV file")
	flaggy.Bool(&stopWhenStable, "", "stopWhenStable", "Finish when all cells are dead or nothing changes")
	flaggy.Bool(&quiet, "q", "quiet", "Print the progress only, without the field")
	flaggy.Bool(&eo.noColor, "", "noColor", "Disable colors")
	flaggy.String(&logFile, "", "log", "Write the log to the file")
	flaggy.String(&logLevel, "", "logLevel", "Log level [debug|info|warn|error]")
	flaggy.Bool(&eo.dumpConfig, "", "dumpConfig", "Print the effective configuration and exit")

	flaggy.Parse()

	cfg, err := config.Load(eo.configPath)
	if err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	//flags override the config file
	setString(&cfg.Seed.File, seedFile)
	setString(&cfg.Seed.Pattern, pattern)
	setString(&cfg.Simulation.Rule, rule)
	setString(&cfg.Simulation.Engine, engine)
	setString(&cfg.Snapshot.Dir, snapshotDir)
	setString(&cfg.Stats.CSV, statsCSV)
	setString(&cfg.Log.File, logFile)
	setString(&cfg.Log.Level, logLevel)
	if seedFile != "" && pattern == "" {
		cfg.Seed.Pattern = ""
	}
	if width != 0 {
		cfg.Simulation.Width = width
	}
	if height != 0 {
		cfg.Simulation.Height = height
	}
	if maxSteps > 0 {
		cfg.Simulation.MaxSteps = maxSteps
	}
	if interval > 0 {
		cfg.Simulation.Interval = interval
	}
	cfg.Simulation.StopWhenStable = cfg.Simulation.StopWhenStable || stopWhenStable
	cfg.Render.Quiet = cfg.Render.Quiet || quiet

	if err := cfg.Validate(); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}
	return
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
