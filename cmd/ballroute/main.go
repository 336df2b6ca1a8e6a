package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/ballroute/internal/banner"
	"github.com/CodexForgeBR/ballroute/internal/cli"
	"github.com/CodexForgeBR/ballroute/internal/config"
	"github.com/CodexForgeBR/ballroute/internal/control"
	"github.com/CodexForgeBR/ballroute/internal/display"
	"github.com/CodexForgeBR/ballroute/internal/exitcode"
	"github.com/CodexForgeBR/ballroute/internal/hardware"
	"github.com/CodexForgeBR/ballroute/internal/logging"
	"github.com/CodexForgeBR/ballroute/internal/report"
	"github.com/CodexForgeBR/ballroute/internal/scenario"
	sighandler "github.com/CodexForgeBR/ballroute/internal/signal"
	"github.com/CodexForgeBR/ballroute/internal/sim"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cfg := config.NewDefaultConfig()

	rootCmd := &cobra.Command{
		Use:     "ballroute",
		Short:   "Ball-routing control core simulator",
		Long:    "ballroute drives the scoring coordinator and color ejection subsystem through a scripted scenario on a simulated robot.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.ValidateFlags(cmd, cfg); err != nil {
				return err
			}
			code, err := run(cmd, cfg)
			if err != nil {
				return err
			}
			if code != exitcode.Success {
				os.Exit(code)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.BindFlags(rootCmd, cfg)
	cli.SetCustomHelp(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcode.Error)
	}
}

func run(cmd *cobra.Command, cfg *config.Config) (int, error) {
	finalCfg, err := config.LoadWithPrecedence(config.GlobalPath(), config.ProjectPath(), cfg.ConfigFile, cli.BuildOverrides(cmd, cfg))
	if err != nil {
		return exitcode.Error, fmt.Errorf("load config: %w", err)
	}
	finalCfg.ConfigFile = cfg.ConfigFile
	cfg = finalCfg

	if err := cfg.Validate(); err != nil {
		return exitcode.Error, err
	}
	logging.SetVerbose(cfg.Verbose)

	if cfg.ScenarioFile == "" {
		return exitcode.Error, errors.New("no scenario: pass --scenario or set SCENARIO_FILE")
	}
	sc, err := scenario.Load(cfg.ScenarioFile)
	if err != nil {
		logging.Error(err.Error())
		if errors.Is(err, scenario.ErrInvalid) {
			return exitcode.ScenarioInvalid, nil
		}
		return exitcode.Error, nil
	}

	settings, err := cfg.EjectionSettings()
	if err != nil {
		return exitcode.Error, err
	}
	// The scenario's policy wins unless --sorting was given.
	if p, ok := sc.Policy(); ok && !cmd.Flags().Changed("sorting") {
		settings.Policy = p
	}
	tick := pickTick(cfg, sc)

	robot := sim.NewRobot()
	var sink *display.ConsoleSink
	var fb hardware.Feedback = robot.Screen
	if cfg.Realtime {
		sink = display.NewConsoleSink(os.Stdout)
		fb = sink
	}

	rig, err := control.NewRig(robot, settings, fb)
	if err != nil {
		banner.PrintHardwareErrorBanner(err)
		return exitcode.HardwareUnavailable, nil
	}

	banner.PrintStartupBanner(banner.Startup{
		Scenario:      sc.Name,
		Tick:          tick,
		Duration:      sc.Duration(),
		Policy:        rig.Ejector.SortingPolicy().String(),
		EjectDuration: rig.Ejector.EjectionDuration(),
		Realtime:      cfg.Realtime,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The loop goroutine owns the coordinator. The hook only zeroes the
	// motors; Run stops the coordinator itself on the way out.
	handler := sighandler.Setup(ctx, cancel, func() { haltMotors(robot) })

	var pacer control.Pacer = control.SimPacer{Clock: robot.Clock, Tick: tick}
	if cfg.Realtime {
		rp := control.NewRealtimePacer(tick, pacer)
		defer rp.Stop()
		pacer = rp
	}

	player := scenario.NewPlayer(sc, robot)
	loop, err := control.NewLoop(control.Loop{
		Coord:    rig.Coord,
		Ejector:  rig.Ejector,
		Source:   player,
		Bindings: rig.Bindings,
		Clock:    robot.Clock,
		Pacer:    pacer,
		Display:  display.NewUpdater(fb),
		Until:    player.Done,
	})
	if err != nil {
		return exitcode.Error, err
	}
	if sink != nil {
		loop.AfterTick = sink.Flush
	}

	runErr := loop.Run(ctx)
	interrupted := handler.Interrupted() || errors.Is(runErr, context.Canceled)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logging.Errorf("control loop: %v", runErr)
	}

	if cfg.ReportFile != "" {
		screen := rig.Robot.Screen.Lines
		if sink != nil {
			screen = sink.Lines()
		}
		r := buildReport(sc, loop, rig, screen, interrupted)
		if err := report.Write(r, cfg.ReportFile); err != nil {
			logging.Errorf("%v", err)
		} else {
			logging.Successf("report written to %s", cfg.ReportFile)
		}
	}

	switch {
	case interrupted:
		banner.PrintInterruptedBanner(loop.Ticks())
		return exitcode.Interrupted, nil
	case runErr != nil:
		return exitcode.Error, nil
	}

	stats := rig.Ejector.Statistics()
	banner.PrintSummaryBanner(banner.Summary{
		Ticks:     loop.Ticks(),
		Elapsed:   robot.Clock.Elapsed(),
		Flow:      rig.Coord.FlowStatus(),
		Storage:   rig.Coord.StorageCount(),
		Red:       stats.Red,
		Blue:      stats.Blue,
		Ejected:   stats.Ejected,
		Conflicts: stats.Conflicts,
	})
	return exitcode.Success, nil
}

// pickTick uses the configured period when it was moved off the default and
// the scenario's otherwise.
func pickTick(cfg *config.Config, sc *scenario.Scenario) time.Duration {
	if cfg.TickMS != scenario.DefaultTickMS {
		return cfg.Tick()
	}
	return sc.Tick()
}

func haltMotors(r *sim.Robot) {
	for _, m := range []*sim.Motor{r.Intake, r.Top, r.Left, r.Right} {
		m.SetVelocity(0)
	}
}

func buildReport(sc *scenario.Scenario, loop *control.Loop, rig *control.Rig, screen [3]string, interrupted bool) report.Report {
	v := rig.Robot.Velocities()
	return report.Report{
		Scenario:        sc.Name,
		GeneratedAt:     time.Now().UTC(),
		Ticks:           loop.Ticks(),
		ElapsedMS:       rig.Robot.Clock.Elapsed().Milliseconds(),
		Interrupted:     interrupted,
		Coordinator:     rig.Coord.Status(),
		Flow:            rig.Coord.FlowStatus(),
		Sorting:         rig.Ejector.SortingPolicy(),
		EjectDurationMS: rig.Ejector.EjectionDuration().Milliseconds(),
		EjectionReady:   rig.Ejector.Functional(),
		Statistics:      rig.Ejector.Statistics(),
		Motors:          report.Motors{Intake: v[0], Top: v[1], Left: v[2], Right: v[3]},
		Screen:          screen,
	}
}
