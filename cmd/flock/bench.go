package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	benchFrames     int
	benchSwarms     int
	benchDt         float64
	benchParallel   bool
	benchProfile    string
	benchProfileDir string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Step swarms headless and report frame timing",
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = setupLogging(debug, "")
		if err != nil {
			return err
		}

		switch benchProfile {
		case "":
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(benchProfileDir), profile.NoShutdownHook).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(benchProfileDir), profile.NoShutdownHook).Stop()
		default:
			return fmt.Errorf("unknown profile mode %q (want cpu or mem)", benchProfile)
		}

		h, err := newHost(cfg, benchSwarms, logger)
		if err != nil {
			return err
		}
		defer h.close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		start := time.Now()
		var worst time.Duration
		for f := 0; f < benchFrames; f++ {
			frameStart := time.Now()
			if benchParallel {
				h.world.RunSafe(func() {
					h.elapsed += benchDt
					h.placeOwners()
					err = h.swarms.UpdateSwarmsParallel(ctx, h.refs, benchDt)
				})
				if err != nil {
					return err
				}
			} else {
				h.step(benchDt)
			}
			if d := time.Since(frameStart); d > worst {
				worst = d
			}
		}
		total := time.Since(start)

		boids := benchSwarms * cfg.Swarm.BoidCount
		perFrame := total / time.Duration(max(benchFrames, 1))
		logger.Info("bench complete",
			zap.Int("frames", benchFrames),
			zap.Int("boids", boids),
			zap.Bool("parallel", benchParallel),
			zap.Duration("total", total),
			zap.Duration("per_frame", perFrame),
			zap.Duration("worst_frame", worst))

		fmt.Fprintf(cmd.OutOrStdout(), "frames=%d swarms=%d boids=%d parallel=%v total=%s per_frame=%s worst=%s\n",
			benchFrames, benchSwarms, boids, benchParallel, total, perFrame, worst)
		for _, line := range h.world.Status.Lines() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVar(&benchFrames, "frames", 600, "Frames to simulate")
	benchCmd.Flags().IntVarP(&benchSwarms, "swarms", "n", 4, "Number of swarms")
	benchCmd.Flags().Float64Var(&benchDt, "dt", 1.0/60.0, "Fixed timestep in seconds")
	benchCmd.Flags().BoolVar(&benchParallel, "parallel", false, "Step swarms concurrently")
	benchCmd.Flags().StringVar(&benchProfile, "profile", "", "Capture a profile: cpu or mem")
	benchCmd.Flags().StringVar(&benchProfileDir, "profile-dir", ".", "Directory for profile output")
}
