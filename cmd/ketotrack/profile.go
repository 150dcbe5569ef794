package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ketotrack/internal/app"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the phase profile",
	Long: `Show the profile. Any of --phase, --phase-start, --start-date or
--target updates it first.`,
	RunE: withRuntime(runProfile),
}

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Advance the phase if its duration has elapsed and show progress",
	RunE:  withRuntime(runPhase),
}

func init() {
	profileCmd.Flags().Int("phase", 0, "Set the current phase (1-12)")
	profileCmd.Flags().String("phase-start", "", "Set the day the current phase started (YYYY-MM-DD)")
	profileCmd.Flags().String("start-date", "", "Set the day the protocol started (YYYY-MM-DD)")
	profileCmd.Flags().Float64("target", 0, "Set the target Dr. Boz ratio")
}

func runProfile(cmd *cobra.Command, rt *runtime, _ []string) error {
	ctx := cmd.Context()
	p := rt.repo.Profile(ctx)

	flags := cmd.Flags()
	if flags.Changed("phase") || flags.Changed("phase-start") || flags.Changed("start-date") || flags.Changed("target") {
		if v := intFlag(cmd, "phase"); v != nil {
			p.CurrentPhase = *v
		}
		if v, _ := flags.GetString("phase-start"); v != "" {
			p.PhaseStartDate = v
		}
		if v, _ := flags.GetString("start-date"); v != "" {
			p.StartDate = v
		}
		if v := floatFlag(cmd, "target"); v != nil {
			p.TargetRatio = *v
		}
		if err := rt.repo.SaveProfile(ctx, p); err != nil {
			return errors.New(app.UserMessage(err))
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Started:      %s\n", p.StartDate)
	fmt.Fprintf(out, "Phase:        %d (since %s)\n", p.CurrentPhase, p.PhaseStartDate)
	fmt.Fprintf(out, "Target ratio: %.1f\n", p.TargetRatio)
	return nil
}

func runPhase(cmd *cobra.Command, rt *runtime, _ []string) error {
	ctx := cmd.Context()
	before := rt.repo.Profile(ctx)
	after, err := rt.phases.CheckAdvancement(ctx, before)
	if err != nil {
		return err
	}
	progress, err := rt.phases.Progress(after)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if after.CurrentPhase != before.CurrentPhase {
		fmt.Fprintf(out, "Advanced to phase %d!\n", after.CurrentPhase)
	}
	fmt.Fprintf(out, "Phase %d: %s\n", progress.Phase.Number, progress.Phase.Name)
	fmt.Fprintf(out, "  %s\n", progress.Phase.Description)
	fmt.Fprintf(out, "  %s\n", progress.Phase.Requirements)
	if progress.Final {
		fmt.Fprintf(out, "Day %d of the maintenance phase\n", progress.DaysInPhase+1)
	} else {
		fmt.Fprintf(out, "Day %d of %d, %d days left\n", progress.DaysInPhase+1, progress.Phase.Duration, progress.DaysLeft)
	}
	return nil
}
