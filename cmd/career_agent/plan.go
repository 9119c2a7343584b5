package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/career-recommender/internal/observability"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan the learning needed for a target role",
	Long:  "Computes which weighted skills of the target role are missing and orders them into a roadmap with prerequisites first, learning resources and hour estimates.",
	RunE:  runPlan,
}

var (
	planSkills     string
	planSkillsFile string
	planRole       string
	planOutput     string
	planVerbose    bool
)

func init() {
	planCmd.Flags().StringVarP(&planSkills, "skills", "s", "", "Comma separated skills you already have")
	planCmd.Flags().StringVar(&planSkillsFile, "skills-file", "", "File with one skill per line")
	planCmd.Flags().StringVarP(&planRole, "role", "r", "", "Target role ID (required)")
	planCmd.Flags().StringVarP(&planOutput, "out", "o", "", "Output JSON file (default stdout)")
	planCmd.Flags().BoolVarP(&planVerbose, "verbose", "v", false, "Print progress and a readable roadmap to stderr")

	if err := planCmd.MarkFlagRequired("role"); err != nil {
		panic(fmt.Sprintf("failed to mark role flag as required: %v", err))
	}

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	skills, err := readSkills(planSkills, planSkillsFile)
	if err != nil {
		return err
	}

	var progress = stderr
	if !planVerbose {
		progress = nil
	}
	a, err := newApp(ctx, planVerbose, progress)
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := a.engine.PlanLearning(ctx, skills, planRole)
	if err != nil {
		return err
	}

	if planVerbose {
		printer := observability.NewPrinter(stderr)
		printer.PrintProfile(plan.Profile)
		printer.PrintRoadmap(plan.Roadmap)
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal learning plan: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), planOutput, data)
}
