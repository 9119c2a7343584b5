package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/career-recommender/internal/observability"
	"github.com/jonathan/career-recommender/internal/types"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank catalog roles for a set of skills",
	Long:  "Matches the given skills (or skills found in a text file such as a resume) against the catalog and ranks roles by weighted skill coverage.",
	RunE:  runRecommend,
}

var (
	recommendSkills     string
	recommendSkillsFile string
	recommendTextFile   string
	recommendOutput     string
	recommendVerbose    bool
)

func init() {
	recommendCmd.Flags().StringVarP(&recommendSkills, "skills", "s", "", "Comma separated skills, e.g. \"golang, REST, postgres\"")
	recommendCmd.Flags().StringVar(&recommendSkillsFile, "skills-file", "", "File with one skill per line")
	recommendCmd.Flags().StringVar(&recommendTextFile, "text-file", "", "Free text (e.g. resume) to extract skills from")
	recommendCmd.Flags().StringVarP(&recommendOutput, "out", "o", "", "Output JSON file (default stdout)")
	recommendCmd.Flags().BoolVarP(&recommendVerbose, "verbose", "v", false, "Print progress and a readable summary to stderr")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	var progress = stderr
	if !recommendVerbose {
		progress = nil
	}
	a, err := newApp(ctx, recommendVerbose, progress)
	if err != nil {
		return err
	}
	defer a.Close()

	var rec *types.Recommendation
	if recommendTextFile != "" {
		text, err := os.ReadFile(recommendTextFile)
		if err != nil {
			return fmt.Errorf("failed to read text file: %w", err)
		}
		rec, err = a.engine.AnalyzeText(ctx, string(text))
		if err != nil {
			return err
		}
	} else {
		skills, err := readSkills(recommendSkills, recommendSkillsFile)
		if err != nil {
			return err
		}
		if len(skills) == 0 {
			return fmt.Errorf("no skills given: use --skills, --skills-file or --text-file")
		}
		rec, err = a.engine.RecommendRoles(ctx, skills)
		if err != nil {
			return err
		}
	}

	if recommendVerbose {
		printer := observability.NewPrinter(stderr)
		printer.PrintProfile(rec.Profile)
		printer.PrintRecommendations(rec.Roles)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), recommendOutput, data)
}
