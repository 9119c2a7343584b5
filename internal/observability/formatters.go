// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-recommender/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfile outputs how each raw skill resolved against the catalog.
func (p *Printer) PrintProfile(profile *types.UserSkillProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Raw skills: %d  Matched: %d  Unmatched: %d\n",
		len(profile.RawSkills), len(profile.MatchedSkills), len(profile.Unmatched)))

	if len(profile.Matches) > 0 {
		sb.WriteString("\nMatched:\n")
		count := min(len(profile.Matches), maxItemsToShow)
		for i := 0; i < count; i++ {
			m := profile.Matches[i]
			sb.WriteString(fmt.Sprintf("  • %s → %s (%s, %.2f)\n", m.Raw, m.SkillID, m.Method, m.Confidence))
		}
		if len(profile.Matches) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Matches)-maxItemsToShow))
		}
	}

	if len(profile.Unmatched) > 0 {
		sb.WriteString("\nUnmatched:\n")
		count := min(len(profile.Unmatched), maxItemsToShow)
		for i := 0; i < count; i++ {
			u := profile.Unmatched[i]
			sb.WriteString(fmt.Sprintf("  • %s", u.Raw))
			if u.BestCandidate != "" {
				sb.WriteString(fmt.Sprintf(" (closest: %s %.2f)", u.BestCandidate, u.BestScore))
			}
			sb.WriteString("\n")
		}
		if len(profile.Unmatched) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Unmatched)-maxItemsToShow))
		}
	}

	for _, e := range profile.Errors {
		sb.WriteString(fmt.Sprintf("\n⚠ %s: %s", e.Kind, e.Raw))
	}

	p.printBox("SKILL PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs the top roles with scores and their largest gaps.
func (p *Printer) PrintRecommendations(roles []types.RoleMatch) {
	if len(roles) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Roles ranked: %d\n\n", len(roles)))

	count := min(len(roles), maxItemsToShow)
	for i := 0; i < count; i++ {
		role := roles[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, role.Name))
		sb.WriteString(fmt.Sprintf("    Score: %.2f  Complete: %.1f%%\n", role.OverallScore, role.CompletionPercentage))
		if len(role.MissingSkills) > 0 {
			missing := make([]string, 0, len(role.MissingSkills))
			for _, m := range role.MissingSkills {
				missing = append(missing, string(m.SkillID))
			}
			joined := strings.Join(missing, ", ")
			if len(joined) > 40 {
				joined = joined[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Missing: %s\n", joined))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(roles) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more roles", len(roles)-maxItemsToShow))
	}

	p.printBox("RECOMMENDED ROLES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRoadmap outputs the roadmap grouped by phase.
func (p *Printer) PrintRoadmap(roadmap *types.Roadmap) {
	if roadmap == nil {
		return
	}

	var sb strings.Builder
	if roadmap.TargetRoleID != "" {
		sb.WriteString(fmt.Sprintf("Target:  %s\n", roadmap.TargetRoleID))
	}
	sb.WriteString(fmt.Sprintf("Steps:   %d\n", len(roadmap.Steps)))
	sb.WriteString(fmt.Sprintf("Hours:   %.1f\n", roadmap.TotalHours))

	if len(roadmap.Steps) == 0 {
		sb.WriteString("\nNo missing skills, the role is fully covered.")
		p.printBox("LEARNING ROADMAP", sb.String())
		return
	}

	steps := make(map[types.SkillID]types.LearningStep, len(roadmap.Steps))
	for _, s := range roadmap.Steps {
		steps[s.SkillID] = s
	}

	for _, phase := range roadmap.Phases {
		sb.WriteString(fmt.Sprintf("\n%s (%.1fh)\n", phase.Name, phase.Hours))
		for _, id := range phase.Skills {
			step := steps[id]
			sb.WriteString(fmt.Sprintf("  • %s  %.1fh", step.DisplayName, step.EstimatedHours))
			if len(step.Resources) > 0 {
				sb.WriteString(fmt.Sprintf("  [%s]", step.Resources[0].Title))
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("LEARNING ROADMAP", strings.TrimSuffix(sb.String(), "\n"))
}
