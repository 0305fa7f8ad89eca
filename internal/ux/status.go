package ux

import (
	"fmt"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/data"
)

// RenderStatus prints the workspace overview and, when a project is
// selected, its summary.
func RenderStatus(st data.Statistics, sum *data.ProjectSummary) {
	if sum == nil {
		fmt.Printf("%sProject:%s %s(none selected)%s\n", Bold, Reset, Dim, Reset)
	} else {
		fmt.Printf("%sProject:%s %s  %s%s%s  %d%%\n", Bold, Reset, sum.Name, Dim, sum.Status, Reset, sum.Progress)
	}

	fmt.Printf("\n%sWorkspace:%s\n", Bold, Reset)
	fmt.Printf("  %-14s %d\n", "projects", st.Projects)
	fmt.Printf("  %-14s %d\n", "milestones", st.Milestones)
	fmt.Printf("  %-14s %d", "tasks", st.Tasks)
	if st.OverdueTasks > 0 {
		fmt.Printf("  %s%d overdue%s", Red, st.OverdueTasks, Reset)
	}
	fmt.Println()
	fmt.Printf("  %-14s %d", "requirements", st.Requirements)
	if st.SuspectRequirements > 0 {
		fmt.Printf("  %s%d suspect%s", Yellow, st.SuspectRequirements, Reset)
	}
	fmt.Println()
	fmt.Printf("  %-14s %.1f%%\n", "coverage", st.CoveragePercentage)

	if sum == nil {
		fmt.Println()
		return
	}

	if len(sum.Milestones) > 0 {
		fmt.Printf("\n%sMilestones:%s\n", Bold, Reset)
		for _, m := range sum.Milestones {
			color := Dim
			switch {
			case m.Progress.Percent == 100:
				color = Green
			case m.DaysLeft < 0:
				color = Red
			}
			fmt.Printf("  %-24s %s%3d%%%s  %s (%s)\n",
				m.Name, color, m.Progress.Percent, Reset, m.DueDate.Format(time.DateOnly), daysLeft(m.DaysLeft))
		}
	}

	if len(sum.OverdueTasks) > 0 {
		fmt.Printf("\n%sOverdue:%s\n", Bold, Reset)
		for _, t := range sum.OverdueTasks {
			fmt.Printf("  %s→%s %-30s %s%s%s\n", Red, Reset, t.Title, Dim, t.DueDate.Format(time.DateOnly), Reset)
		}
	}
	fmt.Println()
}

func daysLeft(n int) string {
	switch {
	case n < 0:
		return fmt.Sprintf("%dd late", -n)
	case n == 0:
		return "due today"
	default:
		return fmt.Sprintf("%dd left", n)
	}
}
