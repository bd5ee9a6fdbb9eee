package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/tabsession/internal/cli/styles"
	"github.com/bnema/tabsession/internal/domain/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(renderVersion(styles.NewTheme(), buildInfo))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func renderVersion(theme *styles.Theme, info build.Info) string {
	version := info.Version
	if version == "" {
		version = "dev"
	}
	lines := []string{
		theme.Title.Render("tabsession"),
		fmt.Sprintf("%s %s", styles.IconVersion, theme.Highlight.Render(version)),
	}
	if info.Commit != "" {
		lines = append(lines, theme.Subtle.Render("commit "+info.Commit))
	}
	if info.BuildDate != "" {
		lines = append(lines, theme.Subtle.Render("built "+info.BuildDate))
	}
	if info.GoVersion != "" {
		lines = append(lines, fmt.Sprintf("%s %s", styles.IconGo, info.GoVersion))
	}
	lines = append(lines, theme.Subtle.Render(build.RepoURL()))

	return theme.Box.Render(strings.Join(lines, "\n"))
}
