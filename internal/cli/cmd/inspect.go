package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/bnema/tabsession/internal/cli"
	"github.com/bnema/tabsession/internal/cli/styles"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [slot]",
	Short: "List saved slots or the tabs of one slot",
	Long: `Without arguments, list every slot that has saved tabs.
With a slot number, list its records and whether their state was saved.

Examples:
  tabsession inspect      # all slots
  tabsession inspect 0    # tabs of the first window`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	if len(args) == 1 {
		slot, err := parseSlot(args[0])
		if err != nil {
			return err
		}
		return inspectSlot(app, slot)
	}
	return inspectSlots(app)
}

func inspectSlots(app *cli.App) error {
	theme := app.Theme
	summaries, err := app.Slots(app.Ctx())
	if err != nil {
		return err
	}

	fmt.Println(theme.Title.Render(styles.IconFolder + " " + app.Config.StateDir))
	if len(summaries) == 0 {
		fmt.Println(theme.Subtle.Render("No saved slots."))
		return nil
	}

	rows := make([]table.Row, 0, len(summaries))
	for _, s := range summaries {
		if s.Err != nil {
			fmt.Printf("%s slot %d: %v\n", theme.WarningStyle.Render(styles.IconWarning), s.Slot, s.Err)
			continue
		}
		rows = append(rows, styles.SlotRow{
			Slot:      s.Slot,
			Tabs:      s.Metadata.TabCount(),
			Incognito: s.Metadata.IncognitoCount(),
			Selected:  int(s.Metadata.SelectedNormalTabID),
			SavedAt:   s.Metadata.SavedAt,
		}.ToRow())
	}
	fmt.Println(styles.NewStyledTable(theme, styles.SlotTableColumns(), rows).View())
	return nil
}

func inspectSlot(app *cli.App, slot int) error {
	theme := app.Theme
	records, err := app.Records(app.Ctx(), slot)
	if err != nil {
		return err
	}

	fmt.Println(theme.Title.Render(fmt.Sprintf("%s Slot %d", styles.IconSession, slot)))
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, styles.RecordRow{
			Index:    r.Index,
			ID:       int(r.ID),
			Kind:     r.Kind(),
			HasState: r.HasState,
			URL:      r.URL,
		}.ToRow())
	}
	fmt.Println(styles.NewStyledTable(theme, styles.RecordTableColumns(), rows).View())
	return nil
}

func parseSlot(arg string) (int, error) {
	slot, err := strconv.Atoi(arg)
	if err != nil || slot < 0 {
		return 0, fmt.Errorf("invalid slot %q: must be a non-negative number", arg)
	}
	return slot, nil
}
