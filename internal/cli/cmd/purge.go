package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/tabsession/internal/cli/styles"
)

var purgeForce bool

var purgeCmd = &cobra.Command{
	Use:   "purge [slot]",
	Short: "Forget saved slots and their tab states",
	Long: `Delete the metadata of one slot, or of every slot when none is given,
then delete the tab states no remaining slot refers to.

The browser must not be running on the same state directory.
Use --force to skip the confirmation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().BoolVarP(&purgeForce, "force", "f", false, "purge without prompting")
}

func runPurge(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	theme := app.Theme

	var slots []int
	message := "Forget every saved slot?"
	if len(args) == 1 {
		slot, err := parseSlot(args[0])
		if err != nil {
			return err
		}
		slots = append(slots, slot)
		message = fmt.Sprintf("Forget slot %d?", slot)
	}

	if !purgeForce {
		final, err := tea.NewProgram(styles.NewConfirm(theme, message)).Run()
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if confirm, ok := final.(styles.ConfirmModel); !ok || !confirm.Result() {
			fmt.Println(theme.Subtle.Render("Canceled."))
			return nil
		}
	}

	result, err := app.Purge(app.Ctx(), slots...)
	if result != nil {
		for _, slot := range result.Slots {
			fmt.Printf("%s slot %d\n", theme.SuccessStyle.Render(styles.IconCheck), slot)
		}
		if result.Blobs > 0 {
			fmt.Printf("%s %d tab states\n", theme.SuccessStyle.Render(styles.IconTrash), result.Blobs)
		}
	}
	if err != nil {
		fmt.Printf("%s %v\n", theme.ErrorStyle.Render(styles.IconX), err)
	}
	return err
}
