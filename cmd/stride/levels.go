package main

import (
	"fmt"

	"github.com/akmonengine/stride/level"
	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the builtin levels",
	Long:  `Shows the levels embedded in the binary, usable with --level <name>.`,
	RunE:  runLevels,
}

func runLevels(cmd *cobra.Command, args []string) error {
	fmt.Println("Builtin levels:")
	fmt.Println()

	for _, name := range level.BuiltinNames() {
		layout, err := level.Builtin(name)
		if err != nil {
			return err
		}
		fmt.Printf("  %-10s  spawn %v, %d script steps\n", name, layout.Spawn, len(layout.Script))
	}

	fmt.Println()
	fmt.Println("Run 'stride simulate --level <name>' to run one.")
	return nil
}
