package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/turnkit/internal/games"
)

// GameInfo describes a registered game.
type GameInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewGamesCommand creates the games command.
func NewGamesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "games",
		Short:         "List built-in games",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []GameInfo
			for _, name := range games.Names() {
				def, _ := games.Lookup(name)
				infos = append(infos, GameInfo{Name: name, Description: def.Description()})
			}

			f := rootOpts.formatter(cmd)
			if f.IsJSON() {
				return f.Success(infos)
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", info.Name, info.Description)
			}
			return nil
		},
	}
}
