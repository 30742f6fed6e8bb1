package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantdesk/quantdesk/store"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Dump the persisted desk state as JSON",
	RunE:  runState,
}

var (
	statePath      string
	stateNamespace string
)

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().StringVarP(&statePath, "db", "d", "./quantdesk-state.db", "path to the state database")
	stateCmd.Flags().StringVarP(&stateNamespace, "namespace", "n", "", "state namespace (default built-in)")
}

func runState(cmd *cobra.Command, args []string) error {
	st, err := store.Open(statePath, stateNamespace)
	if err != nil {
		return err
	}
	defer st.Close()

	state, err := st.Load()
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Println("no saved state")
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}
