package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write the config file",
	Long: `Reads and writes ~/.partsync/config.toml. Keys are dotted, for example
sync.interval or storage.cache. A running agent picks up a new sync.interval
without restarting.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every configured key",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one key",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one key",
	Long: `Sets one key. Values are stored as booleans, integers or floats when they
parse as such, otherwise as strings.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// keyLister is implemented by config stores that can enumerate their keys.
type keyLister interface {
	Keys() []string
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errNotConfigured("config")
	}
	lister, ok := configStore.(keyLister)
	if !ok {
		return fmt.Errorf("config store at %s cannot list keys", configStore.Path())
	}

	keys := lister.Keys()
	values := make(map[string]any, len(keys))
	for _, k := range keys {
		values[k], _ = configStore.Get(k)
	}

	return render(cmd, values, func(w io.Writer) {
		fprintf(w, "# %s\n", configStore.Path())
		if len(keys) == 0 {
			fprintf(w, "(no keys set, defaults apply)\n")
			return
		}
		for _, k := range keys {
			fprintf(w, "%s = %v\n", k, values[k])
		}
	})
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errNotConfigured("config")
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	return render(cmd, val, func(w io.Writer) {
		fprintf(w, "%v\n", val)
	})
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errNotConfigured("config")
	}

	if err := configStore.Set(args[0], parseConfigValue(args[1])); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

// parseConfigValue maps a command-line string to the TOML type it reads as.
func parseConfigValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
