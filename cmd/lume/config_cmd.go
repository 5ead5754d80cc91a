package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"lume/internal/config"
)

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config and create the state directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := resolveConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			defaults := config.Defaults()
			if err := config.Save(path, defaults); err != nil {
				return err
			}
			state := config.ExpandPath(defaults.General.StateDir)
			if err := os.MkdirAll(state, 0o755); err != nil {
				return fmt.Errorf("create state dir: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nState directory: %s\n", path, state)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change settings",
		Long: "Settings are addressed by dotted path, e.g. executor.timeoutSeconds or wordlists.dns.0.\n" +
			"List settings take a comma-separated value.",
	}
	cmd.AddCommand(configGetCmd(), configSetCmd(), configListCmd(), configPathCmd())
	return cmd
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.LoadOrDefault(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			val, err := config.GetByPath(cfg, args[0])
			if err != nil {
				return err
			}
			return printSetting(cmd.OutOrStdout(), val)
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Change one setting and save the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolveConfigPath()
			cfg, err := config.Load(path)
			switch {
			case errors.Is(err, config.ErrNotFound):
				return fmt.Errorf("%w (run 'lume init' first)", err)
			case err != nil:
				return fmt.Errorf("load config: %w", err)
			}

			key := args[0]
			if err := config.SetByPath(cfg, key, args[1]); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			val, _ := config.GetByPath(cfg, key)
			fmt.Fprintf(cmd.OutOrStdout(), "%s = ", key)
			return printSetting(cmd.OutOrStdout(), val)
		},
	}
}

func configListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := config.LoadOrDefault(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			all := config.ListPaths(cfg)
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(out, "%s = ", k)
				if err := printSetting(out, all[k]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), resolveConfigPath())
		},
	}
}

// printSetting writes scalars as-is and lists as compact JSON.
func printSetting(w io.Writer, val any) error {
	switch v := val.(type) {
	case string, bool, int, int64, float64:
		_, err := fmt.Fprintln(w, v)
		return err
	}
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
