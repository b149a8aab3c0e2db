package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tailplane/config"
	"tailplane/preset"
)

// configPaths returns args, or the configuration discovered in the working
// directory when args is empty.
func configPaths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	path, err := config.Discover(".")
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func loadLayers(args []string, opts ...config.Option) (config.Record, error) {
	paths, err := configPaths(args)
	if err != nil {
		return config.Record{}, err
	}
	return config.LoadFiles(paths, opts...)
}

// reportLoadError prints validation issues one per line and returns
// errSilent; other errors are returned unchanged.
func reportLoadError(w io.Writer, err error) error {
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	if where := strings.TrimSuffix(err.Error(), verr.Error()); where != "" {
		fmt.Fprintln(w, failure("%s", strings.TrimSuffix(where, ": ")))
	}
	for _, issue := range verr.Issues {
		fmt.Fprintf(w, "  %s %s\n", failure("✗"), issue.Error())
	}
	fmt.Fprintln(w, failure("%d issue(s) found", len(verr.Issues)))
	return errSilent
}

func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [FILE...]",
		Short: "Validate configuration files",
		Long:  "Load and merge the given configuration layers and report every problem found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []config.Option
			if strict {
				opts = append(opts, config.WithStrictColors())
			}

			rec, err := loadLayers(args, opts...)
			if err != nil {
				return reportLoadError(cmd.ErrOrStderr(), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %d pattern(s), %d color(s), darkMode %s\n",
				success("✓ valid:"),
				len(rec.Content()),
				len(rec.Colors()),
				rec.EffectiveDarkMode(),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject color values that are not valid CSS colors")

	return cmd
}

func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [FILE...]",
		Short: "Print the merged configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}

			rec, err := loadLayers(args)
			if err != nil {
				return reportLoadError(cmd.ErrOrStderr(), err)
			}

			data, err := config.Marshal(rec, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: json, yaml or toml")

	return cmd
}

func newMergeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "merge FILE...",
		Short: "Merge configuration layers into one document",
		Long:  "Merge configuration layers left to right and write the result. The output format follows the file extension.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := config.LoadFiles(args)
			if err != nil {
				return reportLoadError(cmd.ErrOrStderr(), err)
			}

			if err := config.Save(rec, out); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", success("Merged %d file(s) into", len(args)), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (.json, .yaml, .yml or .toml)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newMatchCmd() *cobra.Command {
	var configs []string

	cmd := &cobra.Command{
		Use:   "match PATH...",
		Short: "Report which content pattern covers each path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadLayers(configs)
			if err != nil {
				return reportLoadError(cmd.ErrOrStderr(), err)
			}

			m, err := rec.Matcher()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range args {
				if pattern, ok := m.Match(p); ok {
					fmt.Fprintf(out, "%s %s %s\n", success("match"), p, muted("(%s)", pattern))
				} else {
					fmt.Fprintf(out, "%s  %s\n", warn("miss"), p)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&configs, "config", nil, "Configuration files, merged left to right (default: discovered in the current directory)")

	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := preset.Embedded(zerolog.Nop())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range m.List() {
				desc := m.Description(name)
				if desc == "" {
					fmt.Fprintln(out, accent("%s", name))
					continue
				}
				fmt.Fprintf(out, "%s  %s\n", accent("%-12s", name), desc)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Manage tailplane configuration files.",
	}

	var name, out string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a configuration file from a preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := preset.Embedded(zerolog.Nop())
			if err != nil {
				return err
			}

			p := m.Get(name)
			if p == nil {
				return fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(m.List(), ", "))
			}

			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("config file already exists: %s", out)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := config.Save(p.Record, out); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", success("Generated config file:"), out)
			return nil
		},
	}
	generateCmd.Flags().StringVar(&name, "preset", "flask", "Preset to start from")
	generateCmd.Flags().StringVar(&out, "out", config.DiscoverNames[1], "Output file")

	configCmd.AddCommand(generateCmd)
	return configCmd
}
