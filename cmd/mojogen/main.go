// Command mojogen generates Mojo bindings from a type universe.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/refaktor/mojogen"
	"github.com/refaktor/mojogen/config"
	"github.com/refaktor/mojogen/hir/hirload"
)

var rootCmd = &cobra.Command{
	Use:           "mojogen",
	Short:         "Mojo binding generator",
	Long:          `mojogen generates Mojo bindings for a C ABI described by a type universe file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate <universe.yaml>",
	Short: "Generate bindings into the output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

var checkCmd = &cobra.Command{
	Use:   "check <universe.yaml>",
	Short: "Check that the generated bindings on disk are up to date",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var graphCmd = &cobra.Command{
	Use:   "graph <universe.yaml>",
	Short: "Print the include graph as graphviz DOT code",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file if it does not exist",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

var (
	diagColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen)
)

func init() {
	rootCmd.PersistentFlags().String("config", "mojogen.toml", "configuration file")
	rootCmd.PersistentFlags().Bool("json-log", false, "log as JSON")
	generateCmd.Flags().StringP("out", "o", "", "output directory (overrides the configuration)")
	generateCmd.Flags().Bool("stats", false, "print generation statistics")
	checkCmd.Flags().StringP("out", "o", "", "output directory (overrides the configuration)")

	rootCmd.AddCommand(generateCmd, checkCmd, graphCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %v\n", hint)
		}
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) (*mojogen.Logger, error) {
	jsonLog, err := cmd.Root().PersistentFlags().GetBool("json-log")
	if err != nil {
		return nil, err
	}
	return mojogen.NewLogger(os.Stderr, jsonLog), nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !cmd.Root().PersistentFlags().Changed("config") {
		return config.Default(), nil
	}
	c, err := config.Load(path)
	if err != nil {
		var cErr *config.Error
		if errors.As(err, &cErr) {
			return nil, errors.WithHint(err, cErr.String())
		}
		return nil, err
	}
	return c, nil
}

// outDir returns the output directory, the --out flag taking precedence
// over the configuration.
func outDir(cmd *cobra.Command, cfg *config.Config) (string, error) {
	dir, err := cmd.Flags().GetString("out")
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = cfg.Output.Dir
	}
	return dir, nil
}

// run loads the universe and configuration and generates the bindings.
func run(cmd *cobra.Command, universePath string) (*mojogen.Result, *config.Config, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	defer log.Sync()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	tcx, err := hirload.LoadFile(universePath)
	if err != nil {
		return nil, nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := mojogen.Generate(ctx, tcx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return res, cfg, nil
}

// report prints diagnostics and failures of a run. It returns an error
// if any definition failed.
func report(w io.Writer, res *mojogen.Result) error {
	if len(res.Diagnostics) > 0 {
		diagColor.Fprintf(w, "%v diagnostics:\n", len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			fmt.Fprintf(w, "  %v\n", d)
		}
	}
	if len(res.Failures) > 0 {
		errorColor.Fprintf(w, "%v definitions failed:\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(w, "  %v\n", f.Err)
		}
		return errors.Newf("%v of %v definitions failed", len(res.Failures), totalDefinitions(res))
	}
	return nil
}

func totalDefinitions(res *mojogen.Result) int {
	n := 0
	for _, s := range res.Stats {
		n += s.Total
	}
	return n
}

func runGenerate(cmd *cobra.Command, args []string) error {
	res, cfg, err := run(cmd, args[0])
	if err != nil {
		return err
	}
	dir, err := outDir(cmd, cfg)
	if err != nil {
		return err
	}
	if err := res.WriteFiles(dir); err != nil {
		return err
	}
	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		res.WriteStats(cmd.OutOrStdout())
	}
	if err := report(cmd.ErrOrStderr(), res); err != nil {
		return err
	}
	okColor.Fprintf(cmd.OutOrStdout(), "Wrote %v files to %v\n", len(res.Files), dir)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	res, cfg, err := run(cmd, args[0])
	if err != nil {
		return err
	}
	dir, err := outDir(cmd, cfg)
	if err != nil {
		return err
	}
	if err := report(cmd.ErrOrStderr(), res); err != nil {
		return err
	}
	stale, err := res.Stale(dir)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		for _, path := range stale {
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", path)
		}
		return errors.WithHint(
			errors.Newf("%v files in %v are out of date", len(stale), dir),
			"run mojogen generate to update them",
		)
	}
	okColor.Fprintf(cmd.OutOrStdout(), "%v files in %v are up to date\n", len(res.Files), dir)
	return nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	res, _, err := run(cmd, args[0])
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(res.IncludeGraphDOT()); err != nil {
		return err
	}
	return report(cmd.ErrOrStderr(), res)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return err
	}
	_, created, err := config.LoadOrCreateDefault(path)
	if err != nil {
		return err
	}
	if created {
		okColor.Fprintf(cmd.OutOrStdout(), "Created %v\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%v already exists\n", path)
	}
	return nil
}
