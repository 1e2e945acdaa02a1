package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/packwrap/internal/version"
	"github.com/arthur-debert/packwrap/pkg/commands/build"
	"github.com/arthur-debert/packwrap/pkg/commands/recover"
	"github.com/arthur-debert/packwrap/pkg/config"
	"github.com/arthur-debert/packwrap/pkg/logging"
	"github.com/arthur-debert/packwrap/pkg/paths"
	"github.com/arthur-debert/packwrap/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "packwrap",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newRecoverCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newBuildCmd() *cobra.Command {
	var (
		dir    string
		noLock bool
	)

	cmd := &cobra.Command{
		Use:     "build [-- tool-args...]",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		GroupID: "core",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().
				Str("dir", dir).
				Strs("rawArgs", args).
				Msg("Starting build")

			// The restore must run even when the user interrupts the
			// build, so the signal cancels the context instead of
			// killing the process outright.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := build.Options{
				ProjectRoot: dir,
				RawArgs:     args,
			}
			if noLock {
				cfg, err := loadConfigWithoutLock(dir)
				if err != nil {
					return err
				}
				opts.Config = cfg
			}

			result, err := build.Run(ctx, opts)
			if err != nil {
				// The build failed but the manifest is back; say so,
				// since that is the one thing the user would otherwise
				// have to check by hand.
				if result != nil && result.Restored {
					fmt.Fprintln(cmd.ErrOrStderr(), MsgManifestBackOK)
				}
				return err
			}

			fmt.Printf(MsgBuildSuccess,
				style.Bold(result.OutName),
				style.PathStyle.Render(result.OutputDir))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", MsgFlagDir)
	cmd.Flags().BoolVar(&noLock, "no-lock", false, MsgFlagNoLock)
	// Everything after the first non-flag token belongs to the tool.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

// loadConfigWithoutLock resolves the project configuration with the
// advisory lock switched off, for the --no-lock flag.
func loadConfigWithoutLock(dir string) (*config.Config, error) {
	p, err := paths.New(dir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(p.ConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.Lock.Enabled = false
	return cfg, nil
}

func newRecoverCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "recover",
		Short:   MsgRecoverShort,
		Long:    MsgRecoverLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := recover.Run(recover.Options{ProjectRoot: dir})
			if err != nil {
				return err
			}

			if result.Recovered {
				fmt.Printf(MsgRecovered,
					style.PathStyle.Render(result.ManifestPath),
					style.PathStyle.Render(result.BackupPath))
			} else {
				fmt.Print(MsgNothingToDo)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", MsgFlagDir)

	return cmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}
