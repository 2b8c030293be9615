package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/registry"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newNewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new [<priority> <text...>]",
		Short: "Create a list, optionally with its first item",
		Example: `  todo new
  todo new alta Comprar anzol`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				return usagef("usage: todo new [<priority> <text...>]")
			}
			return nil
		},
		RunE: a.withRegistry(func(cmd *cobra.Command, args []string) error {
			var (
				l   model.List
				err error
			)
			if len(args) == 0 {
				l, err = a.reg.CreateList(cmd.Context())
			} else {
				var rc registry.Receipt
				rc, err = a.reg.Submit(cmd.Context(), registry.Submission{
					Priority: args[0],
					Text:     strings.Join(args[1:], " "),
				})
				l = rc.List
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.OK(out, "created list "+l.ID.String())
			ui.Panel(out, ui.ListLines(l, a.cfg.Vocabulary()))
			fmt.Fprintln(out, ui.Current().Muted.Render("Add more with: todo add "+l.ID.String()+" <priority> <text>"))
			return nil
		}),
	}
}

func newAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add <list-id> <priority> <text...>",
		Short:   "Append an item to an existing list",
		Example: `  todo add 6ba7b810-9dad-41d1-80b4-00c04fd430c8 baixa Comprar cola instantânea`,
		Args:    minArgs(3, "todo add <list-id> <priority> <text...>"),
		RunE: a.withRegistry(func(cmd *cobra.Command, args []string) error {
			id, err := parseListID(args[0])
			if err != nil {
				return err
			}
			rc, err := a.reg.Submit(cmd.Context(), registry.Submission{
				ListID:   id,
				Priority: args[1],
				Text:     strings.Join(args[2:], " "),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			last := rc.List.Items[rc.List.Len()-1]
			ui.OK(out, "added "+model.FormatRow(last, a.cfg.Vocabulary()))
			ui.Panel(out, ui.ListLines(rc.List, a.cfg.Vocabulary()))
			return nil
		}),
	}
}

func newShowCommand(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "show <list-id>",
		Short: "Print a list",
		Args:  exactArgs(1, "todo show <list-id>"),
		RunE: a.withRegistry(func(cmd *cobra.Command, args []string) error {
			id, err := parseListID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if plain {
				rows, err := a.reg.View(cmd.Context(), id, a.cfg.Vocabulary())
				if err != nil {
					return err
				}
				for _, r := range rows {
					fmt.Fprintln(out, r)
				}
				return nil
			}
			l, err := a.reg.GetList(cmd.Context(), id)
			if err != nil {
				return err
			}
			ui.Panel(out, ui.ListLines(l, a.cfg.Vocabulary()))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print bare rows, one per line")
	return cmd
}

func newUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui <list-id>",
		Short: "Browse a list and add items interactively",
		Args:  exactArgs(1, "todo ui <list-id>"),
		RunE: a.withRegistry(func(cmd *cobra.Command, args []string) error {
			id, err := parseListID(args[0])
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.reg, id, a.cfg.Vocabulary())
		}),
	}
}

func newConfigCommand(a *app) *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cfg.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usagef("usage: todo config init [path]")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.LocalConfigPath
			if len(args) == 1 {
				path = args[0]
			} else if a.cfgFile != "" {
				path = a.cfgFile
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "wrote "+path)
			return nil
		},
	})
	return cfg
}
