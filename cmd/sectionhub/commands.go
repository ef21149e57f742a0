package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"section-hub/internal/catalog"
	"section-hub/internal/config"
	"section-hub/internal/generator"
	"section-hub/internal/installer"
	"section-hub/internal/watcher"
	"section-hub/pkg/fsutils"

	"github.com/spf13/cobra"
)

func (c *cli) listCmd() *cobra.Command {
	var (
		category string
		free     bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog sections, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(output, formatTable, formatJSON, formatYAML); err != nil {
				return err
			}
			sections := c.services.Catalog.Filter(catalog.FilterOptions{Category: category, FreeOnly: free})
			return writeSections(cmd.OutOrStdout(), output, sections)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", `only this category ("All" for every category)`)
	cmd.Flags().BoolVar(&free, "free", false, "only free sections")
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, json, yaml")
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search names, descriptions, categories and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output, formatTable, formatJSON, formatYAML); err != nil {
				return err
			}
			return writeSections(cmd.OutOrStdout(), output, c.services.Catalog.Search(args[0]))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, json, yaml")
	return cmd
}

func (c *cli) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the distinct section categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, category := range c.services.Catalog.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), category)
			}
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	var (
		payload bool
		output  string
	)
	cmd := &cobra.Command{
		Use:   "show <section-id>",
		Short: "Show one section, or with --payload the exact theme file an install writes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output, formatTable, formatJSON, formatYAML); err != nil {
				return err
			}
			if payload {
				p, err := c.services.Installer.Payload(args[0])
				if err != nil {
					return err
				}
				if output != formatTable {
					return encode(cmd.OutOrStdout(), output, p)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), p.Content)
				return err
			}

			section, err := c.services.Catalog.Get(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return writeSection(cmd.OutOrStdout(), output, section, len(installer.BuildPayload(*section)))
		},
	}
	cmd.Flags().BoolVar(&payload, "payload", false, "print the generated theme file instead of the details")
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, json, yaml")
	return cmd
}

func (c *cli) installCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "install <section-id>",
		Short: "Install a section into the shop's published theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output, formatTable, formatJSON, formatYAML); err != nil {
				return err
			}
			result, err := c.services.Installer.Install(cmd.Context(), args[0])
			if output != formatTable {
				resp, _ := installer.Envelope(result, err)
				if encErr := encode(cmd.OutOrStdout(), output, resp); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			fmt.Fprintf(cmd.OutOrStdout(), "file: %s (install %s)\n", installer.ThemeFilePath(args[0]), result.InstallID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, json, yaml")
	return cmd
}

func (c *cli) installedCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "installed",
		Short: "Show the sections installed in the shop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(output, formatTable, formatJSON, formatYAML); err != nil {
				return err
			}
			report, err := c.services.Installed.Installed(cmd.Context())
			if err != nil {
				return err
			}
			return writeInstalled(cmd.OutOrStdout(), output, report)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, json, yaml")
	return cmd
}

func (c *cli) newCmd() *cobra.Command {
	var (
		name     string
		category string
		slug     string
		from     string
		author   string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Scaffold a new section bundle, or clone one with --from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			genCfg := generator.DefaultGeneratorConfig(c.cfg.Catalog.Root)
			if author != "" {
				genCfg.Author = author
			}

			var (
				id  string
				err error
			)
			if from != "" {
				meta, cloneErr := generator.CloneSectionBundle(genCfg, from, slug, name)
				if meta != nil {
					id = meta.ID
				}
				err = cloneErr
			} else {
				if name == "" {
					return errors.New("--name is required")
				}
				meta, genErr := generator.GenerateSectionBundle(genCfg, name, category, slug)
				if meta != nil {
					id = meta.ID
				}
				err = genErr
			}
			if fsutils.IsExist(err) {
				return fmt.Errorf("%w (pick another --slug)", err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created section %s in %s\n", id, filepath.Join(c.cfg.Catalog.Root, id))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name of the section")
	cmd.Flags().StringVar(&category, "category", "", `category (default "Custom")`)
	cmd.Flags().StringVar(&slug, "slug", "", "folder name and id (default: derived from the name)")
	cmd.Flags().StringVar(&from, "from", "", "id of an existing section to clone")
	cmd.Flags().StringVar(&author, "author", "", "author written to the descriptor")
	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [section-id...]",
		Short: "Check bundles for broken descriptors, prices and missing files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args
			if len(ids) == 0 {
				all, err := c.services.Catalog.Store().GetAllSectionIDs()
				if err != nil {
					return err
				}
				ids = all
			}

			failed := 0
			for _, id := range ids {
				if err := c.services.Catalog.Validate(id); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", id, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", id)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d sections are invalid", failed, len(ids))
			}
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Validate bundles as they are edited, until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			w, err := watcher.New(c.cfg.Catalog.Root, func(ev watcher.Event) {
				if ev.Op == watcher.OpRemoved {
					fmt.Fprintf(out, "removed %s\n", ev.SectionID)
					return
				}
				if err := c.services.Catalog.Validate(ev.SectionID); err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", ev.SectionID, err)
					return
				}
				fmt.Fprintf(out, "ok   %s\n", ev.SectionID)
			}, watcher.WithLogger(c.logger))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", c.cfg.Catalog.Root)
			return w.Run(ctx)
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, formatYAML, formatTOML, formatJSON); err != nil {
				return err
			}
			if used := c.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "# from %s\n", used)
			}
			return encode(cmd.OutOrStdout(), format, config.Settings(c.v))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "output format: yaml, toml, json")
	return cmd
}
