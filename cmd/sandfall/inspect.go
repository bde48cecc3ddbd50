package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sandfall/internal/material"
	"sandfall/internal/sims/sand"
	"sandfall/internal/tui"
)

var heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))

func newTUICmd() *cobra.Command {
	opts := tui.DefaultOptions()
	var scenario string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := buildScenario(cmd, scenario, 0)
			if err != nil {
				return err
			}
			e, err := sc.NewEngine()
			if err != nil {
				return err
			}
			return tui.Run(e, opts)
		},
	}
	cmd.Flags().IntVar(&opts.TPS, "tps", opts.TPS, "ticks per second")
	cmd.Flags().IntVar(&opts.Diameter, "brush", opts.Diameter, "initial brush diameter")
	cmd.Flags().BoolVar(&opts.Paused, "paused", false, "start paused")
	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "start from a YAML scenario layout")
	return cmd
}

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			snapshot := sand.NewWithConfig(cfg).Parameters()
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, group := range snapshot.Groups {
				if group.Name == "State" {
					continue
				}
				fmt.Fprintln(tw, heading.Render(group.Name))
				if group.Summary != "" {
					fmt.Fprintf(tw, "  %s\n", group.Summary)
				}
				for _, p := range group.Params {
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Key, p.Value, p.Label)
				}
			}
			return tw.Flush()
		},
	}
}

func newMaterialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "list the material registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPHASE\tDENSITY\tCOLOUR\tPLACEABLE\tTRANSITIONS")
			for _, id := range material.All() {
				p := material.MustLookup(id)
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(
					fmt.Sprintf("#%02x%02x%02x", p.Color.R, p.Color.G, p.Color.B))).Render("██")
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%v\t%s\n",
					p.Name, p.Phase, p.Density, swatch, p.Placeable, material.DescribeTransitions(id))
			}
			return tw.Flush()
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := sand.SaveConfig(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
}
