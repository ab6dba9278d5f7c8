// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// newClient is replaced in tests.
var newClient = func() (powerClient, error) {
	return newBusClient()
}

// waitInterrupt blocks until the user stops the command.
var waitInterrupt = func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	signal.Stop(ch)
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func formatValue(value string) string {
	switch value {
	case "true":
		return color.New(color.Bold, color.FgGreen).Sprint(value)
	case "false":
		return color.New(color.Bold, color.FgRed).Sprint(value)
	}
	return value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func withClient(fn func(cmd *cobra.Command, c powerClient, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return fn(cmd, c, args)
	}
}

func newDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the configuration and the daemon state",
		Args:  cobra.NoArgs,
		RunE: withClient(func(cmd *cobra.Command, c powerClient, _ []string) error {
			config, err := c.GetConfig()
			if err != nil {
				return fmt.Errorf("failed to get config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), bold("Config:"))
			for _, key := range sortedKeys(config) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", key, formatValue(config[key]))
			}

			state, err := c.Dump()
			if err != nil {
				return fmt.Errorf("failed to dump state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), bold("State:"))
			fmt.Fprint(cmd.OutOrStdout(), state)
			return nil
		}),
	}
}

func newInhibitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inhibit <app> <reason>",
		Short: "Block idle actions until interrupted",
		Args:  cobra.ExactArgs(2),
		RunE: withClient(func(cmd *cobra.Command, c powerClient, args []string) error {
			cookie, err := c.Inhibit(args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to inhibit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inhibited with cookie %s, press Ctrl-C to release\n", bold("%d", cookie))
			waitInterrupt()
			return c.UnInhibit(cookie)
		}),
	}
}

func newUnInhibitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninhibit <cookie>",
		Short: "Release an inhibitor",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(_ *cobra.Command, c powerClient, args []string) error {
			cookie, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid cookie: %v", err)
			}
			return c.UnInhibit(uint32(cookie))
		}),
	}
}

func newActionCommand(use, method, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: withClient(func(_ *cobra.Command, c powerClient, _ []string) error {
			err := c.Call(method)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", use, err)
			}
			return nil
		}),
	}
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get [key]",
			Short: "Print one key or every key",
			Args:  cobra.MaximumNArgs(1),
			RunE: withClient(func(cmd *cobra.Command, c powerClient, args []string) error {
				config, err := c.GetConfig()
				if err != nil {
					return fmt.Errorf("failed to get config: %w", err)
				}
				if len(args) == 1 {
					value, ok := config[args[0]]
					if !ok {
						return fmt.Errorf("unknown key %q", args[0])
					}
					fmt.Fprintln(cmd.OutOrStdout(), value)
					return nil
				}
				for _, key := range sortedKeys(config) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, config[key])
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a key",
			Args:  cobra.ExactArgs(2),
			RunE: withClient(func(_ *cobra.Command, c powerClient, args []string) error {
				return c.SetConfig(args[0], args[1])
			}),
		},
	)
	return cmd
}

func newPresentationCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "presentation on|off",
		Short:     "Toggle presentation mode",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: withClient(func(_ *cobra.Command, c powerClient, args []string) error {
			return c.SetPresentationMode(args[0] == "on")
		}),
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dde-power-command",
		Short:        "Control the session power manager",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newDumpCommand(),
		newInhibitCommand(),
		newUnInhibitCommand(),
		newActionCommand("suspend", "Suspend", "Suspend the computer"),
		newActionCommand("hibernate", "Hibernate", "Hibernate the computer"),
		newActionCommand("shutdown", "Shutdown", "Shut the computer down"),
		newActionCommand("reboot", "Reboot", "Restart the computer"),
		newConfigCommand(),
		newPresentationCommand(),
	)
	return cmd
}

func main() {
	err := NewCommand().Execute()
	if err != nil {
		os.Exit(1)
	}
}
