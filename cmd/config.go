// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/redhatinsights/access-requests-cli/internal/config"
)

const masked = "***MASKED***"

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage configuration",
		Long:    "Manage access-requests CLI configuration",
	}

	cmd.AddCommand(
		configShowCmd(),
		configSetCmd(),
		configUseProfileCmd(),
		configPathCmd(),
	)

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"get", "view"},
		Short:   "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			yamlData, err := yaml.Marshal(maskedConfig(config.GetConfig()))
			if err != nil {
				return wrapError("marshal config", err)
			}

			fmt.Print(string(yamlData))
			return nil
		},
	}
}

// maskedConfig copies the config with stored credentials hidden
func maskedConfig(cfg *config.Config) config.Config {
	display := *cfg
	if display.API.Token != "" {
		display.API.Token = masked
	}
	if display.API.RefreshToken != "" {
		display.API.RefreshToken = masked
	}
	return display
}

func configSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set configuration values",
	}

	cmd.AddCommand(
		configSetValueCmd("api-url [url]", "Set the console API address", config.SetAPIURL),
		configSetValueCmd("output-format [format]", "Set default output format (table, json, yaml)", config.SetOutputFormat),
		configSetValueCmd("view [internal|external|auto]", "Force a view or derive it from the signed-in user", config.SetView),
		configSetValueCmd("page-size [n]", "Set default page size", func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid page size %q", v)
			}
			return config.SetPageSize(n)
		}),
	)

	return cmd
}

func configSetValueCmd(use, short string, set func(string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := set(args[0]); err != nil {
				return wrapError("set "+cmd.Name(), err)
			}
			fmt.Printf("%s set to: %s\n", cmd.Name(), args[0])
			return nil
		},
	}
}

func configUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use-profile [profile]",
		Aliases: []string{"profile"},
		Short:   "Switch to a different configuration profile",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				names := make([]string, 0, len(config.GetConfig().Profiles))
				for name := range config.GetConfig().Profiles {
					names = append(names, name)
				}
				sort.Strings(names)
				if len(names) == 0 {
					fmt.Println("No profiles configured")
				}
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			}

			if err := config.UseProfile(args[0]); err != nil {
				return wrapError("use profile", err)
			}
			fmt.Printf("Switched to profile: %s\n", args[0])
			return nil
		},
	}
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.Path())
		},
	}
}
