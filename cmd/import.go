/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/autogenre/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Adds items to the library",
	Long: `Reads a YAML list of items with the fields path, artist, albumartist, album,
title, genre and genre_source and adds them to the library.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := importItems(os.Stdout, viper.GetString("database"), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func importItems(out io.Writer, dbPath string, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var items []store.ItemImport
	if err := yaml.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ids, err := db.AddItems(items)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d items\n", len(ids))
	return nil
}
