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

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/autogenre/internal/store"
)

var lsCmd = &cobra.Command{
	Use:   "ls [query...]",
	Short: "Lists library items and their genres",
	Run: func(cmd *cobra.Command, args []string) {
		err := printItems(os.Stdout, viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var albumsCmd = &cobra.Command{
	Use:   "albums [query...]",
	Short: "Lists albums and their aggregated genres",
	Run: func(cmd *cobra.Command, args []string) {
		err := printAlbums(os.Stdout, viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(albumsCmd)
}

func printItems(out io.Writer, dbPath string, args []string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	items, err := db.Items(store.ParseQuery(args))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Artist", "Album", "Title", "Genre", "Primary", "Source"})
	for _, item := range items {
		table.Append([]string{
			item.Artist,
			item.Album,
			item.Title,
			item.Genre,
			item.GenrePrimary,
			string(item.GenreSource),
		})
	}
	table.Render()
	return nil
}

func printAlbums(out io.Writer, dbPath string, args []string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	albums, err := db.Albums(store.ParseQuery(args))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Album Artist", "Album", "Items", "Genre", "Source"})
	for _, a := range albums {
		table.Append([]string{
			a.AlbumArtist,
			a.Name,
			fmt.Sprint(a.Items),
			a.Genre,
			string(a.GenreSource),
		})
	}
	table.Render()
	return nil
}
