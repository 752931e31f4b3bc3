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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/autogenre/internal/autogenre"
	"github.com/ademuri/autogenre/internal/essentia"
	"github.com/ademuri/autogenre/internal/genretree"
	"github.com/ademuri/autogenre/internal/lastgenre"
	"github.com/ademuri/autogenre/internal/store"
)

type AutogenreConfig struct {
	DbPath          string
	TreePath        string
	WhitelistPath   string
	ApiKey          string
	Secret          string
	EssentiaBinary  string
	EssentiaProfile string
	Lookup          lastgenre.Options
	Resolver        autogenre.Config
}

var autogenreCmd = &cobra.Command{
	Use:   "autogenre [query...]",
	Short: "Derives and assigns song genres",
	Long: `Selects the library items matching the query and assigns a genre from last.fm
tags, the title or album name, or Essentia's acoustic analysis. Album genres are
updated afterwards from the genres of their items.

Query terms look like 'field:value' or match artist, album and title.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("genre") && len(args) == 0 {
			return fmt.Errorf("must specify selector when --genre provided")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config, err := autogenreConfigFromFlags(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		err = runAutogenre(ctx, os.Stdout, config, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(autogenreCmd)
	defaults := autogenre.DefaultConfig()
	lookupDefaults := lastgenre.DefaultOptions()

	bindBool := func(name, shorthand string, value bool, usage string) {
		autogenreCmd.Flags().BoolP(name, shorthand, value, usage)
		viper.BindPFlag(name, autogenreCmd.Flags().Lookup(name))
	}
	bindFloat := func(name string, value float64, usage string) {
		autogenreCmd.Flags().Float64(name, value, usage)
		viper.BindPFlag(name, autogenreCmd.Flags().Lookup(name))
	}

	bindBool("pretend", "", false, "do not persist item changes but log them")
	bindBool("force", "f", false, "reevaluate genres for items with a matching genre_source")
	bindBool("all", "a", false, "overwrite genre if genre_source not specified")
	bindBool("lastgenre", "", defaults.UseLastFm, "derive genre from last.fm tags")
	bindBool("xtractor", "", defaults.UseAcoustic, "derive genre from Essentia's acoustic analysis")
	bindBool("from_title", "", defaults.UseTitleMatch, "derive genre from title")
	bindBool("parent_genres", "", defaults.IncludeParentGenres, "add primary genre's parent genres")
	bindBool("canonical", "", lookupDefaults.Canonical, "canonicalize last.fm tags instead of only accepting whitelisted ones")

	autogenreCmd.Flags().String("genre", "", "specify the genre to assign to the selected items")

	autogenreCmd.Flags().String("source", string(defaults.Granularity), "last.fm lookup granularity: track, album or artist")
	viper.BindPFlag("source", autogenreCmd.Flags().Lookup("source"))
	autogenreCmd.Flags().Int("count", lookupDefaults.Count, "maximum number of last.fm genres")
	viper.BindPFlag("count", autogenreCmd.Flags().Lookup("count"))
	autogenreCmd.Flags().Int("min_weight", lookupDefaults.MinWeight, "minimum last.fm tag weight")
	viper.BindPFlag("min_weight", autogenreCmd.Flags().Lookup("min_weight"))

	autogenreCmd.Flags().String("essentia_binary", essentia.DefaultBinary, "Essentia music extractor executable")
	viper.BindPFlag("essentia_binary", autogenreCmd.Flags().Lookup("essentia_binary"))
	autogenreCmd.Flags().String("essentia_profile", "", "Essentia extractor profile enabling the high-level models")
	viper.BindPFlag("essentia_profile", autogenreCmd.Flags().Lookup("essentia_profile"))

	th := defaults.Thresholds
	bindFloat("genre_electronic_strong", th.ElectronicStrong, "electronic probability above which 'dance' is replaced by the electronic sub-genre")
	bindFloat("genre_rosamerica_strong", th.RosamericaStrong, "rosamerica probability below which 'electronic' may be prepended")
	bindFloat("genre_electronic_prepend", th.ElectronicPrepend, "electronic probability above which 'electronic' is prepended to weak genres")
	bindFloat("genre_electronic_append", th.ElectronicAppend, "electronic probability above which 'electronic' is appended")
}

func autogenreConfigFromFlags(cmd *cobra.Command) (AutogenreConfig, error) {
	granularity, err := autogenre.ParseGranularity(viper.GetString("source"))
	if err != nil {
		return AutogenreConfig{}, err
	}

	resolver := autogenre.Config{
		Pretend:             viper.GetBool("pretend"),
		Force:               viper.GetBool("force"),
		All:                 viper.GetBool("all"),
		UseLastFm:           viper.GetBool("lastgenre"),
		UseAcoustic:         viper.GetBool("xtractor"),
		UseTitleMatch:       viper.GetBool("from_title"),
		IncludeParentGenres: viper.GetBool("parent_genres"),
		Granularity:         granularity,
		Separator:           viper.GetString("separator"),
		Thresholds: essentia.Thresholds{
			ElectronicStrong:  viper.GetFloat64("genre_electronic_strong"),
			RosamericaStrong:  viper.GetFloat64("genre_rosamerica_strong"),
			ElectronicPrepend: viper.GetFloat64("genre_electronic_prepend"),
			ElectronicAppend:  viper.GetFloat64("genre_electronic_append"),
		},
	}
	if cmd.Flags().Changed("genre") {
		genre, _ := cmd.Flags().GetString("genre")
		resolver.ExplicitGenre = &genre
	}

	return AutogenreConfig{
		DbPath:          viper.GetString("database"),
		TreePath:        viper.GetString("tree"),
		WhitelistPath:   viper.GetString("whitelist"),
		ApiKey:          viper.GetString("api_key"),
		Secret:          viper.GetString("secret"),
		EssentiaBinary:  viper.GetString("essentia_binary"),
		EssentiaProfile: viper.GetString("essentia_profile"),
		Lookup: lastgenre.Options{
			Count:     viper.GetInt("count"),
			MinWeight: viper.GetInt("min_weight"),
			Canonical: viper.GetBool("canonical"),
			Separator: viper.GetString("separator"),
		},
		Resolver: resolver,
	}, nil
}

type change struct {
	item   autogenre.Item
	result autogenre.Result
}

func runAutogenre(ctx context.Context, out io.Writer, config AutogenreConfig, args []string) error {
	query := store.ParseQuery(args)
	if config.Resolver.ExplicitGenre != nil && query.Empty() {
		return fmt.Errorf("must specify selector when --genre provided")
	}

	tree, err := genretree.Load(config.TreePath, config.WhitelistPath)
	if err != nil {
		return err
	}

	var lookup autogenre.Lookup
	if config.Resolver.UseLastFm {
		if config.ApiKey == "" || config.Secret == "" {
			return fmt.Errorf("last.fm lookups require --api_key and --secret")
		}
		lookup = lastgenre.New(lastgenre.NewClient(config.ApiKey, config.Secret), tree, config.Lookup)
	}
	var analyzer autogenre.Analyzer
	if config.Resolver.UseAcoustic {
		analyzer = autogenre.NewAnalyzer(&essentia.Extractor{
			Binary:  config.EssentiaBinary,
			Profile: config.EssentiaProfile,
		})
	}
	resolver, err := autogenre.NewResolver(tree, lookup, analyzer, config.Resolver, out)
	if err != nil {
		return err
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	items, err := db.Items(query)
	if err != nil {
		return err
	}

	explicit := config.Resolver.ExplicitGenre != nil
	selected := 0
	for i := range items {
		if autogenre.Eligible(&items[i], config.Resolver.All || explicit, config.Resolver.Force || explicit) {
			selected++
		}
	}
	fmt.Fprintf(out, "[autogenre] Selected %d items for genre update...\n", selected)

	var changes []change
	albums := map[int64]bool{}
	for i := range items {
		item := &items[i]
		res, err := resolver.Resolve(ctx, item)
		if err != nil {
			return err
		}
		if res.Skipped {
			continue
		}
		if res.Analyzed && !config.Resolver.Pretend {
			if err := db.SaveAcoustic(item); err != nil {
				return err
			}
		}
		if !res.Changed {
			continue
		}
		changes = append(changes, change{item: *item, result: res})
		if config.Resolver.Pretend {
			continue
		}
		res.Apply(item)
		if err := db.SaveGenre(item); err != nil {
			return err
		}
		if item.AlbumID != 0 {
			albums[item.AlbumID] = true
		}
	}

	if config.Resolver.Pretend {
		printChanges(out, changes)
		return nil
	}

	for albumID := range albums {
		albumItems, err := db.AlbumItems(albumID)
		if err != nil {
			return err
		}
		if err := db.SaveAlbumGenre(albumID, autogenre.AlbumGenre(albumItems)); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "[autogenre] Updated %d items and %d albums\n", len(changes), len(albums))
	return nil
}

func printChanges(out io.Writer, changes []change) {
	fmt.Fprintf(out, "[autogenre] Would update %d items\n", len(changes))
	if len(changes) == 0 {
		return
	}
	highlight := color.New(color.FgGreen).SprintFunc()

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Item", "Old Genre", "New Genre", "Source"})
	for _, c := range changes {
		table.Append([]string{
			c.item.String(),
			c.item.Genre,
			highlight(c.result.Genre),
			string(c.result.Source),
		})
	}
	table.Render()
}
