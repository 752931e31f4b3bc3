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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "autogenre",
	Short: "Derives genres for the songs in a music library",
	Long: `Combines last.fm tags, genres mentioned in titles and Essentia's acoustic
genre models into one genre per song, and aggregates song genres into album genres.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.autogenre.yaml)")

	var databasePath string
	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./library.db", "Path to the SQLite library database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	var treePath string
	rootCmd.PersistentFlags().StringVar(
		&treePath, "tree", "", "Genre tree YAML file (default is the built-in tree)")
	viper.BindPFlag("tree", rootCmd.PersistentFlags().Lookup("tree"))

	var whitelistPath string
	rootCmd.PersistentFlags().StringVar(
		&whitelistPath, "whitelist", "", "Canonical genre whitelist, one genre per line")
	viper.BindPFlag("whitelist", rootCmd.PersistentFlags().Lookup("whitelist"))

	var separator string
	rootCmd.PersistentFlags().StringVar(&separator, "separator", ", ", "Separator of genre lists")
	viper.BindPFlag("separator", rootCmd.PersistentFlags().Lookup("separator"))

	var lastFmApiKey string
	rootCmd.PersistentFlags().StringVarP(
		&lastFmApiKey, "api_key", "", "", "last.fm API key")
	viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api_key"))

	var lastFmSecret string
	rootCmd.PersistentFlags().StringVarP(
		&lastFmSecret, "secret", "", "", "last.fm secret")
	viper.BindPFlag("secret", rootCmd.PersistentFlags().Lookup("secret"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".autogenre" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".autogenre")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}
