package main

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arcnetwork/arc-processing/settings"
)

var apiURLArg string
var apiURL string

var cli = &cobra.Command{
	Use:   "arc-processing-client",
	Short: "CLI client for arc-processing (coordinator for ARC wallet merchant payments)",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiURL = viper.GetString("api.http.address")
		if !strings.HasPrefix(apiURL, "http") {
			apiURL = "http://" + apiURL
		}
	},
}

func main() {
	cobra.OnInitialize(func() {
		viper.BindPFlag("api.http.address", cli.PersistentFlags().Lookup("api-url"))

		if err := settings.LocateAndReadConfigFile(); err == nil {
			log.Printf(
				"Loaded config file %s, will try to use API address from it "+
					"if not given explicitly",
				viper.ConfigFileUsed(),
			)
		}
	})

	cli.PersistentFlags().StringVarP(&apiURLArg, "api-url", "u", "http://localhost:8000", "url of arc-processing API")

	if err := cli.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
