package settings

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

// ReadSettingsAndRun reads settings from both command-line options and the
// configuration file and then calls funcToRun. It should be used by the
// entry point of whatever program uses settings; any code that uses settings
// should be called from funcToRun
func ReadSettingsAndRun(funcToRun func(s Settings)) {
	var s Settings
	var cfgFile string

	cli := &cobra.Command{
		Use:   "arc-processing",
		Short: "Coordinator for ARC wallet merchant payments",
	}

	cli.Run = func(cmd *cobra.Command, args []string) {
		funcToRun(s)
	}

	cobra.OnInitialize(func() {
		var err error
		s, err = NewSettings(cfgFile, cli)
		if err != nil {
			log.Fatalf("Can't read config %s", err)
		}
	})

	cli.Flags().StringVarP(&cfgFile, "config-file", "c", "", "config file (default is ./config.yaml)")
	cli.Flags().StringP("merchant-callback-url", "m", "", "callback url for merchant payment events")
	cli.Flags().StringP("http-address", "a", "", "host for HTTP API to listen on")
	cli.Flags().StringP("storage-type", "s", "", "type of storage to use")

	if err := cli.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
