package settings

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arcnetwork/arc-processing/arc"
)

// Settings provides every setting the processing app reads. Settings can
// come from the command line or from the configuration file; parts of the
// app get them by calling Get* methods
type Settings interface {
	GetString(key string) string
	GetStringSlice(key string) []string
	GetInt(key string) int
	GetInt64(key string) int64
	GetBool(key string) bool
	GetURL(key string) string
	GetStringMandatory(key string) string
	GetAmount(key string) arc.Amount
	ConfigFileUsed() string
	GetViper() *viper.Viper
}

type settings struct {
	cfgFile string
	viper   *viper.Viper
}

// NewSettings creates new Settings instance. Settings come from command line
// and from config file, so this function accepts a path to config file and
// a pointer to root cobra.Command.
// In case given path to config file is an empty string, config will be auto -
// searched: currently, directories "/etc/arc-processing" and current
// working directory will be checked for a file named config.{yml,json,...}.
// (possible extensions are ones supported by viper)
func NewSettings(cfgFile string, cli *cobra.Command) (Settings, error) {
	s := &settings{cfgFile: cfgFile, viper: viper.New()}
	if cfgFile != "" {
		// Use config file from the flag.
		s.viper.SetConfigFile(cfgFile)
	} else {
		// Search config in current directory and /etc/arc-processing
		s.viper.AddConfigPath("/etc/arc-processing")
		s.viper.AddConfigPath(".")
		s.viper.SetConfigName("config")
	}

	err := s.viper.ReadInConfig()

	if err != nil {
		return s, err
	}
	s.initConfig(cli)
	return s, nil
}

// LocateAndReadConfigFile searches standard locations for a config file and
// reads it into the global viper instance. It is used by the CLI client,
// which only needs the API address and carries no full Settings object
func LocateAndReadConfigFile() error {
	viper.AddConfigPath("/etc/arc-processing")
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}
