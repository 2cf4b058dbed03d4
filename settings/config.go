package settings

import (
	"log"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arcnetwork/arc-processing/arc"
)

func (s *settings) initConfig(cli *cobra.Command) {
	// let CLI args override config params
	s.viper.BindPFlag("merchant.callback.url", cli.Flags().Lookup("merchant-callback-url"))
	s.viper.BindPFlag("api.http.address", cli.Flags().Lookup("http-address"))
	s.viper.BindPFlag("storage.type", cli.Flags().Lookup("storage-type"))

	// defaults
	s.viper.SetDefault("api.http.address", "127.0.0.1:8000")
	s.viper.SetDefault("storage.type", "memory")
	s.viper.SetDefault("merchant.name", "curve-merchant-1")
	s.viper.SetDefault("backend.url", "http://localhost:8000")
	s.viper.SetDefault("camera.frame.path", "/var/lib/arc-processing/frame.jpg")
	s.viper.SetDefault("merchant.callback.backoff", 10)
	s.viper.SetDefault("popup.url", "arc://popup")
	s.viper.SetDefault("popup.width", 400)
	s.viper.SetDefault("popup.height", 600)
	s.viper.SetDefault("badge.pending.text", "PAY")
	s.viper.SetDefault("badge.pending.color", "#FF6B35")
	s.viper.SetDefault("session.settle.delay", 1000)
	s.viper.SetDefault("session.countdown.seconds", 5)
	s.viper.SetDefault("session.cancel.close.delay", 1500)
}

func (s *settings) GetString(key string) string {
	return s.viper.GetString(key)
}

func (s *settings) GetStringSlice(key string) []string {
	return s.viper.GetStringSlice(key)
}

func (s *settings) GetInt(key string) int {
	return s.viper.GetInt(key)
}

func (s *settings) GetInt64(key string) int64 {
	return s.viper.GetInt64(key)
}

func (s *settings) GetBool(key string) bool {
	return s.viper.GetBool(key)
}

func (s *settings) GetURL(key string) string {
	urlValue := s.viper.GetString(key)
	if _, err := url.ParseRequestURI(urlValue); err != nil {
		log.Fatalf(
			"%s should be set to a valid URL. URL %s",
			key,
			err,
		)
	}
	return urlValue
}

func (s *settings) GetStringMandatory(key string) string {
	value := s.viper.GetString(key)

	if value == "" {
		log.Fatalf("Error: setting %s is required", key)
	}
	return value
}

func (s *settings) GetAmount(key string) arc.Amount {
	value := s.viper.GetString(key)
	if value == "" {
		return 0
	}
	amount, err := arc.AmountFromStringedFloat(value)
	if err != nil {
		log.Fatalf("Error: setting %s is not a valid amount: %s", key, err)
	}
	return amount
}

func (s *settings) ConfigFileUsed() string {
	return s.viper.ConfigFileUsed()
}

func (s *settings) GetViper() *viper.Viper {
	return s.viper
}
