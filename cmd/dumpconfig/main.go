// Debugging command: prints the resolved configuration with secrets redacted.
package main

import (
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ncecere/cursor_port_sync/internal/config"
)

func main() {
	configFile := flag.String("config", "", "config file path")
	flag.Parse()

	cfg, err := config.Load(config.Options{ConfigFile: *configFile})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	cfg.Cursor.APIKey = redact(cfg.Cursor.APIKey)
	cfg.Port.ClientSecret = redact(cfg.Port.ClientSecret)
	cfg.Database.URL = redact(cfg.Database.URL)

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		log.Fatalf("encode config: %v", err)
	}
	_ = enc.Close()
}

func redact(v string) string {
	if v == "" {
		return ""
	}
	return "<redacted>"
}
