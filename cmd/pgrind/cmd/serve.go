package cmd

import (
	"fmt"

	"github.com/pgrind/pgrind/pkg/api"
	"github.com/pgrind/pgrind/pkg/config"
	"github.com/pgrind/pgrind/pkg/trace"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the pgrind REST API server. Trace files are opened per session
and queried by function number.

Examples:
  pgrind serve --port 8093
  pgrind serve --config /etc/pgrind/config.yaml --api-key mysecret`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg := config.DefaultConfig()
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Error loading config: %v\n", err)
				return
			}
			cfg = loaded
		}

		// Flags override whatever the config file says.
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if cmd.Flags().Changed("format") {
			cfg.DefaultFormat, _ = cmd.Flags().GetString("format")
		}

		format, err := trace.ParseCostFormat(cfg.DefaultFormat)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		serverConfig := api.ServerConfig{
			Bind:          cfg.Bind,
			Port:          cfg.Port,
			APIKey:        cfg.APIKey,
			DefaultFormat: format,
		}
		if err := api.StartServer(serverConfig); err != nil {
			fmt.Printf("Server error: %v\n", err)
		}
	},
}

func init() {
	serveCmd.Flags().String("config", "", "Path to the config file")
	serveCmd.Flags().IntP("port", "p", 8093, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("api-key", "", "Require this X-API-Key header on API requests")
	rootCmd.AddCommand(serveCmd)
}
