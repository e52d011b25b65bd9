package cmd

import (
	"github.com/gehenna/gehenna/internal/app"
	"github.com/gehenna/gehenna/internal/config"
)

func init() {
	rootCmd.AddCommand(
		serviceCommand("registry", "Run the name registry REST API (default port "+config.RegistryPort+")", config.RegistryPort, app.RunRegistry),
		serviceCommand("gateway", "Run the HTML gateway in front of the registry (default port "+config.GatewayPort+")", config.GatewayPort, app.RunGateway),
	)
}
