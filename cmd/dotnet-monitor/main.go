// Command dotnet-monitor provisions API keys for the monitoring service.
package main

import "github.com/AntonPalyok/dotnet-monitor/cmd/dotnet-monitor/cmd"

func main() {
	cmd.Execute()
}
