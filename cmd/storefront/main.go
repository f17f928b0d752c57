// Command storefront runs the Motlu Pets storefront API.
//
//	@title						Motlu Pets Storefront API
//	@version					1.0
//	@description				Catalog, cart, checkout and order management for the Motlu Pets store.
//	@BasePath					/
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						accessToken
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/motlupets/storefront/docs"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Motlu Pets storefront API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
