package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "restaurant-ordering",
	Short: "Customer ordering site for a single restaurant",
	Long: `restaurant-ordering serves the customer ordering form: a menu and cart,
contact and pickup details, order submission to the restaurant's backend,
order confirmation and sharing, and order history lookup. It integrates with
LINE LIFF when opened inside the LINE app.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded into the environment if present")
	rootCmd.AddCommand(serveCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
