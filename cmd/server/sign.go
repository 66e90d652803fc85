package main

import (
	"fmt"
	"strings"

	"github.com/kepacart/backend/internal/domain"
	"github.com/spf13/cobra"
)

var signMethod string

var signCmd = &cobra.Command{
	Use:   "sign <path?query>",
	Short: "Print the Authorization header for a marketplace request",
	Long: `Print the Authorization header for a marketplace request.

The argument is the signed part of the URL, for example:
  kepacart sign "/v2/providers/affiliate_open_api/apis/openapi/v1/products/search?keyword=%EC%9A%B0%EC%9C%A0&limit=10"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if a.cfg.Coupang.AccessKey == "" || a.cfg.Coupang.SecretKey == "" {
			return domain.ErrSigningKeyMissing
		}

		auth := a.client.Signer().Authorization(strings.ToUpper(signMethod), args[0])
		_, err = fmt.Fprintln(cmd.OutOrStdout(), auth)
		return err
	},
}

func init() {
	signCmd.Flags().StringVarP(&signMethod, "method", "X", "GET", "HTTP method to sign")
	rootCmd.AddCommand(signCmd)
}
