package main

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/diillson/mock-api-server/internal/adapter/wire"
	"github.com/spf13/cobra"
)

var (
	callData    string
	callHeaders bool
)

var callCmd = &cobra.Command{
	Use:   "call <method> <path>",
	Short: "Chama uma rota mock pelo endpoint de despacho",
	Example: `  mockctl call GET /users
  mockctl call POST /login --data '{"user":"a"}' -i`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body []byte
		if callData != "" {
			body = []byte(callData)
		}

		result, err := newClient().Call(cmd.Context(), args[0], args[1], body)
		if err != nil {
			return err
		}

		fmt.Printf("%d %s (%s)\n", result.StatusCode, http.StatusText(result.StatusCode), result.Duration.Round(time.Millisecond))
		if callHeaders {
			names := make([]string, 0, len(result.Header))
			for name := range result.Header {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s: %s\n", name, strings.Join(result.Header[name], ", "))
			}
			fmt.Println()
		}
		if len(result.Body) > 0 {
			os.Stdout.Write(result.Body)
			fmt.Println()
		}
		return nil
	},
}

func printRouteTable(routes []wire.Route) {
	if len(routes) == 0 {
		fmt.Println("Nenhuma rota registrada")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMETHOD\tPATH\tSTATUS\tDELAY\tENABLED\tUPDATED")
	for _, r := range routes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dms\t%t\t%s\n",
			r.ID, r.Method, r.Path, r.Status, r.DelayMs, r.Enabled, r.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}

func init() {
	callCmd.Flags().StringVar(&callData, "data", "", "Corpo da requisição")
	callCmd.Flags().BoolVarP(&callHeaders, "include", "i", false, "Mostrar os cabeçalhos da resposta")
	rootCmd.AddCommand(callCmd)
}
