package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func (a *app) getCmd() *cobra.Command {
	var key, output string

	cmd := &cobra.Command{
		Use:   "get <hash>",
		Short: "Download a merged file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}

			var w io.Writer = a.out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			n, err := c.Read(cmd.Context(), args[0], key, w)
			if err != nil {
				if output != "" && output != "-" {
					os.Remove(output)
				}
				return err
			}
			if w != a.out {
				fmt.Fprintf(a.out, "%d bytes written to %s\n", n, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "access key for files with role key")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
