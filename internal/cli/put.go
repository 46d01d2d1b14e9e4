package cli

import (
	"github.com/Gammanik/resource-storage/internal/client"
	"github.com/Gammanik/resource-storage/internal/utils"
	"github.com/spf13/cobra"
)

func (a *app) putCmd() *cobra.Command {
	var remotePath string
	var chunkSize int64

	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Upload a file, resuming a previous partial upload",
		Long: `Hashes the file, asks the server which chunks it is missing, sends only
those chunks and requests a merge. Running put again after an interrupted
upload continues where it stopped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}

			res, err := c.PutFile(cmd.Context(), args[0], client.PutOptions{
				RemotePath: remotePath,
				ChunkSize:  chunkSize,
				Progress: func(sent, total int) {
					a.printf("\rchunk %d/%d", sent, total)
					if sent == total {
						a.printf("\n")
					}
				},
			})
			if err != nil {
				return err
			}

			a.printf("%s %s (uploaded %d, skipped %d)\n", res.Result, res.Hash, res.Uploaded, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&remotePath, "path", "d", "", "directory on the server")
	cmd.Flags().Int64Var(&chunkSize, "chunk-size", utils.DefaultChunkSize, "chunk size in bytes")
	return cmd
}
