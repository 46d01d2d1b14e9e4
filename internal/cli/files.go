package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/Gammanik/resource-storage/internal/metastore"
	"github.com/spf13/cobra"
)

func (a *app) lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			files, err := c.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "HASH\tNAME\tPATH\tSIZE\tCHUNKS\tROLE")
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d/%d\t%s\n",
					f.Hash, f.Name, f.Path, f.Size, len(f.Chunks), f.ChunkCount, f.Role)
			}
			return tw.Flush()
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <hash>",
		Short: "Show which chunks the server is missing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			st, err := c.InitUpload(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch {
			case st.All:
				a.printf("%s: all chunks missing\n", st.State)
			case len(st.Missing) == 0:
				a.printf("%s\n", st.State)
			default:
				a.printf("%s: %v\n", st.State, st.Missing)
			}
			return nil
		},
	}
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <hash>",
		Short: "Show stored metadata of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			rec, err := c.Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "hash:\t%s\n", rec.Hash)
			fmt.Fprintf(tw, "name:\t%s\n", rec.Name)
			fmt.Fprintf(tw, "path:\t%s\n", rec.Path)
			fmt.Fprintf(tw, "size:\t%d\n", rec.Size)
			fmt.Fprintf(tw, "chunks:\t%d/%d\n", len(rec.Chunks), rec.ChunkCount)
			fmt.Fprintf(tw, "role:\t%s\n", rec.Role)
			if rec.Key != "" {
				fmt.Fprintf(tw, "key:\t%s\n", rec.Key)
			}
			return tw.Flush()
		},
	}
}

func (a *app) mergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <hash>",
		Short: "Merge uploaded chunks into the final file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			res, err := c.Merge(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printf("%s\n", res)
			return nil
		},
	}
}

func (a *app) permCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "perm <hash> <public|key>",
		Short:     "Change the access role of a file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(metastore.RolePublic), string(metastore.RoleKey)},
		RunE: func(cmd *cobra.Command, args []string) error {
			role := metastore.Role(args[1])
			if !role.Valid() {
				return fmt.Errorf("unknown role %q, want public or key", args[1])
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.UpdatePermission(cmd.Context(), args[0], role); err != nil {
				return err
			}
			a.printf("UPDATED\n")
			return nil
		},
	}
}

func (a *app) keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen <hash>",
		Short: "Issue a new access key for a file with role key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			key, err := c.GenerateKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printf("%s\n", key)
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <hash>",
		Short: "Delete a file with its chunks and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("DELETED\n")
			return nil
		},
	}
}
