// Package cli команды resourcectl
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Gammanik/resource-storage/internal/client"
	"github.com/Gammanik/resource-storage/internal/logging"
	"github.com/spf13/cobra"
)

type app struct {
	server    string
	tokenFile string
	proxy     string
	timeout   time.Duration
	verbose   bool

	out io.Writer
	in  io.Reader
}

// NewRootCmd собирает дерево команд resourcectl
func NewRootCmd(out io.Writer, in io.Reader) *cobra.Command {
	a := &app{out: out, in: in}

	root := &cobra.Command{
		Use:           "resourcectl",
		Short:         "Client for the resource storage server",
		Long:          "Uploads files to the resource storage server with resumable chunked uploads and manages stored files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(in)

	root.PersistentFlags().StringVarP(&a.server, "server", "s", envOr("RESOURCE_SERVER", "http://localhost:3000"), "server base URL")
	root.PersistentFlags().StringVar(&a.tokenFile, "token-file", envOr("RESOURCE_TOKEN_FILE", defaultTokenFile()), "file with the saved login token")
	root.PersistentFlags().StringVar(&a.proxy, "proxy", os.Getenv("RESOURCE_PROXY"), "SOCKS5 proxy URL, e.g. socks5://127.0.0.1:9050")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 5*time.Minute, "request timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		a.loginCmd(),
		a.putCmd(),
		a.getCmd(),
		a.lsCmd(),
		a.statusCmd(),
		a.infoCmd(),
		a.mergeCmd(),
		a.permCmd(),
		a.keygenCmd(),
		a.rmCmd(),
	)
	return root
}

// client клиент с сохраненным токеном, если он есть
func (a *app) client() (*client.HTTPClient, error) {
	opts := []client.Option{client.WithTimeout(a.timeout)}
	if a.proxy != "" {
		opts = append(opts, client.WithProxy(a.proxy))
	}
	if a.verbose {
		opts = append(opts, client.WithLogger(logging.NewJSON(os.Stderr, "debug")))
	}

	token := os.Getenv("RESOURCE_TOKEN")
	if token == "" {
		t, err := loadToken(a.tokenFile)
		if err != nil {
			return nil, err
		}
		token = t
	}
	if token != "" {
		opts = append(opts, client.WithToken(token))
	}

	return client.New(a.server, opts...)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".resourcectl-token"
	}
	return filepath.Join(dir, "resourcectl", "token")
}
