package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword подменяется в тестах, чтобы не трогать терминал
var readPassword = term.ReadPassword

// getPassword читает пароль без эха, если stdin терминал, иначе строку из in
func getPassword(w io.Writer, in io.Reader) (string, error) {
	fmt.Fprint(w, "Enter password: ")
	defer fmt.Fprintln(w)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := readPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
