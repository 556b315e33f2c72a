// Command keyword-hash prints a bcrypt hash for ADMIN_KEYWORD_HASH so the
// plain admin keyword never has to live in the environment.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var keyword string
	var cost int

	flagSet := pflag.NewFlagSet("keyword-hash", pflag.ContinueOnError)
	flagSet.StringVar(&keyword, "keyword", "", "admin keyword (read from stdin when empty)")
	flagSet.IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if keyword == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read keyword: %w", err)
		}
		keyword = strings.TrimRight(line, "\r\n")
	}
	if keyword == "" {
		return fmt.Errorf("keyword must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(keyword), cost)
	if err != nil {
		return fmt.Errorf("hash keyword: %w", err)
	}

	// 单引号让 godotenv 不展开 hash 中的 $
	fmt.Fprintf(stdout, "ADMIN_KEYWORD_HASH='%s'\n", hash)
	return nil
}
