package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/croxford/smbls/pkg/smb"
)

// runShell reads targets interactively and enumerates each with the
// credentials from the command line. A line is either a bare host or a
// full smb:// connection string.
func runShell(ctx context.Context, base smb.Options) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "smbls> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Errorf("start shell: %v\n", err)
		return
	}
	defer rl.Close()

	fmt.Printf("smbls %s interactive mode. Enter a host per line, 'help' for help.\n", version)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return
		case line == "help":
			fmt.Println("  <host>            enumerate shares using the command-line credentials")
			fmt.Println("  smb://...         enumerate with credentials from the connection string")
			fmt.Println("  exit | quit       leave")
			continue
		}

		opts := base
		if strings.HasPrefix(line, "smb://") {
			parsed, err := smb.ParseConnectionString(line)
			if err != nil {
				log.Errorf("%v\n", err)
				continue
			}
			parsed.Timeout = base.Timeout
			parsed.Socks5URL = base.Socks5URL
			opts = parsed
		} else {
			opts.Host = line
		}

		if err := enumerate(ctx, opts); err != nil {
			log.Errorf("%s: %v\n", opts.Host, err)
		}
	}
}
