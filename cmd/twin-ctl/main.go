package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"twin/internal/bridge"
	"twin/internal/config"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup, including closing the
// websocket, happens before the process exits.
func run() int {
	url := flag.StringP("url", "u", "ws://localhost:6000/ws", "Bridge websocket URL")
	history := flag.StringArrayP("history", "H", nil, "Previous conversation turn (repeatable)")
	timeout := flag.DurationP("timeout", "t", 2*time.Minute, "How long to wait for the reply")
	logLevel := flag.StringP("log", "l", "warn", "Log level")
	flag.Parse()

	config.SetupLogger(os.Stderr, *logLevel)

	message := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if message == "" {
		fmt.Fprintln(os.Stderr, "usage: twin-ctl [flags] <message>")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c, err := bridge.Dial(ctx, *url, "twin-ctl")
	if err != nil {
		fmt.Fprintln(os.Stderr, "twin-bridge not reachable:", err)
		return 1
	}
	defer c.Close()

	reply, err := c.Ask(ctx, message, *history)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	fmt.Println(reply)
	return 0
}
