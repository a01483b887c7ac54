package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/Abraxas-365/mosaic/pkg/sse"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// The decoder warns about dropped segments through logx; keep that off
	// the terminal unless asked for.
	logCfg := logx.LoadFromEnv()
	logCfg.Output = os.Stderr
	if os.Getenv("LOG_LEVEL") == "" {
		logCfg.Level = logx.LevelError
	}
	logx.SetDefaultLogger(logx.NewLogger(logCfg))

	switch os.Args[1] {
	case "chat":
		chatCmd(os.Args[2:])
	case "send":
		sendCmd(os.Args[2:])
	case "upload":
		uploadCmd(os.Args[2:])
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`chatcli - Mosaic terminal client

Usage:
  chatcli <command> [flags]

Commands:
  chat      Interactive conversation
  send      Send one message and print the reply
  upload    Add a document to the knowledge index
  version   Show version
  help      Show this help

Run 'chatcli <command> -h' for command-specific help.`)
}

func commonFlags(fs *flag.FlagSet) (*string, *time.Duration) {
	url := fs.String("url", envOr("MOSAIC_URL", "http://localhost:8080"), "Server base URL")
	timeout := fs.Duration("timeout", 90*time.Second, "Per request timeout")
	return url, timeout
}

func chatCmd(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	url, timeout := commonFlags(fs)
	threadID := fs.String("thread", "", "Continue an existing thread")
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newClient(*url, &http.Client{Timeout: *timeout})
	if err := repl(ctx, c, os.Stdin, os.Stdout, *threadID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// repl reads one message per line and streams each reply, carrying the
// thread id from one turn to the next.
func repl(ctx context.Context, c *client, in io.Reader, out io.Writer, threadID string) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "/quit", "/exit":
			return nil
		case "/new":
			threadID = ""
			fmt.Fprint(out, "(new conversation)\n> ")
			continue
		}

		tr, err := turn(ctx, c, line, threadID, out)
		if err != nil {
			return err
		}
		if tr.ThreadID != "" {
			threadID = tr.ThreadID
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func sendCmd(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	url, timeout := commonFlags(fs)
	threadID := fs.String("thread", "", "Continue an existing thread")
	_ = fs.Parse(args)

	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		fmt.Fprintln(os.Stderr, "Usage: chatcli send [flags] <message>")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newClient(*url, &http.Client{Timeout: *timeout})
	tr, err := turn(ctx, c, message, *threadID, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "thread: %s\n", tr.ThreadID)
}

// turn streams one reply to out as it arrives.
func turn(ctx context.Context, c *client, message, threadID string, out io.Writer) (*sse.Transcript, error) {
	tr := &sse.Transcript{}
	err := c.chat(ctx, message, threadID, tr, func(ev sse.Event) {
		switch ev.Kind {
		case sse.KindTextDelta:
			fmt.Fprint(out, ev.Text)
		case sse.KindStatus:
			fmt.Fprintf(out, "\n[%s]\n", ev.Message)
		case sse.KindError:
			fmt.Fprintf(out, "\n[error] %s\n", ev.Message)
		case sse.KindToolCall:
			fmt.Fprintf(out, "\n[tool] %s\n", ev.ToolName)
		case sse.KindAction:
			if ev.Action == sse.ActionBookMeeting {
				fmt.Fprintln(out, "\n[Book a meeting: the scheduling widget would open here]")
			}
		}
	})
	fmt.Fprintln(out)
	return tr, err
}

func uploadCmd(args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	url, timeout := commonFlags(fs)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: chatcli upload [flags] <file>...")
		os.Exit(1)
	}

	c := newClient(*url, &http.Client{Timeout: *timeout})
	failed := false
	for _, path := range fs.Args() {
		id, err := c.upload(context.Background(), path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✓ %s -> %s\n", path, id)
	}
	if failed {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
