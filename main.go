package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cellengine/cellengine/engine"
	"github.com/cellengine/cellengine/internal/notify"
	"github.com/cellengine/cellengine/internal/sheet"
	"github.com/cellengine/cellengine/sheetcalc"
	"github.com/cellengine/cellengine/sheetrepl"
	"github.com/cellengine/cellengine/sheetserve"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sub := os.Args[1]
	switch sub {
	case "-h", "--help", "help":
		usage()
		return
	case "calc":
		os.Exit(calcCommand(os.Args[2:]))
	case "serve":
		os.Exit(serveCommand(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", sub)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  cellengine <command> [arguments]\n")
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  calc <file.csv> [formula...]   load a CSV sheet, evaluate, and either\n")
	fmt.Fprintf(os.Stderr, "                                  print batch formula results or start a REPL\n")
	fmt.Fprintf(os.Stderr, "  serve [addr] [assets-dir]      start the websocket spreadsheet server\n")
	fmt.Fprintf(os.Stderr, "  help                            show this help message\n")
}

// calcCommand mirrors original_source/drspread_cli.c: load a CSV sheet,
// then either evaluate each trailing argument as a one-off formula
// string and print its result, or evaluate the sheet once, dump it, and
// hand off to an interactive prompt.
func calcCommand(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "calc: missing CSV file")
		return 2
	}
	ctx := engine.NewContext(sheetcalc.NullOps{})
	sht := ctx.CreateSheet("Sheet1")
	if err := sheetcalc.LoadCSV(ctx, sht, args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "calc: %v\n", err)
		return 1
	}

	if len(args) > 1 {
		for _, formula := range args[1:] {
			kind, num, str := ctx.EvaluateString(sht, 0, 0, formula)
			printCalcResult(kind, num, str)
		}
		return 0
	}

	ctx.EvaluateFormulas([]sheet.Handle{sht})
	sheetcalc.WriteDisplay(ctx, sht, os.Stdout)
	sheetrepl.Run(ctx, sht, os.Stdin, os.Stdout)
	return 0
}

func printCalcResult(kind sheet.CachedKind, num float64, str string) {
	switch kind {
	case sheet.CachedNull:
		fmt.Println()
	case sheet.CachedNumber:
		fmt.Println(formatCalcNumber(num))
	case sheet.CachedString:
		fmt.Printf("'%s'\n", str)
	default:
		fmt.Println("err")
	}
}

func formatCalcNumber(v float64) string {
	if float64(int64(v)) == v {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// serveCommand starts the websocket spreadsheet host. An optional second
// argument points at the static asset directory to serve at "/".
func serveCommand(args []string) int {
	addr := ":8080"
	assets := "assets/spreadsheet"
	if len(args) > 0 {
		addr = args[0]
		addr = strings.Replace(addr, "localhost", "", 1)
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
	}
	if len(args) > 1 {
		assets = args[1]
	}

	srv := sheetserve.NewServer()
	if zmqAddr := os.Getenv("CELLENGINE_NOTIFY_ADDR"); zmqAddr != "" {
		n, err := notify.New(zmqAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "serve: notify: %v\n", err)
			return 1
		}
		defer n.Close()
		srv.WithNotifier(n)
	}
	if err := srv.Start(addr, assets); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		return 1
	}
	return 0
}
