// Package cli provides a terminal-based frontend for the consolebox widget.
//
// It renders the console box inside an actual CLI terminal: raw mode input,
// an alternate-screen ANSI renderer with per-row differential updates, and
// OS clipboard bridging.
//
// # Basic Usage
//
//	import "github.com/mkeddie/consolebox/cli"
//
//	con, err := cli.New(cli.Options{Prompt: "$ "})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	con.Buffer().SetLineEnteredCallback(func() {
//	    line := con.Buffer().CurrentLine()
//	    // handle the entered line, append output items...
//	})
//
//	if err := con.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer con.Stop()
//	con.Wait()
//
// # Keys
//
//   - Enter submits the current line
//   - Up/Down cycle the history carousel
//   - Tab cycles completion candidates
//   - Ctrl+C / Ctrl+X / Ctrl+V bridge the OS clipboard
//   - Shift+PageUp / Shift+PageDown scroll the viewport
//   - Ctrl+Q quits
package cli
