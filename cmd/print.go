package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

// printMarkdown renders md for the terminal, or prints it as is when plain
// is set or the rendering fails.
func printMarkdown(md string, plain bool) {
	if plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
