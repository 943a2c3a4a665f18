package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/ciya"
	"github.com/happyhackingspace/ciya/internal/htmlutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (c *CLI) newRunCommand() *cobra.Command {
	var text string
	var modelDir string
	var isHTML bool
	var ordered bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tag every word of a text as mountain or other",
		Example: `  # Tag a sentence
  ciya run --text "We climbed Mont Blanc and then Kilimanjaro."

  # Read the text from stdin
  cat story.txt | ciya run --text -

  # Tag the visible text of an HTML page
  curl -s https://en.wikipedia.org/wiki/K2 | ciya run --text - --html

  # Print words in order with their offsets
  ciya run --text "Everest is high" --words

  # Use a custom model folder
  ciya run --text "Everest is high" --model custom-model`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(text)
			if err != nil {
				return err
			}
			if isHTML {
				if input, err = htmlutil.VisibleText(input); err != nil {
					return err
				}
			}
			slog.Debug("Input read", "bytes", len(input), "html", isHTML)

			if modelDir == "" {
				if modelDir, err = ciya.FindModelDir(); err != nil {
					return err
				}
			}
			start := time.Now()
			r, err := ciya.Load(cmd.Context(), modelDir)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "dir", modelDir, "duration", time.Since(start))

			start = time.Now()
			var out any
			if ordered {
				out, err = r.Words(input)
			} else {
				out, err = r.Recognize(input)
			}
			if err != nil {
				return err
			}
			slog.Debug("Recognition completed", "duration", time.Since(start))

			output, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(output))
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", `Text to tag, "-" reads stdin`)
	cmd.Flags().StringVar(&modelDir, "model", "", "Model folder (default: auto-detect ./model)")
	cmd.Flags().BoolVar(&isHTML, "html", false, "Treat the input as HTML and tag its visible text")
	cmd.Flags().BoolVar(&ordered, "words", false, "Print the words in order with offsets instead of a map")
	return cmd
}

// readInput returns text, or stdin when text is "-" or empty with stdin piped.
func readInput(text string) (string, error) {
	if text != "" && text != "-" {
		return text, nil
	}
	if isTerminal(os.Stdin) {
		return "", fmt.Errorf(`--text is required (use "-" with piped input)`)
	}
	slog.Debug("Reading from stdin")
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	content := strings.TrimSpace(string(body))
	if content == "" {
		return "", fmt.Errorf("stdin is empty")
	}
	return content, nil
}
