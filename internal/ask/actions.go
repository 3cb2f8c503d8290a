package ask

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dtnitsch/cbsl-assistant/internal/common"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// AskAction answers one question from the command line. The answer text is
// printed by default; --json and --yaml print the whole outcome. A fatal
// outcome exits with status 1.
func AskAction(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	app, err := common.NewApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	out := app.Pipeline.Ask(c.Context, query)
	if out.Err != nil {
		app.Logger.Debug("outcome error", zap.Error(out.Err))
	}

	w := c.App.Writer
	switch {
	case c.Bool("json"):
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal outcome: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case c.Bool("yaml"):
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal outcome: %w", err)
		}
		fmt.Fprint(w, string(data))
	default:
		fmt.Fprintln(w, out.Answer)
		if out.Source != "" {
			fmt.Fprintf(w, "\nSource: %s\n", out.Source)
		}
	}

	if out.Fatal() {
		return cli.Exit("", 1)
	}
	return nil
}
