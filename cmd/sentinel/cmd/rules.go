package cmd

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"io"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/sentinel/internal/rules"
)

// ruleInfo is the JSON shape of one rule in `sentinel rules --format json`.
type ruleInfo struct {
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Category         string            `json:"category"`
	DefaultSeverity  rules.Severity    `json:"defaultSeverity"`
	EnabledByDefault bool              `json:"enabledByDefault"`
	Fixable          bool              `json:"fixable"`
	HasSuggestions   bool              `json:"hasSuggestions"`
	DocURL           string            `json:"docUrl,omitempty"`
	Messages         map[string]string `json:"messages,omitempty"`
	Schema           map[string]any    `json:"schema,omitempty"`
}

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List available rules",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json",
				Value:   "text",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			infos := collectRules(rules.DefaultRegistry())
			w := cmd.Root().Writer
			switch cmd.String("format") {
			case "json":
				return json.MarshalWrite(w, infos,
					jsontext.WithIndentPrefix(""),
					jsontext.WithIndent("  "),
				)
			case "text":
				return printRules(w, infos)
			default:
				return cli.Exit(fmt.Sprintf("Error: unknown format %q (valid: text, json)", cmd.String("format")), ExitConfigError)
			}
		},
	}
}

func collectRules(registry *rules.Registry) []ruleInfo {
	all := registry.All()
	infos := make([]ruleInfo, 0, len(all))
	for _, r := range all {
		meta := r.Metadata()
		info := ruleInfo{
			Code:             meta.Code,
			Name:             meta.Name,
			Description:      meta.Description,
			Category:         meta.Category,
			DefaultSeverity:  meta.DefaultSeverity,
			EnabledByDefault: meta.EnabledByDefault,
			Fixable:          meta.Fixable,
			HasSuggestions:   meta.HasSuggestions,
			DocURL:           meta.DocURL,
			Messages:         meta.Messages,
		}
		if cr, ok := r.(rules.ConfigurableRule); ok {
			info.Schema = cr.Schema()
		}
		infos = append(infos, info)
	}
	return infos
}

func printRules(w io.Writer, infos []ruleInfo) error {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("Rule", "Severity", "Default", "Fix", "Description")
	for _, info := range infos {
		t.Row(info.Code, info.DefaultSeverity.String(), strconv.FormatBool(info.EnabledByDefault), fixKind(info), info.Description)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func fixKind(info ruleInfo) string {
	switch {
	case info.Fixable && info.HasSuggestions:
		return "fix, suggestion"
	case info.Fixable:
		return "fix"
	case info.HasSuggestions:
		return "suggestion"
	default:
		return "-"
	}
}
