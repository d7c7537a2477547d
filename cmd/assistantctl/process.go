package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"content-assistant/internal/assistant"
)

func summarizeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize FILE",
		Short: "Summarize a PDF or plain text file and extract its key points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.newService(c.cfg, c.log)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var res assistant.ProcessingResult
			if strings.EqualFold(filepath.Ext(args[0]), ".pdf") {
				res = svc.ProcessDocument(cmd.Context(), data, filepath.Base(args[0]))
			} else {
				res = svc.ProcessText(cmd.Context(), string(data))
			}
			return printResult(cmd, res, res.OK(), res.Message)
		},
	}
}

func fetchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch URL",
		Short: "Summarize the readable content of a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.newService(c.cfg, c.log)
			if err != nil {
				return err
			}
			res := svc.ProcessURL(cmd.Context(), args[0])
			return printResult(cmd, res, res.OK(), res.Message)
		},
	}
}

func askCmd(c *cli) *cobra.Command {
	var contextFile string

	ask := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Answer a question from a chat transcript",
		Long: "Answer a question using only a transcript file. Each turn starts with\n" +
			"\"user:\" or \"assistant:\"; other lines continue the previous turn.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var transcript assistant.Transcript
			if contextFile != "" {
				data, err := os.ReadFile(contextFile)
				if err != nil {
					return err
				}
				transcript, err = parseTranscript(string(data))
				if err != nil {
					return err
				}
			}
			svc, err := c.newService(c.cfg, c.log)
			if err != nil {
				return err
			}
			res := svc.AnswerQuestion(cmd.Context(), args[0], transcript)
			return printResult(cmd, res, res.OK(), res.Message)
		},
	}
	ask.Flags().StringVar(&contextFile, "context", "", "transcript file to answer from")
	return ask
}

var errNoTurn = errors.New("transcript must start with a user: or assistant: line")

// parseTranscript keeps blank lines inside a turn; each turn is trimmed only
// at its ends.
func parseTranscript(text string) (assistant.Transcript, error) {
	var out assistant.Transcript
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		role, content, found := strings.Cut(line, ":")
		if found && assistant.Role(strings.TrimSpace(role)).Valid() {
			out = append(out, assistant.Turn{Role: assistant.Role(strings.TrimSpace(role)), Content: content})
			continue
		}
		if len(out) == 0 {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, errNoTurn
		}
		out[len(out)-1].Content += "\n" + line
	}
	for i := range out {
		out[i].Content = strings.TrimSpace(out[i].Content)
	}
	return out, nil
}

// printResult writes the result as JSON and turns an error status into a
// non-zero exit.
func printResult(cmd *cobra.Command, res any, ok bool, message string) error {
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("processing failed: %s", message)
	}
	return nil
}
