package main

import (
	"errors"
	"io"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// prompter asks the user for the answers a command cannot take from flags.
type prompter interface {
	Password(label string) (string, error)
	Confirm(label string) (bool, error)
}

// newPrompter is swapped out by tests that script the answers.
var newPrompter = func(cmd *cobra.Command) prompter {
	return &terminalPrompter{
		in:  io.NopCloser(cmd.InOrStdin()),
		out: nopWriteCloser{cmd.ErrOrStderr()},
	}
}

type terminalPrompter struct {
	in  io.ReadCloser
	out io.WriteCloser
}

func (p *terminalPrompter) Password(label string) (string, error) {
	validate := func(input string) error {
		if input == "" {
			return errors.New("empty")
		}
		return nil
	}

	prompt := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: validate,
		Stdin:    p.in,
		Stdout:   p.out,
	}
	return prompt.Run()
}

func (p *terminalPrompter) Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     p.in,
		Stdout:    p.out,
	}
	_, err := prompt.Run()
	return confirmed(err)
}

// confirmed maps the outcome of a confirm prompt. promptui reports a "no"
// answer as ErrAbort.
func confirmed(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort), errors.Is(err, promptui.ErrEOF):
		return false, nil
	default:
		return false, err
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
