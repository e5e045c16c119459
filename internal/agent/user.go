package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tom-bou/speech-schedulin-assistant/internal/model/chat"
)

// UserAgent is the human's proxy in the group chat: when asked to
// speak it blocks on one line of console input and republishes it
// verbatim.
type UserAgent struct {
	description string
	in          *bufio.Reader
	out         io.Writer
}

// NewUserAgent reads from in (stdin when nil).
func NewUserAgent(in io.Reader) *UserAgent {
	if in == nil {
		in = os.Stdin
	}
	return &UserAgent{
		description: "User for providing final approval and giving scheduling requests",
		in:          bufio.NewReader(in),
		out:         os.Stdout,
	}
}

func (a *UserAgent) Name() string        { return UserRoleName }
func (a *UserAgent) Description() string { return a.description }

// ReceiveMessage is a no-op; the manager already prints every delivered
// message to the console.
func (a *UserAgent) ReceiveMessage(context.Context, chat.Message) {}

// Speak prompts for and returns one line of user input.
func (a *UserAgent) Speak(_ context.Context) (chat.Message, error) {
	fmt.Fprint(a.out, "Enter your message, type 'APPROVE' to conclude the task: ")
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return chat.Message{}, fmt.Errorf("read user input: %w", err)
	}
	return chat.Message{Source: UserRoleName, Content: strings.TrimSpace(line)}, nil
}
