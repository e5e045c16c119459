package agent

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tom-bou/speech-schedulin-assistant/internal/model/chat"
	chatservice "github.com/tom-bou/speech-schedulin-assistant/internal/service/chat"
	speechservice "github.com/tom-bou/speech-schedulin-assistant/internal/service/speech"
	"github.com/tom-bou/speech-schedulin-assistant/pkg/console"
)

// RoleSelector decides who speaks next given the eligible roles and the
// formatted history. *Selector is the production implementation.
type RoleSelector interface {
	SelectNext(ctx context.Context, eligible []Descriptor, history string) (string, error)
}

// Manager owns the shared history and drives the group chat: deliver a
// message, check for termination, ask the selector who speaks next,
// dispatch, repeat. The loop is strictly sequential; at most one role
// executes at a time.
type Manager struct {
	participants []Participant
	selector     RoleSelector
	store        *chatservice.Service
	printer      *console.Printer

	speech    *speechservice.Service
	speechDir string

	session     chat.Session
	history     []chat.Message
	previous    string
	maxMessages int
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithSpeech enables text-to-speech for non-user replies, writing audio
// files into dir.
func WithSpeech(svc *speechservice.Service, dir string) ManagerOption {
	return func(m *Manager) {
		m.speech = svc
		m.speechDir = dir
	}
}

// NewManager builds a manager for one session. Participants keep their
// registration order; the selector's tie-break depends on it.
func NewManager(selector RoleSelector, store *chatservice.Service, printer *console.Printer, maxMessages int, opts ...ManagerOption) *Manager {
	m := &Manager{
		selector:    selector,
		store:       store,
		printer:     printer,
		maxMessages: maxMessages,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a participant. Names must be unique.
func (m *Manager) Register(p Participant) error {
	for _, existing := range m.participants {
		if existing.Name() == p.Name() {
			return fmt.Errorf("participant %s already registered", p.Name())
		}
	}
	m.participants = append(m.participants, p)
	return nil
}

// Eligible returns the descriptors of every participant except the
// previous speaker, in registration order.
func (m *Manager) Eligible() []Descriptor {
	eligible := make([]Descriptor, 0, len(m.participants))
	for _, p := range m.participants {
		if p.Name() == m.previous {
			continue
		}
		eligible = append(eligible, Descriptor{Name: p.Name(), Description: p.Description()})
	}
	return eligible
}

// Run drives the conversation starting from the first user message.
// It returns nil on approval or when the message ceiling is reached,
// and an error on a fatal condition such as an invalid selection.
func (m *Manager) Run(ctx context.Context, firstMessage chat.Message) error {
	session, err := m.store.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	m.session = session
	log.Printf("[groupchat] session %s started", session.ID)

	msg := firstMessage
	for {
		if err := m.deliver(ctx, msg); err != nil {
			return err
		}

		if msg.Source == UserRoleName && IsApproval(msg.Content) {
			log.Printf("[groupchat] approval received, session %s complete", m.session.ID)
			return nil
		}

		if len(m.history) >= m.maxMessages {
			log.Printf("[groupchat] message ceiling %d reached, ending session %s", m.maxMessages, m.session.ID)
			return nil
		}

		name, err := m.selector.SelectNext(ctx, m.Eligible(), m.formatHistory())
		if err != nil {
			return err
		}

		speaker := m.lookup(name)
		if speaker == nil {
			return fmt.Errorf("%w: selector returned unregistered role %q", ErrInvalidSelection, name)
		}
		m.previous = name

		reply, err := speaker.Speak(ctx)
		if err != nil {
			return fmt.Errorf("role %s failed to speak: %w", name, err)
		}
		msg = reply
	}
}

// deliver appends the message to the shared history, persists it, fans
// it out to every other participant's private view, and prints it.
func (m *Manager) deliver(ctx context.Context, msg chat.Message) error {
	msg.SessionID = m.session.ID
	m.history = append(m.history, msg)

	if err := m.store.SaveMessage(ctx, msg); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	for _, p := range m.participants {
		if p.Name() == msg.Source {
			continue
		}
		p.ReceiveMessage(ctx, msg)
	}

	m.printer.PrintMessage(msg.Source, msg.Content)
	m.voice(ctx, msg)
	return nil
}

// voice synthesizes non-user replies when speech is enabled. Failures
// only log; the conversation never blocks on audio.
func (m *Manager) voice(ctx context.Context, msg chat.Message) {
	if m.speech == nil || !m.speech.Enabled() || msg.Source == UserRoleName || msg.Content == "" {
		return
	}

	audio, err := m.speech.Synthesize(ctx, msg.Content)
	if err != nil {
		log.Printf("[speech] synthesis failed for %s: %v", msg.Source, err)
		return
	}

	if err := os.MkdirAll(m.speechDir, 0o755); err != nil {
		log.Printf("[speech] cannot create output dir %s: %v", m.speechDir, err)
		return
	}

	name := fmt.Sprintf("%03d-%s.mp3", len(m.history), strings.ToLower(msg.Source))
	path := filepath.Join(m.speechDir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		log.Printf("[speech] cannot write %s: %v", path, err)
		return
	}
	log.Printf("[speech] wrote %s", path)
}

func (m *Manager) lookup(name string) Participant {
	for _, p := range m.participants {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (m *Manager) formatHistory() string {
	lines := make([]string, 0, len(m.history))
	for _, msg := range m.history {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Source, msg.Content))
	}
	return strings.Join(lines, "\n")
}
