package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tom-bou/speech-schedulin-assistant/internal/model/chat"
	chatservice "github.com/tom-bou/speech-schedulin-assistant/internal/service/chat"
	"github.com/tom-bou/speech-schedulin-assistant/pkg/console"
)

type scriptedParticipant struct {
	name        string
	description string
	replies     []string
	received    []chat.Message
	spoke       int
}

func (p *scriptedParticipant) Name() string        { return p.name }
func (p *scriptedParticipant) Description() string { return p.description }

func (p *scriptedParticipant) ReceiveMessage(_ context.Context, msg chat.Message) {
	p.received = append(p.received, msg)
}

func (p *scriptedParticipant) Speak(context.Context) (chat.Message, error) {
	content := "done"
	if p.spoke < len(p.replies) {
		content = p.replies[p.spoke]
	}
	p.spoke++
	return chat.Message{Source: p.name, Content: content}, nil
}

type scriptedSelector struct {
	choices  []string
	turn     int
	eligible [][]Descriptor
}

func (s *scriptedSelector) SelectNext(_ context.Context, eligible []Descriptor, _ string) (string, error) {
	s.eligible = append(s.eligible, eligible)
	choice := s.choices[s.turn%len(s.choices)]
	s.turn++
	return choice, nil
}

func newTestManager(selector RoleSelector, participants ...Participant) *Manager {
	m := NewManager(selector, chatservice.NewService(), console.NewPrinter(), 40)
	for _, p := range participants {
		if err := m.Register(p); err != nil {
			panic(err)
		}
	}
	return m
}

func TestEligibleExcludesPreviousSpeakerOnly(t *testing.T) {
	calendarP := &scriptedParticipant{name: CalendarRoleName}
	planningP := &scriptedParticipant{name: PlanningRoleName}
	userP := &scriptedParticipant{name: UserRoleName}

	m := newTestManager(&scriptedSelector{choices: []string{PlanningRoleName}}, calendarP, planningP, userP)

	// No previous speaker yet: everyone is eligible.
	names := descriptorNames(m.Eligible())
	assert.Equal(t, []string{CalendarRoleName, PlanningRoleName, UserRoleName}, names)

	m.previous = PlanningRoleName
	names = descriptorNames(m.Eligible())
	assert.Equal(t, []string{CalendarRoleName, UserRoleName}, names)

	m.previous = CalendarRoleName
	names = descriptorNames(m.Eligible())
	assert.Equal(t, []string{PlanningRoleName, UserRoleName}, names)
}

func TestRunStopsOnApprovalWithoutDispatch(t *testing.T) {
	calendarP := &scriptedParticipant{name: CalendarRoleName}
	planningP := &scriptedParticipant{name: PlanningRoleName}
	userP := &scriptedParticipant{name: UserRoleName}
	selector := &scriptedSelector{choices: []string{PlanningRoleName}}

	m := newTestManager(selector, calendarP, planningP, userP)

	err := m.Run(context.Background(), chat.Message{Source: UserRoleName, Content: "I approve this plan!"})
	require.NoError(t, err)

	assert.Zero(t, selector.turn, "selector must not run after approval")
	assert.Zero(t, planningP.spoke)
	assert.Zero(t, calendarP.spoke)
}

func TestRunDispatchesSelectedRoleAndTracksPrevious(t *testing.T) {
	calendarP := &scriptedParticipant{name: CalendarRoleName}
	planningP := &scriptedParticipant{name: PlanningRoleName, replies: []string{"What time works for you?"}}
	userP := &scriptedParticipant{name: UserRoleName, replies: []string{"approve"}}
	selector := &scriptedSelector{choices: []string{PlanningRoleName, UserRoleName}}

	m := newTestManager(selector, calendarP, planningP, userP)

	err := m.Run(context.Background(), chat.Message{Source: UserRoleName, Content: "Plan tomorrow's schedule"})
	require.NoError(t, err)

	assert.Equal(t, 1, planningP.spoke)
	assert.Equal(t, 1, userP.spoke)
	assert.Zero(t, calendarP.spoke)

	// Turn two's eligible set must exclude the planner who just spoke.
	require.Len(t, selector.eligible, 2)
	assert.Equal(t, []string{CalendarRoleName, PlanningRoleName, UserRoleName}, descriptorNames(selector.eligible[0]))
	assert.Equal(t, []string{CalendarRoleName, UserRoleName}, descriptorNames(selector.eligible[1]))
}

func TestRunStopsAtMessageCeiling(t *testing.T) {
	planningP := &scriptedParticipant{name: PlanningRoleName, replies: []string{"still planning"}}
	userP := &scriptedParticipant{name: UserRoleName, replies: []string{"keep going"}}
	selector := &scriptedSelector{choices: []string{PlanningRoleName, UserRoleName}}

	m := NewManager(selector, chatservice.NewService(), console.NewPrinter(), 5)
	require.NoError(t, m.Register(planningP))
	require.NoError(t, m.Register(userP))

	err := m.Run(context.Background(), chat.Message{Source: UserRoleName, Content: "Plan my week"})
	require.NoError(t, err)
	assert.Len(t, m.history, 5)
}

func TestRunSingleParticipantSelectorSeesEmptyEligibleSet(t *testing.T) {
	userP := &scriptedParticipant{name: UserRoleName, replies: []string{"still thinking", "approve"}}
	selector := &scriptedSelector{choices: []string{UserRoleName}}

	m := newTestManager(selector, userP)

	err := m.Run(context.Background(), chat.Message{Source: UserRoleName, Content: "Plan my day"})
	require.NoError(t, err)

	// The lone participant spoke last, so the second round's eligible
	// set is empty; the selector is still consulted with it.
	require.Len(t, selector.eligible, 2)
	assert.Equal(t, []string{UserRoleName}, descriptorNames(selector.eligible[0]))
	assert.Empty(t, selector.eligible[1])
}

func TestRunFanOutSkipsTheSource(t *testing.T) {
	planningP := &scriptedParticipant{name: PlanningRoleName}
	userP := &scriptedParticipant{name: UserRoleName}
	selector := &scriptedSelector{choices: []string{PlanningRoleName}}

	m := newTestManager(selector, planningP, userP)

	err := m.Run(context.Background(), chat.Message{Source: UserRoleName, Content: "approve"})
	require.NoError(t, err)

	require.Len(t, planningP.received, 1)
	assert.Equal(t, "approve", planningP.received[0].Content)
	assert.Empty(t, userP.received, "a participant never receives its own message")
}

func TestRegisterRejectsDuplicateNames(t *testing.T) {
	m := NewManager(&scriptedSelector{choices: []string{UserRoleName}}, chatservice.NewService(), console.NewPrinter(), 10)
	require.NoError(t, m.Register(&scriptedParticipant{name: UserRoleName}))
	require.Error(t, m.Register(&scriptedParticipant{name: UserRoleName}))
}

func descriptorNames(descriptors []Descriptor) []string {
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Name)
	}
	return names
}
