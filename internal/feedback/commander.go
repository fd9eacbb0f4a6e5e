package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// DefaultCommandTimeout bounds a single command.
const DefaultCommandTimeout = 5 * time.Second

// Commands is the session's outbound surface.
type Commands interface {
	SetValue(ctx context.Context, canonical string, v state.Value) error
	CollectionOp(ctx context.Context, verb, canonical string, args ...state.Value) error
	WriteLocal(ctx context.Context, canonical string, v state.Value) error
}

// Command is the JSON body of a command message.
//
//	set:        {"path":"hardware/...","value":...}
//	collection: {"verb":"add","path":"shared/...","args":[...]}
//	local:      {"path":"local/...","value":...}
type Command struct {
	Path  string        `json:"path"`
	Value state.Value   `json:"value"`
	Verb  string        `json:"verb,omitempty"`
	Args  []state.Value `json:"args,omitempty"`
}

// Commander executes commands received on the MQTT command topics.
type Commander struct {
	topics  mqtt.Topics
	cmds    Commands
	timeout time.Duration
	logger  Logger
}

// NewCommander creates a commander for the given topics.
func NewCommander(topics mqtt.Topics, cmds Commands) *Commander {
	return &Commander{
		topics:  topics,
		cmds:    cmds,
		timeout: DefaultCommandTimeout,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger.
func (c *Commander) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	c.logger = l
}

// Handle is an mqtt.MessageHandler for Topics.AllCommands.
func (c *Commander) Handle(topic string, payload []byte) error {
	kind, ok := c.topics.CommandKind(topic)
	if !ok {
		return fmt.Errorf("%w: topic %q", ErrUnknownCommand, topic)
	}

	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.Execute(ctx, kind, cmd); err != nil {
		return err
	}
	c.logger.Debug("command executed", "kind", kind, "path", cmd.Path)
	return nil
}

// Execute runs one command of the given kind.
func (c *Commander) Execute(ctx context.Context, kind string, cmd Command) error {
	if cmd.Path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidCommand)
	}

	switch kind {
	case mqtt.CommandSet:
		return c.cmds.SetValue(ctx, cmd.Path, cmd.Value)
	case mqtt.CommandCollection:
		if cmd.Verb == "" {
			return fmt.Errorf("%w: verb is required", ErrInvalidCommand)
		}
		return c.cmds.CollectionOp(ctx, cmd.Verb, cmd.Path, cmd.Args...)
	case mqtt.CommandLocal:
		return c.cmds.WriteLocal(ctx, cmd.Path, cmd.Value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, kind)
	}
}
