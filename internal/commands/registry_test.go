package commands

import (
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calcshell/internal/ledger"
	"calcshell/pkg/calctypes"
)

// MockCommand implements calctypes.Handler for testing
type MockCommand struct {
	name        string
	usage       string
	ledger      *ledger.Ledger
	executeFunc func(args []string) (string, error)
}

func NewMockCommand(name string) *MockCommand {
	return &MockCommand{
		name:  name,
		usage: fmt.Sprintf("Usage: %s <args>", name),
		executeFunc: func(_ []string) (string, error) {
			return "ok", nil
		},
	}
}

func (m *MockCommand) Usage() string {
	return m.usage
}

func (m *MockCommand) Execute(args []string) (string, error) {
	if m.executeFunc != nil {
		return m.executeFunc(args)
	}
	return "", nil
}

func (m *MockCommand) SetExecuteFunc(fn func(args []string) (string, error)) {
	m.executeFunc = fn
}

// DescribedCommand adds a menu description to MockCommand.
type DescribedCommand struct {
	*MockCommand
}

func (d DescribedCommand) Description() string {
	return "described " + d.name
}

// UsageOnly lacks the Execute capability.
type UsageOnly struct{}

func (UsageOnly) Usage() string { return "usage" }

// ExecuteOnly lacks the Usage capability.
type ExecuteOnly struct{}

func (ExecuteOnly) Execute(_ []string) (string, error) { return "", nil }

func mockPlugin(name string) Plugin {
	return Plugin{Name: name, New: func(l *ledger.Ledger) any {
		cmd := NewMockCommand(name)
		cmd.ledger = l
		return cmd
	}}
}

func newTestLedger() *ledger.Ledger {
	return ledger.NewLedger(afero.NewMemMapFs())
}

func TestRegistry_NewRegistry(t *testing.T) {
	registry := NewRegistry(newTestLedger(), nil)

	assert.NotNil(t, registry)
	assert.Empty(t, registry.ListNames())
	assert.Equal(t, 0, registry.RegisterAll())
}

func TestRegistry_RegisterAll(t *testing.T) {
	l := newTestLedger()
	registry := NewRegistry(l, []Plugin{
		mockPlugin("add"),
		{Name: "broken-usage", New: func(_ *ledger.Ledger) any { return ExecuteOnly{} }},
		{Name: "broken-exec", New: func(_ *ledger.Ledger) any { return UsageOnly{} }},
		{Name: "no-constructor"},
		mockPlugin("Multiply "),
	})

	count := registry.RegisterAll()

	assert.Equal(t, 2, count, "candidates missing a capability are skipped")
	assert.Equal(t, []string{"add", "multiply"}, registry.ListNames())

	handler, err := registry.Create("add")
	require.NoError(t, err)
	assert.Same(t, l, handler.(*MockCommand).ledger, "handlers are bound to the registry's ledger")
}

func TestRegistry_RegisterAll_Idempotent(t *testing.T) {
	registry := NewRegistry(newTestLedger(), []Plugin{mockPlugin("add"), mockPlugin("subtract")})

	registry.RegisterAll()
	first := registry.ListNames()
	registry.RegisterAll()

	assert.Equal(t, first, registry.ListNames())
	assert.Equal(t, []string{"add", "subtract"}, registry.ListNames())
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name      string
		command   string
		candidate any
		wantErr   bool
		errMsg    string
	}{
		{name: "register valid command", command: "test", candidate: NewMockCommand("test")},
		{name: "register another command", command: "another", candidate: NewMockCommand("another")},
		{name: "empty name", command: "  ", candidate: NewMockCommand(""), wantErr: true, errMsg: "command name cannot be empty"},
		{name: "missing execute", command: "usage", candidate: UsageOnly{}, wantErr: true, errMsg: "does not implement Execute"},
		{name: "missing usage", command: "exec", candidate: ExecuteOnly{}, wantErr: true, errMsg: "does not implement Usage"},
		{name: "nil candidate", command: "nil", candidate: nil, wantErr: true},
	}

	registry := NewRegistry(newTestLedger(), nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(tt.command, tt.candidate)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}
			assert.NoError(t, err)

			cmd, err := registry.Create(tt.command)
			require.NoError(t, err)
			assert.Equal(t, tt.candidate, cmd)
		})
	}
}

func TestRegistry_Register_LastWriteWins(t *testing.T) {
	registry := NewRegistry(newTestLedger(), nil)
	cmd1 := NewMockCommand("duplicate")
	cmd2 := NewMockCommand("duplicate")
	other := NewMockCommand("other")

	require.NoError(t, registry.Register("duplicate", cmd1))
	require.NoError(t, registry.Register("other", other))
	require.NoError(t, registry.Register("DUPLICATE", cmd2))

	cmd, err := registry.Create("duplicate")
	require.NoError(t, err)
	assert.Same(t, cmd2, cmd)
	assert.Equal(t, []string{"duplicate", "other"}, registry.ListNames(), "replaced name keeps its position")
}

func TestRegistry_Create(t *testing.T) {
	registry := NewRegistry(newTestLedger(), nil)
	cmd := NewMockCommand("test")
	require.NoError(t, registry.Register("test", cmd))

	tests := []struct {
		name        string
		commandName string
		wantErr     bool
	}{
		{name: "existing command", commandName: "test"},
		{name: "case-normalized lookup", commandName: " TeSt "},
		{name: "non-existing command", commandName: "nonexistent", wantErr: true},
		{name: "empty name", commandName: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Create(tt.commandName)
			if tt.wantErr {
				assert.ErrorIs(t, err, calctypes.ErrUnknownCommand)
				assert.Nil(t, got)
				assert.False(t, registry.IsValidCommand(tt.commandName))
				return
			}
			require.NoError(t, err)
			assert.Same(t, cmd, got)
			assert.True(t, registry.IsValidCommand(tt.commandName))
		})
	}
}

func TestRegistry_ListNames_Copy(t *testing.T) {
	registry := NewRegistry(newTestLedger(), []Plugin{mockPlugin("add")})
	registry.RegisterAll()

	names := registry.ListNames()
	names[0] = "changed"
	assert.Equal(t, []string{"add"}, registry.ListNames())
}

func TestRegistry_Describe(t *testing.T) {
	registry := NewRegistry(newTestLedger(), nil)
	plain := NewMockCommand("plain")
	plain.usage = "plain <x>\nsecond line"
	require.NoError(t, registry.Register("plain", plain))
	require.NoError(t, registry.Register("fancy", DescribedCommand{NewMockCommand("fancy")}))

	assert.Equal(t, "plain <x>", registry.Describe("plain"))
	assert.Equal(t, "described fancy", registry.Describe("fancy"))
	assert.Empty(t, registry.Describe("missing"))
}

func TestRegistry_Execute(t *testing.T) {
	registry := NewRegistry(newTestLedger(), nil)

	var capturedArgs []string
	cmd := NewMockCommand("test")
	cmd.SetExecuteFunc(func(args []string) (string, error) {
		capturedArgs = args
		return "done", nil
	})
	require.NoError(t, registry.Register("test", cmd))

	out, err := registry.Execute("TEST", []string{"1", "2"})
	assert.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, []string{"1", "2"}, capturedArgs)

	_, err = registry.Execute("nonexistent", nil)
	assert.ErrorIs(t, err, calctypes.ErrUnknownCommand)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRegistry_Execute_CommandError(t *testing.T) {
	registry := NewRegistry(newTestLedger(), nil)

	expectedError := fmt.Errorf("command execution failed")
	cmd := NewMockCommand("failing")
	cmd.SetExecuteFunc(func(_ []string) (string, error) {
		return "", expectedError
	})
	require.NoError(t, registry.Register("failing", cmd))

	_, err := registry.Execute("failing", nil)
	assert.Equal(t, expectedError, err)
}

func TestPluginCatalog(t *testing.T) {
	before := len(Plugins())
	RegisterPlugin(mockPlugin("catalog-test"))

	plugins := Plugins()
	require.Len(t, plugins, before+1)
	assert.Equal(t, "catalog-test", plugins[len(plugins)-1].Name)

	plugins[0].Name = "mutated"
	assert.NotEqual(t, "mutated", Plugins()[0].Name)
}

// Test concurrent access
func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry(newTestLedger(), nil)

	numGoroutines := 10
	var wg sync.WaitGroup

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("cmd%d", id)
			assert.NoError(t, registry.Register(name, NewMockCommand(name)))
			_, err := registry.Create(name)
			assert.NoError(t, err)
			_ = registry.ListNames()
		}(i)
	}

	wg.Wait()
	assert.Len(t, registry.ListNames(), numGoroutines)
}
