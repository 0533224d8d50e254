package tools

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func newTool(name string, category ToolCategory) *Tool {
	return &Tool{
		Name:        name,
		Description: "a tool",
		Category:    category,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "ok", nil
		},
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if reg == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("new registry should be empty, got %d tools", reg.Count())
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(newTool("runSandboxCommand", CategorySandbox)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := reg.Get("runSandboxCommand")
	if got == nil {
		t.Fatal("Get returned nil for registered tool")
	}
	if got.Name != "runSandboxCommand" {
		t.Errorf("got name %q, want %q", got.Name, "runSandboxCommand")
	}
	if !reg.Has("runSandboxCommand") {
		t.Error("Has returned false for registered tool")
	}
	if reg.Has("missing") {
		t.Error("Has returned true for unregistered tool")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(newTool("dupe", CategoryGeneral)); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	err := reg.Register(newTool("dupe", CategoryGeneral))
	if !errors.Is(err, ErrToolAlreadyRegistered) {
		t.Fatalf("expected ErrToolAlreadyRegistered, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry(nil)

	tests := []struct {
		name    string
		tool    *Tool
		wantErr error
	}{
		{
			name:    "empty name",
			tool:    &Tool{Name: "", Execute: func(ctx context.Context, args map[string]any) (string, error) { return "", nil }},
			wantErr: ErrToolNameEmpty,
		},
		{
			name:    "nil execute",
			tool:    &Tool{Name: "broken", Execute: nil},
			wantErr: ErrToolExecuteNil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.tool)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetByCategory(t *testing.T) {
	reg := NewRegistry(nil)

	low := newTool("low", CategorySandbox)
	low.Priority = 10
	high := newTool("high", CategorySandbox)
	high.Priority = 90
	other := newTool("other", CategorySearch)

	for _, tool := range []*Tool{low, high, other} {
		if err := reg.Register(tool); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	sandbox := reg.GetByCategory(CategorySandbox)
	if len(sandbox) != 2 {
		t.Fatalf("got %d sandbox tools, want 2", len(sandbox))
	}
	if sandbox[0].Name != "high" || sandbox[1].Name != "low" {
		t.Errorf("tools not sorted by priority: %s, %s", sandbox[0].Name, sandbox[1].Name)
	}
}

func TestDefaultPriority(t *testing.T) {
	reg := NewRegistry(nil)

	tool := newTool("plain", CategoryGeneral)
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if tool.Priority != 50 {
		t.Errorf("got priority %d, want default 50", tool.Priority)
	}
}

func TestNames(t *testing.T) {
	reg := NewRegistry(nil)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Register(newTool(name, CategoryGeneral)); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	names := reg.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestExecute(t *testing.T) {
	reg := NewRegistry(nil)

	tool := &Tool{
		Name:     "echo",
		Category: CategoryGeneral,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return args["msg"].(string), nil
		},
		Schema: ToolSchema{Required: []string{"msg"}},
	}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := reg.Execute(context.Background(), "echo", map[string]any{"msg": "hello"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Result != "hello" {
		t.Errorf("got result %q, want %q", result.Result, "hello")
	}
	if !result.IsSuccess() {
		t.Error("expected success")
	}
	if result.ToolName != "echo" {
		t.Errorf("got tool name %q, want %q", result.ToolName, "echo")
	}
}

func TestExecuteNotFound(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.Execute(context.Background(), "missing", nil)
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestExecuteMissingRequiredArg(t *testing.T) {
	reg := NewRegistry(nil)

	tool := newTool("strict", CategoryGeneral)
	tool.Schema = ToolSchema{Required: []string{"pattern"}}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := reg.Execute(context.Background(), "strict", map[string]any{})
	if !errors.Is(err, ErrMissingRequiredArg) {
		t.Fatalf("expected ErrMissingRequiredArg, got %v", err)
	}
	if result == nil || result.IsSuccess() {
		t.Error("expected failed result")
	}
}

func TestExecuteToolError(t *testing.T) {
	reg := NewRegistry(nil)

	boom := errors.New("boom")
	tool := &Tool{
		Name:     "failing",
		Category: CategoryGeneral,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "", boom
		},
	}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := reg.Execute(context.Background(), "failing", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if result.IsSuccess() {
		t.Error("expected failed result")
	}
}
