package template

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-layout/pkg/capture"
	"github.com/goliatone/go-layout/pkg/environment"
	"github.com/goliatone/go-layout/pkg/executor"
)

// scripted builds an executor that dispatches on the invocation location,
// letting each test describe template bodies as plain Go.
func scripted(bodies map[string]func(inv executor.Invocation) error) executor.Executor {
	return executor.Func(func(_ context.Context, inv executor.Invocation) error {
		body, ok := bodies[inv.Location]
		if !ok {
			return fmt.Errorf("no script for %q: %w", inv.Location, executor.ErrNotFound)
		}
		return body(inv)
	})
}

func emit(inv executor.Invocation, text string) {
	io.WriteString(inv.Output, text)
}

func TestRender_CaptureExample(t *testing.T) {
	exec := scripted(map[string]func(executor.Invocation) error{
		"page": func(inv executor.Invocation) error {
			emit(inv, "A")
			inv.Template.Begin("x")
			emit(inv, "B")
			if _, err := inv.Template.EndBlock(nil); err != nil {
				return err
			}
			emit(inv, "C")
			return nil
		},
	})

	tpl := New("page", WithExecutor(exec))
	got, err := tpl.Render(context.Background(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if got != "ABC" {
		t.Fatalf("result = %q, want ABC", got)
	}
	if root := tpl.RootContent(); root != "ABC" {
		t.Fatalf("root content = %q, want ABC", root)
	}
	if x, ok := tpl.BlockContent("x"); !ok || x != "B" {
		t.Fatalf("block x = %q (ok=%v), want B", x, ok)
	}
	if content, ok := tpl.BlockContent(ContentBlock); !ok || content != "ABC" {
		t.Fatalf("content block = %q (ok=%v), want ABC", content, ok)
	}
}

func TestRender_OverrideOrder(t *testing.T) {
	exec := scripted(map[string]func(executor.Invocation) error{
		"page": func(inv executor.Invocation) error {
			inv.Template.Begin("title")
			emit(inv, "first")
			if _, err := inv.Template.EndBlock(nil); err != nil {
				return err
			}
			inv.Template.Begin("title")
			emit(inv, "second")
			if _, err := inv.Template.EndBlock(nil); err != nil {
				return err
			}
			return nil
		},
	})

	tpl := New("page", WithExecutor(exec))
	if _, err := tpl.Render(context.Background(), nil); err != nil {
		t.Fatalf("render: %v", err)
	}

	if title, _ := tpl.BlockContent("title"); title != "second" {
		t.Fatalf("last close must win, got %q", title)
	}
}

func TestRender_BlocksVisibleDuringPass(t *testing.T) {
	exec := scripted(map[string]func(executor.Invocation) error{
		"page": func(inv executor.Invocation) error {
			inv.Template.Begin("x")
			emit(inv, "inner")
			if _, err := inv.Template.EndBlock(nil); err != nil {
				return err
			}
			content, ok := inv.Template.BlockContent("x")
			if !ok || content != "inner" {
				return fmt.Errorf("closed block not visible mid-pass: %q (ok=%v)", content, ok)
			}
			return nil
		},
	})

	tpl := New("page", WithExecutor(exec))
	if _, err := tpl.Render(context.Background(), nil); err != nil {
		t.Fatalf("render: %v", err)
	}
}

func TestRender_ContentFallback(t *testing.T) {
	exec := scripted(map[string]func(executor.Invocation) error{
		"page": func(inv executor.Invocation) error {
			emit(inv, "unblocked output")
			return nil
		},
	})

	tpl := New("page", WithExecutor(exec))
	if _, err := tpl.Render(context.Background(), nil); err != nil {
		t.Fatalf("render: %v", err)
	}

	if content, _ := tpl.BlockContent(ContentBlock); content != "unblocked output" {
		t.Fatalf("content must default to root content, got %q", content)
	}
}

func TestRender_ExistingContentConcatenates(t *testing.T) {
	exec := scripted(map[string]func(executor.Invocation) error{
		"page": func(inv executor.Invocation) error {
			emit(inv, "new")
			return nil
		},
	})

	tpl := New("page", WithExecutor(exec))
	if err := tpl.Assign(ContentBlock, "prior-"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := tpl.Render(context.Background(), nil); err != nil {
		t.Fatalf("render: %v", err)
	}

	if content, _ := tpl.BlockContent(ContentBlock); content != "prior-new" {
		t.Fatalf("content must concatenate existing-then-new, got %q", content)
	}
}

func TestRender_ClosureFilteringIsIdempotent(t *testing.T) {
	var seen []map[string]any
	exec := executor.Func(func(_ context.Context, inv executor.Invocation) error {
		seen = append(seen, inv.Variables)
		return nil
	})

	variables := map[string]any{
		"name":     "reader",
		"count":    3,
		"callback": func() string { return "never" },
	}

	for i := 0; i < 2; i++ {
		tpl := New("page", WithExecutor(exec))
		if _, err := tpl.Render(context.Background(), variables); err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
	}

	want := map[string]any{"name": "reader", "count": 3}
	for i, got := range seen {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("pass %d variables (-want +got):\n%s", i, diff)
		}
	}
	if _, ok := variables["callback"]; !ok {
		t.Fatal("caller's variable map must not be mutated")
	}
}

func TestRender_SourceNotFound(t *testing.T) {
	exec := scripted(map[string]func(executor.Invocation) error{})

	tpl := New("missing", WithExecutor(exec))
	_, err := tpl.Render(context.Background(), nil)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestRender_FailedPassRegistersNothing(t *testing.T) {
	exec := scripted(map[string]func(executor.Invocation) error{
		"page": func(inv executor.Invocation) error {
			inv.Template.Begin("x")
			emit(inv, "partial")
			if _, err := inv.Template.EndBlock(nil); err != nil {
				return err
			}
			return errors.New("boom")
		},
	})

	tpl := New("page", WithExecutor(exec))
	if _, err := tpl.Render(context.Background(), nil); err == nil {
		t.Fatal("expected render error")
	}

	if tpl.Has("x") {
		t.Fatal("a failed pass must leave no partially-registered blocks")
	}
}

func TestRender_SyntheticTemplate(t *testing.T) {
	tpl := New("")
	tpl.AppendContent("hand-made")

	got, err := tpl.Render(context.Background(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "hand-made" {
		t.Fatalf("synthetic render = %q", got)
	}
	if content, _ := tpl.BlockContent(ContentBlock); content != "hand-made" {
		t.Fatalf("content block = %q", content)
	}
}

func TestAssign_MissingName(t *testing.T) {
	tpl := New("")

	if err := tpl.Assign("", "value"); !errors.Is(err, ErrMissingName) {
		t.Fatalf("expected ErrMissingName, got %v", err)
	}
	if err := tpl.Assign("   ", "value"); !errors.Is(err, ErrMissingName) {
		t.Fatalf("blank names must be rejected too, got %v", err)
	}
}

func TestEndBlock_EmptyStack(t *testing.T) {
	tpl := New("")

	if _, err := tpl.EndBlock(nil); !errors.Is(err, capture.ErrEmptyStack) {
		t.Fatalf("expected capture.ErrEmptyStack, got %v", err)
	}
}

func TestIndexedAccess(t *testing.T) {
	tpl := New("")

	tpl.Set("sidebar", "links")
	if !tpl.Has("sidebar") {
		t.Fatal("sidebar should exist after Set")
	}
	if b, ok := tpl.Lookup("sidebar"); !ok || b.Content() != "links" {
		t.Fatalf("lookup sidebar = %v (ok=%v)", b, ok)
	}

	tpl.Delete("sidebar")
	if tpl.Has("sidebar") {
		t.Fatal("sidebar should be gone after Delete")
	}
	if _, ok := tpl.Lookup("sidebar"); ok {
		t.Fatal("lookup after delete must report absence")
	}
}

func TestExtend_EmptyPathIsNoop(t *testing.T) {
	tpl := New("page")

	if err := tpl.Extend(""); err != nil {
		t.Fatalf("extend empty: %v", err)
	}
	if tpl.Parent() != nil {
		t.Fatal("empty path must not set a parent")
	}
}

func TestExtend_SelfIsNoop(t *testing.T) {
	env := environment.NewStatic(map[string]string{"page": ""})

	tpl := New("page", WithEnvironment(env))
	if err := tpl.Extend("page"); err != nil {
		t.Fatalf("self extend: %v", err)
	}
	if tpl.Parent() != nil {
		t.Fatal("self extension must leave the parent unset")
	}
}

func TestExtend_CycleDetected(t *testing.T) {
	env := environment.NewStatic(map[string]string{"a": "", "b": ""})
	exec := scripted(map[string]func(executor.Invocation) error{
		"a": func(inv executor.Invocation) error {
			return inv.Template.Extend("b")
		},
		"b": func(inv executor.Invocation) error {
			return inv.Template.Extend("a")
		},
	})

	tpl := New("a", WithEnvironment(env), WithExecutor(exec))
	_, err := tpl.Render(context.Background(), nil)
	if !errors.Is(err, ErrExtendCycle) {
		t.Fatalf("expected ErrExtendCycle, got %v", err)
	}
}

func TestRender_NilContext(t *testing.T) {
	tpl := New("")

	if _, err := tpl.Render(nil, nil); err == nil {
		t.Fatal("nil context must be rejected")
	}
}
