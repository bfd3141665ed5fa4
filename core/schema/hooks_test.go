package schema

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Pre_TypeChecking(t *testing.T) {
	docHook := DocumentHook(func(ctx context.Context, doc Document) error { return nil })
	condHook := ConditionHook(func(ctx context.Context, conditions map[string]any) error { return nil })

	tests := []struct {
		name    string
		event   HookEvent
		hook    any
		wantErr bool
	}{
		{"document hook on before-validate", BeforeValidate, docHook, false},
		{"condition hook on before-find", BeforeFind, condHook, false},
		{"condition hook on before-find-one", BeforeFindOne, condHook, false},
		{"condition hook on before-validate", BeforeValidate, condHook, true},
		{"document hook on before-find", BeforeFind, docHook, true},
		{"unknown event", HookEvent("after-save"), docHook, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("users", "1.0.0")
			err := s.Pre(tt.event, tt.hook)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, 0, s.HookCount(tt.event))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, s.HookCount(tt.event))
			}
		})
	}
}

func TestSchema_RunDocumentHooks_Order(t *testing.T) {
	s := New("users", "1.0.0")
	var calls []string

	require.NoError(t, s.Pre(BeforeValidate, DocumentHook(func(ctx context.Context, doc Document) error {
		calls = append(calls, "first")
		doc["touched"] = true
		return nil
	})))
	require.NoError(t, s.Pre(BeforeValidate, DocumentHook(func(ctx context.Context, doc Document) error {
		calls = append(calls, "second")
		return nil
	})))

	doc := Document{}
	require.NoError(t, s.RunDocumentHooks(context.Background(), BeforeValidate, doc))
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, true, doc["touched"])
}

func TestSchema_RunDocumentHooks_AbortsOnError(t *testing.T) {
	s := New("users", "1.0.0")
	var secondRan bool

	require.NoError(t, s.Pre(BeforeValidate, DocumentHook(func(ctx context.Context, doc Document) error {
		return fmt.Errorf("boom")
	})))
	require.NoError(t, s.Pre(BeforeValidate, DocumentHook(func(ctx context.Context, doc Document) error {
		secondRan = true
		return nil
	})))

	err := s.RunDocumentHooks(context.Background(), BeforeValidate, Document{})
	assert.EqualError(t, err, "boom")
	assert.False(t, secondRan)
}

func TestSchema_RunConditionHooks_MutatesConditions(t *testing.T) {
	s := New("users", "1.0.0")

	require.NoError(t, s.Pre(BeforeFind, ConditionHook(func(ctx context.Context, conditions map[string]any) error {
		conditions["rewritten"] = "yes"
		delete(conditions, "original")
		return nil
	})))

	conditions := map[string]any{"original": "value"}
	require.NoError(t, s.RunConditionHooks(context.Background(), BeforeFind, conditions))

	assert.Equal(t, "yes", conditions["rewritten"])
	assert.NotContains(t, conditions, "original")
}

func TestSchema_RunHooks_NoHooksIsNoop(t *testing.T) {
	s := New("users", "1.0.0")
	assert.NoError(t, s.RunDocumentHooks(context.Background(), BeforeValidate, Document{}))
	assert.NoError(t, s.RunConditionHooks(context.Background(), BeforeFind, map[string]any{}))
}
