package schema

import (
	"context"
	"fmt"
)

// HookEvent names a point in a document operation's lifecycle.
type HookEvent string

const (
	// BeforeValidate runs before a document is validated on write.
	BeforeValidate HookEvent = "before-validate"
	// BeforeFind runs before a multi-document query executes.
	BeforeFind HookEvent = "before-find"
	// BeforeFindOne runs before a single-document query executes.
	BeforeFindOne HookEvent = "before-find-one"
)

// DocumentHook runs against the document driving a write-side event. A
// non-nil error aborts the operation that triggered the hook; it never
// crashes the process.
type DocumentHook func(ctx context.Context, doc Document) error

// ConditionHook runs against the mutable condition set of an in-flight
// query. Hooks may rewrite, add, or remove conditions. A non-nil error
// aborts the query.
type ConditionHook func(ctx context.Context, conditions map[string]any) error

// Pre registers a hook for a lifecycle event. BeforeValidate accepts a
// DocumentHook; BeforeFind and BeforeFindOne accept a ConditionHook. Hooks
// run in registration order.
func (s *Schema) Pre(event HookEvent, hook any) error {
	switch event {
	case BeforeValidate:
		if _, ok := hook.(DocumentHook); !ok {
			return fmt.Errorf("schema %q: event %q requires a DocumentHook, got %T", s.Name, event, hook)
		}
	case BeforeFind, BeforeFindOne:
		if _, ok := hook.(ConditionHook); !ok {
			return fmt.Errorf("schema %q: event %q requires a ConditionHook, got %T", s.Name, event, hook)
		}
	default:
		return fmt.Errorf("schema %q: unknown hook event %q", s.Name, event)
	}

	s.hooks[event] = append(s.hooks[event], hook)
	return nil
}

// HookCount returns the number of hooks registered for an event.
func (s *Schema) HookCount(event HookEvent) int {
	return len(s.hooks[event])
}

// RunDocumentHooks executes the document hooks registered for the event, in
// order, stopping at the first error.
func (s *Schema) RunDocumentHooks(ctx context.Context, event HookEvent, doc Document) error {
	for _, h := range s.hooks[event] {
		hook, ok := h.(DocumentHook)
		if !ok {
			return fmt.Errorf("schema %q: event %q has a non-document hook of type %T", s.Name, event, h)
		}
		if err := hook(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// RunConditionHooks executes the condition hooks registered for the event,
// in order, stopping at the first error. The condition map is mutated in
// place.
func (s *Schema) RunConditionHooks(ctx context.Context, event HookEvent, conditions map[string]any) error {
	for _, h := range s.hooks[event] {
		hook, ok := h.(ConditionHook)
		if !ok {
			return fmt.Errorf("schema %q: event %q has a non-condition hook of type %T", s.Name, event, h)
		}
		if err := hook(ctx, conditions); err != nil {
			return err
		}
	}
	return nil
}
