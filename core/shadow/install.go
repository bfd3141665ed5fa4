package shadow

import (
	"context"
	"fmt"
	"strings"

	"github.com/asaidimu/go-umbra/core/schema"
	"go.uber.org/zap"
)

// Installer derives shadow fields on schemas according to a normalized set
// of options. It holds no mutable state after construction, so one installer
// may decorate any number of schemas.
type Installer struct {
	cfg    config
	logger *zap.Logger
}

// New creates an installer from the given options. It returns an error when
// the options cannot be normalized, e.g. an unsupported Paths type.
func New(opts Options, logger *zap.Logger) (*Installer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg, err := opts.normalize()
	if err != nil {
		return nil, fmt.Errorf("invalid shadow options: %w", err)
	}
	return &Installer{cfg: cfg, logger: logger}, nil
}

// Install is a convenience wrapper that normalizes options and decorates a
// single schema.
func Install(s *schema.Schema, opts Options) error {
	installer, err := New(opts, nil)
	if err != nil {
		return err
	}
	return installer.Install(s)
}

// Install decorates the schema in place. For every eligible field it adds a
// shadow definition under prefix+path+suffix and registers the hooks that
// keep it synchronized. A field is eligible when its CaseInsensitive option
// is set (and UsePathOption allows it) or when its path was designated via
// Options.Paths.
//
// A derived path colliding with an existing path is a configuration error:
// the call aborts immediately and fields processed earlier remain installed.
// Install runs once per schema at definition time; it is not safe to call
// concurrently with document operations on the same schema.
func (in *Installer) Install(s *schema.Schema) error {
	if s == nil {
		return fmt.Errorf("shadow: schema cannot be nil")
	}

	for _, key := range s.Paths() {
		def := s.Path(key)

		eligible := (in.cfg.usePathOption && def.Options.CaseInsensitive) || in.cfg.requested(key)
		if !eligible {
			continue
		}

		derived := in.cfg.prefix + key + in.cfg.suffix
		if s.HasPath(derived) {
			return fmt.Errorf("shadow: derived path %q for field %q already exists in schema %q", derived, key, s.Name)
		}

		clone := def.Clone()
		clone.Options.Lowercase = true
		sel := in.cfg.selectShadow
		clone.Options.Select = &sel
		if err := s.AddField(derived, clone); err != nil {
			return fmt.Errorf("shadow: failed to add derived field %q: %w", derived, err)
		}

		if err := in.installHooks(s, key, derived); err != nil {
			return err
		}

		in.logger.Debug("installed shadow field",
			zap.String("schema", s.Name),
			zap.String("field", key),
			zap.String("shadow", derived),
		)
	}

	return nil
}

// installHooks registers the write-sync and read-rewrite hooks for one
// field. The closures capture only the two path names, so concurrent hook
// invocations on different documents or queries cannot interfere.
func (in *Installer) installHooks(s *schema.Schema, key, derived string) error {
	sync := schema.DocumentHook(func(ctx context.Context, doc schema.Document) error {
		return syncShadow(doc, key, derived)
	})
	if err := s.Pre(schema.BeforeValidate, sync); err != nil {
		return fmt.Errorf("shadow: failed to register write hook for %q: %w", key, err)
	}

	rewrite := schema.ConditionHook(func(ctx context.Context, conditions map[string]any) error {
		return rewriteCondition(conditions, key, derived)
	})
	for _, event := range []schema.HookEvent{schema.BeforeFind, schema.BeforeFindOne} {
		if err := s.Pre(event, rewrite); err != nil {
			return fmt.Errorf("shadow: failed to register read hook for %q: %w", key, err)
		}
	}
	return nil
}

// syncShadow copies the lowercased source value into the shadow field. The
// source must be a present string; anything else aborts the validation
// pipeline for this one document.
func syncShadow(doc schema.Document, key, derived string) error {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return fmt.Errorf("shadow: field %q is not set on the document", key)
	}
	value, ok := raw.(string)
	if !ok {
		return fmt.Errorf("shadow: field %q holds %T, expected string", key, raw)
	}
	doc[derived] = strings.ToLower(value)
	return nil
}

// rewriteCondition replaces an equality condition on the original field with
// its lowercased form on the shadow field. Operator documents keyed under
// the field are left unmodified; other non-string values abort the query.
func rewriteCondition(conditions map[string]any, key, derived string) error {
	raw, ok := conditions[key]
	if !ok {
		return nil
	}
	switch value := raw.(type) {
	case string:
		conditions[derived] = strings.ToLower(value)
		delete(conditions, key)
		return nil
	case map[string]any:
		// Operator condition (range, regex, ...): outside equality
		// rewriting, the store sees it on the original field.
		return nil
	default:
		return fmt.Errorf("shadow: cannot rewrite condition on %q: value of type %T is not a string", key, raw)
	}
}
