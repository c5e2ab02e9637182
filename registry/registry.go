// Package registry loads the two definition JSON documents (builtins,
// sandbox) the editor services are parameterized by, and exposes the
// read-only, O(1) query surface §4.3 specifies. A Registry is immutable
// after construction and safe for concurrent reads, so a host may share one
// instance across every document it analyzes.
package registry

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/viant/afs"
)

//go:embed data/builtins.json
var defaultBuiltinsJSON []byte

//go:embed data/sandbox.json
var defaultSandboxJSON []byte

// Registry is the immutable, O(1)-lookup definition environment. Every map
// is built once in New and never mutated afterward.
type Registry struct {
	globals   map[string]GlobalDef
	libraries map[string]LibraryDef
	keywords  []string

	sandbox         map[string]SandboxItemDef
	disabledGlobals map[string]DisabledGlobalDef
	types           map[string]NamedTypeDef
	returnTypes     map[string]ReturnTypeDef
}

// New builds a Registry from the two raw JSON documents. Lookup is
// case-sensitive over Go maps, satisfying §4.3's O(1) invariant directly.
func New(builtinsJSON, sandboxJSON []byte) (*Registry, error) {
	var builtins builtinsDoc
	if err := json.Unmarshal(builtinsJSON, &builtins); err != nil {
		return nil, fmt.Errorf("registry: parse builtins: %w", err)
	}
	var sandbox sandboxDoc
	if err := json.Unmarshal(sandboxJSON, &sandbox); err != nil {
		return nil, fmt.Errorf("registry: parse sandbox: %w", err)
	}
	return &Registry{
		globals:         builtins.Globals,
		libraries:       builtins.Libraries,
		keywords:        builtins.Keywords,
		sandbox:         sandbox.Sandbox,
		disabledGlobals: sandbox.DisabledGlobals,
		types:           sandbox.Types,
		returnTypes:     sandbox.ReturnTypes,
	}, nil
}

// Default returns a Registry built from the definitions embedded in the
// binary at build time, for hosts that have no per-deployment override.
func Default() (*Registry, error) {
	return New(defaultBuiltinsJSON, defaultSandboxJSON)
}

// Load fetches builtinsURL and sandboxURL through an afs.Service — the
// storage-agnostic loader the host uses for every other static asset — so
// a deployment can override the embedded defaults from local disk, S3, GCS,
// or any other afs-supported scheme without a code change.
func Load(ctx context.Context, fs afs.Service, builtinsURL, sandboxURL string) (*Registry, error) {
	builtinsJSON, err := fs.DownloadWithURL(ctx, builtinsURL)
	if err != nil {
		return nil, fmt.Errorf("registry: download builtins from %s: %w", builtinsURL, err)
	}
	sandboxJSON, err := fs.DownloadWithURL(ctx, sandboxURL)
	if err != nil {
		return nil, fmt.Errorf("registry: download sandbox from %s: %w", sandboxURL, err)
	}
	return New(builtinsJSON, sandboxJSON)
}

func (r *Registry) GetGlobal(name string) (GlobalDef, bool) {
	g, ok := r.globals[name]
	return g, ok
}

func (r *Registry) GetLibrary(name string) (LibraryDef, bool) {
	l, ok := r.libraries[name]
	return l, ok
}

func (r *Registry) GetLibraryMethod(lib, method string) (MethodDef, bool) {
	l, ok := r.libraries[lib]
	if !ok {
		return MethodDef{}, false
	}
	m, ok := l.Methods[method]
	return m, ok
}

// GetKeywords returns the Lua reserved words to seed top-level completion.
func (r *Registry) GetKeywords() []string { return r.keywords }

func (r *Registry) GetSandboxItem(name string) (SandboxItemDef, bool) {
	s, ok := r.sandbox[name]
	return s, ok
}

func (r *Registry) GetSandboxItemMetadata(name string) (SandboxItemMetadata, bool) {
	s, ok := r.sandbox[name]
	if !ok {
		return SandboxItemMetadata{}, false
	}
	return SandboxItemMetadata{
		Kind:            s.Kind,
		IsBuiltin:       s.IsBuiltin,
		IsReadonly:      s.IsReadonly,
		BuiltinURI:      s.BuiltinURI,
		HasHookVariants: s.HasHookVariants,
	}, true
}

// GetHelper looks up one member of the `helpers` sandbox namespace.
func (r *Registry) GetHelper(name string) (FieldDef, bool) {
	helpers, ok := r.sandbox["helpers"]
	if !ok {
		return FieldDef{}, false
	}
	f, ok := helpers.Fields[name]
	return f, ok
}

// GetHelperNames lists every `helpers.*` member, sorted for deterministic
// completion ordering.
func (r *Registry) GetHelperNames() []string {
	helpers, ok := r.sandbox["helpers"]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(helpers.Fields))
	for name := range helpers.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetContextFieldsForHook returns the field map `context` exposes for the
// given hook identity: always-present base fields plus that hook's
// variant-specific fields. An empty hookName returns the union of every
// variant, for schemaless callers (e.g. an outline view with no hook
// context) that would rather over-offer than under-offer completions.
func (r *Registry) GetContextFieldsForHook(hookName string) map[string]FieldDef {
	item, ok := r.sandbox["context"]
	if !ok {
		return nil
	}
	merged := make(map[string]FieldDef, len(item.Fields))
	for name, f := range item.Fields {
		merged[name] = f
	}
	if hookName == "" {
		for _, variant := range item.HookVariants {
			for name, f := range variant.Fields {
				merged[name] = f
			}
		}
		return merged
	}
	if variant, ok := item.HookVariants[hookName]; ok {
		for name, f := range variant.Fields {
			merged[name] = f
		}
	}
	return merged
}

func (r *Registry) IsDisabled(name string) bool {
	_, ok := r.disabledGlobals[name]
	return ok
}

func (r *Registry) GetDisabledMessage(name string) (string, bool) {
	d, ok := r.disabledGlobals[name]
	if !ok {
		return "", false
	}
	return d.Message, true
}

func (r *Registry) GetType(name string) (NamedTypeDef, bool) {
	t, ok := r.types[name]
	return t, ok
}

func (r *Registry) GetTypeFields(name string) map[string]FieldDef {
	t, ok := r.types[name]
	if !ok {
		return nil
	}
	return t.Fields
}

// ReturnTypeFor reports the declared return shape for a hook, used by
// diagnostics and hover to explain what a script is expected to return.
func (r *Registry) ReturnTypeFor(hookName string) (ReturnTypeDef, bool) {
	rt, ok := r.returnTypes[hookName]
	return rt, ok
}

// ResolveMemberPath walks a dotted path (e.g. ["helpers", "hashPassword"]
// or ["context", "prev", "allowed"]) through sandbox items, falling back
// through named-type field maps for nested segments, and returns the
// terminal field's definition.
func (r *Registry) ResolveMemberPath(path []string) (MemberDef, bool) {
	if len(path) == 0 {
		return MemberDef{}, false
	}

	root := path[0]
	rest := path[1:]

	if lib, ok := r.libraries[root]; ok {
		if len(rest) == 0 {
			return MemberDef{Type: "function", Description: lib.Description}, true
		}
		method, ok := lib.Methods[rest[0]]
		if !ok || len(rest) > 1 {
			return MemberDef{}, false
		}
		returnType := method.Returns
		if returnType == "" {
			returnType = "void"
		}
		return MemberDef{Type: returnType, Description: method.Description}, true
	}

	if global, ok := r.globals[root]; ok {
		if len(rest) != 0 {
			return MemberDef{}, false
		}
		return MemberDef{Type: global.Type, Description: global.Description}, true
	}

	item, ok := r.sandbox[root]
	if !ok {
		return MemberDef{}, false
	}
	current := FieldDef{Type: item.SemanticType, Description: "", Optional: false}
	fields := item.Fields
	for i, segment := range rest {
		f, ok := fields[segment]
		if !ok {
			return MemberDef{}, false
		}
		current = f
		if i == len(rest)-1 {
			break
		}
		fields = r.GetTypeFields(refNameOf(f.Type))
		if fields == nil {
			return MemberDef{}, false
		}
	}
	return MemberDef{Type: current.Type, Description: current.Description, Optional: current.Optional}, true
}

// refNameOf strips any "[]" array suffix and returns the bare identifier a
// FieldDef.Type string names, for walking into a named type's field map.
func refNameOf(typeStr string) string {
	for i := 0; i < len(typeStr); i++ {
		if typeStr[i] == '[' || typeStr[i] == ' ' || typeStr[i] == '|' {
			return typeStr[:i]
		}
	}
	return typeStr
}

// GetMemberCompletions enumerates candidate member names for autocomplete
// after `<root>.`, honoring the hook-specific variant of `context` when
// hookName is supplied.
func (r *Registry) GetMemberCompletions(root string, hookName string) []string {
	if root == "context" {
		fields := r.GetContextFieldsForHook(hookName)
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	}
	if lib, ok := r.libraries[root]; ok {
		names := make([]string, 0, len(lib.Methods))
		for name := range lib.Methods {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	}
	if item, ok := r.sandbox[root]; ok {
		names := make([]string, 0, len(item.Fields))
		for name := range item.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	}
	return nil
}
