package registry

// GlobalDef documents one always-present builtin global.
type GlobalDef struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// MethodDef documents one method of a standard library namespace
// (string.format, table.insert, ...).
type MethodDef struct {
	Signature   string `json:"signature,omitempty"`
	Returns     string `json:"returns,omitempty"`
	Description string `json:"description,omitempty"`
}

// LibraryDef documents a standard-library namespace.
type LibraryDef struct {
	Description string               `json:"description,omitempty"`
	Methods     map[string]MethodDef `json:"methods"`
}

type builtinsDoc struct {
	Globals   map[string]GlobalDef  `json:"globals"`
	Libraries map[string]LibraryDef `json:"libraries"`
	Keywords  []string              `json:"keywords"`
}

// FieldDef is a single field of a sandbox item or named record type: a
// type string consumed by typesys.ParseTypeString, plus hover metadata.
type FieldDef struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Async       bool   `json:"async,omitempty"`
}

// HookVariantDef is the set of extra fields a sandbox item (namely
// `context`) exposes only under a specific hook identity.
type HookVariantDef struct {
	Fields map[string]FieldDef `json:"fields"`
}

// SandboxItemDef documents one injected sandbox global (`helpers`,
// `context`, `config`, ...).
type SandboxItemDef struct {
	Kind            string                    `json:"kind"` // namespace | function | variable | property
	SemanticType    string                    `json:"semanticType,omitempty"`
	IsBuiltin       bool                      `json:"isBuiltin,omitempty"`
	IsReadonly      bool                      `json:"isReadonly,omitempty"`
	BuiltinURI      string                    `json:"builtinUri,omitempty"`
	HasHookVariants bool                      `json:"hasHookVariants,omitempty"`
	Fields          map[string]FieldDef       `json:"fields,omitempty"`
	HookVariants    map[string]HookVariantDef `json:"hookVariants,omitempty"`
}

// SandboxItemMetadata is the subset of SandboxItemDef GetSandboxItemMetadata
// exposes: the classification facts, without the (possibly large) field map.
type SandboxItemMetadata struct {
	Kind            string
	IsBuiltin       bool
	IsReadonly      bool
	BuiltinURI      string
	HasHookVariants bool
}

// DisabledGlobalDef documents a sandbox-banned global and why.
type DisabledGlobalDef struct {
	Message string `json:"message"`
}

// NamedTypeDef is a record type referred to by name from a FieldDef.Type
// string (a bare identifier, per typesys.ParseTypeString's Ref rule).
type NamedTypeDef struct {
	Kind   string              `json:"kind"`
	Fields map[string]FieldDef `json:"fields"`
}

// ReturnTypeDef documents the expected `return { ... }` shape for one hook.
type ReturnTypeDef struct {
	Description    string   `json:"description,omitempty"`
	RequiredFields []string `json:"requiredFields,omitempty"`
	OptionalFields []string `json:"optionalFields,omitempty"`
	Example        string   `json:"example,omitempty"`
}

type sandboxDoc struct {
	Sandbox         map[string]SandboxItemDef   `json:"sandbox"`
	DisabledGlobals map[string]DisabledGlobalDef `json:"disabledGlobals"`
	Types           map[string]NamedTypeDef      `json:"types"`
	ReturnTypes     map[string]ReturnTypeDef     `json:"returnTypes"`
}

// MemberDef is the uniform terminal result of ResolveMemberPath: whichever
// underlying def matched (global, library method, sandbox field, or named
// type field) collapsed to its type string and hover metadata.
type MemberDef struct {
	Type        string
	Description string
	Optional    bool
}
