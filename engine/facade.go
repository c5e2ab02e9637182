// Package engine is the host callback surface described in §6: a single
// Facade wiring the registry, the two-pass analyzer, and every editor
// service behind one set of methods, the way inspector.Factory wires its
// per-language Inspector implementations behind one Config.
package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/viant/luasentry/editor"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/semantic"
	"github.com/viant/luasentry/source"
)

// Options mirrors semantic.Options field for field (§3's AnalyzerOptions)
// rather than wrapping it, so a host never needs to reconcile two
// separate option shapes for the same analysis run.
type Options = semantic.Options

// DefaultOptions mirrors semantic.DefaultOptions.
func DefaultOptions() Options { return semantic.DefaultOptions() }

// Facade is the public entry point a host (an in-process editor
// extension, or the server package over HTTP) drives. It owns nothing
// the registry doesn't already own immutably, plus a small analysis
// cache keyed on document content — analyses are cheap (§5: milliseconds
// for scripts under the size ceiling) but an editor can call several
// editor-service methods back to back for the same keystroke, and
// re-running the two-pass analyzer for each would be wasted work.
type Facade struct {
	registry *registry.Registry
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[uint64]*semantic.Result
}

// New constructs a Facade over reg. A nil logger is replaced with a
// no-op logger so the facade never needs a nil check at each call site.
func New(reg *registry.Registry, logger *zap.Logger) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Facade{
		registry: reg,
		logger:   logger,
		cache:    make(map[uint64]*semantic.Result),
	}
}

// Analyze runs (or reuses) the analysis for doc under opts and logs a
// Debug line with the document's URI, version, and diagnostic count, per
// the ambient-stack logging contract.
func (f *Facade) Analyze(doc *source.Document, opts Options) *semantic.Result {
	result := f.analyze(doc, opts)
	f.logger.Debug("analyze",
		zap.String("uri", doc.URI()),
		zap.Int("version", doc.Version()),
		zap.Int("diagnostics", len(result.Diagnostics)),
	)
	return result
}

// GetCompletions implements §6's getCompletions.
func (f *Facade) GetCompletions(doc *source.Document, offset int, opts Options) editor.CompletionList {
	result := f.analyze(doc, opts)
	return editor.Complete(doc, result, f.registry, opts.HookName, offset)
}

// GetHover implements §6's getHover.
func (f *Facade) GetHover(doc *source.Document, offset int, opts Options) *editor.Hover {
	result := f.analyze(doc, opts)
	return editor.HoverAt(doc, result, f.registry, offset)
}

// GetSignatureHelp implements §6's getSignatureHelp.
func (f *Facade) GetSignatureHelp(doc *source.Document, offset int, opts Options) *editor.SignatureHelp {
	result := f.analyze(doc, opts)
	return editor.SignatureHelpAt(doc, result, f.registry, offset)
}

// GetDiagnostics implements §6's getDiagnostics.
func (f *Facade) GetDiagnostics(doc *source.Document, opts Options) []semantic.Diagnostic {
	return f.analyze(doc, opts).Diagnostics
}

// GetDefinition implements §6's getDefinition.
func (f *Facade) GetDefinition(doc *source.Document, offset int, opts Options) *editor.DefinitionResult {
	result := f.analyze(doc, opts)
	return editor.DefinitionAt(doc, result, f.registry, offset)
}

// GetReferences implements §6's getReferences.
func (f *Facade) GetReferences(doc *source.Document, offset int, opts Options) []editor.Reference {
	result := f.analyze(doc, opts)
	return editor.ReferencesAt(doc, result, offset)
}

// GetDocumentSymbols implements §6's getDocumentSymbols. Outline walks
// the AST directly and carries no analysis-dependent state, so it never
// needs to run (or reuse) a full analysis.
func (f *Facade) GetDocumentSymbols(doc *source.Document, opts Options) []editor.OutlineSymbol {
	return editor.Outline(doc.GetAST())
}

func (f *Facade) analyze(doc *source.Document, opts Options) *semantic.Result {
	key := cacheKey(doc, opts)

	f.mu.Lock()
	if cached, ok := f.cache[key]; ok {
		f.mu.Unlock()
		return cached
	}
	f.mu.Unlock()

	result := semantic.Analyze(doc, f.registry, opts)

	f.mu.Lock()
	f.cache[key] = result
	f.mu.Unlock()
	return result
}

// cacheKey folds the document's content hash with the hook name into one
// lookup key, since the hook name changes which context fields resolve.
// The cache is never evicted: a single editor session opens a bounded
// number of distinct (content, hook) pairs for one script, so this
// trades a small amount of memory for never re-running analysis on an
// unedited buffer.
func cacheKey(doc *source.Document, opts Options) uint64 {
	h := doc.ContentHash()
	for i := 0; i < len(opts.HookName); i++ {
		h ^= uint64(opts.HookName[i])
		h *= 1099511628211
	}
	return h
}
