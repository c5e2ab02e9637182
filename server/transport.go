package server

import (
	"encoding/json"
	"net/http"

	"github.com/viant/luasentry/editor"
	"github.com/viant/luasentry/engine"
	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/semantic"
	"github.com/viant/luasentry/source"
	"github.com/viant/luasentry/typesys"
)

// documentRequest is the JSON body shared by every handler: the document
// identity and text a host resends on each request, since the server is
// stateless (§6: "Persisted state. None").
type documentRequest struct {
	URI      string `json:"uri"`
	Text     string `json:"text"`
	HookName string `json:"hookName,omitempty"`
}

// positionedRequest adds the byte offset the editor-service methods key
// their lookup on.
type positionedRequest struct {
	documentRequest
	Offset int `json:"offset"`
}

func (d documentRequest) document() *source.Document {
	return source.New(d.URI, d.Text)
}

func (d documentRequest) options() engine.Options {
	opts := engine.DefaultOptions()
	opts.HookName = d.HookName
	return opts
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result := s.facade.Analyze(req.document(), req.options())
	writeJSON(w, http.StatusOK, analyzeResponseFrom(result))
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	diags := s.facade.GetDiagnostics(req.document(), req.options())
	writeJSON(w, http.StatusOK, map[string]interface{}{"diagnostics": diagnosticDTOsFrom(diags)})
}

func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	var req positionedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	list := s.facade.GetCompletions(req.document(), req.Offset, req.options())
	writeJSON(w, http.StatusOK, completionListDTO(list))
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req positionedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	hover := s.facade.GetHover(req.document(), req.Offset, req.options())
	if hover == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, hoverDTO(*hover))
}

func (s *Server) handleSignatureHelp(w http.ResponseWriter, r *http.Request) {
	var req positionedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	help := s.facade.GetSignatureHelp(req.document(), req.Offset, req.options())
	if help == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, signatureHelpDTO(*help))
}

func (s *Server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	var req positionedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	def := s.facade.GetDefinition(req.document(), req.Offset, req.options())
	if def == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, definitionDTO(*def))
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	var req positionedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	refs := s.facade.GetReferences(req.document(), req.Offset, req.options())
	writeJSON(w, http.StatusOK, map[string]interface{}{"references": referenceDTOsFrom(refs)})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	symbols := s.facade.GetDocumentSymbols(req.document(), req.options())
	writeJSON(w, http.StatusOK, map[string]interface{}{"symbols": outlineDTOsFrom(symbols)})
}

// --- response DTOs ---

type rangeDTO struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func rangeDTOFrom(r lua.Range) rangeDTO { return rangeDTO{Start: r.Start, End: r.End} }

type diagnosticDTO struct {
	Code     string   `json:"code"`
	Severity string   `json:"severity"`
	Range    rangeDTO `json:"range"`
	Message  string   `json:"message"`
	Tags     []string `json:"tags,omitempty"`
}

func diagnosticDTOsFrom(diags []semantic.Diagnostic) []diagnosticDTO {
	out := make([]diagnosticDTO, len(diags))
	for i, d := range diags {
		out[i] = diagnosticDTO{
			Code:     d.Code,
			Severity: d.Severity.String(),
			Range:    rangeDTOFrom(d.Range),
			Message:  d.Message,
			Tags:     d.Tags,
		}
	}
	return out
}

type analyzeResponse struct {
	Success     bool            `json:"success"`
	Diagnostics []diagnosticDTO `json:"diagnostics"`
}

func analyzeResponseFrom(result *semantic.Result) analyzeResponse {
	return analyzeResponse{
		Success:     result.Success,
		Diagnostics: diagnosticDTOsFrom(result.Diagnostics),
	}
}

func formatType(t *typesys.Type) string {
	if t == nil {
		return ""
	}
	return typesys.Format(t, typesys.FormatOptions{})
}

func completionKindString(k editor.CompletionKind) string {
	switch k {
	case editor.CompletionKeyword:
		return "keyword"
	case editor.CompletionVariable:
		return "variable"
	case editor.CompletionFunction:
		return "function"
	case editor.CompletionField:
		return "field"
	case editor.CompletionModule:
		return "module"
	default:
		return "unknown"
	}
}

type completionItemDTO struct {
	Label         string `json:"label"`
	Kind          string `json:"kind"`
	Detail        string `json:"detail,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

func completionListDTO(list editor.CompletionList) map[string]interface{} {
	items := make([]completionItemDTO, len(list.Items))
	for i, it := range list.Items {
		items[i] = completionItemDTO{
			Label:         it.Label,
			Kind:          completionKindString(it.Kind),
			Detail:        it.Detail,
			Documentation: it.Documentation,
		}
	}
	return map[string]interface{}{"items": items}
}

func hoverDTO(h editor.Hover) map[string]interface{} {
	body := map[string]interface{}{
		"type":          formatType(h.Info.Type),
		"isTableField":  h.Info.IsTableField,
		"fieldName":     h.Info.FieldName,
		"documentation": h.Info.Documentation,
		"range":         rangeDTOFrom(h.Range),
	}
	if h.Info.Declaration != nil {
		body["declaration"] = rangeDTOFrom(*h.Info.Declaration)
	}
	return body
}

type parameterDTO struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

func signatureHelpDTO(help editor.SignatureHelp) map[string]interface{} {
	params := make([]parameterDTO, len(help.Parameters))
	for i, p := range help.Parameters {
		params[i] = parameterDTO{Label: p.Label, Type: formatType(p.Type)}
	}
	return map[string]interface{}{
		"label":            help.Label,
		"parameters":       params,
		"activeParameter":  help.ActiveParameter,
		"activeParamValid": help.ActiveParamValid,
	}
}

func definitionDTO(def editor.DefinitionResult) map[string]interface{} {
	body := map[string]interface{}{"builtinUri": def.BuiltinURI}
	if def.Range != nil {
		body["range"] = rangeDTOFrom(*def.Range)
	}
	return body
}

type referenceDTO struct {
	Range         rangeDTO `json:"range"`
	IsDeclaration bool     `json:"isDeclaration"`
}

func referenceDTOsFrom(refs []editor.Reference) []referenceDTO {
	out := make([]referenceDTO, len(refs))
	for i, ref := range refs {
		out[i] = referenceDTO{Range: rangeDTOFrom(ref.Range), IsDeclaration: ref.IsDeclaration}
	}
	return out
}

func outlineKindString(k editor.OutlineKind) string {
	switch k {
	case editor.OutlineFunction:
		return "function"
	case editor.OutlineVariable:
		return "variable"
	case editor.OutlineTable:
		return "table"
	default:
		return "unknown"
	}
}

type outlineDTO struct {
	Name     string       `json:"name"`
	Kind     string       `json:"kind"`
	Range    rangeDTO     `json:"range"`
	Children []outlineDTO `json:"children,omitempty"`
}

func outlineDTOsFrom(symbols []editor.OutlineSymbol) []outlineDTO {
	out := make([]outlineDTO, len(symbols))
	for i, sym := range symbols {
		out[i] = outlineDTO{
			Name:     sym.Name,
			Kind:     outlineKindString(sym.Kind),
			Range:    rangeDTOFrom(sym.Range),
			Children: outlineDTOsFrom(sym.Children),
		}
	}
	return out
}
