package hsmgen

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dragomit/hsmgen/expand"
	"github.com/dragomit/hsmgen/mangle"
)

// Config carries the options Generate accepts beyond the HSM graph
// itself. The yaml struct tags let a host that persists its own render
// configuration load one straight off disk with LoadConfig (or its own
// call to gopkg.in/yaml.v3) before calling Generate.
type Config struct {
	// Algorithm selects the emission algorithm; only "Table1" (this
	// emitter) is accepted.
	Algorithm string `yaml:"algorithm"`
	// Transpiler selects the lowering of guard/action text; only "C99" is
	// currently supported.
	Transpiler string `yaml:"transpiler"`
	// TypeName is the HSM's own name, passed to the Name Mangler to
	// produce the generated type's identifier.
	TypeName string `yaml:"type_name"`
	// Variables are spliced one per line into the Vars sub-struct, in
	// addition to any the HSM itself declares.
	Variables []string `yaml:"variables"`
	// Logger receives one debug line per collection-time decision and one
	// info line per successful Generate call. Defaults to a no-op logger.
	Logger *zap.Logger `yaml:"-"`
}

// DefaultConfig returns a Config selecting this emitter's only supported
// algorithm/transpiler pair.
func DefaultConfig() Config {
	return Config{Algorithm: "Table1", Transpiler: "C99"}
}

// LoadConfig reads a YAML-encoded Config from r, starting from
// DefaultConfig so a document that only overrides TypeName and Variables
// still leaves Algorithm/Transpiler at their supported defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, wrapf(ErrUnsupportedConfig, "decoding config: %v", err)
	}
	return cfg, nil
}

// Generate is the Driver: it orchestrates the Index Builders, Transition
// Collector, and the three text-emission passes, and writes the
// file-top comment, enum declarations, struct definition, constructor,
// and helpers around them.
func Generate(h *HSM, mangler mangle.NameMangler, expander expand.Expander, cfg Config) (string, error) {
	if h == nil {
		return "", ErrNullStateMachine
	}
	if mangler == nil || expander == nil {
		return "", wrapf(ErrNullStateMachine, "mangler and expander must both be provided")
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = "Table1"
	}
	if cfg.Transpiler == "" {
		cfg.Transpiler = "C99"
	}
	if cfg.Algorithm != "Table1" {
		return "", wrapf(ErrUnsupportedConfig, "algorithm %q", cfg.Algorithm)
	}
	if cfg.Transpiler != "C99" {
		return "", wrapf(ErrUnsupportedConfig, "transpiler %q", cfg.Transpiler)
	}
	logger := loggerOrDefault(cfg.Logger)

	if err := h.Finalize(); err != nil {
		return "", err
	}

	idx, err := BuildIndexTables(h, mangler)
	if err != nil {
		return "", err
	}

	entries, err := CollectTransitions(h, idx, mangler, logger)
	if err != nil {
		return "", err
	}

	typeName, err := mangler.MangleTypeName(cfg.TypeName)
	if err != nil {
		return "", wrapf(ErrNameMangling, "type name %q", cfg.TypeName)
	}

	w := NewIndentWriter()
	w.Line("// Code generated by hsmgen (Table1/C99). DO NOT EDIT.")
	w.Printf("// This type is not safe for concurrent use: %s, %s, and any", mangler.DispatchRoutineName(), mangler.StartRoutineName())
	w.Printf("// observation of %s must be serialized by the host.", mangler.StateIDFieldName())
	w.Blank()

	if err := emitEnums(w, h, idx, mangler, typeName); err != nil {
		return "", err
	}

	w.Printf("typedef struct {")
	w.depth++
	w.Line("StateId current_state;")
	w.Line("EventId trigger;")
	w.Line("StateId next_state;")
	w.Line("ActionId action_index;")
	w.Line("GuardId guard_index;")
	w.depth--
	w.Line("} Transition;")
	w.Blank()

	hasVars := len(h.Variables()) > 0 || len(cfg.Variables) > 0
	if hasVars {
		w.Printf("typedef struct {")
		w.depth++
		for _, decl := range h.Variables() {
			w.Line(decl)
		}
		for _, decl := range cfg.Variables {
			w.Line(decl)
		}
		w.depth--
		w.Line("} Vars;")
		w.Blank()
	}

	stateField := mangler.StateIDFieldName()

	w.Printf("typedef struct %s {", typeName)
	w.depth++
	w.Printf("StateId %s;", stateField)
	if idx.HistoryCount() > 0 {
		w.Printf("StateId history_slot[%d];", idx.HistoryCount())
	}
	if hasVars {
		w.Line("Vars vars;")
	}
	w.depth--
	w.Printf("} %s;", typeName)
	w.Blank()

	w.StartBlock(fmt.Sprintf("void %s_Init(%s *self)", typeName, typeName))
	w.Printf("self->%s = STATE_NONE;", stateField)
	for i := 0; i < idx.HistoryCount(); i++ {
		w.Printf("self->history_slot[%d] = STATE_NONE;", i)
	}
	w.EndBlock("")
	w.Blank()

	if err := emitStructuralTables(w, h, idx, entries, mangler); err != nil {
		return "", err
	}
	if err := emitBehaviorTables(w, idx, expander); err != nil {
		return "", err
	}
	if err := emitRuntimeProtocol(w, h, idx, entries, mangler, expander, typeName); err != nil {
		return "", err
	}

	emitToStringHelpers(w, h, idx, mangler, typeName)

	out := w.String()
	logger.Info("generated state machine",
		zap.String("type", typeName),
		zap.Int("states", idx.StateCount()),
		zap.Int("events", idx.EventCount()),
		zap.Int("transitions", len(entries)),
		zap.Int("bytes", len(out)),
	)
	return out, nil
}

func emitEnums(w *IndentWriter, h *HSM, idx *IndexTables, mangler mangle.NameMangler, typeName string) error {
	rootName, err := mangler.MangleStateEnumValue("ROOT")
	if err != nil {
		return wrapf(ErrNameMangling, "state %q", "ROOT")
	}

	w.Printf("typedef enum {")
	w.depth++
	w.Printf("%s = -1,", rootName)
	w.Printf("STATE_NONE = -2,")
	for id := 0; id < idx.StateCount(); id++ {
		v := idx.VertexByStateID(StateID(id))
		name, err := mangler.MangleStateEnumValue(v.Name())
		if err != nil {
			return wrapf(ErrNameMangling, "state %q", v.Name())
		}
		w.Printf("%s = %d,", name, id)
	}
	w.depth--
	w.Line("} StateId;")
	w.Blank()

	w.Printf("typedef enum {")
	w.depth++
	for id := 0; id < idx.EventCount(); id++ {
		name, err := mangler.MangleEventEnumValue(idx.EventName(EventID(id)))
		if err != nil {
			return wrapf(ErrNameMangling, "event %q", idx.EventName(EventID(id)))
		}
		w.Printf("%s = %d,", name, id)
	}
	w.depth--
	w.Line("} EventId;")
	w.Blank()

	w.Printf("typedef enum {")
	w.depth++
	w.Line("GUARD_NONE = 0,")
	for i := 1; i <= idx.GuardCount(); i++ {
		w.Printf("GUARD_%d = %d,", i, i)
	}
	w.depth--
	w.Line("} GuardId;")
	w.Blank()

	w.Printf("typedef enum {")
	w.depth++
	w.Line("ACTION_NONE = 0,")
	for i := 1; i <= idx.ActionCount(); i++ {
		w.Printf("ACTION_%d = %d,", i, i)
	}
	w.depth--
	w.Line("} ActionId;")
	w.Blank()

	for _, hp := range h.AllHistoryStates() {
		parentName, err := mangler.MangleStateEnumValue(hp.parent.Name())
		if err != nil {
			return wrapf(ErrNameMangling, "history parent %q", hp.parent.Name())
		}
		w.Printf("// history slot %d (%s) remembers last active child of %s", idx.HistoryID(hp), hp.kind, parentName)
	}
	return nil
}

func emitToStringHelpers(w *IndentWriter, h *HSM, idx *IndexTables, mangler mangle.NameMangler, typeName string) {
	w.StartBlock(fmt.Sprintf("const char *%s_state_id_to_string(StateId id)", typeName))
	w.StartBlock("switch (id)")
	for id := 0; id < idx.StateCount(); id++ {
		v := idx.VertexByStateID(StateID(id))
		name, err := mangler.MangleStateEnumValue(v.Name())
		if err != nil {
			continue
		}
		w.Printf("case %s: return %q;", name, v.Name())
	}
	w.Line("default: return \"ROOT\";")
	w.EndBlock("")
	w.EndBlock("")
	w.Blank()

	w.StartBlock(fmt.Sprintf("const char *%s_event_id_to_string(EventId id)", typeName))
	w.StartBlock("switch (id)")
	for id := 0; id < idx.EventCount(); id++ {
		name, err := mangler.MangleEventEnumValue(idx.EventName(EventID(id)))
		if err != nil {
			continue
		}
		w.Printf("case %s: return %q;", name, idx.EventName(EventID(id)))
	}
	w.Line("default: return \"?\";")
	w.EndBlock("")
	w.EndBlock("")
	w.Blank()
}
