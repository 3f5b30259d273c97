package hsmgen

import "fmt"

// HistoryKind distinguishes shallow history (remembers only the immediate
// child) from deep history (remembers the full leaf path), mirroring the
// teacher's hsm.HistoryShallow/hsm.HistoryDeep transition option
// (state.go's TransitionBuilder.History).
type HistoryKind int

const (
	// HistoryShallow remembers only the direct child of the region.
	HistoryShallow HistoryKind = iota
	// HistoryDeep remembers the full leaf state reached within the region.
	HistoryDeep
)

func (k HistoryKind) String() string {
	if k == HistoryDeep {
		return "deep"
	}
	return "shallow"
}

// NamedVertex is a state in the HSM graph. The sentinel root
// vertex is itself represented as a NamedVertex with a nil parent and is
// never assigned a StateId other than the ROOT sentinel.
type NamedVertex struct {
	name      string
	parent    *NamedVertex
	depth     int
	children  []*NamedVertex
	behaviors []*Behavior
	initial   *InitialPseudostate
	history   []*HistoryPseudostate
	parallel  bool // marks this vertex's children as orthogonal regions
	hsm       *HSM
}

// Name returns the vertex's original, pre-mangled name.
func (v *NamedVertex) Name() string {
	if v == nil {
		return "<nil>"
	}
	return v.name
}

func (v *NamedVertex) String() string { return v.Name() }

// IsLeaf reports whether v has no children.
func (v *NamedVertex) IsLeaf() bool { return len(v.children) == 0 }

// IsRoot reports whether v is the HSM's implicit root.
func (v *NamedVertex) IsRoot() bool { return v.parent == nil }

// Depth returns v's depth (root = 0, its children = 1, ...).
func (v *NamedVertex) Depth() int { return v.depth }

// Parent returns v's parent vertex, or nil for the root.
func (v *NamedVertex) Parent() *NamedVertex { return v.parent }

// Children returns v's children in declared order.
func (v *NamedVertex) Children() []*NamedVertex { return v.children }

// Behaviors returns v's own behaviors in declared order.
func (v *NamedVertex) Behaviors() []*Behavior { return v.behaviors }

// Initial returns v's initial pseudostate, or nil if none was declared.
func (v *NamedVertex) Initial() *InitialPseudostate { return v.initial }

// HistoryStates returns the history pseudostates declared directly inside
// v's region.
func (v *NamedVertex) HistoryStates() []*HistoryPseudostate { return v.history }

// InitialPseudostate is the (at most one) automatic-entry pseudostate of a
// composite vertex.
type InitialPseudostate struct {
	parent     *NamedVertex
	target     *NamedVertex
	actionText string
}

func (p *InitialPseudostate) Parent() *NamedVertex { return p.parent }
func (p *InitialPseudostate) Target() *NamedVertex { return p.target }
func (p *InitialPseudostate) ActionText() string   { return p.actionText }

// HistoryPseudostate is a shallow or deep history pseudostate scoped to a
// composite vertex's region; it costs one runtime ID slot.
type HistoryPseudostate struct {
	parent *NamedVertex
	kind   HistoryKind
}

func (h *HistoryPseudostate) Parent() *NamedVertex { return h.parent }
func (h *HistoryPseudostate) Kind() HistoryKind     { return h.kind }

// Behavior is an ordered list of triggers with an optional guard, action,
// and transition target. A Behavior with a nil Target is a lifecycle
// behavior: its "enter"/"exit" triggers supply state enter/exit bodies,
// and the Transition Collector ignores it. A Behavior with a Target that
// uses "enter" or "exit" as a trigger produces no row for that trigger;
// the Transition Collector silently skips it as an unrecognized trigger.
type Behavior struct {
	owner      *NamedVertex
	triggers   []string
	guardText  string
	actionText string
	target     *NamedVertex
	history    *HistoryPseudostate
}

func (b *Behavior) Owner() *NamedVertex      { return b.owner }
func (b *Behavior) Triggers() []string       { return b.triggers }
func (b *Behavior) GuardText() string        { return b.guardText }
func (b *Behavior) ActionText() string       { return b.actionText }
func (b *Behavior) Target() *NamedVertex     { return b.target }
func (b *Behavior) IsTransition() bool       { return b.target != nil }
func (b *Behavior) History() *HistoryPseudostate { return b.history }

// HSM is the root of the graph the emitter consumes: exactly one root, a
// set of declared event names, and variable-declaration text.
type HSM struct {
	root            *NamedVertex
	events          []string
	variables       []string
	vertexBuilders  []*VertexBuilder
	behaviorBuilders []*BehaviorBuilder
}

// NewHSM creates an empty HSM graph with its implicit root vertex.
func NewHSM() *HSM {
	h := &HSM{}
	h.root = &NamedVertex{name: "ROOT", hsm: h}
	return h
}

// Root returns the HSM's implicit root vertex.
func (h *HSM) Root() *NamedVertex { return h.root }

// DeclareEvents adds names to the HSM's declared event set. Order is
// preserved and feeds the EventId table.
func (h *HSM) DeclareEvents(names ...string) {
	h.events = append(h.events, names...)
}

// Events returns the declared event set in declaration order.
func (h *HSM) Events() []string { return h.events }

// DeclareVariable appends one variable-declaration line, textually spliced
// into the generated Vars sub-struct.
func (h *HSM) DeclareVariable(decl string) {
	h.variables = append(h.variables, decl)
}

// Variables returns the HSM's own declared variable lines.
func (h *HSM) Variables() []string { return h.variables }

// VertexBuilder provides a fluent API for building a NamedVertex, in the
// style of the teacher's StateBuilder (state.go): the builder registers
// itself on the owning HSM and is removed when Build is called, so that
// Finalize can detect any builder "left unused" (forgotten Build() call).
type VertexBuilder struct {
	parent *NamedVertex
	name   string
	opts   []func(*NamedVertex)
	built  bool
}

// Vertex starts building a top-level vertex (a direct child of root).
func (h *HSM) Vertex(name string) *VertexBuilder {
	return h.root.Vertex(name)
}

// Vertex starts building a nested sub-vertex of v.
func (v *NamedVertex) Vertex(name string) *VertexBuilder {
	vb := &VertexBuilder{parent: v, name: name}
	v.hsm.vertexBuilders = append(v.hsm.vertexBuilders, vb)
	return vb
}

// Parallel marks the vertex being built as having orthogonal (parallel)
// regions. Orthogonal regions are unsupported by this emitter; Generate
// fails with ErrTableOverflowRisk if any vertex is so marked.
func (vb *VertexBuilder) Parallel() *VertexBuilder {
	vb.opts = append(vb.opts, func(v *NamedVertex) { v.parallel = true })
	return vb
}

// Build finalizes the vertex and appends it to its parent's children.
func (vb *VertexBuilder) Build() *NamedVertex {
	v := &NamedVertex{
		parent: vb.parent,
		name:   vb.name,
		depth:  vb.parent.depth + 1,
		hsm:    vb.parent.hsm,
	}
	for _, opt := range vb.opts {
		opt(v)
	}
	vb.parent.children = append(vb.parent.children, v)
	vb.built = true
	removeVertexBuilder(vb.parent.hsm, vb)
	return v
}

func removeVertexBuilder(h *HSM, vb *VertexBuilder) {
	for i, b := range h.vertexBuilders {
		if b == vb {
			h.vertexBuilders = append(h.vertexBuilders[:i], h.vertexBuilders[i+1:]...)
			return
		}
	}
}

// InitialBuilder builds an InitialPseudostate for a composite vertex.
type InitialBuilder struct {
	parent     *NamedVertex
	target     *NamedVertex
	actionText string
}

// Initial starts building v's initial pseudostate, targeting a sibling
// (direct child of v).
func (v *NamedVertex) Initial(target *NamedVertex) *InitialBuilder {
	return &InitialBuilder{parent: v, target: target}
}

// Action sets the optional action text run when the initial transition
// fires.
func (ib *InitialBuilder) Action(text string) *InitialBuilder {
	ib.actionText = text
	return ib
}

// Build installs the initial pseudostate on its parent vertex. Panics if
// the parent already has a different initial pseudostate, matching the
// teacher's "sub-states %s and %s can not both be marked initial" panic
// (state.go), since this is a structural-authoring error caught at graph-
// construction time rather than at Generate time.
func (ib *InitialBuilder) Build() *InitialPseudostate {
	if ib.parent.initial != nil && ib.parent.initial.target != ib.target {
		panic(fmt.Sprintf("vertex %s already has initial target %s, cannot also target %s",
			ib.parent.name, ib.parent.initial.target.Name(), ib.target.Name()))
	}
	ib.parent.initial = &InitialPseudostate{parent: ib.parent, target: ib.target, actionText: ib.actionText}
	return ib.parent.initial
}

// History creates and appends a history pseudostate to v's region.
func (v *NamedVertex) History(kind HistoryKind) *HistoryPseudostate {
	hp := &HistoryPseudostate{parent: v, kind: kind}
	v.history = append(v.history, hp)
	return hp
}

// BehaviorBuilder provides a fluent API for building a Behavior, in the
// style of the teacher's TransitionBuilder (state.go).
type BehaviorBuilder struct {
	owner      *NamedVertex
	triggers   []string
	guardText  string
	actionText string
	target     *NamedVertex
	hasTarget  bool
	history    *HistoryPseudostate
}

// On starts building a behavior for one or more triggers on v. Triggers
// "enter" and "exit" are the reserved lifecycle triggers.
func (v *NamedVertex) On(triggers ...string) *BehaviorBuilder {
	bb := &BehaviorBuilder{owner: v, triggers: triggers}
	v.hsm.behaviorBuilders = append(v.hsm.behaviorBuilders, bb)
	return bb
}

// Guard sets the (opaque, not-yet-expanded) guard source text.
func (bb *BehaviorBuilder) Guard(text string) *BehaviorBuilder {
	bb.guardText = text
	return bb
}

// Action sets the (opaque, not-yet-expanded) action source text.
func (bb *BehaviorBuilder) Action(text string) *BehaviorBuilder {
	bb.actionText = text
	return bb
}

// To marks this behavior as a transition to target.
func (bb *BehaviorBuilder) To(target *NamedVertex) *BehaviorBuilder {
	bb.target = target
	bb.hasTarget = true
	return bb
}

// ToHistory marks this behavior as a transition into hp's history; the
// runtime-resolved effective target is the region's remembered state, or
// the region's own initial target if history has not yet been populated.
func (bb *BehaviorBuilder) ToHistory(hp *HistoryPseudostate) *BehaviorBuilder {
	bb.target = hp.parent
	bb.hasTarget = true
	bb.history = hp
	return bb
}

// Build finalizes the behavior and appends it to its owner's behaviors.
func (bb *BehaviorBuilder) Build() *Behavior {
	b := &Behavior{
		owner:      bb.owner,
		triggers:   bb.triggers,
		guardText:  bb.guardText,
		actionText: bb.actionText,
		history:    bb.history,
	}
	if bb.hasTarget {
		b.target = bb.target
	}
	bb.owner.behaviors = append(bb.owner.behaviors, b)
	removeBehaviorBuilder(bb.owner.hsm, bb)
	return b
}

func removeBehaviorBuilder(h *HSM, bb *BehaviorBuilder) {
	for i, b := range h.behaviorBuilders {
		if b == bb {
			h.behaviorBuilders = append(h.behaviorBuilders[:i], h.behaviorBuilders[i+1:]...)
			return
		}
	}
}

// OnEnter is a convenience for On("enter").Action(text).Build().
func (v *NamedVertex) OnEnter(actionText string) *Behavior {
	return v.On("enter").Action(actionText).Build()
}

// OnExit is a convenience for On("exit").Action(text).Build().
func (v *NamedVertex) OnExit(actionText string) *Behavior {
	return v.On("exit").Action(actionText).Build()
}

// AddTransition is a convenience for On(trigger).To(target).Build().
func (v *NamedVertex) AddTransition(trigger string, target *NamedVertex) *Behavior {
	return v.On(trigger).To(target).Build()
}

// Finalize validates the graph: every composite vertex (including root)
// must have an initial pseudostate whose target is one of its own
// children, no vertex may be marked Parallel, and no builder may be left
// unused. It returns ErrMissingInitialState, ErrTableOverflowRisk, or a
// panic for forgotten builders (an authoring
// error, not a data error -- mirrors the teacher's Finalize panics in
// state.go for the same class of mistake).
func (h *HSM) Finalize() error {
	if len(h.vertexBuilders) > 0 {
		panic(fmt.Sprintf("vertex %s builder left unused, forgotten call to Build()?", h.vertexBuilders[0].name))
	}
	if len(h.behaviorBuilders) > 0 {
		panic(fmt.Sprintf("behavior builder for owner %s left unused, forgotten call to Build()?", h.behaviorBuilders[0].owner.Name()))
	}

	var walk func(v *NamedVertex) error
	walk = func(v *NamedVertex) error {
		if v.parallel {
			return wrapf(ErrTableOverflowRisk, "vertex %s declares orthogonal regions", v.Name())
		}
		if !v.IsLeaf() {
			if v.initial == nil {
				return wrapf(ErrMissingInitialState, "vertex %s has no initial pseudostate", v.Name())
			}
			if v.initial.target == nil || v.initial.target.parent != v {
				return wrapf(ErrMissingInitialState, "vertex %s initial pseudostate target is not a direct child", v.Name())
			}
		}
		for _, c := range v.children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(h.root)
}

// MaxDepth returns the deepest vertex depth in the graph, used to size the
// EnterDownTo ancestor-path buffer at emit time.
func (h *HSM) MaxDepth() int {
	max := 0
	var walk func(v *NamedVertex)
	walk = func(v *NamedVertex) {
		if v.depth > max {
			max = v.depth
		}
		for _, c := range v.children {
			walk(c)
		}
	}
	walk(h.root)
	return max
}

// AllVertices returns every NamedVertex descendant of root, excluding root
// itself, in deterministic pre-order (declaration order within each
// level) -- the iteration order the Index Builders rely on.
func (h *HSM) AllVertices() []*NamedVertex {
	var out []*NamedVertex
	var walk func(v *NamedVertex)
	walk = func(v *NamedVertex) {
		for _, c := range v.children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(h.root)
	return out
}

// AllHistoryStates returns every history pseudostate in the graph, in the
// same pre-order traversal as AllVertices, parent region first.
func (h *HSM) AllHistoryStates() []*HistoryPseudostate {
	var out []*HistoryPseudostate
	out = append(out, h.root.history...)
	for _, v := range h.AllVertices() {
		out = append(out, v.history...)
	}
	return out
}
