package ast

type NodeType string

const (
	NodeIdentifier              NodeType = "Identifier"
	NodeStringLiteral           NodeType = "StringLiteral"
	NodeIntegerLiteral          NodeType = "IntegerLiteral"
	NodeFloatLiteral            NodeType = "FloatLiteral"
	NodeBooleanLiteral          NodeType = "BooleanLiteral"
	NodeNoneLiteral             NodeType = "NoneLiteral"
	NodeListLiteral             NodeType = "ListLiteral"
	NodeTupleLiteral            NodeType = "TupleLiteral"
	NodeDictEntry               NodeType = "DictEntry"
	NodeDictLiteral             NodeType = "DictLiteral"
	NodeStructField             NodeType = "StructField"
	NodeStructLiteral           NodeType = "StructLiteral"
	NodeSimpleTypeExpression    NodeType = "SimpleTypeExpression"
	NodeGenericTypeExpression   NodeType = "GenericTypeExpression"
	NodeUnionTypeExpression     NodeType = "UnionTypeExpression"
	NodeArgument                NodeType = "Argument"
	NodeFunctionCall            NodeType = "FunctionCall"
	NodeMemberAccessExpression  NodeType = "MemberAccessExpression"
	NodeIndexExpression         NodeType = "IndexExpression"
	NodeSliceExpression         NodeType = "SliceExpression"
	NodeBinaryExpression        NodeType = "BinaryExpression"
	NodeUnaryExpression         NodeType = "UnaryExpression"
	NodeConditionalExpression   NodeType = "ConditionalExpression"
	NodeLambdaExpression        NodeType = "LambdaExpression"
	NodeComprehensionClause     NodeType = "ComprehensionClause"
	NodeListComprehension       NodeType = "ListComprehension"
	NodeDictComprehension       NodeType = "DictComprehension"
	NodeAssignmentStatement     NodeType = "AssignmentStatement"
	NodeFunctionParameter       NodeType = "FunctionParameter"
	NodeFunctionDefinition      NodeType = "FunctionDefinition"
	NodeReturnStatement         NodeType = "ReturnStatement"
	NodeIfStatement             NodeType = "IfStatement"
	NodeForLoop                 NodeType = "ForLoop"
	NodeWhileLoop               NodeType = "WhileLoop"
	NodeBreakStatement          NodeType = "BreakStatement"
	NodeContinueStatement       NodeType = "ContinueStatement"
	NodePassStatement           NodeType = "PassStatement"
	NodeLoadSymbol              NodeType = "LoadSymbol"
	NodeLoadStatement           NodeType = "LoadStatement"
	NodeModule                  NodeType = "Module"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool { return s == Span{} }

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// AssignmentTarget is anything that may appear on the left of '=' or as a for-loop target.
type AssignmentTarget interface {
	Node
	assignmentTargetNode()
}

type assignmentTargetMarker struct{}

func (assignmentTargetMarker) assignmentTargetNode() {}

type TypeExpression interface {
	Node
	typeExpressionNode()
}

type typeExpressionMarker struct{}

func (typeExpressionMarker) typeExpressionNode() {}

// Identifiers

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value int64 `json:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value float64 `json:"value"`
}

func NewFloatLiteral(value float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NoneLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewNoneLiteral() *NoneLiteral {
	return &NoneLiteral{nodeImpl: newNodeImpl(NodeNoneLiteral)}
}

type ListLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Elements []Expression `json:"elements"`
}

func NewListLiteral(elements []Expression) *ListLiteral {
	if elements == nil {
		elements = make([]Expression, 0)
	}
	return &ListLiteral{nodeImpl: newNodeImpl(NodeListLiteral), Elements: elements}
}

type TupleLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Elements []Expression `json:"elements"`
}

func NewTupleLiteral(elements []Expression) *TupleLiteral {
	if elements == nil {
		elements = make([]Expression, 0)
	}
	return &TupleLiteral{nodeImpl: newNodeImpl(NodeTupleLiteral), Elements: elements}
}

type DictEntry struct {
	nodeImpl

	Key   Expression `json:"key"`
	Value Expression `json:"value"`
}

func NewDictEntry(key, value Expression) *DictEntry {
	return &DictEntry{nodeImpl: newNodeImpl(NodeDictEntry), Key: key, Value: value}
}

type DictLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Entries []*DictEntry `json:"entries"`
}

func NewDictLiteral(entries []*DictEntry) *DictLiteral {
	if entries == nil {
		entries = make([]*DictEntry, 0)
	}
	return &DictLiteral{nodeImpl: newNodeImpl(NodeDictLiteral), Entries: entries}
}

type StructField struct {
	nodeImpl

	Name  *Identifier `json:"name"`
	Value Expression  `json:"value"`
}

func NewStructField(name *Identifier, value Expression) *StructField {
	return &StructField{nodeImpl: newNodeImpl(NodeStructField), Name: name, Value: value}
}

// StructLiteral is a record literal; `struct(a = 1)` calls are checked the same way.
type StructLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Fields []*StructField `json:"fields"`
}

func NewStructLiteral(fields []*StructField) *StructLiteral {
	if fields == nil {
		fields = make([]*StructField, 0)
	}
	return &StructLiteral{nodeImpl: newNodeImpl(NodeStructLiteral), Fields: fields}
}

// Type expressions

type SimpleTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	Name *Identifier `json:"name"`
}

func NewSimpleTypeExpression(name *Identifier) *SimpleTypeExpression {
	return &SimpleTypeExpression{nodeImpl: newNodeImpl(NodeSimpleTypeExpression), Name: name}
}

type GenericTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	Base      TypeExpression   `json:"base"`
	Arguments []TypeExpression `json:"arguments"`
}

func NewGenericTypeExpression(base TypeExpression, args []TypeExpression) *GenericTypeExpression {
	return &GenericTypeExpression{nodeImpl: newNodeImpl(NodeGenericTypeExpression), Base: base, Arguments: args}
}

type UnionTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	Members []TypeExpression `json:"members"`
}

func NewUnionTypeExpression(members []TypeExpression) *UnionTypeExpression {
	return &UnionTypeExpression{nodeImpl: newNodeImpl(NodeUnionTypeExpression), Members: members}
}

// Calls and access

type ArgumentKind string

const (
	ArgumentPositional ArgumentKind = "positional"
	ArgumentNamed      ArgumentKind = "named"
	ArgumentArgs       ArgumentKind = "args"
	ArgumentKwargs     ArgumentKind = "kwargs"
)

type Argument struct {
	nodeImpl

	Kind  ArgumentKind `json:"kind"`
	Name  string       `json:"name,omitempty"`
	Value Expression   `json:"value"`
}

func NewArgument(kind ArgumentKind, name string, value Expression) *Argument {
	return &Argument{nodeImpl: newNodeImpl(NodeArgument), Kind: kind, Name: name, Value: value}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression  `json:"callee"`
	Arguments []*Argument `json:"arguments"`
}

func NewFunctionCall(callee Expression, args []*Argument) *FunctionCall {
	if args == nil {
		args = make([]*Argument, 0)
	}
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

type MemberAccessExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Object Expression  `json:"object"`
	Member *Identifier `json:"member"`
}

func NewMemberAccessExpression(object Expression, member *Identifier) *MemberAccessExpression {
	return &MemberAccessExpression{nodeImpl: newNodeImpl(NodeMemberAccessExpression), Object: object, Member: member}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

type SliceExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object Expression `json:"object"`
	Start  Expression `json:"start,omitempty"`
	Stop   Expression `json:"stop,omitempty"`
	Step   Expression `json:"step,omitempty"`
}

func NewSliceExpression(object, start, stop, step Expression) *SliceExpression {
	return &SliceExpression{nodeImpl: newNodeImpl(NodeSliceExpression), Object: object, Start: start, Stop: stop, Step: step}
}

// Operators

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type UnaryOperator string

const (
	UnaryOperatorNegate UnaryOperator = "-"
	UnaryOperatorPlus   UnaryOperator = "+"
	UnaryOperatorNot    UnaryOperator = "not"
	UnaryOperatorBitNot UnaryOperator = "~"
)

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(operator UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type ConditionalExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Condition Expression `json:"condition"`
	Then      Expression `json:"then"`
	Else      Expression `json:"else"`
}

func NewConditionalExpression(cond, then, els Expression) *ConditionalExpression {
	return &ConditionalExpression{nodeImpl: newNodeImpl(NodeConditionalExpression), Condition: cond, Then: then, Else: els}
}

type LambdaExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Params []*FunctionParameter `json:"params"`
	Body   Expression           `json:"body"`
}

func NewLambdaExpression(params []*FunctionParameter, body Expression) *LambdaExpression {
	return &LambdaExpression{nodeImpl: newNodeImpl(NodeLambdaExpression), Params: params, Body: body}
}

// ComprehensionClause is either `for Target in Iterable` or `if Condition`.
type ComprehensionClause struct {
	nodeImpl

	Target    AssignmentTarget `json:"target,omitempty"`
	Iterable  Expression       `json:"iterable,omitempty"`
	Condition Expression       `json:"condition,omitempty"`
}

func NewForClause(target AssignmentTarget, iterable Expression) *ComprehensionClause {
	return &ComprehensionClause{nodeImpl: newNodeImpl(NodeComprehensionClause), Target: target, Iterable: iterable}
}

func NewIfClause(cond Expression) *ComprehensionClause {
	return &ComprehensionClause{nodeImpl: newNodeImpl(NodeComprehensionClause), Condition: cond}
}

// IsFor reports whether the clause binds a loop target.
func (c *ComprehensionClause) IsFor() bool { return c != nil && c.Iterable != nil }

type ListComprehension struct {
	nodeImpl
	expressionMarker
	statementMarker

	Element Expression             `json:"element"`
	Clauses []*ComprehensionClause `json:"clauses"`
}

func NewListComprehension(element Expression, clauses []*ComprehensionClause) *ListComprehension {
	return &ListComprehension{nodeImpl: newNodeImpl(NodeListComprehension), Element: element, Clauses: clauses}
}

type DictComprehension struct {
	nodeImpl
	expressionMarker
	statementMarker

	Key     Expression             `json:"key"`
	Value   Expression             `json:"value"`
	Clauses []*ComprehensionClause `json:"clauses"`
}

func NewDictComprehension(key, value Expression, clauses []*ComprehensionClause) *DictComprehension {
	return &DictComprehension{nodeImpl: newNodeImpl(NodeDictComprehension), Key: key, Value: value, Clauses: clauses}
}

// Statements

type AssignmentOperator string

const (
	AssignmentAssign   AssignmentOperator = "="
	AssignmentAdd      AssignmentOperator = "+="
	AssignmentSub      AssignmentOperator = "-="
	AssignmentMul      AssignmentOperator = "*="
	AssignmentDiv      AssignmentOperator = "/="
	AssignmentFloorDiv AssignmentOperator = "//="
	AssignmentMod      AssignmentOperator = "%="
	AssignmentBitAnd   AssignmentOperator = "&="
	AssignmentBitOr    AssignmentOperator = "|="
	AssignmentBitXor   AssignmentOperator = "^="
	AssignmentShl      AssignmentOperator = "<<="
	AssignmentShr      AssignmentOperator = ">>="
)

// BinaryOperator returns the operator an augmented assignment applies, or "" for '='.
func (op AssignmentOperator) BinaryOperator() string {
	if op == AssignmentAssign || len(op) < 2 {
		return ""
	}
	return string(op[:len(op)-1])
}

type AssignmentStatement struct {
	nodeImpl
	statementMarker

	Operator   AssignmentOperator `json:"operator"`
	Left       AssignmentTarget   `json:"left"`
	Annotation TypeExpression     `json:"annotation,omitempty"`
	Right      Expression         `json:"right"`
}

func NewAssignmentStatement(operator AssignmentOperator, left AssignmentTarget, annotation TypeExpression, right Expression) *AssignmentStatement {
	return &AssignmentStatement{nodeImpl: newNodeImpl(NodeAssignmentStatement), Operator: operator, Left: left, Annotation: annotation, Right: right}
}

type ParameterKind string

const (
	ParameterPositionalOnly ParameterKind = "pos_only"
	ParameterNormal         ParameterKind = "pos_or_named"
	ParameterNamedOnly      ParameterKind = "named_only"
	ParameterArgs           ParameterKind = "args"
	ParameterKwargs         ParameterKind = "kwargs"
)

type FunctionParameter struct {
	nodeImpl

	Name      *Identifier    `json:"name"`
	Kind      ParameterKind  `json:"kind"`
	ParamType TypeExpression `json:"paramType,omitempty"`
	Default   Expression     `json:"default,omitempty"`
}

func NewFunctionParameter(name *Identifier, kind ParameterKind, paramType TypeExpression, def Expression) *FunctionParameter {
	if kind == "" {
		kind = ParameterNormal
	}
	return &FunctionParameter{nodeImpl: newNodeImpl(NodeFunctionParameter), Name: name, Kind: kind, ParamType: paramType, Default: def}
}

type FunctionDefinition struct {
	nodeImpl
	statementMarker

	ID         *Identifier          `json:"id"`
	Params     []*FunctionParameter `json:"params"`
	ReturnType TypeExpression       `json:"returnType,omitempty"`
	Body       []Statement          `json:"body"`
}

func NewFunctionDefinition(id *Identifier, params []*FunctionParameter, body []Statement, returnType TypeExpression) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDefinition), ID: id, Params: params, Body: body, ReturnType: returnType}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

// IfStatement models if/elif/else; an elif is an Else holding a single IfStatement.
type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Then      []Statement `json:"then"`
	Else      []Statement `json:"else,omitempty"`
}

func NewIfStatement(cond Expression, then, els []Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: cond, Then: then, Else: els}
}

type ForLoop struct {
	nodeImpl
	statementMarker

	Target   AssignmentTarget `json:"target"`
	Iterable Expression       `json:"iterable"`
	Body     []Statement      `json:"body"`
}

func NewForLoop(target AssignmentTarget, iterable Expression, body []Statement) *ForLoop {
	return &ForLoop{nodeImpl: newNodeImpl(NodeForLoop), Target: target, Iterable: iterable, Body: body}
}

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhileLoop(cond Expression, body []Statement) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Condition: cond, Body: body}
}

type BreakStatement struct {
	nodeImpl
	statementMarker
}

func NewBreakStatement() *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
}

func NewContinueStatement() *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement)}
}

type PassStatement struct {
	nodeImpl
	statementMarker
}

func NewPassStatement() *PassStatement {
	return &PassStatement{nodeImpl: newNodeImpl(NodePassStatement)}
}

// LoadSymbol binds Local to the symbol Name exported by the loaded module.
type LoadSymbol struct {
	nodeImpl

	Local *Identifier `json:"local"`
	Name  string      `json:"name"`
}

func NewLoadSymbol(local *Identifier, name string) *LoadSymbol {
	return &LoadSymbol{nodeImpl: newNodeImpl(NodeLoadSymbol), Local: local, Name: name}
}

type LoadStatement struct {
	nodeImpl
	statementMarker

	Module  string        `json:"module"`
	Symbols []*LoadSymbol `json:"symbols"`
}

func NewLoadStatement(module string, symbols []*LoadSymbol) *LoadStatement {
	return &LoadStatement{nodeImpl: newNodeImpl(NodeLoadStatement), Module: module, Symbols: symbols}
}

type Module struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewModule(body []Statement) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Body: body}
}

// Loads returns the distinct module identifiers referenced by top-level load statements.
func (m *Module) Loads() []string {
	if m == nil {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, stmt := range m.Body {
		load, ok := stmt.(*LoadStatement)
		if !ok || load == nil || load.Module == "" {
			continue
		}
		if _, dup := seen[load.Module]; dup {
			continue
		}
		seen[load.Module] = struct{}{}
		out = append(out, load.Module)
	}
	return out
}
