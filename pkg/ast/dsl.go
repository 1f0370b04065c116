package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Flt(value float64) *FloatLiteral {
	return NewFloatLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func None() *NoneLiteral {
	return NewNoneLiteral()
}

func List(elements ...Expression) *ListLiteral {
	return NewListLiteral(elements)
}

func Tuple(elements ...Expression) *TupleLiteral {
	return NewTupleLiteral(elements)
}

func Entry(key, value Expression) *DictEntry {
	return NewDictEntry(key, value)
}

func Dict(entries ...*DictEntry) *DictLiteral {
	return NewDictLiteral(entries)
}

func Field(name string, value Expression) *StructField {
	return NewStructField(ID(name), value)
}

func Struct(fields ...*StructField) *StructLiteral {
	return NewStructLiteral(fields)
}

// Type expression helpers.

func Ty(name string) *SimpleTypeExpression {
	return NewSimpleTypeExpression(ID(name))
}

func Gen(base TypeExpression, args ...TypeExpression) *GenericTypeExpression {
	return NewGenericTypeExpression(base, args)
}

func UnionT(members ...TypeExpression) *UnionTypeExpression {
	return NewUnionTypeExpression(members)
}

// Call helpers.

func Pos(value Expression) *Argument {
	return NewArgument(ArgumentPositional, "", value)
}

func Named(name string, value Expression) *Argument {
	return NewArgument(ArgumentNamed, name, value)
}

func Star(value Expression) *Argument {
	return NewArgument(ArgumentArgs, "", value)
}

func StarStar(value Expression) *Argument {
	return NewArgument(ArgumentKwargs, "", value)
}

// Call builds a call; bare expressions become positional arguments.
func Call(callee Expression, args ...interface{}) *FunctionCall {
	out := make([]*Argument, 0, len(args))
	for _, raw := range args {
		switch v := raw.(type) {
		case *Argument:
			out = append(out, v)
		case Expression:
			out = append(out, Pos(v))
		}
	}
	return NewFunctionCall(callee, out)
}

// CallName is shorthand for calling an identifier.
func CallName(name string, args ...interface{}) *FunctionCall {
	return Call(ID(name), args...)
}

func Member(object Expression, member string) *MemberAccessExpression {
	return NewMemberAccessExpression(object, ID(member))
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

func Slice(object, start, stop, step Expression) *SliceExpression {
	return NewSliceExpression(object, start, stop, step)
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Un(operator UnaryOperator, operand Expression) *UnaryExpression {
	return NewUnaryExpression(operator, operand)
}

func Not(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryOperatorNot, operand)
}

func Cond(cond, then, els Expression) *ConditionalExpression {
	return NewConditionalExpression(cond, then, els)
}

func Lambda(params []*FunctionParameter, body Expression) *LambdaExpression {
	return NewLambdaExpression(params, body)
}

func ForC(target AssignmentTarget, iterable Expression) *ComprehensionClause {
	return NewForClause(target, iterable)
}

func IfC(cond Expression) *ComprehensionClause {
	return NewIfClause(cond)
}

func ListComp(element Expression, clauses ...*ComprehensionClause) *ListComprehension {
	return NewListComprehension(element, clauses)
}

func DictComp(key, value Expression, clauses ...*ComprehensionClause) *DictComprehension {
	return NewDictComprehension(key, value, clauses)
}

// Statement helpers.

func Assign(target AssignmentTarget, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(AssignmentAssign, target, nil, value)
}

func AssignTyped(target AssignmentTarget, annotation TypeExpression, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(AssignmentAssign, target, annotation, value)
}

func AugAssign(op AssignmentOperator, target AssignmentTarget, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(op, target, nil, value)
}

func Param(name string, paramType TypeExpression) *FunctionParameter {
	return NewFunctionParameter(ID(name), ParameterNormal, paramType, nil)
}

func ParamDefault(name string, paramType TypeExpression, def Expression) *FunctionParameter {
	return NewFunctionParameter(ID(name), ParameterNormal, paramType, def)
}

func PosOnly(name string, paramType TypeExpression) *FunctionParameter {
	return NewFunctionParameter(ID(name), ParameterPositionalOnly, paramType, nil)
}

func NamedOnly(name string, paramType TypeExpression, def Expression) *FunctionParameter {
	return NewFunctionParameter(ID(name), ParameterNamedOnly, paramType, def)
}

func Args(name string, paramType TypeExpression) *FunctionParameter {
	return NewFunctionParameter(ID(name), ParameterArgs, paramType, nil)
}

func Kwargs(name string, paramType TypeExpression) *FunctionParameter {
	return NewFunctionParameter(ID(name), ParameterKwargs, paramType, nil)
}

func Fn(name string, params []*FunctionParameter, body []Statement, returnType TypeExpression) *FunctionDefinition {
	return NewFunctionDefinition(ID(name), params, body, returnType)
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func If(cond Expression, then []Statement, els []Statement) *IfStatement {
	return NewIfStatement(cond, then, els)
}

func For(target AssignmentTarget, iterable Expression, body ...Statement) *ForLoop {
	return NewForLoop(target, iterable, body)
}

func While(cond Expression, body ...Statement) *WhileLoop {
	return NewWhileLoop(cond, body)
}

func Break() *BreakStatement {
	return NewBreakStatement()
}

func Continue() *ContinueStatement {
	return NewContinueStatement()
}

func Pass() *PassStatement {
	return NewPassStatement()
}

func Sym(name string) *LoadSymbol {
	return NewLoadSymbol(ID(name), name)
}

func SymAs(local, name string) *LoadSymbol {
	return NewLoadSymbol(ID(local), name)
}

func Load(module string, symbols ...*LoadSymbol) *LoadStatement {
	return NewLoadStatement(module, symbols)
}

func Block(stmts ...Statement) []Statement {
	return stmts
}

func Mod(body ...Statement) *Module {
	return NewModule(body)
}
